package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"hotelbook/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	bookingsSheet = "Bookings"
	itemsSheet    = "Items"

	// ContentType is the MIME type of the produced workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	bookingHeaders = []string{
		"ID", "Guest", "Email", "Phone", "Check-in", "Check-out", "Nights",
		"Status", "Rooms", "Total", "Special requests", "Created",
	}
	itemHeaders = []string{
		"Booking ID", "Room ID", "Room", "Quantity", "Guests", "Price per night", "Subtotal",
	}
)

// FileName names an export produced at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", t.Format("20060102_150405"))
}

// WriteBookings renders bookings as an XLSX workbook into w: one sheet with a
// row per booking and one with a row per booked room type.
func WriteBookings(w io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return fmt.Errorf("error renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	if err := writeHeader(f, bookingsSheet, bookingHeaders, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, itemsSheet, itemHeaders, headerStyle); err != nil {
		return err
	}

	itemRow := 2
	for i, b := range bookings {
		row := []interface{}{
			b.ID, b.GuestName, b.GuestEmail, b.GuestPhone,
			models.FormatDate(b.CheckIn), models.FormatDate(b.CheckOut), b.Nights(),
			b.Status, roomsSummary(b), models.AmountFromCents(b.TotalCents),
			b.SpecialRequests, b.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, bookingsSheet, i+2, row); err != nil {
			return err
		}

		for _, it := range b.Items {
			row := []interface{}{
				b.ID, it.RoomID, it.RoomName, it.Quantity, it.Guests,
				models.AmountFromCents(it.PricePerNightCents), models.AmountFromCents(it.SubtotalCents),
			}
			if err := writeRow(f, itemsSheet, itemRow, row); err != nil {
				return err
			}
			itemRow++
		}
	}

	_ = f.SetColWidth(bookingsSheet, "B", "C", 25)
	_ = f.SetColWidth(bookingsSheet, "I", "I", 40)
	_ = f.SetColWidth(bookingsSheet, "K", "K", 40)
	_ = f.SetColWidth(itemsSheet, "C", "C", 30)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("error writing row %d: %w", row, err)
	}
	return nil
}

func roomsSummary(b *models.Booking) string {
	if b.IsLegacy() {
		return fmt.Sprintf("1 x room #%d", *b.RoomID)
	}
	parts := make([]string, 0, len(b.Items))
	for _, it := range b.Items {
		name := it.RoomName
		if name == "" {
			name = fmt.Sprintf("room #%d", it.RoomID)
		}
		parts = append(parts, fmt.Sprintf("%d x %s", it.Quantity, name))
	}
	return strings.Join(parts, ", ")
}
