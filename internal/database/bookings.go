package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var bookingColumns = []string{
	"id", "guest_name", "guest_email", "guest_phone", "check_in", "check_out",
	"special_requests", "total_cents", "status", "room_id", "guests",
	"version", "created_at", "updated_at",
}

type bookingRow struct {
	ID              int64         `db:"id"`
	GuestName       string        `db:"guest_name"`
	GuestEmail      string        `db:"guest_email"`
	GuestPhone      string        `db:"guest_phone"`
	CheckIn         string        `db:"check_in"`
	CheckOut        string        `db:"check_out"`
	SpecialRequests string        `db:"special_requests"`
	TotalCents      int64         `db:"total_cents"`
	Status          string        `db:"status"`
	RoomID          sql.NullInt64 `db:"room_id"`
	Guests          int           `db:"guests"`
	Version         int64         `db:"version"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func (r bookingRow) toModel() (*models.Booking, error) {
	checkIn, err := models.ParseDate(r.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("booking %d check_in: %w", r.ID, err)
	}
	checkOut, err := models.ParseDate(r.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("booking %d check_out: %w", r.ID, err)
	}

	b := &models.Booking{
		ID:              r.ID,
		GuestName:       r.GuestName,
		GuestEmail:      r.GuestEmail,
		GuestPhone:      r.GuestPhone,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		SpecialRequests: r.SpecialRequests,
		TotalCents:      r.TotalCents,
		Status:          r.Status,
		Guests:          r.Guests,
		Items:           []models.BookingItem{},
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.RoomID.Valid {
		id := r.RoomID.Int64
		b.RoomID = &id
	}
	return b, nil
}

type bookingItemRow struct {
	ID                 int64  `db:"id"`
	BookingID          int64  `db:"booking_id"`
	RoomID             int64  `db:"room_id"`
	RoomName           string `db:"room_name"`
	Quantity           int    `db:"quantity"`
	Guests             int    `db:"guests"`
	PricePerNightCents int64  `db:"price_per_night_cents"`
	SubtotalCents      int64  `db:"subtotal_cents"`
}

// PlaceBooking commits an itemised booking as confirmed.
//
// Availability of every requested room type is recomputed inside the write
// transaction; if any room falls short an *AvailabilityError is returned and
// nothing is written. Prices are snapshotted onto the items.
func (db *DB) PlaceBooking(ctx context.Context, booking *models.Booking) error {
	if len(booking.Items) == 0 {
		return errors.New("booking has no items")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return persistErr("begin place booking", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rooms, err := reserveUnits(ctx, tx, booking.RequestedUnits(), booking.CheckIn, booking.CheckOut, true)
	if err != nil {
		return err
	}

	nights := int64(models.Nights(booking.CheckIn, booking.CheckOut))
	var total int64
	for i := range booking.Items {
		item := &booking.Items[i]
		room := rooms[item.RoomID]
		item.RoomName = room.Name
		item.PricePerNightCents = room.PriceCents
		item.SubtotalCents = nights * room.PriceCents * int64(item.Quantity)
		total += item.SubtotalCents
	}

	booking.TotalCents = total
	booking.Status = models.StatusConfirmed
	booking.RoomID = nil
	if err := insertBooking(ctx, tx, booking); err != nil {
		return err
	}

	for i := range booking.Items {
		item := &booking.Items[i]
		item.BookingID = booking.ID
		if err := insertBookingItem(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit place booking", err)
	}

	db.logger.Debug().
		Int64("booking_id", booking.ID).
		Int("items", len(booking.Items)).
		Int64("total_cents", booking.TotalCents).
		Msg("booking committed")
	return nil
}

// InsertLegacyBooking stores a single-room booking without items, as older
// data did. It performs no availability check; imported history is taken as is.
func (db *DB) InsertLegacyBooking(ctx context.Context, booking *models.Booking) error {
	if booking.RoomID == nil {
		return errors.New("legacy booking requires a room id")
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	booking.Items = nil
	return insertBooking(ctx, db, booking)
}

func insertBooking(ctx context.Context, q querier, booking *models.Booking) error {
	now := time.Now().UTC()
	var roomID interface{}
	if booking.RoomID != nil {
		roomID = *booking.RoomID
	}

	query, args, err := builder.Insert("bookings").
		Columns("guest_name", "guest_email", "guest_phone", "check_in", "check_out",
			"special_requests", "total_cents", "status", "room_id", "guests",
			"version", "created_at", "updated_at").
		Values(booking.GuestName, booking.GuestEmail, booking.GuestPhone,
			models.FormatDate(booking.CheckIn), models.FormatDate(booking.CheckOut),
			booking.SpecialRequests, booking.TotalCents, booking.Status, roomID, booking.Guests,
			1, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("build booking insert: %w", err)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return persistErr("insert booking", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return persistErr("insert booking", err)
	}

	booking.ID = id
	booking.Version = 1
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func insertBookingItem(ctx context.Context, q querier, item *models.BookingItem) error {
	query, args, err := builder.Insert("booking_items").
		Columns("booking_id", "room_id", "room_name", "quantity", "guests",
			"price_per_night_cents", "subtotal_cents").
		Values(item.BookingID, item.RoomID, item.RoomName, item.Quantity, item.Guests,
			item.PricePerNightCents, item.SubtotalCents).
		ToSql()
	if err != nil {
		return fmt.Errorf("build booking item insert: %w", err)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return persistErr("insert booking item", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return persistErr("insert booking item", err)
	}
	item.ID = id
	return nil
}

func getBooking(ctx context.Context, q querier, id int64) (*models.Booking, error) {
	query, args, err := builder.Select(bookingColumns...).From("bookings").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking query: %w", err)
	}

	var row bookingRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
		}
		return nil, persistErr("get booking", err)
	}

	booking, err := row.toModel()
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	if its, ok := items[id]; ok {
		booking.Items = its
	}
	return booking, nil
}

// GetBooking returns a booking with its items or ErrNotFound.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return getBooking(ctx, db, id)
}

// ListBookings returns bookings newest first along with the unpaged total.
// A zero Limit returns every matching booking.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, int, error) {
	countQB := builder.Select("COUNT(*)").From("bookings")
	listQB := builder.Select(bookingColumns...).From("bookings").OrderBy("created_at DESC", "id DESC")
	if filter.Status != "" {
		countQB = countQB.Where(squirrel.Eq{"status": filter.Status})
		listQB = listQB.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Limit > 0 {
		listQB = listQB.Limit(uint64(filter.Limit)).Offset(uint64(max(0, filter.Offset)))
	}

	query, args, err := countQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build bookings count: %w", err)
	}
	var total int
	if err := db.GetContext(ctx, &total, query, args...); err != nil {
		return nil, 0, persistErr("count bookings", err)
	}

	query, args, err = listQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build bookings query: %w", err)
	}
	var rows []bookingRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, persistErr("list bookings", err)
	}

	bookings, err := db.withItems(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// RecentBookings returns the newest bookings for the dashboard.
func (db *DB) RecentBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	bookings, _, err := db.ListBookings(ctx, models.BookingFilter{Limit: limit})
	return bookings, err
}

func (db *DB) withItems(ctx context.Context, rows []bookingRow) ([]*models.Booking, error) {
	bookings := make([]*models.Booking, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		b, err := r.toModel()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
		ids = append(ids, b.ID)
	}

	items, err := loadItems(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if its, ok := items[b.ID]; ok {
			b.Items = its
		}
	}
	return bookings, nil
}

func loadItems(ctx context.Context, q querier, bookingIDs []int64) (map[int64][]models.BookingItem, error) {
	out := make(map[int64][]models.BookingItem, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}

	query, args, err := builder.Select("id", "booking_id", "room_id", "room_name", "quantity",
		"guests", "price_per_night_cents", "subtotal_cents").
		From("booking_items").
		Where(squirrel.Eq{"booking_id": bookingIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking items query: %w", err)
	}

	var rows []bookingItemRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, persistErr("load booking items", err)
	}
	for _, r := range rows {
		out[r.BookingID] = append(out[r.BookingID], models.BookingItem{
			ID:                 r.ID,
			BookingID:          r.BookingID,
			RoomID:             r.RoomID,
			RoomName:           r.RoomName,
			Quantity:           r.Quantity,
			Guests:             r.Guests,
			PricePerNightCents: r.PricePerNightCents,
			SubtotalCents:      r.SubtotalCents,
		})
	}
	return out, nil
}

// UpdateBookingStatusWithVersion changes a booking's status if its version
// still equals fromVersion. Moving a cancelled booking back to an active
// status re-validates availability in the same transaction.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) (*models.Booking, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, persistErr("begin update status", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := getBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if booking.Version != fromVersion {
		return nil, ErrConcurrentModification
	}

	if !booking.IsActive() && models.IsActiveStatus(status) {
		if _, err := reserveUnits(ctx, tx, booking.RequestedUnits(), booking.CheckIn, booking.CheckOut, false); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	query, args, err := builder.Update("bookings").
		Set("status", status).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "version": fromVersion}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build status update: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("update booking status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, persistErr("update booking status", err)
	}
	if rows == 0 {
		return nil, ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return nil, persistErr("commit update status", err)
	}

	booking.Status = status
	booking.Version = fromVersion + 1
	booking.UpdatedAt = now
	return booking, nil
}

// DeleteBooking removes a booking; its items go with it.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete booking", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return persistErr("delete booking", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return nil
}
