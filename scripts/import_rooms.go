package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type importFile struct {
	Rooms          []config.RoomSeed `yaml:"rooms"`
	LegacyBookings []legacyBooking   `yaml:"legacy_bookings"`
}

// legacyBooking is one single-room booking exported from the old system.
type legacyBooking struct {
	Room       string  `yaml:"room"`
	GuestName  string  `yaml:"guest_name"`
	GuestEmail string  `yaml:"guest_email"`
	GuestPhone string  `yaml:"guest_phone"`
	CheckIn    string  `yaml:"check_in"`
	CheckOut   string  `yaml:"check_out"`
	Guests     int     `yaml:"guests"`
	Status     string  `yaml:"status"`
	TotalPrice float64 `yaml:"total_price"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run upserts room types by name, then appends legacy bookings. Existing rooms
// keep their id, so booking items and their price snapshots stay attached.
// Legacy rows are appended as is on every run.
func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		roomsPath = flag.String("rooms", "configs/config.yaml", "yaml file with rooms and legacy_bookings lists")
		dbPath    = flag.String("db", "./data/hotel.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*roomsPath)
	if err != nil {
		return fmt.Errorf("read rooms: %w", err)
	}
	var file importFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse rooms: %w", err)
	}
	if len(file.Rooms) == 0 && len(file.LegacyBookings) == 0 {
		return errors.New("no rooms or legacy bookings in yaml")
	}
	if err = config.ValidateRooms(file.Rooms); err != nil {
		return err
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, updated, err := importRooms(ctx, db, file.Rooms)
	if err != nil {
		return err
	}
	imported, err := importLegacyBookings(ctx, db, file.LegacyBookings)
	if err != nil {
		return err
	}

	fmt.Printf("done: created=%d updated=%d legacy_bookings=%d\n", created, updated, imported)
	return nil
}

func importRooms(ctx context.Context, db *database.DB, seeds []config.RoomSeed) (created, updated int, err error) {
	for _, seed := range seeds {
		room := &models.RoomType{
			Name:        seed.Name,
			Type:        seed.Type,
			PriceCents:  models.CentsFromAmount(seed.Price),
			Capacity:    max(seed.Capacity, 1),
			Description: seed.Description,
			Amenities:   seed.Amenities,
			Images:      seed.Images,
			Videos:      seed.Videos,
			Available:   true,
			TotalUnits:  max(seed.TotalUnits, 1),
		}

		existing, getErr := db.GetRoomByName(ctx, seed.Name)
		switch {
		case getErr == nil:
			room.ID = existing.ID
			room.Version = existing.Version
			room.Available = existing.Available
			if err = db.UpdateRoomWithVersion(ctx, room); err != nil {
				return created, updated, fmt.Errorf("update %s: %w", seed.Name, err)
			}
			updated++
		case errors.Is(getErr, database.ErrNotFound):
			if err = db.CreateRoom(ctx, room); err != nil {
				return created, updated, fmt.Errorf("create %s: %w", seed.Name, err)
			}
			created++
		default:
			return created, updated, fmt.Errorf("get %s: %w", seed.Name, getErr)
		}
	}
	return created, updated, nil
}

// importLegacyBookings stores rows through the legacy insert path, which skips
// the availability check: history is kept even where it overbooked.
func importLegacyBookings(ctx context.Context, db *database.DB, rows []legacyBooking) (int, error) {
	for i, row := range rows {
		booking, err := row.toModel(ctx, db)
		if err != nil {
			return i, fmt.Errorf("legacy booking %d: %w", i+1, err)
		}
		if err = db.InsertLegacyBooking(ctx, booking); err != nil {
			return i, fmt.Errorf("legacy booking %d: %w", i+1, err)
		}
	}
	return len(rows), nil
}

func (b legacyBooking) toModel(ctx context.Context, db *database.DB) (*models.Booking, error) {
	room, err := db.GetRoomByName(ctx, b.Room)
	if err != nil {
		return nil, fmt.Errorf("room %q: %w", b.Room, err)
	}
	checkIn, err := models.ParseDate(b.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := models.ParseDate(b.CheckOut)
	if err != nil {
		return nil, err
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("check_out %s is not after check_in %s", b.CheckOut, b.CheckIn)
	}
	status := strings.ToLower(strings.TrimSpace(b.Status))
	if status != "" && !models.IsValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", b.Status)
	}
	if strings.TrimSpace(b.GuestName) == "" {
		return nil, errors.New("guest_name is required")
	}

	roomID := room.ID
	return &models.Booking{
		GuestName:  strings.TrimSpace(b.GuestName),
		GuestEmail: strings.TrimSpace(b.GuestEmail),
		GuestPhone: strings.TrimSpace(b.GuestPhone),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalCents: models.CentsFromAmount(b.TotalPrice),
		Status:     status,
		RoomID:     &roomID,
		Guests:     max(b.Guests, 1),
	}, nil
}
