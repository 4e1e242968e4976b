package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func createTestRoom(t *testing.T, db *DB, name string, units int, priceCents int64) *models.RoomType {
	t.Helper()
	room := &models.RoomType{
		Name:       name,
		Type:       name,
		PriceCents: priceCents,
		Capacity:   2,
		Amenities:  []string{"WiFi"},
		Available:  true,
		TotalUnits: units,
	}
	require.NoError(t, db.CreateRoom(context.Background(), room))
	return room
}

func newBooking(checkIn, checkOut time.Time, items ...models.BookingItem) *models.Booking {
	return &models.Booking{
		GuestName:  "Jane Guest",
		GuestEmail: "jane@example.com",
		GuestPhone: "+100000000",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Items:      items,
	}
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestNewDB(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		db := setupTestDB(t)
		for _, table := range []string{"rooms", "bookings", "booking_items", "admins", "booking_stays"} {
			assert.Equal(t, 0, countRows(t, db, table), table)
		}
	})

	t.Run("FileReopenIsIdempotent", func(t *testing.T) {
		logger := zerolog.Nop()
		path := filepath.Join(t.TempDir(), "nested", "hotel.db")

		db, err := NewDB(path, &logger)
		require.NoError(t, err)
		room := createTestRoom(t, db, "Suite", 1, 100)
		require.NoError(t, db.Close())

		db, err = NewDB(path, &logger, WithBusyTimeout(time.Second))
		require.NoError(t, err)
		defer db.Close()

		got, err := db.GetRoom(context.Background(), room.ID)
		require.NoError(t, err)
		assert.Equal(t, "Suite", got.Name)
	})

	t.Run("ColumnsMigrated", func(t *testing.T) {
		db := setupTestDB(t)
		ctx := context.Background()
		for _, m := range columnMigrations {
			ok, err := db.columnExists(ctx, m.table, m.column)
			require.NoError(t, err)
			assert.True(t, ok, "%s.%s", m.table, m.column)
		}
	})

	t.Run("ForeignKeysEnabled", func(t *testing.T) {
		db := setupTestDB(t)
		var on int
		require.NoError(t, db.GetContext(context.Background(), &on, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, on)
	})
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", buildDSN(":memory:", 5*time.Second))
	assert.Equal(t, "file:x.db?mode=rwc&_txlock=immediate&_busy_timeout=250&_foreign_keys=on", buildDSN("file:x.db?mode=rwc", 250*time.Millisecond))
}
