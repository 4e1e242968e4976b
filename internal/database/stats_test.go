package database

import (
	"context"
	"testing"

	"hotelbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalRooms)
	assert.Equal(t, int64(0), empty.RevenueCents)
	assert.Empty(t, empty.RecentBookings)

	suite := createTestRoom(t, db, "Suite", 5, 30000)
	hidden := createTestRoom(t, db, "Hidden", 1, 5000)
	hidden.Available = false
	require.NoError(t, db.UpdateRoomWithVersion(ctx, hidden))

	ci, co := day(t, "2024-06-01"), day(t, "2024-06-03")
	var placed []*models.Booking
	for i := 0; i < 7; i++ {
		b := newBooking(ci, co, models.BookingItem{RoomID: suite.ID, Quantity: 1, Guests: 1})
		if i < 5 {
			require.NoError(t, db.PlaceBooking(ctx, b))
		} else {
			// two legacy pending bookings, 10000 each
			roomID := suite.ID
			b.Items = nil
			b.RoomID = &roomID
			b.TotalCents = 10000
			require.NoError(t, db.InsertLegacyBooking(ctx, b))
		}
		placed = append(placed, b)
	}
	_, err = db.UpdateBookingStatusWithVersion(ctx, placed[0].ID, placed[0].Version, models.StatusCancelled)
	require.NoError(t, err)

	stats, err := db.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRooms)
	assert.Equal(t, 1, stats.AvailableRooms)
	assert.Equal(t, 7, stats.TotalBookings)
	assert.Equal(t, 2, stats.PendingBookings)
	// four confirmed at 60000 plus two pending legacy at 10000
	assert.Equal(t, int64(4*60000+2*10000), stats.RevenueCents)
	require.Len(t, stats.RecentBookings, models.RecentBookingsLimit)
	assert.Equal(t, placed[6].ID, stats.RecentBookings[0].ID)
}
