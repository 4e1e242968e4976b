package database

import (
	"context"
	"errors"
	"testing"

	"hotelbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceBooking_StandardScenario(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	standard := createTestRoom(t, db, "Standard", 2, 10000)
	ci, co := day(t, "2024-06-01"), day(t, "2024-06-03")

	first := newBooking(ci, co, models.BookingItem{RoomID: standard.ID, Quantity: 1, Guests: 2})
	require.NoError(t, db.PlaceBooking(ctx, first))

	assert.NotZero(t, first.ID)
	assert.Equal(t, models.StatusConfirmed, first.Status)
	require.Len(t, first.Items, 1)
	assert.Equal(t, int64(20000), first.Items[0].SubtotalCents)
	assert.Equal(t, int64(10000), first.Items[0].PricePerNightCents)
	assert.Equal(t, int64(20000), first.TotalCents)

	left, err := db.AvailableUnits(ctx, standard.ID, ci, co)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	second := newBooking(day(t, "2024-06-02"), day(t, "2024-06-04"), models.BookingItem{RoomID: standard.ID, Quantity: 2, Guests: 4})
	err = db.PlaceBooking(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAvailable)

	var availErr *AvailabilityError
	require.True(t, errors.As(err, &availErr))
	assert.Equal(t, standard.ID, availErr.RoomID)
	assert.Equal(t, "Standard", availErr.RoomName)
	assert.Equal(t, 1, availErr.Shortfall())
	assert.Equal(t, 1, countRows(t, db, "bookings"))
}

func TestPlaceBooking_Atomicity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	suite := createTestRoom(t, db, "Suite", 5, 29999)
	family := createTestRoom(t, db, "Family", 1, 24999)
	ci, co := day(t, "2024-08-10"), day(t, "2024-08-12")

	b := newBooking(ci, co,
		models.BookingItem{RoomID: suite.ID, Quantity: 2, Guests: 4},
		models.BookingItem{RoomID: family.ID, Quantity: 2, Guests: 6},
	)
	err := db.PlaceBooking(ctx, b)
	require.ErrorIs(t, err, ErrNotAvailable)

	assert.Zero(t, b.ID)
	assert.Equal(t, 0, countRows(t, db, "bookings"))
	assert.Equal(t, 0, countRows(t, db, "booking_items"))

	left, err := db.AvailableUnits(ctx, suite.ID, ci, co)
	require.NoError(t, err)
	assert.Equal(t, 5, left)
}

func TestPlaceBooking_RepeatedRoomIsAggregated(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	room := createTestRoom(t, db, "Standard", 2, 10000)

	b := newBooking(day(t, "2024-09-01"), day(t, "2024-09-02"),
		models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1},
		models.BookingItem{RoomID: room.ID, Quantity: 2, Guests: 2},
	)
	err := db.PlaceBooking(ctx, b)

	var availErr *AvailabilityError
	require.True(t, errors.As(err, &availErr))
	assert.Equal(t, 3, availErr.Requested)
	assert.Equal(t, 2, availErr.Available)
}

func TestPlaceBooking_Failures(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ci, co := day(t, "2024-09-01"), day(t, "2024-09-02")

	t.Run("UnknownRoom", func(t *testing.T) {
		err := db.PlaceBooking(ctx, newBooking(ci, co, models.BookingItem{RoomID: 999, Quantity: 1, Guests: 1}))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("NotOffered", func(t *testing.T) {
		room := createTestRoom(t, db, "Closed", 3, 10000)
		room.Available = false
		require.NoError(t, db.UpdateRoomWithVersion(ctx, room))

		err := db.PlaceBooking(ctx, newBooking(ci, co, models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1}))
		assert.ErrorIs(t, err, ErrRoomNotOffered)
	})

	t.Run("NoItems", func(t *testing.T) {
		assert.Error(t, db.PlaceBooking(ctx, newBooking(ci, co)))
	})

	t.Run("PersistenceFailureRollsBack", func(t *testing.T) {
		room := createTestRoom(t, db, "Open", 3, 10000)
		// check_out <= check_in violates the table constraint after the
		// availability check has passed.
		err := db.PlaceBooking(ctx, newBooking(co, ci, models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.Equal(t, 0, countRows(t, db, "bookings"))
		assert.Equal(t, 0, countRows(t, db, "booking_items"))
	})
}

func TestPlaceBooking_PriceSnapshot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	room := createTestRoom(t, db, "Standard", 2, 10000)

	b := newBooking(day(t, "2024-06-01"), day(t, "2024-06-03"), models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1})
	require.NoError(t, db.PlaceBooking(ctx, b))

	room.PriceCents = 50000
	require.NoError(t, db.UpdateRoomWithVersion(ctx, room))

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(10000), got.Items[0].PricePerNightCents)
	assert.Equal(t, int64(20000), got.Items[0].SubtotalCents)
	assert.Equal(t, int64(20000), got.TotalCents)
}

func TestGetAndListBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	room := createTestRoom(t, db, "Standard", 10, 10000)

	var ids []int64
	for i := 0; i < 3; i++ {
		b := newBooking(day(t, "2024-06-01"), day(t, "2024-06-02"), models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1})
		require.NoError(t, db.PlaceBooking(ctx, b))
		ids = append(ids, b.ID)
	}
	_, err := db.UpdateBookingStatusWithVersion(ctx, ids[0], 1, models.StatusCancelled)
	require.NoError(t, err)

	t.Run("Get", func(t *testing.T) {
		got, err := db.GetBooking(ctx, ids[1])
		require.NoError(t, err)
		assert.Equal(t, "Jane Guest", got.GuestName)
		assert.Equal(t, "2024-06-01", models.FormatDate(got.CheckIn))
		require.Len(t, got.Items, 1)
		assert.Equal(t, room.ID, got.Items[0].RoomID)
		assert.Nil(t, got.RoomID)

		_, err = db.GetBooking(ctx, 12345)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListAll", func(t *testing.T) {
		all, total, err := db.ListBookings(ctx, models.BookingFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, all, 3)
		assert.Equal(t, ids[2], all[0].ID, "newest first")
		for _, b := range all {
			assert.Len(t, b.Items, 1)
		}
	})

	t.Run("ListByStatus", func(t *testing.T) {
		cancelled, total, err := db.ListBookings(ctx, models.BookingFilter{Status: models.StatusCancelled})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, cancelled, 1)
		assert.Equal(t, ids[0], cancelled[0].ID)
	})

	t.Run("Paged", func(t *testing.T) {
		page, total, err := db.ListBookings(ctx, models.BookingFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page, 1)
		assert.Equal(t, ids[0], page[0].ID)
	})

	t.Run("Recent", func(t *testing.T) {
		recent, err := db.RecentBookings(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, recent, 2)
	})
}

func TestUpdateBookingStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	room := createTestRoom(t, db, "Standard", 1, 10000)
	ci, co := day(t, "2024-06-01"), day(t, "2024-06-03")

	first := newBooking(ci, co, models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1})
	require.NoError(t, db.PlaceBooking(ctx, first))

	t.Run("StaleVersion", func(t *testing.T) {
		_, err := db.UpdateBookingStatusWithVersion(ctx, first.ID, 99, models.StatusCancelled)
		assert.ErrorIs(t, err, ErrConcurrentModification)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := db.UpdateBookingStatusWithVersion(ctx, 999, 1, models.StatusCancelled)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	cancelled, err := db.UpdateBookingStatusWithVersion(ctx, first.ID, first.Version, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cancelled.Version)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	second := newBooking(ci, co, models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1})
	require.NoError(t, db.PlaceBooking(ctx, second))

	t.Run("ReactivationBlockedWhenSoldOut", func(t *testing.T) {
		_, err := db.UpdateBookingStatusWithVersion(ctx, first.ID, cancelled.Version, models.StatusConfirmed)
		var availErr *AvailabilityError
		require.True(t, errors.As(err, &availErr))
		assert.Equal(t, 1, availErr.Shortfall())

		still, err := db.GetBooking(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, still.Status)
	})

	t.Run("ReactivationAfterRelease", func(t *testing.T) {
		_, err := db.UpdateBookingStatusWithVersion(ctx, second.ID, second.Version, models.StatusCancelled)
		require.NoError(t, err)

		restored, err := db.UpdateBookingStatusWithVersion(ctx, first.ID, cancelled.Version, models.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, restored.Status)
		assert.Equal(t, int64(3), restored.Version)
	})
}

func TestDeleteBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	room := createTestRoom(t, db, "Standard", 2, 10000)
	ci, co := day(t, "2024-06-01"), day(t, "2024-06-03")

	b := newBooking(ci, co,
		models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1},
		models.BookingItem{RoomID: room.ID, Quantity: 1, Guests: 1},
	)
	require.NoError(t, db.PlaceBooking(ctx, b))
	assert.Equal(t, 2, countRows(t, db, "booking_items"))

	require.NoError(t, db.DeleteBooking(ctx, b.ID))
	assert.Equal(t, 0, countRows(t, db, "bookings"))
	assert.Equal(t, 0, countRows(t, db, "booking_items"))

	left, err := db.AvailableUnits(ctx, room.ID, ci, co)
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	assert.ErrorIs(t, db.DeleteBooking(ctx, b.ID), ErrNotFound)
}

func TestInsertLegacyBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	room := createTestRoom(t, db, "Standard", 2, 10000)

	assert.Error(t, db.InsertLegacyBooking(ctx, &models.Booking{GuestName: "x", GuestEmail: "x@example.com"}))

	roomID := room.ID
	legacy := &models.Booking{
		GuestName: "Legacy", GuestEmail: "legacy@example.com",
		CheckIn: day(t, "2024-06-01"), CheckOut: day(t, "2024-06-02"),
		RoomID: &roomID, Guests: 2, TotalCents: 10000,
	}
	require.NoError(t, db.InsertLegacyBooking(ctx, legacy))
	assert.Equal(t, models.StatusPending, legacy.Status)

	got, err := db.GetBooking(ctx, legacy.ID)
	require.NoError(t, err)
	require.True(t, got.IsLegacy())
	assert.Equal(t, room.ID, *got.RoomID)
	assert.Empty(t, got.Items)
	assert.Equal(t, []models.Stay{{RoomID: room.ID, Quantity: 1, CheckIn: got.CheckIn, CheckOut: got.CheckOut}}, got.Stays())
}
