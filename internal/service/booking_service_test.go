package service

import (
	"context"
	"testing"
	"time"

	"hotelbook/internal/auth"
	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestBookingService(repo *MockRepository, pub *MockEventPublisher, opts ...BookingOption) *BookingService {
	logger := zerolog.Nop()
	var publisher domain.EventPublisher
	if pub != nil {
		publisher = pub
	}
	s := NewBookingService(repo, publisher, &logger, opts...)
	s.now = func() time.Time { return day("2026-01-01").Add(10 * time.Hour) }
	return s
}

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		Guest:    models.GuestInfo{Name: "Ann Guest", Email: "ann@example.com", Phone: "+100200300"},
		CheckIn:  day("2026-01-10"),
		CheckOut: day("2026-01-12"),
		Items:    []models.ItemRequest{{RoomID: 1, Quantity: 2, Guests: 3}},
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	ci, co := day("2026-01-10"), day("2026-01-12")

	t.Run("defaults quantity to one", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("AvailableUnits", ctx, int64(1), ci, co).Return(2, nil)
		s := newTestBookingService(repo, nil)

		res, err := s.CheckAvailability(ctx, models.AvailabilityQuery{RoomID: 1, CheckIn: ci, CheckOut: co})
		require.NoError(t, err)
		assert.Equal(t, models.AvailabilityResult{Available: true, AvailableCount: 2, Requested: 1}, *res)
	})

	t.Run("not enough units", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("AvailableUnits", ctx, int64(1), ci, co).Return(1, nil)
		s := newTestBookingService(repo, nil)

		res, err := s.CheckAvailability(ctx, models.AvailabilityQuery{RoomID: 1, CheckIn: ci, CheckOut: co, Quantity: 2})
		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.Equal(t, 1, res.AvailableCount)
	})

	t.Run("unknown room has nothing free", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("AvailableUnits", ctx, int64(99), ci, co).Return(0, database.ErrNotFound)
		s := newTestBookingService(repo, nil)

		res, err := s.CheckAvailability(ctx, models.AvailabilityQuery{RoomID: 99, CheckIn: ci, CheckOut: co})
		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.Equal(t, 0, res.AvailableCount)
	})

	t.Run("inverted range", func(t *testing.T) {
		s := newTestBookingService(new(MockRepository), nil)
		_, err := s.CheckAvailability(ctx, models.AvailabilityQuery{RoomID: 1, CheckIn: co, CheckOut: ci})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestBookingService_PlaceBooking(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	pub := new(MockEventPublisher)
	s := newTestBookingService(repo, pub)

	repo.On("GetRoom", ctx, int64(1)).Return(&models.RoomType{ID: 1, Name: "Standard", Capacity: 2}, nil)
	repo.On("PlaceBooking", ctx, mock.AnythingOfType("*models.Booking")).
		Run(func(args mock.Arguments) {
			b := args.Get(1).(*models.Booking)
			b.ID = 42
			b.Status = models.StatusConfirmed
			b.TotalCents = 40000
		}).
		Return(nil)
	pub.On("PublishJSON", events.EventBookingPlaced, mock.MatchedBy(func(p events.BookingEventPayload) bool {
		return p.BookingID == 42 && len(p.Items) == 1 && p.Items[0].Quantity == 2
	})).Return(nil)

	booking, err := s.PlaceBooking(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(42), booking.ID)
	assert.Equal(t, "ann@example.com", booking.GuestEmail)
	require.Len(t, booking.Items, 1)
	assert.Equal(t, 2, booking.Items[0].Quantity)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestBookingService_PlaceBooking_Validation(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(r *models.BookingRequest)
		field string
	}{
		{"missing name", func(r *models.BookingRequest) { r.Guest.Name = " " }, "guest_name"},
		{"bad email", func(r *models.BookingRequest) { r.Guest.Email = "not-an-email" }, "guest_email"},
		{"missing phone", func(r *models.BookingRequest) { r.Guest.Phone = "" }, "guest_phone"},
		{"check-out not after check-in", func(r *models.BookingRequest) { r.CheckOut = r.CheckIn }, "check_out"},
		{"no items", func(r *models.BookingRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *models.BookingRequest) { r.Items[0].Quantity = 0 }, "quantity"},
		{"missing room", func(r *models.BookingRequest) { r.Items[0].RoomID = 0 }, "room_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			s := newTestBookingService(repo, nil)
			req := validRequest()
			tt.mut(&req)

			_, err := s.PlaceBooking(context.Background(), req)
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			repo.AssertNotCalled(t, "PlaceBooking", mock.Anything, mock.Anything)
		})
	}
}

func TestBookingService_PlaceBooking_HouseRules(t *testing.T) {
	ctx := context.Background()
	past := func(r *models.BookingRequest) {
		r.CheckIn = day("2025-12-20")
		r.CheckOut = day("2025-12-22")
	}
	long := func(r *models.BookingRequest) { r.CheckOut = r.CheckIn.AddDate(0, 0, 150) }

	t.Run("OffByDefault", func(t *testing.T) {
		for _, mut := range []func(*models.BookingRequest){past, long} {
			repo := new(MockRepository)
			s := newTestBookingService(repo, nil)
			repo.On("GetRoom", ctx, int64(1)).Return(&models.RoomType{ID: 1, Name: "Standard", Capacity: 2}, nil)
			repo.On("PlaceBooking", ctx, mock.Anything).Return(nil)

			req := validRequest()
			mut(&req)
			_, err := s.PlaceBooking(ctx, req)
			require.NoError(t, err)
			repo.AssertCalled(t, "PlaceBooking", ctx, mock.Anything)
		}
	})

	t.Run("Enabled", func(t *testing.T) {
		rules := WithBookingRules(config.BookingConfig{MaxNights: 90, RejectPast: true})
		cases := map[string]struct {
			mut   func(*models.BookingRequest)
			field string
		}{
			"past": {past, "check_in"},
			"long": {long, "check_out"},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				repo := new(MockRepository)
				s := newTestBookingService(repo, nil, rules)
				req := validRequest()
				tc.mut(&req)

				_, err := s.PlaceBooking(ctx, req)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.field, verr.Field)
				repo.AssertNotCalled(t, "PlaceBooking", mock.Anything, mock.Anything)
			})
		}
	})
}

func TestBookingService_PlaceBooking_TooManyGuests(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestBookingService(repo, nil)
	repo.On("GetRoom", ctx, int64(1)).Return(&models.RoomType{ID: 1, Name: "Standard", Capacity: 2}, nil)

	req := validRequest()
	req.Items[0].Guests = 5

	_, err := s.PlaceBooking(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "PlaceBooking", mock.Anything, mock.Anything)
}

func TestBookingService_PlaceBooking_Conflict(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	pub := new(MockEventPublisher)
	s := newTestBookingService(repo, pub)

	repo.On("GetRoom", ctx, int64(1)).Return(&models.RoomType{ID: 1, Name: "Standard", Capacity: 2}, nil)
	repo.On("PlaceBooking", ctx, mock.Anything).
		Return(&database.AvailabilityError{RoomID: 1, RoomName: "Standard", Requested: 2, Available: 1})

	_, err := s.PlaceBooking(ctx, validRequest())
	require.ErrorIs(t, err, database.ErrNotAvailable)
	var conflict *database.AvailabilityError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.Shortfall())
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestBookingService_AdminRequiresCapability(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestBookingService(repo, nil)
	none := auth.AdminCapability{}

	_, err := s.ListBookings(ctx, none, "", 1, 10)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = s.UpdateStatus(ctx, none, 1, nil, models.StatusCancelled)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.ErrorIs(t, s.DeleteBooking(ctx, none, 1), auth.ErrForbidden)
	_, err = s.Dashboard(ctx, none)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = s.AllBookings(ctx, none, "")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	repo.AssertNotCalled(t, "ListBookings", mock.Anything, mock.Anything)
}

func TestBookingService_ListBookings_Paging(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestBookingService(repo, nil)
	adminCap := testCapability()

	repo.On("ListBookings", ctx, models.BookingFilter{Status: models.StatusPending, Limit: 10, Offset: 10}).
		Return([]*models.Booking{{ID: 11}}, 11, nil)
	repo.On("ListBookings", ctx, models.BookingFilter{Limit: models.MaxPageSize, Offset: 0}).
		Return([]*models.Booking{}, 0, nil)

	page, err := s.ListBookings(ctx, adminCap, models.StatusPending, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Bookings, 1)

	page, err = s.ListBookings(ctx, adminCap, "", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, models.MaxPageSize, page.PageSize)
	assert.Equal(t, 1, page.Page)

	_, err = s.ListBookings(ctx, adminCap, "archived", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	pub := new(MockEventPublisher)
	s := newTestBookingService(repo, pub)
	adminCap := testCapability()

	current := &models.Booking{ID: 7, Status: models.StatusConfirmed, Version: 3}
	updated := &models.Booking{ID: 7, Status: models.StatusCancelled, Version: 4}
	repo.On("GetBooking", ctx, int64(7)).Return(current, nil)
	repo.On("UpdateBookingStatusWithVersion", ctx, int64(7), int64(3), models.StatusCancelled).Return(updated, nil)
	pub.On("PublishJSON", events.EventBookingStatusChanged, mock.MatchedBy(func(p events.BookingEventPayload) bool {
		return p.PreviousStatus == models.StatusConfirmed && p.Status == models.StatusCancelled && p.ChangedBy == "admin"
	})).Return(nil)

	got, err := s.UpdateStatus(ctx, adminCap, 7, nil, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Version)
	pub.AssertExpectations(t)

	_, err = s.UpdateStatus(ctx, adminCap, 7, nil, "archived")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookingService_UpdateStatus_StaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestBookingService(repo, nil)

	stale := int64(1)
	repo.On("GetBooking", ctx, int64(7)).Return(&models.Booking{ID: 7, Status: models.StatusPending, Version: 2}, nil)
	repo.On("UpdateBookingStatusWithVersion", ctx, int64(7), stale, models.StatusConfirmed).
		Return(nil, database.ErrConcurrentModification)

	_, err := s.UpdateStatus(ctx, testCapability(), 7, &stale, models.StatusConfirmed)
	assert.ErrorIs(t, err, database.ErrConcurrentModification)
}

func TestBookingService_DeleteBooking(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	pub := new(MockEventPublisher)
	s := newTestBookingService(repo, pub)
	adminCap := testCapability()

	repo.On("GetBooking", ctx, int64(5)).Return(&models.Booking{ID: 5, Status: models.StatusPending}, nil)
	repo.On("DeleteBooking", ctx, int64(5)).Return(nil)
	repo.On("GetBooking", ctx, int64(6)).Return(nil, database.ErrNotFound)
	pub.On("PublishJSON", events.EventBookingDeleted, mock.Anything).Return(nil)

	require.NoError(t, s.DeleteBooking(ctx, adminCap, 5))
	assert.ErrorIs(t, s.DeleteBooking(ctx, adminCap, 6), database.ErrNotFound)
	repo.AssertNumberOfCalls(t, "DeleteBooking", 1)
}
