package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"hotelbook/internal/auth"
	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	rules    config.BookingConfig
	now      func() time.Time
}

type BookingOption func(*BookingService)

// WithBookingRules turns on the optional house rules. Without it any
// well-formed range is accepted.
func WithBookingRules(rules config.BookingConfig) BookingOption {
	return func(s *BookingService) {
		s.rules = rules
	}
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger, opts ...BookingOption) *BookingService {
	s := &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckAvailability answers whether the requested number of units is free.
// An unknown room type is reported as having nothing free.
func (s *BookingService) CheckAvailability(ctx context.Context, query models.AvailabilityQuery) (*models.AvailabilityResult, error) {
	if query.Quantity <= 0 {
		query.Quantity = 1
	}
	if err := validateRange(query.CheckIn, query.CheckOut); err != nil {
		return nil, err
	}

	free, err := s.repo.AvailableUnits(ctx, query.RoomID, query.CheckIn, query.CheckOut)
	if errors.Is(err, database.ErrNotFound) {
		free = 0
	} else if err != nil {
		return nil, err
	}

	return &models.AvailabilityResult{
		Available:      free >= query.Quantity,
		AvailableCount: free,
		Requested:      query.Quantity,
	}, nil
}

// PlaceBooking validates the request and commits it. Availability is checked
// again by the store inside the write transaction.
func (s *BookingService) PlaceBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		GuestName:       strings.TrimSpace(req.Guest.Name),
		GuestEmail:      strings.TrimSpace(req.Guest.Email),
		GuestPhone:      strings.TrimSpace(req.Guest.Phone),
		CheckIn:         models.TruncateDate(req.CheckIn),
		CheckOut:        models.TruncateDate(req.CheckOut),
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		Items:           make([]models.BookingItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		booking.Items = append(booking.Items, models.BookingItem{
			RoomID:   it.RoomID,
			Quantity: it.Quantity,
			Guests:   it.Guests,
		})
	}

	if err := s.checkCapacity(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.repo.PlaceBooking(ctx, booking); err != nil {
		var conflict *database.AvailabilityError
		if errors.As(err, &conflict) {
			metrics.IncAvailabilityConflict(conflict.RoomID)
			s.logger.Info().
				Int64("room_id", conflict.RoomID).
				Int("requested", conflict.Requested).
				Int("available", conflict.Available).
				Msg("booking rejected: not enough units")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("guest_email", booking.GuestEmail).
		Str("total", models.FormatCents(booking.TotalCents)).
		Msg("booking placed")
	s.publishEvent(events.EventBookingPlaced, booking, "", "guest")

	return booking, nil
}

// LookupBooking returns a booking to its guest. The email has to match the
// one on the booking; a mismatch is reported like an unknown id.
func (s *BookingService) LookupBooking(ctx context.Context, id int64, email string) (*models.Booking, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(booking.GuestEmail, email) {
		return nil, database.ErrNotFound
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, capability auth.AdminCapability, status string, page, pageSize int) (*models.BookingPage, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}
	if status != "" && !models.IsValidStatus(status) {
		return nil, invalid("status", "unknown status %q", status)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}
	pageSize = min(pageSize, models.MaxPageSize)

	bookings, total, err := s.repo.ListBookings(ctx, models.BookingFilter{
		Status: status,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	return &models.BookingPage{
		Bookings: bookings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// AllBookings returns every booking with the given status, for export.
func (s *BookingService) AllBookings(ctx context.Context, capability auth.AdminCapability, status string) ([]*models.Booking, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}
	if status != "" && !models.IsValidStatus(status) {
		return nil, invalid("status", "unknown status %q", status)
	}
	bookings, _, err := s.repo.ListBookings(ctx, models.BookingFilter{Status: status})
	return bookings, err
}

// UpdateStatus moves a booking to status. When version is nil the current
// version is used, otherwise a stale version fails with
// database.ErrConcurrentModification.
func (s *BookingService) UpdateStatus(ctx context.Context, capability auth.AdminCapability, id int64, version *int64, status string) (*models.Booking, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}
	if !models.IsValidStatus(status) {
		return nil, invalid("status", "unknown status %q", status)
	}

	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	fromVersion := current.Version
	if version != nil {
		fromVersion = *version
	}
	if current.Status == status && fromVersion == current.Version {
		return current, nil
	}

	updated, err := s.repo.UpdateBookingStatusWithVersion(ctx, id, fromVersion, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", id).
		Str("from", current.Status).
		Str("to", status).
		Str("admin", capability.Username()).
		Msg("booking status changed")
	s.publishEvent(events.EventBookingStatusChanged, updated, current.Status, capability.Username())

	return updated, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, capability auth.AdminCapability, id int64) error {
	if err := capability.Check(); err != nil {
		return err
	}
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("booking_id", id).Str("admin", capability.Username()).Msg("booking deleted")
	s.publishEvent(events.EventBookingDeleted, booking, "", capability.Username())
	return nil
}

func (s *BookingService) Dashboard(ctx context.Context, capability auth.AdminCapability) (*models.DashboardStats, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}
	return s.repo.DashboardStats(ctx)
}

func (s *BookingService) validateRequest(req models.BookingRequest) error {
	if strings.TrimSpace(req.Guest.Name) == "" {
		return invalid("guest_name", "is required")
	}
	email := strings.TrimSpace(req.Guest.Email)
	if email == "" {
		return invalid("guest_email", "is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return invalid("guest_email", "is not a valid email address")
	}
	if strings.TrimSpace(req.Guest.Phone) == "" {
		return invalid("guest_phone", "is required")
	}

	if err := validateRange(req.CheckIn, req.CheckOut); err != nil {
		return err
	}
	if s.rules.RejectPast && models.TruncateDate(req.CheckIn).Before(models.TruncateDate(s.now())) {
		return invalid("check_in", "must not be in the past")
	}
	if s.rules.MaxNights > 0 && models.Nights(req.CheckIn, req.CheckOut) > s.rules.MaxNights {
		return invalid("check_out", "stay cannot exceed %d nights", s.rules.MaxNights)
	}

	if len(req.Items) == 0 {
		return invalid("items", "at least one room is required")
	}
	for _, it := range req.Items {
		if it.RoomID <= 0 {
			return invalid("room_id", "is required")
		}
		if it.Quantity < 1 {
			return invalid("quantity", "must be at least 1")
		}
		if it.Guests < 0 {
			return invalid("guests", "must not be negative")
		}
	}
	return nil
}

// checkCapacity makes sure the guests on each room type fit into the units
// asked for.
func (s *BookingService) checkCapacity(ctx context.Context, booking *models.Booking) error {
	guests := make(map[int64]int)
	for _, it := range booking.Items {
		guests[it.RoomID] += it.Guests
	}
	units := booking.RequestedUnits()

	for roomID, count := range guests {
		if count == 0 {
			continue
		}
		room, err := s.repo.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if count > room.Capacity*units[roomID] {
			return invalid("guests", "%d guests do not fit into %d x %s (capacity %d)",
				count, units[roomID], room.Name, room.Capacity)
		}
	}
	return nil
}

func validateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() {
		return invalid("check_in", "is required")
	}
	if checkOut.IsZero() {
		return invalid("check_out", "is required")
	}
	if !models.TruncateDate(checkIn).Before(models.TruncateDate(checkOut)) {
		return invalid("check_out", "must be after check-in")
	}
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, previousStatus, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:      booking.ID,
		GuestName:      booking.GuestName,
		GuestEmail:     booking.GuestEmail,
		Status:         booking.Status,
		PreviousStatus: previousStatus,
		CheckIn:        models.FormatDate(booking.CheckIn),
		CheckOut:       models.FormatDate(booking.CheckOut),
		TotalCents:     booking.TotalCents,
		ChangedBy:      changedBy,
	}
	for _, st := range booking.Stays() {
		payload.Items = append(payload.Items, events.BookingEventItem{RoomID: st.RoomID, Quantity: st.Quantity})
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
