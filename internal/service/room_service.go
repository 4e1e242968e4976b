package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"hotelbook/internal/auth"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

// RoomService serves the public catalogue from an in-memory copy of the
// offered room types and runs admin inventory changes against the store.
type RoomService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	rooms    []*models.RoomType
	roomsMap map[int64]*models.RoomType
	mu       sync.RWMutex
}

func NewRoomService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *RoomService {
	return &RoomService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		roomsMap: make(map[int64]*models.RoomType),
	}
}

// ListRooms returns offered room types, optionally of one type.
func (s *RoomService) ListRooms(ctx context.Context, roomType string) ([]*models.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.RoomType, 0, len(s.rooms))
	for _, room := range s.rooms {
		if roomType != "" && !strings.EqualFold(room.Type, roomType) {
			continue
		}
		out = append(out, room)
	}
	return out, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id int64) (*models.RoomType, error) {
	s.mu.RLock()
	room, ok := s.roomsMap[id]
	s.mu.RUnlock()
	if ok {
		return room, nil
	}
	return s.repo.GetRoom(ctx, id)
}

// ListRoomsWithAvailability adds the units free over [checkIn, checkOut) to
// every offered room type.
func (s *RoomService) ListRoomsWithAvailability(ctx context.Context, roomType string, checkIn, checkOut time.Time) ([]models.RoomAvailability, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return nil, err
	}
	rooms, err := s.ListRooms(ctx, roomType)
	if err != nil {
		return nil, err
	}

	free, err := s.repo.AvailabilityByRoom(ctx, rooms, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	out := make([]models.RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, models.RoomAvailability{RoomType: room, AvailableUnits: free[room.ID]})
	}
	return out, nil
}

// AllRooms lists every room type, offered or not.
func (s *RoomService) AllRooms(ctx context.Context, capability auth.AdminCapability) ([]*models.RoomType, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}
	return s.repo.ListRooms(ctx, models.RoomFilter{})
}

func (s *RoomService) CreateRoom(ctx context.Context, capability auth.AdminCapability, room *models.RoomType) error {
	if err := capability.Check(); err != nil {
		return err
	}
	normalizeRoom(room)
	if err := validateRoom(room); err != nil {
		return err
	}
	if err := s.ensureUniqueName(ctx, room); err != nil {
		return err
	}

	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return err
	}

	s.logger.Info().Int64("room_id", room.ID).Str("name", room.Name).Str("admin", capability.Username()).Msg("room created")
	s.publishEvent(events.EventRoomCreated, room, capability.Username())
	s.refreshCatalogue(ctx)
	return nil
}

// UpdateRoom overwrites a room type. A zero Version means "whatever is
// stored now"; otherwise a stale version fails with
// database.ErrConcurrentModification.
func (s *RoomService) UpdateRoom(ctx context.Context, capability auth.AdminCapability, room *models.RoomType) error {
	if err := capability.Check(); err != nil {
		return err
	}
	normalizeRoom(room)
	if err := validateRoom(room); err != nil {
		return err
	}

	current, err := s.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return err
	}
	if room.Version == 0 {
		room.Version = current.Version
	}
	room.CreatedAt = current.CreatedAt
	if err := s.ensureUniqueName(ctx, room); err != nil {
		return err
	}

	if err := s.repo.UpdateRoomWithVersion(ctx, room); err != nil {
		return err
	}

	s.logger.Info().Int64("room_id", room.ID).Int64("version", room.Version).Str("admin", capability.Username()).Msg("room updated")
	s.publishEvent(events.EventRoomUpdated, room, capability.Username())
	s.refreshCatalogue(ctx)
	return nil
}

// DeleteRoom removes a room type; the store refuses while active bookings
// reference it.
func (s *RoomService) DeleteRoom(ctx context.Context, capability auth.AdminCapability, id int64) error {
	if err := capability.Check(); err != nil {
		return err
	}
	room, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRoom(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("room_id", id).Str("admin", capability.Username()).Msg("room deleted")
	s.publishEvent(events.EventRoomDeleted, room, capability.Username())
	s.refreshCatalogue(ctx)
	return nil
}

// Refresh reloads the offered room types from the store.
func (s *RoomService) Refresh(ctx context.Context) error {
	rooms, err := s.repo.ListRooms(ctx, models.RoomFilter{AvailableOnly: true})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = rooms
	s.roomsMap = make(map[int64]*models.RoomType, len(rooms))
	for _, room := range rooms {
		s.roomsMap[room.ID] = room
	}
	return nil
}

// refreshCatalogue reloads the cache after a committed write. A failure only
// leaves the cache stale until the next refresh, so it is logged, not returned.
func (s *RoomService) refreshCatalogue(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to refresh room catalogue")
	}
}

func (s *RoomService) ensureUniqueName(ctx context.Context, room *models.RoomType) error {
	existing, err := s.repo.GetRoomByName(ctx, room.Name)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != room.ID:
		return invalid("name", "room %q already exists", room.Name)
	}
	return nil
}

func (s *RoomService) publishEvent(eventType string, room *models.RoomType, changedBy string) {
	if s.eventBus == nil {
		return
	}
	payload := events.RoomEventPayload{
		RoomID:     room.ID,
		Name:       room.Name,
		TotalUnits: room.TotalUnits,
		PriceCents: room.PriceCents,
		ChangedBy:  changedBy,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("room_id", room.ID).Msg("publish event error")
	}
}

func normalizeRoom(room *models.RoomType) {
	room.Name = strings.TrimSpace(room.Name)
	room.Type = strings.TrimSpace(room.Type)
	room.Description = strings.TrimSpace(room.Description)
	room.Amenities = compact(room.Amenities)
	room.Images = compact(room.Images)
	room.Videos = compact(room.Videos)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func validateRoom(room *models.RoomType) error {
	switch {
	case room.Name == "":
		return invalid("name", "is required")
	case room.Type == "":
		return invalid("type", "is required")
	case room.PriceCents < 0:
		return invalid("price", "must not be negative")
	case room.Capacity < 1:
		return invalid("capacity", "must be at least 1")
	case room.TotalUnits < 1:
		return invalid("total_units", "must be at least 1")
	}
	return nil
}
