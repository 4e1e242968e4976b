package domain

import (
	"context"
	"time"

	"hotelbook/internal/auth"
	"hotelbook/internal/models"
)

type RoomRepository interface {
	GetRoom(ctx context.Context, id int64) (*models.RoomType, error)
	GetRoomByName(ctx context.Context, name string) (*models.RoomType, error)
	ListRooms(ctx context.Context, filter models.RoomFilter) ([]*models.RoomType, error)
	CreateRoom(ctx context.Context, room *models.RoomType) error
	UpdateRoomWithVersion(ctx context.Context, room *models.RoomType) error
	DeleteRoom(ctx context.Context, id int64) error
}

type AvailabilityRepository interface {
	AvailableUnits(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error)
	AvailabilityByRoom(ctx context.Context, rooms []*models.RoomType, checkIn, checkOut time.Time) (map[int64]int, error)
}

type BookingRepository interface {
	PlaceBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, int, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	CountAdmins(ctx context.Context) (int, error)
}

// Repository is everything the services need from the store.
type Repository interface {
	RoomRepository
	AvailabilityRepository
	BookingRepository
	AdminRepository
}

// TokenStore keeps revoked capability tokens and login throttling counters.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	CheckAvailability(ctx context.Context, query models.AvailabilityQuery) (*models.AvailabilityResult, error)
	PlaceBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	LookupBooking(ctx context.Context, id int64, email string) (*models.Booking, error)
	ListBookings(ctx context.Context, capability auth.AdminCapability, status string, page, pageSize int) (*models.BookingPage, error)
	AllBookings(ctx context.Context, capability auth.AdminCapability, status string) ([]*models.Booking, error)
	UpdateStatus(ctx context.Context, capability auth.AdminCapability, id int64, version *int64, status string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, capability auth.AdminCapability, id int64) error
	Dashboard(ctx context.Context, capability auth.AdminCapability) (*models.DashboardStats, error)
}

type RoomService interface {
	ListRooms(ctx context.Context, roomType string) ([]*models.RoomType, error)
	GetRoom(ctx context.Context, id int64) (*models.RoomType, error)
	ListRoomsWithAvailability(ctx context.Context, roomType string, checkIn, checkOut time.Time) ([]models.RoomAvailability, error)
	AllRooms(ctx context.Context, capability auth.AdminCapability) ([]*models.RoomType, error)
	CreateRoom(ctx context.Context, capability auth.AdminCapability, room *models.RoomType) error
	UpdateRoom(ctx context.Context, capability auth.AdminCapability, room *models.RoomType) error
	DeleteRoom(ctx context.Context, capability auth.AdminCapability, id int64) error
}

type AuthService interface {
	Login(ctx context.Context, username, password, clientKey string) (*auth.LoginResult, error)
	Authorize(ctx context.Context, token string) (auth.AdminCapability, error)
	Logout(ctx context.Context, capability auth.AdminCapability) error
}
