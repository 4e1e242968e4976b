package service

import (
	"context"
	"time"

	"hotelbook/internal/auth"
	"hotelbook/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetRoom(ctx context.Context, id int64) (*models.RoomType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomType), args.Error(1)
}
func (m *MockRepository) GetRoomByName(ctx context.Context, name string) (*models.RoomType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomType), args.Error(1)
}
func (m *MockRepository) ListRooms(ctx context.Context, f models.RoomFilter) ([]*models.RoomType, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RoomType), args.Error(1)
}
func (m *MockRepository) CreateRoom(ctx context.Context, r *models.RoomType) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockRepository) UpdateRoomWithVersion(ctx context.Context, r *models.RoomType) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockRepository) DeleteRoom(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockRepository) AvailableUnits(ctx context.Context, id int64, ci, co time.Time) (int, error) {
	args := m.Called(ctx, id, ci, co)
	return args.Int(0), args.Error(1)
}
func (m *MockRepository) AvailabilityByRoom(ctx context.Context, rooms []*models.RoomType, ci, co time.Time) (map[int64]int, error) {
	args := m.Called(ctx, rooms, ci, co)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}
func (m *MockRepository) PlaceBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *MockRepository) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *MockRepository) ListBookings(ctx context.Context, f models.BookingFilter) ([]*models.Booking, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Booking), args.Int(1), args.Error(2)
}
func (m *MockRepository) UpdateBookingStatusWithVersion(ctx context.Context, id, v int64, s string) (*models.Booking, error) {
	args := m.Called(ctx, id, v, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *MockRepository) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockRepository) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}
func (m *MockRepository) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return m.Called(ctx, a).Error(0)
}
func (m *MockRepository) GetAdminByUsername(ctx context.Context, u string) (*models.Admin, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}
func (m *MockRepository) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	return m.Called(ctx, id, ttl).Error(0)
}
func (m *MockTokenStore) IsRevoked(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockTokenStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

// testCapability issues a real admin capability through the JWT round trip.
func testCapability() auth.AdminCapability {
	m := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	_, claims, err := m.GenerateAccessToken(1, "admin")
	if err != nil {
		panic(err)
	}
	return auth.Grant(claims)
}

func day(s string) time.Time {
	t, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}
