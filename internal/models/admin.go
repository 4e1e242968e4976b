package models

import "time"

type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalRooms      int        `json:"total_rooms"`
	AvailableRooms  int        `json:"available_rooms"`
	TotalBookings   int        `json:"total_bookings"`
	PendingBookings int        `json:"pending_bookings"`
	RevenueCents    int64      `json:"revenue_cents"`
	RecentBookings  []*Booking `json:"recent_bookings"`
}
