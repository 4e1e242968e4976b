package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ActiveStatuses are the booking states that hold inventory.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

const (
	// DateLayout is the storage and wire format for stay dates.
	DateLayout = "2006-01-02"

	// RecentBookingsLimit is how many bookings the admin dashboard shows.
	RecentBookingsLimit = 5

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// IsValidStatus reports whether s is a known booking status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// IsActiveStatus reports whether a booking in status s occupies units.
func IsActiveStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed
}
