package models

import "time"

// Booking is a guest reservation. Itemised bookings carry Items; legacy
// single-room bookings carry RoomID and Guests and no items.
type Booking struct {
	ID              int64         `json:"id"`
	GuestName       string        `json:"guest_name"`
	GuestEmail      string        `json:"guest_email"`
	GuestPhone      string        `json:"guest_phone"`
	CheckIn         time.Time     `json:"check_in"`
	CheckOut        time.Time     `json:"check_out"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	TotalCents      int64         `json:"total_cents"`
	Status          string        `json:"status"`
	RoomID          *int64        `json:"room_id,omitempty"`
	Guests          int           `json:"guests,omitempty"`
	Items           []BookingItem `json:"items"`
	Version         int64         `json:"version"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// BookingItem reserves Quantity units of one room type inside a booking.
// PricePerNightCents is the room price at the moment the booking was placed.
type BookingItem struct {
	ID                 int64  `json:"id"`
	BookingID          int64  `json:"booking_id"`
	RoomID             int64  `json:"room_id"`
	RoomName           string `json:"room_name"`
	Quantity           int    `json:"quantity"`
	Guests             int    `json:"guests"`
	PricePerNightCents int64  `json:"price_per_night_cents"`
	SubtotalCents      int64  `json:"subtotal_cents"`
}

// Stay is the normalised inventory claim of a booking: Quantity units of
// RoomID over [CheckIn, CheckOut).
type Stay struct {
	RoomID   int64
	Quantity int
	CheckIn  time.Time
	CheckOut time.Time
}

// IsLegacy reports whether the booking predates itemisation.
func (b *Booking) IsLegacy() bool {
	return len(b.Items) == 0 && b.RoomID != nil
}

// IsActive reports whether the booking currently holds inventory.
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// Nights returns the number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

// Stays flattens the booking into per-room claims. A legacy booking yields a
// single stay of one unit.
func (b *Booking) Stays() []Stay {
	if b.IsLegacy() {
		return []Stay{{RoomID: *b.RoomID, Quantity: 1, CheckIn: b.CheckIn, CheckOut: b.CheckOut}}
	}
	stays := make([]Stay, 0, len(b.Items))
	for _, it := range b.Items {
		stays = append(stays, Stay{RoomID: it.RoomID, Quantity: it.Quantity, CheckIn: b.CheckIn, CheckOut: b.CheckOut})
	}
	return stays
}

// RequestedUnits sums item quantities per room type.
func (b *Booking) RequestedUnits() map[int64]int {
	out := make(map[int64]int)
	for _, s := range b.Stays() {
		out[s.RoomID] += s.Quantity
	}
	return out
}

// BookingFilter narrows admin booking listings.
type BookingFilter struct {
	Status string
	Limit  int
	Offset int
}
