package models

import "time"

// GuestInfo identifies who a booking is for.
type GuestInfo struct {
	Name  string
	Email string
	Phone string
}

// ItemRequest asks for Quantity units of one room type.
type ItemRequest struct {
	RoomID   int64
	Quantity int
	Guests   int
}

// BookingRequest is the input of placing a multi-room booking.
type BookingRequest struct {
	Guest           GuestInfo
	CheckIn         time.Time
	CheckOut        time.Time
	SpecialRequests string
	Items           []ItemRequest
}

// AvailabilityQuery asks whether Quantity units of a room type are free.
type AvailabilityQuery struct {
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
	Quantity int
}

type AvailabilityResult struct {
	Available      bool `json:"available"`
	AvailableCount int  `json:"available_count"`
	Requested      int  `json:"requested"`
}

// RoomAvailability is a room type together with the units free for a range.
type RoomAvailability struct {
	*RoomType
	AvailableUnits int `json:"available_units"`
}

// BookingPage is one page of an admin bookings listing.
type BookingPage struct {
	Bookings []*Booking `json:"bookings"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}
