package models

import "time"

// RoomType is a bookable category of room with a fixed number of physical units.
type RoomType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	PriceCents  int64     `json:"price_cents"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	Amenities   []string  `json:"amenities"`
	Images      []string  `json:"images"`
	Videos      []string  `json:"videos"`
	Available   bool      `json:"available"`
	TotalUnits  int       `json:"total_units"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomFilter narrows room listings. Zero values mean "any".
type RoomFilter struct {
	Type          string
	AvailableOnly bool
}
