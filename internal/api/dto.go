package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"hotelbook/internal/auth"
	"hotelbook/internal/models"
)

// stringList accepts a JSON array, a string holding a JSON array, or
// comma-separated text.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("expected a list or a string")
	}
	parsed := parseStringList(raw)
	if parsed == nil {
		// present but empty clears the list; only an absent field keeps it
		parsed = []string{}
	}
	*l = parsed
	return nil
}

func parseStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return arr
		}
	}
	return splitCSV(raw)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// RoomRequest is the body of room create and update. Pointer and list fields
// left out of the JSON are nil: create fills defaults for them, update keeps
// the stored value.
type RoomRequest struct {
	Name        string     `json:"name" binding:"required"`
	Type        string     `json:"type" binding:"required"`
	Price       *float64   `json:"price"`
	Capacity    *int       `json:"capacity"`
	Description *string    `json:"description"`
	Amenities   stringList `json:"amenities"`
	Images      stringList `json:"images"`
	Videos      stringList `json:"videos"`
	Available   *bool      `json:"available"`
	TotalUnits  *int       `json:"total_units"`
	Version     int64      `json:"version"`
}

func (r *RoomRequest) toModel() *models.RoomType {
	room := &models.RoomType{
		Available:  true,
		Capacity:   2,
		TotalUnits: 1,
	}
	r.applyTo(room)
	return room
}

// applyTo overwrites room with the fields present in the request.
func (r *RoomRequest) applyTo(room *models.RoomType) {
	room.Name = r.Name
	room.Type = r.Type
	room.Version = r.Version
	if r.Price != nil {
		room.PriceCents = models.CentsFromAmount(*r.Price)
	}
	if r.Capacity != nil {
		room.Capacity = *r.Capacity
	}
	if r.Description != nil {
		room.Description = *r.Description
	}
	if r.Amenities != nil {
		room.Amenities = []string(r.Amenities)
	}
	if r.Images != nil {
		room.Images = []string(r.Images)
	}
	if r.Videos != nil {
		room.Videos = []string(r.Videos)
	}
	if r.Available != nil {
		room.Available = *r.Available
	}
	if r.TotalUnits != nil {
		room.TotalUnits = *r.TotalUnits
	}
}

type RoomResponse struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Price          float64  `json:"price"`
	Capacity       int      `json:"capacity"`
	Description    string   `json:"description"`
	Amenities      []string `json:"amenities"`
	Images         []string `json:"images"`
	Videos         []string `json:"videos"`
	Available      bool     `json:"available"`
	TotalUnits     int      `json:"total_units"`
	AvailableUnits *int     `json:"available_units,omitempty"`
	Version        int64    `json:"version"`
}

func NewRoomResponse(r *models.RoomType) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		Price:       models.AmountFromCents(r.PriceCents),
		Capacity:    r.Capacity,
		Description: r.Description,
		Amenities:   nonNil(r.Amenities),
		Images:      nonNil(r.Images),
		Videos:      nonNil(r.Videos),
		Available:   r.Available,
		TotalUnits:  r.TotalUnits,
		Version:     r.Version,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type AvailabilityRequest struct {
	RoomID   int64  `json:"room_id" binding:"required"`
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Quantity int    `json:"quantity"`
}

type BookingItemRequest struct {
	RoomID   int64 `json:"room_id" binding:"required"`
	Quantity int   `json:"quantity"`
	Guests   int   `json:"guests"`
}

// PlaceBookingRequest takes either items or a single room_id with quantity
// and guests.
type PlaceBookingRequest struct {
	GuestName       string               `json:"guest_name"`
	GuestEmail      string               `json:"guest_email"`
	GuestPhone      string               `json:"guest_phone"`
	CheckIn         string               `json:"check_in" binding:"required"`
	CheckOut        string               `json:"check_out" binding:"required"`
	SpecialRequests string               `json:"special_requests"`
	Items           []BookingItemRequest `json:"items"`
	RoomID          int64                `json:"room_id"`
	Quantity        int                  `json:"quantity"`
	Guests          int                  `json:"guests"`
}

func (r *PlaceBookingRequest) toModel(checkIn, checkOut time.Time) models.BookingRequest {
	req := models.BookingRequest{
		Guest:           models.GuestInfo{Name: r.GuestName, Email: r.GuestEmail, Phone: r.GuestPhone},
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		SpecialRequests: r.SpecialRequests,
	}
	items := r.Items
	if len(items) == 0 && r.RoomID != 0 {
		items = []BookingItemRequest{{RoomID: r.RoomID, Quantity: r.Quantity, Guests: r.Guests}}
	}
	for _, it := range items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		req.Items = append(req.Items, models.ItemRequest{RoomID: it.RoomID, Quantity: qty, Guests: it.Guests})
	}
	return req
}

type BookingItemResponse struct {
	RoomID        int64   `json:"room_id"`
	RoomName      string  `json:"room_name"`
	Quantity      int     `json:"quantity"`
	Guests        int     `json:"guests"`
	PricePerNight float64 `json:"price_per_night"`
	Subtotal      float64 `json:"subtotal"`
}

type BookingResponse struct {
	ID              int64                 `json:"id"`
	GuestName       string                `json:"guest_name"`
	GuestEmail      string                `json:"guest_email"`
	GuestPhone      string                `json:"guest_phone"`
	CheckIn         string                `json:"check_in"`
	CheckOut        string                `json:"check_out"`
	Nights          int                   `json:"nights"`
	SpecialRequests string                `json:"special_requests"`
	TotalPrice      float64               `json:"total_price"`
	Status          string                `json:"status"`
	RoomID          *int64                `json:"room_id,omitempty"`
	Guests          int                   `json:"guests,omitempty"`
	Items           []BookingItemResponse `json:"items"`
	Version         int64                 `json:"version"`
	CreatedAt       time.Time             `json:"created_at"`
}

func NewBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID,
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		GuestPhone:      b.GuestPhone,
		CheckIn:         models.FormatDate(b.CheckIn),
		CheckOut:        models.FormatDate(b.CheckOut),
		Nights:          b.Nights(),
		SpecialRequests: b.SpecialRequests,
		TotalPrice:      models.AmountFromCents(b.TotalCents),
		Status:          b.Status,
		RoomID:          b.RoomID,
		Guests:          b.Guests,
		Items:           make([]BookingItemResponse, 0, len(b.Items)),
		Version:         b.Version,
		CreatedAt:       b.CreatedAt,
	}
	for _, it := range b.Items {
		resp.Items = append(resp.Items, BookingItemResponse{
			RoomID:        it.RoomID,
			RoomName:      it.RoomName,
			Quantity:      it.Quantity,
			Guests:        it.Guests,
			PricePerNight: models.AmountFromCents(it.PricePerNightCents),
			Subtotal:      models.AmountFromCents(it.SubtotalCents),
		})
	}
	return resp
}

func newBookingResponses(bookings []*models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, NewBookingResponse(b))
	}
	return out
}

type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Version *int64 `json:"version"`
}

type DashboardResponse struct {
	TotalRooms      int               `json:"total_rooms"`
	AvailableRooms  int               `json:"available_rooms"`
	TotalBookings   int               `json:"total_bookings"`
	PendingBookings int               `json:"pending_bookings"`
	Revenue         float64           `json:"revenue"`
	RecentBookings  []BookingResponse `json:"recent_bookings"`
}

func NewDashboardResponse(s *models.DashboardStats) DashboardResponse {
	return DashboardResponse{
		TotalRooms:      s.TotalRooms,
		AvailableRooms:  s.AvailableRooms,
		TotalBookings:   s.TotalBookings,
		PendingBookings: s.PendingBookings,
		Revenue:         models.AmountFromCents(s.RevenueCents),
		RecentBookings:  newBookingResponses(s.RecentBookings),
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AdminTag struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     AdminTag  `json:"admin"`
}

func NewLoginResponse(res *auth.LoginResult) LoginResponse {
	return LoginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
		Admin: AdminTag{
			ID:       res.Admin.ID,
			Username: res.Admin.Username,
			Email:    res.Admin.Email,
		},
	}
}
