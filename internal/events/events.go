package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingPlaced        = "booking_placed"
	EventBookingStatusChanged = "booking_status_changed"
	EventBookingDeleted       = "booking_deleted"
	EventRoomCreated          = "room_created"
	EventRoomUpdated          = "room_updated"
	EventRoomDeleted          = "room_deleted"
)

// BookingEventPayload is the booking snapshot handed to subscribers.
type BookingEventPayload struct {
	BookingID      int64              `json:"booking_id"`
	GuestName      string             `json:"guest_name"`
	GuestEmail     string             `json:"guest_email"`
	Status         string             `json:"status"`
	PreviousStatus string             `json:"previous_status,omitempty"`
	CheckIn        string             `json:"check_in"`
	CheckOut       string             `json:"check_out"`
	TotalCents     int64              `json:"total_cents"`
	Items          []BookingEventItem `json:"items,omitempty"`
	ChangedBy      string             `json:"changed_by,omitempty"`
}

type BookingEventItem struct {
	RoomID   int64 `json:"room_id"`
	Quantity int   `json:"quantity"`
}

// RoomEventPayload describes an inventory change made by an admin.
type RoomEventPayload struct {
	RoomID     int64  `json:"room_id"`
	Name       string `json:"name"`
	TotalUnits int    `json:"total_units"`
	PriceCents int64  `json:"price_cents"`
	ChangedBy  string `json:"changed_by,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        string
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs every subscriber synchronously and joins their errors.
// A failing handler does not stop the ones after it.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	return b.Publish(&event)
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{ID: uuid.NewString(), Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
