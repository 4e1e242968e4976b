package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotelbook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	bookingsPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_placed_total",
			Help:      "Bookings committed successfully.",
		},
	)

	unitsBooked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_booked_total",
			Help:      "Room units reserved by committed bookings, per room type.",
		},
		[]string{"room_id"},
	)

	availabilityConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_conflicts_total",
			Help:      "Booking attempts rejected for lack of units, per room type.",
		},
		[]string{"room_id"},
	)

	bookingStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_changes_total",
			Help:      "Admin booking status transitions by target status.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			bookingsPlaced,
			unitsBooked,
			availabilityConflicts,
			bookingStatusChanges,
		)
	})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// IncBookingPlaced counts a committed booking and the units it holds per room.
func IncBookingPlaced(unitsByRoom map[int64]int) {
	bookingsPlaced.Inc()
	for roomID, units := range unitsByRoom {
		unitsBooked.WithLabelValues(strconv.FormatInt(roomID, 10)).Add(float64(units))
	}
}

// IncAvailabilityConflict counts a rejected booking attempt.
func IncAvailabilityConflict(roomID int64) {
	availabilityConflicts.WithLabelValues(strconv.FormatInt(roomID, 10)).Inc()
}

// IncStatusChange counts an admin status transition.
func IncStatusChange(status string) {
	bookingStatusChanges.WithLabelValues(status).Inc()
}
