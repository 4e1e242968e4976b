package database

import (
	"context"
	"fmt"

	"hotelbook/internal/models"

	"github.com/Masterminds/squirrel"
)

// DashboardStats aggregates room and booking counters for the admin overview.
// Revenue counts bookings that still hold inventory.
func (db *DB) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	query, args, err := builder.Select().
		Column("COUNT(*) AS total").
		Column("COALESCE(SUM(CASE WHEN available THEN 1 ELSE 0 END), 0) AS available").
		From("rooms").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build room stats: %w", err)
	}
	var rooms struct {
		Total     int `db:"total"`
		Available int `db:"available"`
	}
	if err := db.GetContext(ctx, &rooms, query, args...); err != nil {
		return nil, persistErr("room stats", err)
	}

	active, activeArgs, err := squirrel.Eq{"status": models.ActiveStatuses}.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active predicate: %w", err)
	}
	query, args, err = builder.Select().
		Column("COUNT(*) AS total").
		Column(squirrel.Expr("COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending", models.StatusPending)).
		Column(squirrel.Expr("COALESCE(SUM(CASE WHEN "+active+" THEN total_cents ELSE 0 END), 0) AS revenue", activeArgs...)).
		From("bookings").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking stats: %w", err)
	}
	var bookings struct {
		Total   int   `db:"total"`
		Pending int   `db:"pending"`
		Revenue int64 `db:"revenue"`
	}
	if err := db.GetContext(ctx, &bookings, query, args...); err != nil {
		return nil, persistErr("booking stats", err)
	}

	recent, err := db.RecentBookings(ctx, models.RecentBookingsLimit)
	if err != nil {
		return nil, err
	}

	stats.TotalRooms = rooms.Total
	stats.AvailableRooms = rooms.Available
	stats.TotalBookings = bookings.Total
	stats.PendingBookings = bookings.Pending
	stats.RevenueCents = bookings.Revenue
	stats.RecentBookings = recent
	return stats, nil
}
