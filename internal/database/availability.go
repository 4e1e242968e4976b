package database

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"hotelbook/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// activeOverlap selects stays that hold inventory during [checkIn, checkOut).
func activeOverlap(checkIn, checkOut time.Time) squirrel.And {
	return squirrel.And{
		squirrel.Eq{"status": models.ActiveStatuses},
		squirrel.Lt{"check_in": models.FormatDate(checkOut)},
		squirrel.Gt{"check_out": models.FormatDate(checkIn)},
	}
}

func bookedUnits(ctx context.Context, q querier, roomID int64, checkIn, checkOut time.Time) (int, error) {
	query, args, err := builder.Select("COALESCE(SUM(quantity), 0)").
		From("booking_stays").
		Where(squirrel.Eq{"room_id": roomID}).
		Where(activeOverlap(checkIn, checkOut)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build booked units query: %w", err)
	}

	var booked int
	if err := sqlx.GetContext(ctx, q, &booked, query, args...); err != nil {
		return 0, persistErr("count booked units", err)
	}
	return booked, nil
}

func availableUnits(ctx context.Context, q querier, room *models.RoomType, checkIn, checkOut time.Time) (int, error) {
	booked, err := bookedUnits(ctx, q, room.ID, checkIn, checkOut)
	if err != nil {
		return 0, err
	}
	return max(0, room.TotalUnits-booked), nil
}

// AvailableUnits returns how many units of a room type are free for every
// night of [checkIn, checkOut). Unknown rooms yield ErrNotFound.
func (db *DB) AvailableUnits(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	room, err := getRoom(ctx, db, roomID)
	if err != nil {
		return 0, err
	}
	return availableUnits(ctx, db, room, checkIn, checkOut)
}

// BookedUnits returns the units held by pending and confirmed bookings that
// overlap the range.
func (db *DB) BookedUnits(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	return bookedUnits(ctx, db, roomID, checkIn, checkOut)
}

// AvailabilityByRoom computes free units for each given room type in a single
// grouped query.
func (db *DB) AvailabilityByRoom(ctx context.Context, rooms []*models.RoomType, checkIn, checkOut time.Time) (map[int64]int, error) {
	out := make(map[int64]int, len(rooms))
	if len(rooms) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}

	query, args, err := builder.Select("room_id", "COALESCE(SUM(quantity), 0) AS booked").
		From("booking_stays").
		Where(squirrel.Eq{"room_id": ids}).
		Where(activeOverlap(checkIn, checkOut)).
		GroupBy("room_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build availability query: %w", err)
	}

	var rows []struct {
		RoomID int64 `db:"room_id"`
		Booked int   `db:"booked"`
	}
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistErr("availability by room", err)
	}

	booked := make(map[int64]int, len(rows))
	for _, r := range rows {
		booked[r.RoomID] = r.Booked
	}
	for _, r := range rooms {
		out[r.ID] = max(0, r.TotalUnits-booked[r.ID])
	}
	return out, nil
}

// reserveUnits re-validates every requested room against the current state of
// q and returns the loaded room types. Rooms are checked in id order so the
// reported conflict is deterministic.
func reserveUnits(ctx context.Context, q querier, requested map[int64]int, checkIn, checkOut time.Time, requireOffered bool) (map[int64]*models.RoomType, error) {
	rooms := make(map[int64]*models.RoomType, len(requested))
	for _, roomID := range slices.Sorted(maps.Keys(requested)) {
		room, err := getRoom(ctx, q, roomID)
		if err != nil {
			return nil, err
		}
		if requireOffered && !room.Available {
			return nil, fmt.Errorf("room %q: %w", room.Name, ErrRoomNotOffered)
		}

		free, err := availableUnits(ctx, q, room, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		if want := requested[roomID]; want > free {
			return nil, &AvailabilityError{
				RoomID:    room.ID,
				RoomName:  room.Name,
				Requested: want,
				Available: free,
			}
		}
		rooms[roomID] = room
	}
	return rooms, nil
}
