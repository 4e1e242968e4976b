package database

import (
	"context"

	"hotelbook/internal/models"
)

// SeedRooms inserts the given room types when the rooms table is empty and
// reports how many were created. A populated table is left alone.
func (db *DB) SeedRooms(ctx context.Context, rooms []*models.RoomType) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, persistErr("begin seed rooms", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var existing int
	if err := tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM rooms`); err != nil {
		return 0, persistErr("count rooms", err)
	}
	if existing > 0 {
		return 0, nil
	}

	for _, room := range rooms {
		if err := createRoom(ctx, tx, room); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, persistErr("commit seed rooms", err)
	}
	db.logger.Info().Int("rooms", len(rooms)).Msg("sample rooms seeded")
	return len(rooms), nil
}
