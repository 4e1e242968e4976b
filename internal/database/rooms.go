package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbook/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var roomColumns = []string{
	"id", "name", "type", "price_cents", "capacity", "description",
	"amenities", "images", "videos", "available", "total_units",
	"version", "created_at", "updated_at",
}

type roomRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Type        string    `db:"type"`
	PriceCents  int64     `db:"price_cents"`
	Capacity    int       `db:"capacity"`
	Description string    `db:"description"`
	Amenities   string    `db:"amenities"`
	Images      string    `db:"images"`
	Videos      string    `db:"videos"`
	Available   bool      `db:"available"`
	TotalUnits  int       `db:"total_units"`
	Version     int64     `db:"version"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r roomRow) toModel() (*models.RoomType, error) {
	room := &models.RoomType{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		PriceCents:  r.PriceCents,
		Capacity:    r.Capacity,
		Description: r.Description,
		Available:   r.Available,
		TotalUnits:  r.TotalUnits,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	var err error
	if room.Amenities, err = decodeList(r.Amenities); err != nil {
		return nil, fmt.Errorf("room %d amenities: %w", r.ID, err)
	}
	if room.Images, err = decodeList(r.Images); err != nil {
		return nil, fmt.Errorf("room %d images: %w", r.ID, err)
	}
	if room.Videos, err = decodeList(r.Videos); err != nil {
		return nil, fmt.Errorf("room %d videos: %w", r.ID, err)
	}
	return room, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeList(raw string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func getRoom(ctx context.Context, q querier, id int64) (*models.RoomType, error) {
	query, args, err := builder.Select(roomColumns...).From("rooms").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build room query: %w", err)
	}

	var row roomRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %d: %w", id, ErrNotFound)
		}
		return nil, persistErr("get room", err)
	}
	return row.toModel()
}

// GetRoom returns a room type by id or ErrNotFound.
func (db *DB) GetRoom(ctx context.Context, id int64) (*models.RoomType, error) {
	return getRoom(ctx, db, id)
}

// GetRoomByName looks a room type up by its exact name.
func (db *DB) GetRoomByName(ctx context.Context, name string) (*models.RoomType, error) {
	query, args, err := builder.Select(roomColumns...).From("rooms").Where(squirrel.Eq{"name": name}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build room query: %w", err)
	}

	var row roomRow
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %q: %w", name, ErrNotFound)
		}
		return nil, persistErr("get room by name", err)
	}
	return row.toModel()
}

// ListRooms returns room types ordered by id.
func (db *DB) ListRooms(ctx context.Context, filter models.RoomFilter) ([]*models.RoomType, error) {
	qb := builder.Select(roomColumns...).From("rooms").OrderBy("id ASC")
	if filter.Type != "" {
		qb = qb.Where(squirrel.Eq{"type": filter.Type})
	}
	if filter.AvailableOnly {
		qb = qb.Where(squirrel.Eq{"available": true})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rooms query: %w", err)
	}

	var rows []roomRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistErr("list rooms", err)
	}

	rooms := make([]*models.RoomType, 0, len(rows))
	for _, r := range rows {
		room, err := r.toModel()
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// CreateRoom inserts a room type and fills in its id and version.
func (db *DB) CreateRoom(ctx context.Context, room *models.RoomType) error {
	return createRoom(ctx, db, room)
}

func createRoom(ctx context.Context, q querier, room *models.RoomType) error {
	amenities, images, videos, err := encodeRoomLists(room)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query, args, err := builder.Insert("rooms").
		Columns("name", "type", "price_cents", "capacity", "description",
			"amenities", "images", "videos", "available", "total_units",
			"version", "created_at", "updated_at").
		Values(room.Name, room.Type, room.PriceCents, room.Capacity, room.Description,
			amenities, images, videos, room.Available, room.TotalUnits,
			1, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("build room insert: %w", err)
	}

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return persistErr("create room", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return persistErr("create room", err)
	}

	room.ID = id
	room.Version = 1
	room.CreatedAt = now
	room.UpdatedAt = now
	return nil
}

// UpdateRoomWithVersion overwrites a room type only if its stored version
// still equals room.Version. Existing booking item price snapshots are untouched.
func (db *DB) UpdateRoomWithVersion(ctx context.Context, room *models.RoomType) error {
	amenities, images, videos, err := encodeRoomLists(room)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query, args, err := builder.Update("rooms").
		SetMap(map[string]interface{}{
			"name":        room.Name,
			"type":        room.Type,
			"price_cents": room.PriceCents,
			"capacity":    room.Capacity,
			"description": room.Description,
			"amenities":   amenities,
			"images":      images,
			"videos":      videos,
			"available":   room.Available,
			"total_units": room.TotalUnits,
			"version":     squirrel.Expr("version + 1"),
			"updated_at":  now,
		}).
		Where(squirrel.Eq{"id": room.ID, "version": room.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build room update: %w", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistErr("update room", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return persistErr("update room", err)
	}
	if rows == 0 {
		if _, err := db.GetRoom(ctx, room.ID); err != nil {
			return err
		}
		return ErrConcurrentModification
	}

	room.Version++
	room.UpdatedAt = now
	return nil
}

// DeleteRoom removes a room type unless a pending or confirmed booking, legacy
// or itemised, still references it.
func (db *DB) DeleteRoom(ctx context.Context, id int64) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return persistErr("begin delete room", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := getRoom(ctx, tx, id); err != nil {
		return err
	}

	query, args, err := builder.Select("COUNT(DISTINCT booking_id)").
		From("booking_stays").
		Where(squirrel.Eq{"room_id": id, "status": models.ActiveStatuses}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build room usage query: %w", err)
	}

	var active int
	if err := tx.GetContext(ctx, &active, query, args...); err != nil {
		return persistErr("count room usage", err)
	}
	if active > 0 {
		return fmt.Errorf("room %d has %d active bookings: %w", id, active, ErrRoomInUse)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id); err != nil {
		return persistErr("delete room", err)
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit delete room", err)
	}
	return nil
}

func encodeRoomLists(room *models.RoomType) (amenities, images, videos string, err error) {
	if amenities, err = encodeList(room.Amenities); err != nil {
		return "", "", "", fmt.Errorf("encode amenities: %w", err)
	}
	if images, err = encodeList(room.Images); err != nil {
		return "", "", "", fmt.Errorf("encode images: %w", err)
	}
	if videos, err = encodeList(room.Videos); err != nil {
		return "", "", "", fmt.Errorf("encode videos: %w", err)
	}
	return amenities, images, videos, nil
}
