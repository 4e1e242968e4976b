package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/models"

	"github.com/Masterminds/squirrel"
)

type adminRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (db *DB) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	now := time.Now().UTC()
	query, args, err := builder.Insert("admins").
		Columns("username", "email", "password_hash", "created_at").
		Values(admin.Username, admin.Email, admin.PasswordHash, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("build admin insert: %w", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistErr("create admin", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return persistErr("create admin", err)
	}
	admin.ID = id
	admin.CreatedAt = now
	return nil
}

func (db *DB) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	query, args, err := builder.Select("id", "username", "email", "password_hash", "created_at").
		From("admins").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build admin query: %w", err)
	}

	var row adminRow
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin %q: %w", username, ErrNotFound)
		}
		return nil, persistErr("get admin", err)
	}
	return &models.Admin{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func (db *DB) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, persistErr("count admins", err)
	}
	return n, nil
}
