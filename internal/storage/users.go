package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ledgerbot/internal/core"
)

// EnsureUser records a user on first contact. Existing rows are untouched so
// a later nickname survives repeated contacts.
func (r *SQLiteRepository) EnsureUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, formatDateTime(time.Now()))
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// UpdateNickname sets the display name for an existing user.
func (r *SQLiteRepository) UpdateNickname(ctx context.Context, id, nickname string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET nickname = ? WHERE id = ?`, nickname, id)
	if err != nil {
		return fmt.Errorf("update nickname: %w", err)
	}
	return nil
}

// GetUser returns the user row, or nil when unknown.
func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*core.User, error) {
	var (
		u         core.User
		nickname  sql.NullString
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nickname, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &nickname, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Nickname = nickname.String
	u.CreatedAt = parseDateTime(createdAt)
	return &u, nil
}

// ListUserIDs returns every known user id, for digest iteration.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return ids, nil
}
