package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ledgerbot/internal/core"
)

// Budget returns the user's monthly budget, or nil when none is set.
func (r *SQLiteRepository) Budget(ctx context.Context, userID string) (*core.Budget, error) {
	var (
		b         core.Budget
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, amount_cents, updated_at FROM budgets WHERE user_id = ?`,
		userID).Scan(&b.UserID, &b.Amount.Cents, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	b.UpdatedAt = parseDateTime(updatedAt)
	return &b, nil
}

// SetBudget sets or replaces the user's monthly budget.
func (r *SQLiteRepository) SetBudget(ctx context.Context, userID string, amount core.Money) error {
	if amount.Cents <= 0 {
		return core.ErrInvalidAmount
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, amount_cents, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			updated_at = excluded.updated_at
	`, userID, amount.Cents, formatDateTime(time.Now()))
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}
