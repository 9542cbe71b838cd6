package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"ledgerbot/internal/core"
)

// AddObligation appends a recurring obligation and returns its id.
// StartDate defaults to today.
func (r *SQLiteRepository) AddObligation(ctx context.Context, o core.Obligation) (int64, error) {
	if err := o.Validate(); err != nil {
		return 0, fmt.Errorf("validate obligation: %w", err)
	}
	if o.State == "" {
		o.State = core.Active
	}
	if o.StartDate.IsZero() {
		o.StartDate = time.Now()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	var total, months, endDate any
	if o.Total.Cents > 0 {
		total = o.Total.Cents
	}
	if o.TotalMonths > 0 {
		months = o.TotalMonths
	}
	if !o.EndDate.IsZero() {
		endDate = formatDate(o.EndDate)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_obligations
			(user_id, kind, name, monthly_cents, total_cents, total_months, state, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.UserID, string(o.Kind), o.Name, o.Monthly.Cents, total, months,
		string(o.State), formatDate(o.StartDate), endDate, formatDateTime(o.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert obligation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("obligation id: %w", err)
	}

	slog.InfoContext(ctx, "Obligation recorded",
		"id", id,
		"user_id", o.UserID,
		"kind", o.Kind,
		"name", o.Name,
		"monthly_cents", o.Monthly.Cents)
	return id, nil
}

// ActiveObligations returns the user's active obligations whose window
// contains now, grouped by kind with the largest monthly amount first.
func (r *SQLiteRepository) ActiveObligations(ctx context.Context, userID string, now time.Time) ([]core.Obligation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, name, monthly_cents, total_cents, total_months,
		       state, start_date, end_date, created_at
		FROM recurring_obligations
		WHERE user_id = ? AND state = 'active'
		  AND (end_date IS NULL OR end_date >= ?)
		ORDER BY kind, monthly_cents DESC, id
	`, userID, formatDate(now))
	if err != nil {
		return nil, fmt.Errorf("active obligations: %w", err)
	}
	defer rows.Close()

	var out []core.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligations: %w", err)
	}
	return out, nil
}

// DeactivateObligation soft-deletes an obligation by id and owner. It
// reports false when no active row matched, without distinguishing an
// unknown id from a foreign owner.
func (r *SQLiteRepository) DeactivateObligation(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_obligations
		SET state = 'inactive'
		WHERE id = ? AND user_id = ? AND state = 'active'
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deactivate obligation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate obligation rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Obligation deactivated", "id", id, "user_id", userID)
	}
	return n > 0, nil
}

func scanObligation(rows *sql.Rows) (core.Obligation, error) {
	var (
		o         core.Obligation
		kind      string
		state     string
		total     sql.NullInt64
		months    sql.NullInt64
		startDate string
		endDate   sql.NullString
		createdAt string
	)
	if err := rows.Scan(&o.ID, &o.UserID, &kind, &o.Name, &o.Monthly.Cents,
		&total, &months, &state, &startDate, &endDate, &createdAt); err != nil {
		return o, fmt.Errorf("scan obligation: %w", err)
	}
	o.Kind = core.ObligationKind(kind)
	o.State = core.ObligationState(state)
	o.Total.Cents = total.Int64
	o.TotalMonths = int(months.Int64)
	o.StartDate = parseDate(startDate)
	if endDate.Valid {
		o.EndDate = parseDate(endDate.String)
	}
	o.CreatedAt = parseDateTime(createdAt)
	return o, nil
}
