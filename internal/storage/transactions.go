package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"ledgerbot/internal/core"
)

// DaySummary aggregates one user's entries for a single day. Absent rows
// coalesce to zero.
type DaySummary struct {
	Income  core.Money
	Expense core.Money
	Records []core.Transaction // the day's entries, newest first
}

// Balance is income minus expense for the day.
func (s DaySummary) Balance() core.Money {
	return s.Income.Add(s.Expense.Neg())
}

// MonthSummary aggregates one user's entries for a calendar month.
type MonthSummary struct {
	Income     core.Money
	Expense    core.Money
	ActiveDays int // distinct days with at least one entry
}

func (s MonthSummary) Balance() core.Money {
	return s.Income.Add(s.Expense.Neg())
}

// CategoryTotal is the aggregate expense for one category over a window.
type CategoryTotal struct {
	Category string
	Total    core.Money
	Count    int
}

// AddTransaction appends an immutable ledger entry and returns its id.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}
	if t.Category == "" {
		t.Category = core.DefaultCategory
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	var note any
	if t.Note != "" {
		note = t.Note
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, kind, amount_cents, category, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.UserID, string(t.Kind), t.Amount.Cents, t.Category, note, formatDateTime(t.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", id,
		"user_id", t.UserID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)
	return id, nil
}

// DaySummary returns per-kind sums and the entry list for the calendar day
// containing now.
func (r *SQLiteRepository) DaySummary(ctx context.Context, userID string, now time.Time) (DaySummary, error) {
	var s DaySummary
	day := formatDate(now)

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = ? AND date(created_at) = ?
	`, userID, day).Scan(&s.Income.Cents, &s.Expense.Cents)
	if err != nil {
		return s, fmt.Errorf("day totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount_cents, category, note, created_at
		FROM transactions
		WHERE user_id = ? AND date(created_at) = ?
		ORDER BY created_at DESC, id DESC
	`, userID, day)
	if err != nil {
		return s, fmt.Errorf("day records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return s, err
		}
		s.Records = append(s.Records, t)
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("iterate day records: %w", err)
	}
	return s, nil
}

// MonthSummary returns per-kind sums and the count of distinct active days
// for the calendar month containing now.
func (r *SQLiteRepository) MonthSummary(ctx context.Context, userID string, now time.Time) (MonthSummary, error) {
	var s MonthSummary
	monthStart := formatDate(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0),
			COUNT(DISTINCT date(created_at))
		FROM transactions
		WHERE user_id = ? AND date(created_at) >= ? AND date(created_at) <= ?
	`, userID, monthStart, formatDate(now)).Scan(&s.Income.Cents, &s.Expense.Cents, &s.ActiveDays)
	if err != nil {
		return s, fmt.Errorf("month totals: %w", err)
	}
	return s, nil
}

// RecentTransactions returns the user's entries from the trailing day window,
// newest first. days counts back from today inclusive.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID string, days int, now time.Time) ([]core.Transaction, error) {
	since := formatDate(now.AddDate(0, 0, -(days - 1)))
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount_cents, category, note, created_at
		FROM transactions
		WHERE user_id = ? AND date(created_at) >= ?
		ORDER BY created_at DESC, id DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent transactions: %w", err)
	}
	return out, nil
}

// CategoryTotals aggregates expense entries per category over the trailing
// day window, largest total first.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, userID string, days int, now time.Time) ([]CategoryTotal, error) {
	since := formatDate(now.AddDate(0, 0, -(days - 1)))
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND kind = 'expense' AND date(created_at) >= ?
		GROUP BY category
		ORDER BY SUM(amount_cents) DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total.Cents, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t         core.Transaction
		kind      string
		note      sql.NullString
		createdAt string
	)
	if err := rows.Scan(&t.ID, &t.UserID, &kind, &t.Amount.Cents, &t.Category, &note, &createdAt); err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.TransactionKind(kind)
	t.Note = note.String
	t.CreatedAt = parseDateTime(createdAt)
	return t, nil
}
