// Package metrics computes derived ledger values: daily-equivalent debt,
// family aggregation and ranking, category breakdowns and budget consumption.
// Everything here is a pure read over the store.
package metrics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/core"
	"ledgerbot/internal/storage"
)

// Calculator computes derived values from ledger reads.
type Calculator struct {
	store *storage.SQLiteRepository
}

func New(store *storage.SQLiteRepository) *Calculator {
	return &Calculator{store: store}
}

// DebtLine is one obligation's contribution to the daily debt.
type DebtLine struct {
	ObligationID int64
	Name         string
	Kind         core.ObligationKind
	Monthly      core.Money
	Daily        core.Money
	OwnerID      string // attribution for family-wide breakdowns
	OwnerLabel   string
}

// DailyDebt is the daily-equivalent view of a user's active obligations.
// DailyTotal is the sum of the per-obligation rounded dailies, deliberately
// using the fixed 30-day month.
type DailyDebt struct {
	DailyTotal   core.Money
	MonthlyTotal core.Money
	Lines        []DebtLine
}

// MemberDebt is one member's daily debt inside a family ranking.
type MemberDebt struct {
	UserID  string
	Label   string
	Daily   core.Money
	Monthly core.Money
}

// FamilyRanking lists members by descending daily debt with grand totals.
type FamilyRanking struct {
	Members      []MemberDebt
	DailyTotal   core.Money
	MonthlyTotal core.Money
}

// CategoryStat is one category's share of the expense total over a window.
type CategoryStat struct {
	Category string
	Total    core.Money
	Count    int
	Percent  float64
}

// CategoryStats is the expense breakdown over a trailing day window.
type CategoryStats struct {
	Days  int
	Total core.Money
	Items []CategoryStat
}

// BudgetStatus reports monthly budget consumption. Nil means no budget set.
type BudgetStatus struct {
	Budget    core.Money
	Spent     core.Money
	Remaining core.Money // budget - spent, may be negative
	Percent   float64    // spent / budget * 100
}

// DailyDebt computes the daily-equivalent debt for one user's active,
// in-window obligations.
func (c *Calculator) DailyDebt(ctx context.Context, userID string) (DailyDebt, error) {
	obligations, err := c.store.ActiveObligations(ctx, userID, time.Now())
	if err != nil {
		return DailyDebt{}, fmt.Errorf("load obligations: %w", err)
	}
	return debtFromObligations(obligations, userID, ""), nil
}

func debtFromObligations(obligations []core.Obligation, ownerID, ownerLabel string) DailyDebt {
	var d DailyDebt
	for _, o := range obligations {
		daily := core.DailyFromMonthly(o.Monthly)
		d.Lines = append(d.Lines, DebtLine{
			ObligationID: o.ID,
			Name:         o.Name,
			Kind:         o.Kind,
			Monthly:      o.Monthly,
			Daily:        daily,
			OwnerID:      ownerID,
			OwnerLabel:   ownerLabel,
		})
		d.DailyTotal = d.DailyTotal.Add(daily)
		d.MonthlyTotal = d.MonthlyTotal.Add(o.Monthly)
	}
	return d
}

// FamilyDailyDebt aggregates daily debt across all members of a group, each
// line tagged with the owning member.
func (c *Calculator) FamilyDailyDebt(ctx context.Context, groupID int64) (DailyDebt, error) {
	members, err := c.store.Members(ctx, groupID)
	if err != nil {
		return DailyDebt{}, fmt.Errorf("load members: %w", err)
	}

	var total DailyDebt
	for _, m := range members {
		obligations, err := c.store.ActiveObligations(ctx, m.UserID, time.Now())
		if err != nil {
			return DailyDebt{}, fmt.Errorf("load obligations for %s: %w", m.UserID, err)
		}
		d := debtFromObligations(obligations, m.UserID, m.DisplayName())
		total.Lines = append(total.Lines, d.Lines...)
		total.DailyTotal = total.DailyTotal.Add(d.DailyTotal)
		total.MonthlyTotal = total.MonthlyTotal.Add(d.MonthlyTotal)
	}
	return total, nil
}

// FamilyDebtRanking ranks every member of a group by daily debt, highest
// first. Ties keep store iteration order.
func (c *Calculator) FamilyDebtRanking(ctx context.Context, groupID int64) (FamilyRanking, error) {
	members, err := c.store.Members(ctx, groupID)
	if err != nil {
		return FamilyRanking{}, fmt.Errorf("load members: %w", err)
	}

	var ranking FamilyRanking
	for _, m := range members {
		obligations, err := c.store.ActiveObligations(ctx, m.UserID, time.Now())
		if err != nil {
			return FamilyRanking{}, fmt.Errorf("load obligations for %s: %w", m.UserID, err)
		}
		d := debtFromObligations(obligations, m.UserID, "")
		ranking.Members = append(ranking.Members, MemberDebt{
			UserID:  m.UserID,
			Label:   m.DisplayName(),
			Daily:   d.DailyTotal,
			Monthly: d.MonthlyTotal,
		})
		ranking.DailyTotal = ranking.DailyTotal.Add(d.DailyTotal)
		ranking.MonthlyTotal = ranking.MonthlyTotal.Add(d.MonthlyTotal)
	}

	sort.SliceStable(ranking.Members, func(i, j int) bool {
		return ranking.Members[i].Daily.Cents > ranking.Members[j].Daily.Cents
	})
	return ranking, nil
}

// CategoryStats computes the expense breakdown over the trailing window.
func (c *Calculator) CategoryStats(ctx context.Context, userID string, days int) (CategoryStats, error) {
	totals, err := c.store.CategoryTotals(ctx, userID, days, time.Now())
	if err != nil {
		return CategoryStats{}, fmt.Errorf("load category totals: %w", err)
	}

	stats := CategoryStats{Days: days}
	for _, ct := range totals {
		stats.Total = stats.Total.Add(ct.Total)
	}
	for _, ct := range totals {
		pct := 0.0
		if stats.Total.Cents > 0 {
			pct, _ = ct.Total.Decimal().
				Div(stats.Total.Decimal()).
				Mul(decimal.NewFromInt(100)).
				Round(1).Float64()
		}
		stats.Items = append(stats.Items, CategoryStat{
			Category: ct.Category,
			Total:    ct.Total,
			Count:    ct.Count,
			Percent:  pct,
		})
	}
	return stats, nil
}

// BudgetStatus reports the month's budget consumption, or nil when the user
// has no budget set.
func (c *Calculator) BudgetStatus(ctx context.Context, userID string) (*BudgetStatus, error) {
	budget, err := c.store.Budget(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	if budget == nil {
		return nil, nil
	}

	month, err := c.store.MonthSummary(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("load month summary: %w", err)
	}

	status := &BudgetStatus{
		Budget:    budget.Amount,
		Spent:     month.Expense,
		Remaining: budget.Amount.Add(month.Expense.Neg()),
	}
	status.Percent, _ = month.Expense.Decimal().
		Div(budget.Amount.Decimal()).
		Mul(decimal.NewFromInt(100)).
		Round(1).Float64()
	return status, nil
}
