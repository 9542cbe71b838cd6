// Package digest composes the unsolicited morning summary pushed to every
// known user.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ledgerbot/internal/metrics"
	"ledgerbot/internal/storage"
)

const emptyDigestFormat = `☀️ Good morning!

Today's balance: %s

No recurring obligations set yet.
Send "help" to see how to add loans and fixed costs.`

// Generator builds one digest message per user from ledger reads.
type Generator struct {
	store *storage.SQLiteRepository
	calc  *metrics.Calculator
}

func New(store *storage.SQLiteRepository, calc *metrics.Calculator) *Generator {
	return &Generator{store: store, calc: calc}
}

// Digest composes the morning message for one user. Users with no
// obligations anywhere (own or family) get a short nudge instead of the
// full breakdown.
func (g *Generator) Digest(ctx context.Context, userID string) (string, error) {
	debt, err := g.calc.DailyDebt(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("daily debt: %w", err)
	}

	group, err := g.store.UserFamily(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("family lookup: %w", err)
	}

	var ranking metrics.FamilyRanking
	if group != nil {
		ranking, err = g.calc.FamilyDebtRanking(ctx, group.ID)
		if err != nil {
			return "", fmt.Errorf("family ranking: %w", err)
		}
	}

	day, err := g.store.DaySummary(ctx, userID, time.Now())
	if err != nil {
		return "", fmt.Errorf("day summary: %w", err)
	}

	if debt.DailyTotal.Cents == 0 && ranking.DailyTotal.Cents == 0 {
		return fmt.Sprintf(emptyDigestFormat, day.Balance().Format()), nil
	}

	var b strings.Builder
	net := day.Balance().Add(debt.DailyTotal.Neg())
	fmt.Fprintf(&b, "☀️ Good morning!\n\n💸 Today's net so far: %s", net.Format())

	if len(debt.Lines) > 0 {
		b.WriteString("\n\n📊 Obligation breakdown:")
		for _, line := range debt.Lines {
			fmt.Fprintf(&b, "\n• %s (%s): -%s", line.Name, line.Kind, line.Daily.Format())
		}
		fmt.Fprintf(&b, "\n\n💰 Daily obligations: %s\n📅 Monthly obligations: %s",
			debt.DailyTotal.Format(), debt.MonthlyTotal.Format())
	}

	if group != nil && ranking.DailyTotal.Cents > 0 {
		fmt.Fprintf(&b, "\n\n👪 %s debt ranking:", group.Name)
		for i, m := range ranking.Members {
			fmt.Fprintf(&b, "\n%s %s: %s/day", rankMark(i), m.Label, m.Daily.Format())
		}
		fmt.Fprintf(&b, "\n\nFamily daily total: %s\nFamily monthly total: %s",
			ranking.DailyTotal.Format(), ranking.MonthlyTotal.Format())
	}

	b.WriteString("\n\nHave a good day! 💪")
	return b.String(), nil
}

func rankMark(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	}
	return fmt.Sprintf("%d.", i+1)
}
