package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ledgerbot/internal/core"
	"ledgerbot/internal/storage"
)

func newCalc(t *testing.T) (*Calculator, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return New(repo), repo
}

func addObligation(t *testing.T, repo *storage.SQLiteRepository, userID string, kind core.ObligationKind, name string, monthlyCents int64) {
	t.Helper()
	_, err := repo.AddObligation(context.Background(), core.Obligation{
		UserID:  userID,
		Kind:    kind,
		Name:    name,
		Monthly: core.Money{Cents: monthlyCents},
	})
	if err != nil {
		t.Fatalf("add obligation: %v", err)
	}
}

func TestDailyDebt(t *testing.T) {
	calc, repo := newCalc(t)
	ctx := context.Background()

	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	// 120000/12 -> 10000/month; plus fixed 300 and debt 6000/6 -> 1000.
	monthly, err := core.MonthlyFromTotal(core.Money{Cents: 12000000}, 12)
	if err != nil {
		t.Fatalf("monthly from total: %v", err)
	}
	addObligation(t, repo, "u1", core.Loan, "mortgage", monthly.Cents)
	addObligation(t, repo, "u1", core.Fixed, "hoa", 30000)
	addObligation(t, repo, "u1", core.Debt, "card", 100000)

	d, err := calc.DailyDebt(ctx, "u1")
	if err != nil {
		t.Fatalf("daily debt: %v", err)
	}
	if d.MonthlyTotal.Cents != 1130000 {
		t.Fatalf("monthly total expected 11300.00, got %s", d.MonthlyTotal.Format())
	}
	// 333.33 + 10.00 + 33.33
	if d.DailyTotal.Cents != 37666 {
		t.Fatalf("daily total expected 376.66, got %s", d.DailyTotal.Format())
	}
	if len(d.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(d.Lines))
	}
	for _, line := range d.Lines {
		if line.Name == "mortgage" && line.Daily.Cents != 33333 {
			t.Fatalf("mortgage daily expected 333.33, got %s", line.Daily.Format())
		}
	}
}

func TestFamilyDebtRanking(t *testing.T) {
	calc, repo := newCalc(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.EnsureUser(ctx, id); err != nil {
			t.Fatalf("ensure user: %v", err)
		}
	}
	group, err := repo.CreateFamily(ctx, "fam", "a")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	for _, id := range []string{"b", "c"} {
		if err := repo.AddMember(ctx, group.ID, id, core.RoleMember); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}

	addObligation(t, repo, "a", core.Loan, "mortgage", 500000) // 166.67/day
	addObligation(t, repo, "b", core.Loan, "car", 900000)      // 300.00/day
	// c has nothing.

	ranking, err := calc.FamilyDebtRanking(ctx, group.ID)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking.Members) != 3 {
		t.Fatalf("expected 3 ranked members, got %d", len(ranking.Members))
	}
	if ranking.Members[0].UserID != "b" || ranking.Members[1].UserID != "a" || ranking.Members[2].UserID != "c" {
		t.Fatalf("ranking order wrong: %+v", ranking.Members)
	}
	if ranking.DailyTotal.Cents != 16667+30000 {
		t.Fatalf("daily grand total wrong: %s", ranking.DailyTotal.Format())
	}
	if ranking.MonthlyTotal.Cents != 1400000 {
		t.Fatalf("monthly grand total wrong: %s", ranking.MonthlyTotal.Format())
	}
}

func TestFamilyDailyDebtAttribution(t *testing.T) {
	calc, repo := newCalc(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := repo.EnsureUser(ctx, id); err != nil {
			t.Fatalf("ensure user: %v", err)
		}
	}
	group, err := repo.CreateFamily(ctx, "fam", "a")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	if err := repo.AddMember(ctx, group.ID, "b", core.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := repo.UpdateNickname(ctx, "a", "Alice"); err != nil {
		t.Fatalf("update nickname: %v", err)
	}

	addObligation(t, repo, "a", core.Fixed, "rent", 300000) // 100.00/day
	addObligation(t, repo, "b", core.Loan, "car", 100000)   // 33.33/day

	d, err := calc.FamilyDailyDebt(ctx, group.ID)
	if err != nil {
		t.Fatalf("family daily debt: %v", err)
	}
	if len(d.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(d.Lines))
	}

	byName := make(map[string]DebtLine, len(d.Lines))
	for _, line := range d.Lines {
		byName[line.Name] = line
	}
	rent := byName["rent"]
	if rent.OwnerID != "a" || rent.OwnerLabel != "Alice" {
		t.Fatalf("rent attribution wrong: %+v", rent)
	}
	if rent.Daily.Cents != 10000 {
		t.Fatalf("rent daily expected 100.00, got %s", rent.Daily.Format())
	}
	car := byName["car"]
	// b never set a nickname, so the role label stands in.
	if car.OwnerID != "b" || car.OwnerLabel != "family member" {
		t.Fatalf("car attribution wrong: %+v", car)
	}

	if d.DailyTotal.Cents != 10000+3333 {
		t.Fatalf("daily total wrong: %s", d.DailyTotal.Format())
	}
	if d.MonthlyTotal.Cents != 400000 {
		t.Fatalf("monthly total wrong: %s", d.MonthlyTotal.Format())
	}
}

func TestCategoryStatsPercentages(t *testing.T) {
	calc, repo := newCalc(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	for _, e := range []struct {
		cents    int64
		category string
	}{{7500, "food"}, {2500, "transport"}} {
		if _, err := repo.AddTransaction(ctx, core.Transaction{
			UserID: "u1", Kind: core.Expense,
			Amount: core.Money{Cents: e.cents}, Category: e.category,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}

	stats, err := calc.CategoryStats(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("category stats: %v", err)
	}
	if stats.Total.Cents != 10000 {
		t.Fatalf("total expected 100.00, got %s", stats.Total.Format())
	}
	if len(stats.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stats.Items))
	}
	if stats.Items[0].Category != "food" || stats.Items[0].Percent != 75.0 {
		t.Fatalf("food share wrong: %+v", stats.Items[0])
	}
	if stats.Items[1].Percent != 25.0 {
		t.Fatalf("transport share wrong: %+v", stats.Items[1])
	}
}

func TestBudgetStatus(t *testing.T) {
	calc, repo := newCalc(t)
	ctx := context.Background()

	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	// No budget set: nil status.
	status, err := calc.BudgetStatus(ctx, "u1")
	if err != nil {
		t.Fatalf("budget status: %v", err)
	}
	if status != nil {
		t.Fatalf("expected nil status without budget, got %+v", status)
	}

	if err := repo.SetBudget(ctx, "u1", core.Money{Cents: 100000}); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if _, err := repo.AddTransaction(ctx, core.Transaction{
		UserID: "u1", Kind: core.Expense,
		Amount: core.Money{Cents: 125000}, Category: "rent",
	}); err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	status, err = calc.BudgetStatus(ctx, "u1")
	if err != nil {
		t.Fatalf("budget status: %v", err)
	}
	if status == nil {
		t.Fatal("expected status with budget set")
	}
	if status.Remaining.Cents != -25000 {
		t.Fatalf("remaining expected -250.00, got %s", status.Remaining.Format())
	}
	if status.Percent != 125.0 {
		t.Fatalf("percent expected 125, got %v", status.Percent)
	}
}
