package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ledgerbot/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestEnsureUserKeepsNickname(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if err := repo.UpdateNickname(ctx, "u1", "Alice"); err != nil {
		t.Fatalf("update nickname: %v", err)
	}
	// Second contact must not clobber the nickname.
	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user again: %v", err)
	}

	u, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u == nil || u.Nickname != "Alice" {
		t.Fatalf("expected nickname Alice, got %+v", u)
	}
}

func TestDayAndMonthSummaries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	add := func(kind core.TransactionKind, cents int64, category string, at time.Time) {
		t.Helper()
		_, err := repo.AddTransaction(ctx, core.Transaction{
			UserID:    "u1",
			Kind:      kind,
			Amount:    core.Money{Cents: cents},
			Category:  category,
			CreatedAt: at,
		})
		if err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}

	add(core.Income, 100000, "salary", now)
	add(core.Expense, 5000, "food", now)
	add(core.Expense, 2500, "food", now)
	add(core.Expense, 9999, "transport", now.AddDate(0, 0, -40)) // outside month

	day, err := repo.DaySummary(ctx, "u1", now)
	if err != nil {
		t.Fatalf("day summary: %v", err)
	}
	if day.Income.Cents != 100000 || day.Expense.Cents != 7500 {
		t.Fatalf("day totals wrong: %+v", day)
	}
	if day.Balance().Cents != 92500 {
		t.Fatalf("day balance wrong: %d", day.Balance().Cents)
	}
	if len(day.Records) != 3 {
		t.Fatalf("expected 3 day records, got %d", len(day.Records))
	}
	// Newest first: the last insert of the day comes back first.
	if day.Records[0].Amount.Cents != 2500 {
		t.Fatalf("records not newest-first: %+v", day.Records[0])
	}

	month, err := repo.MonthSummary(ctx, "u1", now)
	if err != nil {
		t.Fatalf("month summary: %v", err)
	}
	if month.Income.Cents != 100000 || month.Expense.Cents != 7500 {
		t.Fatalf("month totals wrong: %+v", month)
	}
	if month.ActiveDays != 1 {
		t.Fatalf("expected 1 active day, got %d", month.ActiveDays)
	}
}

func TestDaySummaryEmptyCoalescesToZero(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	day, err := repo.DaySummary(ctx, "u1", time.Now())
	if err != nil {
		t.Fatalf("day summary: %v", err)
	}
	if day.Income.Cents != 0 || day.Expense.Cents != 0 || len(day.Records) != 0 {
		t.Fatalf("expected zero summary, got %+v", day)
	}
}

func TestCategoryTotalsExpenseOnlyDescending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	entries := []struct {
		kind     core.TransactionKind
		cents    int64
		category string
	}{
		{core.Expense, 3000, "food"},
		{core.Expense, 7000, "rent"},
		{core.Expense, 1000, "food"},
		{core.Income, 99999, "salary"}, // must not appear
	}
	for _, e := range entries {
		if _, err := repo.AddTransaction(ctx, core.Transaction{
			UserID: "u1", Kind: e.kind,
			Amount: core.Money{Cents: e.cents}, Category: e.category,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}

	totals, err := repo.CategoryTotals(ctx, "u1", 30, now)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	if totals[0].Category != "rent" || totals[0].Total.Cents != 7000 {
		t.Fatalf("expected rent first, got %+v", totals[0])
	}
	if totals[1].Category != "food" || totals[1].Total.Cents != 4000 || totals[1].Count != 2 {
		t.Fatalf("food aggregate wrong: %+v", totals[1])
	}
}

func TestObligationLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	for _, id := range []string{"u1", "u2"} {
		if err := repo.EnsureUser(ctx, id); err != nil {
			t.Fatalf("ensure user: %v", err)
		}
	}

	id, err := repo.AddObligation(ctx, core.Obligation{
		UserID:      "u1",
		Kind:        core.Loan,
		Name:        "mortgage",
		Monthly:     core.Money{Cents: 1000000},
		Total:       core.Money{Cents: 12000000},
		TotalMonths: 12,
	})
	if err != nil {
		t.Fatalf("add obligation: %v", err)
	}

	// Expired obligation must not show up as active.
	if _, err := repo.AddObligation(ctx, core.Obligation{
		UserID:  "u1",
		Kind:    core.Fixed,
		Name:    "old-gym",
		Monthly: core.Money{Cents: 5000},
		EndDate: now.AddDate(0, 0, -1),
	}); err != nil {
		t.Fatalf("add expired obligation: %v", err)
	}

	active, err := repo.ActiveObligations(ctx, "u1", now)
	if err != nil {
		t.Fatalf("active obligations: %v", err)
	}
	if len(active) != 1 || active[0].ID != id {
		t.Fatalf("expected only the open obligation, got %+v", active)
	}
	if active[0].Total.Cents != 12000000 || active[0].TotalMonths != 12 {
		t.Fatalf("total/months not retained: %+v", active[0])
	}

	// Wrong owner: no match, no leak.
	if ok, err := repo.DeactivateObligation(ctx, "u2", id); err != nil || ok {
		t.Fatalf("foreign delete must not match (ok=%v err=%v)", ok, err)
	}
	// Unknown id: no match.
	if ok, err := repo.DeactivateObligation(ctx, "u1", 99999); err != nil || ok {
		t.Fatalf("unknown delete must not match (ok=%v err=%v)", ok, err)
	}
	// Owner match: deactivates.
	if ok, err := repo.DeactivateObligation(ctx, "u1", id); err != nil || !ok {
		t.Fatalf("owner delete failed (ok=%v err=%v)", ok, err)
	}
	active, err = repo.ActiveObligations(ctx, "u1", now)
	if err != nil {
		t.Fatalf("active obligations: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("deactivated obligation still listed: %+v", active)
	}
}

func TestFamilyLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"creator", "spouse"} {
		if err := repo.EnsureUser(ctx, id); err != nil {
			t.Fatalf("ensure user: %v", err)
		}
	}
	if err := repo.UpdateNickname(ctx, "spouse", "Spouse"); err != nil {
		t.Fatalf("update nickname: %v", err)
	}

	group, err := repo.CreateFamily(ctx, "TestFamily", "creator")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	if len(group.InviteCode) != 6 {
		t.Fatalf("invite code must be 6 chars, got %q", group.InviteCode)
	}

	// Case-insensitive code lookup.
	found, err := repo.FamilyByInviteCode(ctx, group.InviteCode)
	if err != nil || found == nil || found.ID != group.ID {
		t.Fatalf("lookup by code failed: %+v, %v", found, err)
	}
	if f, _ := repo.FamilyByInviteCode(ctx, "zzzzzz"); f != nil {
		t.Fatalf("bogus code matched a group: %+v", f)
	}

	if err := repo.AddMember(ctx, group.ID, "spouse", core.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}
	// Idempotent re-join.
	if err := repo.AddMember(ctx, group.ID, "spouse", core.RoleMember); err != nil {
		t.Fatalf("re-add member: %v", err)
	}

	members, err := repo.Members(ctx, group.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Role != core.RoleCreator {
		t.Fatalf("creator must come first, got %+v", members[0])
	}
	if members[1].Nickname != "Spouse" {
		t.Fatalf("member nickname missing: %+v", members[1])
	}

	fam, err := repo.UserFamily(ctx, "spouse")
	if err != nil || fam == nil || fam.ID != group.ID {
		t.Fatalf("user family lookup failed: %+v, %v", fam, err)
	}

	if ok, err := repo.RemoveMember(ctx, group.ID, "spouse"); err != nil || !ok {
		t.Fatalf("remove member failed (ok=%v err=%v)", ok, err)
	}
	if ok, _ := repo.RemoveMember(ctx, group.ID, "spouse"); ok {
		t.Fatal("second remove must report no match")
	}
	if fam, _ := repo.UserFamily(ctx, "spouse"); fam != nil {
		t.Fatalf("removed member still has a family: %+v", fam)
	}
}

func TestBudgetUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	if b, err := repo.Budget(ctx, "u1"); err != nil || b != nil {
		t.Fatalf("expected no budget, got %+v (err=%v)", b, err)
	}
	if err := repo.SetBudget(ctx, "u1", core.Money{Cents: 500000}); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if err := repo.SetBudget(ctx, "u1", core.Money{Cents: 300000}); err != nil {
		t.Fatalf("replace budget: %v", err)
	}
	b, err := repo.Budget(ctx, "u1")
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if b == nil || b.Amount.Cents != 300000 {
		t.Fatalf("expected replaced budget, got %+v", b)
	}
	if err := repo.SetBudget(ctx, "u1", core.Money{}); err == nil {
		t.Fatal("zero budget must be rejected")
	}
}
