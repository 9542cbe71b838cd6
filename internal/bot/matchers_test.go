package bot

import (
	"testing"

	"ledgerbot/internal/core"
)

func TestMatchTransaction(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
		want txParams
	}{
		{
			text: "expense 88 shopping new shoes",
			ok:   true,
			want: txParams{Kind: core.Expense, Amount: core.Money{Cents: 8800}, Category: "shopping", Note: "new shoes"},
		},
		{
			text: "income 1000.50 salary",
			ok:   true,
			want: txParams{Kind: core.Income, Amount: core.Money{Cents: 100050}, Category: "salary"},
		},
		{
			text: "EXPENSE 5",
			ok:   true,
			want: txParams{Kind: core.Expense, Amount: core.Money{Cents: 500}, Category: core.DefaultCategory},
		},
		{text: "expense", ok: false},
		{text: "expense abc", ok: false},
		{text: "expense -5 food", ok: false},
		{text: "spent 5 food", ok: false},
	}
	for _, tt := range tests {
		got, ok := matchTransaction(tt.text)
		if ok != tt.ok {
			t.Errorf("matchTransaction(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("matchTransaction(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}

func TestMatchObligationPlan(t *testing.T) {
	got, ok := matchObligationPlan("loan mortgage 120000 12")
	if !ok {
		t.Fatal("expected match")
	}
	if got.Monthly.Cents != 1000000 {
		t.Errorf("monthly = %d cents, want 1000000", got.Monthly.Cents)
	}
	if got.Total.Cents != 12000000 || got.TotalMonths != 12 {
		t.Errorf("plan = %+v", got)
	}

	if _, ok := matchObligationPlan("loan mortgage 120000"); ok {
		t.Error("flat form must not match the plan matcher")
	}
	if _, ok := matchObligationPlan("loan mortgage 120000 0"); ok {
		t.Error("zero months must not match")
	}
}

func TestMatchObligationFlat(t *testing.T) {
	got, ok := matchObligationFlat("fixed parking 300")
	if !ok {
		t.Fatal("expected match")
	}
	if got.Kind != core.Fixed || got.Monthly.Cents != 30000 {
		t.Errorf("flat = %+v", got)
	}
	if got.TotalMonths != 0 || got.Total.Cents != 0 {
		t.Errorf("flat form carries plan fields: %+v", got)
	}

	// Installment debts always need total and months.
	if _, ok := matchObligationFlat("debt card 300"); ok {
		t.Error("debt must not match the flat matcher")
	}
}

func TestMatchStatsDisambiguation(t *testing.T) {
	tests := []struct {
		text     string
		category string
		days     int
	}{
		{"stats", "", defaultStatsDays},
		{"stats food", "food", defaultStatsDays},
		{"stats food 14", "food", 14},
		{"stats 45", "", 45},
		{"stats 9999", "", maxWindowDays},
	}
	for _, tt := range tests {
		got, ok := matchStats(tt.text)
		if !ok {
			t.Errorf("matchStats(%q) did not match", tt.text)
			continue
		}
		if got.Category != tt.category || got.Days != tt.days {
			t.Errorf("matchStats(%q) = %+v, want category %q days %d",
				tt.text, got, tt.category, tt.days)
		}
	}
}

func TestMatchHistoryWindow(t *testing.T) {
	tests := []struct {
		text string
		days int
	}{
		{"history", defaultHistoryDays},
		{"history 30", 30},
		{"history 400", maxWindowDays},
	}
	for _, tt := range tests {
		got, ok := matchHistory(tt.text)
		if !ok || got.Days != tt.days {
			t.Errorf("matchHistory(%q) = %+v ok=%v, want days %d", tt.text, got, ok, tt.days)
		}
	}
}

func TestMatchBudget(t *testing.T) {
	if got, ok := matchBudget("budget"); !ok || got.Amount.Cents != 0 {
		t.Errorf("bare budget = %+v ok=%v, want view form", got, ok)
	}
	if got, ok := matchBudget("budget 5000"); !ok || got.Amount.Cents != 500000 {
		t.Errorf("budget 5000 = %+v ok=%v", got, ok)
	}
	if _, ok := matchBudget("budget abc"); ok {
		t.Error("non-numeric budget must not match")
	}
}

func TestMatchCreateFamilyDefaultName(t *testing.T) {
	got, ok := matchCreateFamily("create-family")
	if !ok || got.Name != "Family" {
		t.Errorf("create-family = %+v ok=%v, want default name", got, ok)
	}
	got, ok = matchCreateFamily("create-family smiths")
	if !ok || got.Name != "smiths" {
		t.Errorf("create-family smiths = %+v ok=%v", got, ok)
	}
}
