package bot

import (
	"regexp"
	"strconv"
	"strings"

	"ledgerbot/internal/core"
)

// Matchers are pure extractors: they either produce a fully validated
// parameter struct or report no match. A syntactically broken command never
// half-matches; it falls through to the unrecognized-command reply.

var (
	reTransaction    = regexp.MustCompile(`^(?i)(expense|income)\s+(\d+(?:\.\d+)?)\s*(\S*)\s*(.*)$`)
	reObligationPlan = regexp.MustCompile(`^(?i)(loan|debt|fixed)\s+(\S+)\s+(\d+(?:\.\d+)?)\s+(\d+)$`)
	reObligationFlat = regexp.MustCompile(`^(?i)(loan|fixed)\s+(\S+)\s+(\d+(?:\.\d+)?)$`)
	reDelete         = regexp.MustCompile(`^(?i)delete\s+(\d+)$`)
	reCreateFamily   = regexp.MustCompile(`^(?i)create-family(?:\s+(\S+))?$`)
	reJoinFamily     = regexp.MustCompile(`^(?i)join-family\s+(\S+)$`)
	reNickname       = regexp.MustCompile(`^(?i)nickname\s+(\S+)$`)
	reHistory        = regexp.MustCompile(`^(?i)history(?:\s+(\d+))?$`)
	reStats          = regexp.MustCompile(`^(?i)stats(?:\s+(\S+))?(?:\s+(\d+))?$`)
	reBudget         = regexp.MustCompile(`^(?i)budget(?:\s+(\d+(?:\.\d+)?))?$`)
)

type txParams struct {
	Kind     core.TransactionKind
	Amount   core.Money
	Category string
	Note     string
}

func matchTransaction(text string) (txParams, bool) {
	m := reTransaction.FindStringSubmatch(text)
	if m == nil {
		return txParams{}, false
	}
	cents, err := core.ParseDecimalToCents(m[2])
	if err != nil {
		return txParams{}, false
	}
	p := txParams{
		Kind:     core.TransactionKind(strings.ToLower(m[1])),
		Amount:   core.Money{Cents: cents},
		Category: m[3],
		Note:     strings.TrimSpace(m[4]),
	}
	if p.Category == "" {
		p.Category = core.DefaultCategory
	}
	return p, true
}

type obligationParams struct {
	Kind        core.ObligationKind
	Name        string
	Monthly     core.Money
	Total       core.Money // zero for direct-monthly commands
	TotalMonths int
}

// matchObligationPlan handles the total+months form:
// "loan mortgage 120000 12", "debt card 6000 6", "fixed hoa 3600 12".
func matchObligationPlan(text string) (obligationParams, bool) {
	m := reObligationPlan.FindStringSubmatch(text)
	if m == nil {
		return obligationParams{}, false
	}
	totalCents, err := core.ParseDecimalToCents(m[3])
	if err != nil {
		return obligationParams{}, false
	}
	months, err := strconv.Atoi(m[4])
	if err != nil || months <= 0 {
		return obligationParams{}, false
	}
	total := core.Money{Cents: totalCents}
	monthly, err := core.MonthlyFromTotal(total, months)
	if err != nil {
		return obligationParams{}, false
	}
	return obligationParams{
		Kind:        core.ObligationKind(strings.ToLower(m[1])),
		Name:        m[2],
		Monthly:     monthly,
		Total:       total,
		TotalMonths: months,
	}, true
}

// matchObligationFlat handles the direct-monthly form: "loan mortgage 5000",
// "fixed parking 300". Installment debts always need total+months.
func matchObligationFlat(text string) (obligationParams, bool) {
	m := reObligationFlat.FindStringSubmatch(text)
	if m == nil {
		return obligationParams{}, false
	}
	cents, err := core.ParseDecimalToCents(m[3])
	if err != nil {
		return obligationParams{}, false
	}
	return obligationParams{
		Kind:    core.ObligationKind(strings.ToLower(m[1])),
		Name:    m[2],
		Monthly: core.Money{Cents: cents},
	}, true
}

type deleteParams struct {
	ID int64
}

func matchDelete(text string) (deleteParams, bool) {
	m := reDelete.FindStringSubmatch(text)
	if m == nil {
		return deleteParams{}, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return deleteParams{}, false
	}
	return deleteParams{ID: id}, true
}

type createFamilyParams struct {
	Name string
}

func matchCreateFamily(text string) (createFamilyParams, bool) {
	m := reCreateFamily.FindStringSubmatch(text)
	if m == nil {
		return createFamilyParams{}, false
	}
	name := m[1]
	if name == "" {
		name = "Family"
	}
	return createFamilyParams{Name: name}, true
}

type joinFamilyParams struct {
	Code string
}

func matchJoinFamily(text string) (joinFamilyParams, bool) {
	m := reJoinFamily.FindStringSubmatch(text)
	if m == nil {
		return joinFamilyParams{}, false
	}
	return joinFamilyParams{Code: m[1]}, true
}

type nicknameParams struct {
	Name string
}

func matchNickname(text string) (nicknameParams, bool) {
	m := reNickname.FindStringSubmatch(text)
	if m == nil {
		return nicknameParams{}, false
	}
	return nicknameParams{Name: m[1]}, true
}

const (
	defaultHistoryDays = 7
	defaultStatsDays   = 30
	maxWindowDays      = 365
)

type historyParams struct {
	Days int
}

func matchHistory(text string) (historyParams, bool) {
	m := reHistory.FindStringSubmatch(text)
	if m == nil {
		return historyParams{}, false
	}
	return historyParams{Days: parseWindow(m[1], defaultHistoryDays)}, true
}

type statsParams struct {
	// Category is accepted syntactically but does not filter the
	// aggregation. See DESIGN.md.
	Category string
	Days     int
}

func matchStats(text string) (statsParams, bool) {
	m := reStats.FindStringSubmatch(text)
	if m == nil {
		return statsParams{}, false
	}
	category, days := m[1], m[2]
	// "stats 45" puts the bare number in the category slot.
	if days == "" && category != "" && isDigits(category) {
		category, days = "", category
	}
	return statsParams{
		Category: category,
		Days:     parseWindow(days, defaultStatsDays),
	}, true
}

type budgetParams struct {
	Amount core.Money // zero = view
}

func matchBudget(text string) (budgetParams, bool) {
	m := reBudget.FindStringSubmatch(text)
	if m == nil {
		return budgetParams{}, false
	}
	if m[1] == "" {
		return budgetParams{}, true
	}
	cents, err := core.ParseDecimalToCents(m[1])
	if err != nil {
		return budgetParams{}, false
	}
	return budgetParams{Amount: core.Money{Cents: cents}}, true
}

func parseWindow(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	if n > maxWindowDays {
		return maxWindowDays
	}
	return n
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
