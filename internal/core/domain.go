package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	Loan  ObligationKind = "loan"
	Debt  ObligationKind = "debt"
	Fixed ObligationKind = "fixed"
)

const (
	Active   ObligationState = "active"
	Inactive ObligationState = "inactive"
)

const (
	RoleCreator MemberRole = "creator"
	RoleMember  MemberRole = "member"
)

// DefaultCategory is assigned to transactions recorded without a category.
const DefaultCategory = "other"

type (
	TransactionKind string
	ObligationKind  string
	ObligationState string
	MemberRole      string

	Money struct {
		Cents int64
	}

	// User is a chat account known to the ledger, keyed by the opaque id
	// the transport hands us. Created on first contact, never deleted.
	User struct {
		ID        string
		Nickname  string
		CreatedAt time.Time
	}

	// Transaction is a single income or expense entry. Immutable once written.
	Transaction struct {
		ID        int64
		UserID    string
		Kind      TransactionKind
		Amount    Money
		Category  string
		Note      string
		CreatedAt time.Time
	}

	// Obligation is a recurring monthly commitment (loan, installment debt
	// or fixed cost). Monthly is derived from Total/TotalMonths at write time
	// when both are given; Total and TotalMonths are kept for display only.
	Obligation struct {
		ID          int64
		UserID      string
		Kind        ObligationKind
		Name        string
		Monthly     Money
		Total       Money // zero when the monthly amount was given directly
		TotalMonths int   // zero when the monthly amount was given directly
		State       ObligationState
		StartDate   time.Time
		EndDate     time.Time // zero = open-ended
		CreatedAt   time.Time
	}

	FamilyGroup struct {
		ID         int64
		Name       string
		InviteCode string
		CreatorID  string
		CreatedAt  time.Time
	}

	FamilyMember struct {
		GroupID  int64
		UserID   string
		Nickname string
		Role     MemberRole
		JoinedAt time.Time
	}

	Budget struct {
		UserID    string
		Amount    Money
		UpdatedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidMonths = errors.New("invalid months")
)

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (k ObligationKind) Valid() bool {
	return k == Loan || k == Debt || k == Fixed
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return errors.New("unknown transaction kind")
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (o Obligation) Validate() error {
	if !o.Kind.Valid() {
		return errors.New("unknown obligation kind")
	}
	if strings.TrimSpace(o.Name) == "" {
		return ErrEmptyName
	}
	if len(o.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if o.Monthly.Cents <= 0 {
		return ErrInvalidAmount
	}
	if o.TotalMonths < 0 {
		return ErrInvalidMonths
	}
	return nil
}

// Expired reports whether the obligation's end date has passed as of now.
// Open-ended obligations never expire.
func (o Obligation) Expired(now time.Time) bool {
	if o.EndDate.IsZero() {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return o.EndDate.Before(today)
}

// Label is the fallback shown when a member has no nickname.
func (r MemberRole) Label() string {
	if r == RoleCreator {
		return "family creator"
	}
	return "family member"
}

// DisplayName prefers the nickname and falls back to the role label.
func (m FamilyMember) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Role.Label()
}
