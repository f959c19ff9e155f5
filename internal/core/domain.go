package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	BillKind   ObligationKind = "bill"
	IncomeKind ObligationKind = "income"
)

type (
	// TransactionType is free text in stored records but treated as a
	// closed income/expense enum during aggregation.
	TransactionType string

	// ObligationKind separates recurring bills from recurring income sources.
	ObligationKind string

	// Transaction is a single ad-hoc income or expense entry. The Date
	// instant is authoritative for month bucketing; CategoryID is a weak
	// reference that may point at a deleted category.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      float64         `json:"amount"`
		Type        TransactionType `json:"type"`
		Description string          `json:"description,omitempty"`
		Date        time.Time       `json:"date"`
		CategoryID  string          `json:"categoryId,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	// Obligation is a recurring bill or income source with a fixed monthly
	// amount. Inactive obligations are excluded from all aggregation.
	Obligation struct {
		ID         string         `json:"id"`
		Kind       ObligationKind `json:"kind"`
		Name       string         `json:"name"`
		Amount     float64        `json:"amount"`
		DueDay     int            `json:"dueDay"`
		CategoryID string         `json:"categoryId,omitempty"`
		Active     bool           `json:"active"`
		Settlement Settlement     `json:"settlement"`
		CreatedAt  time.Time      `json:"createdAt"`
		UpdatedAt  time.Time      `json:"updatedAt"`
	}

	// Category is referenced by weak id from transactions and obligations;
	// a dangling reference degrades to "no category", never an error.
	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Color     string    `json:"color,omitempty"`
		Icon      string    `json:"icon,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// SavingsConfig holds the savings targets. Storage may hold several
	// records per user; PickLatestConfig resolves which one is authoritative.
	SavingsConfig struct {
		ID            string    `json:"id"`
		MonthlyTarget float64   `json:"monthlyTarget"`
		YearlyTarget  *float64  `json:"yearlyTarget,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}
)

var (
	ErrInvalidMonthKey = errors.New("invalid month key")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDueDay   = errors.New("invalid due day")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrMissingDate     = errors.New("missing date")
)

// NormalizedType lower-cases the stored type and reports whether it is one
// of the two types aggregation understands.
func (t Transaction) NormalizedType() (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(string(t.Type)))) {
	case Income:
		return Income, true
	case Expense:
		return Expense, true
	default:
		return "", false
	}
}

// MonthKey buckets the transaction by its local occurrence month.
func (t Transaction) MonthKey() (MonthKey, bool) {
	return MonthKeyOf(t.Date)
}

func (t Transaction) Validate() error {
	if t.Amount < 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if _, ok := t.NormalizedType(); !ok {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (o Obligation) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return ErrEmptyName
	}
	if o.Amount < 0 || math.IsNaN(o.Amount) || math.IsInf(o.Amount, 0) {
		return ErrInvalidAmount
	}
	// Day-of-month is capped at 28 on input so it exists in every month.
	if o.DueDay < 1 || o.DueDay > 28 {
		return ErrInvalidDueDay
	}
	return nil
}

func (c SavingsConfig) Validate() error {
	if c.MonthlyTarget < 0 || math.IsNaN(c.MonthlyTarget) || math.IsInf(c.MonthlyTarget, 0) {
		return ErrInvalidAmount
	}
	if c.YearlyTarget != nil && (*c.YearlyTarget < 0 || math.IsNaN(*c.YearlyTarget) || math.IsInf(*c.YearlyTarget, 0)) {
		return ErrInvalidAmount
	}
	return nil
}

// PickLatestConfig selects the authoritative SavingsConfig from a possibly
// duplicated set: most recently updated wins, falling back to creation time
// when a record has no update timestamp. Duplicates are a tolerated anomaly,
// not an error.
func PickLatestConfig(configs []SavingsConfig) (SavingsConfig, bool) {
	var (
		best  SavingsConfig
		found bool
	)
	for _, c := range configs {
		if !found || touchedAt(c).After(touchedAt(best)) {
			best = c
			found = true
		}
	}
	return best, found
}

func touchedAt(c SavingsConfig) time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// amountOf coerces a stored amount into a usable addend. Partially filled or
// corrupted records must not abort aggregation, so non-finite values count
// as zero.
func amountOf(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
