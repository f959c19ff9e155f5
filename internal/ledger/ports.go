package ledger

import (
	"context"
	"errors"

	"budget/internal/core"
)

// ErrNotFound is returned by stores when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ObligationFilter narrows an obligation listing. ActiveOnly applies the
// boundary predicate "active != false"; month filtering is deliberately NOT
// offered here — records are bucketed client-side on the local month key to
// avoid UTC/local mismatches in store-side date filters.
type ObligationFilter struct {
	Kind       core.ObligationKind
	ActiveOnly bool
}

// Ports for the data-access collaborators. The aggregation core only ever
// sees full record sets fetched through these.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	ObligationStore interface {
		ListObligations(ctx context.Context, f ObligationFilter) ([]core.Obligation, error)
		GetObligation(ctx context.Context, id string) (core.Obligation, error)
		CreateObligation(ctx context.Context, o core.Obligation) (core.Obligation, error)
		UpdateObligation(ctx context.Context, o core.Obligation) (core.Obligation, error)
		DeleteObligation(ctx context.Context, id string) error
	}

	SavingsConfigStore interface {
		ListSavingsConfigs(ctx context.Context) ([]core.SavingsConfig, error)
		CreateSavingsConfig(ctx context.Context, c core.SavingsConfig) (core.SavingsConfig, error)
		UpdateSavingsConfig(ctx context.Context, c core.SavingsConfig) (core.SavingsConfig, error)
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id string) error
	}

	// Store is the full data-access surface a backend must provide.
	Store interface {
		TransactionStore
		ObligationStore
		SavingsConfigStore
		CategoryStore
		Close() error
	}
)
