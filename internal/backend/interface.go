// Package backend selects and constructs the ledger store the binaries run
// against.
package backend

import (
	"context"

	"budget/internal/ledger"
)

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the store instance and its cleanup function.
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Type names a storage backend.
type Type string

const (
	SQLiteStore Type = "sqlite"
	MemoryStore Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteStore, MemoryStore:
		return true
	default:
		return false
	}
}
