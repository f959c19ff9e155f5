// Package memory provides an in-memory ledger backend used as the default
// development backend and as the test double for the service layer.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/ledger"
)

type Store struct {
	mu           sync.RWMutex
	transactions map[string]core.Transaction
	obligations  map[string]core.Obligation
	configs      map[string]core.SavingsConfig
	categories   map[string]core.Category

	// insertion order for deterministic listings
	txOrder  []string
	obOrder  []string
	cfgOrder []string
	catOrder []string
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: make(map[string]core.Transaction),
		obligations:  make(map[string]core.Obligation),
		configs:      make(map[string]core.SavingsConfig),
		categories:   make(map[string]core.Category),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0, len(s.txOrder))
	for _, id := range s.txOrder {
		if t, ok := s.transactions[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.transactions[t.ID] = t
	s.txOrder = append(s.txOrder, t.ID)
	return t, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[t.ID]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, ledger.ErrNotFound)
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListObligations(ctx context.Context, f ledger.ObligationFilter) ([]core.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Obligation, 0, len(s.obOrder))
	for _, id := range s.obOrder {
		o, ok := s.obligations[id]
		if !ok {
			continue
		}
		if f.Kind != "" && o.Kind != f.Kind {
			continue
		}
		if f.ActiveOnly && !o.Active {
			continue
		}
		out = append(out, cloneObligation(o))
	}
	return out, nil
}

func (s *Store) GetObligation(ctx context.Context, id string) (core.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.obligations[id]
	if !ok {
		return core.Obligation{}, fmt.Errorf("obligation %s: %w", id, ledger.ErrNotFound)
	}
	return cloneObligation(o), nil
}

func (s *Store) CreateObligation(ctx context.Context, o core.Obligation) (core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	o.ID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Settlement.Months == nil {
		// New records always carry the set representation.
		o.Settlement.Months = []core.MonthKey{}
	}
	s.obligations[o.ID] = cloneObligation(o)
	s.obOrder = append(s.obOrder, o.ID)
	return o, nil
}

func (s *Store) UpdateObligation(ctx context.Context, o core.Obligation) (core.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.obligations[o.ID]
	if !ok {
		return core.Obligation{}, fmt.Errorf("obligation %s: %w", o.ID, ledger.ErrNotFound)
	}
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = time.Now()
	s.obligations[o.ID] = cloneObligation(o)
	return o, nil
}

func (s *Store) DeleteObligation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.obligations[id]; !ok {
		return fmt.Errorf("obligation %s: %w", id, ledger.ErrNotFound)
	}
	delete(s.obligations, id)
	return nil
}

func (s *Store) ListSavingsConfigs(ctx context.Context) ([]core.SavingsConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.SavingsConfig, 0, len(s.cfgOrder))
	for _, id := range s.cfgOrder {
		if c, ok := s.configs[id]; ok {
			out = append(out, cloneConfig(c))
		}
	}
	return out, nil
}

func (s *Store) CreateSavingsConfig(ctx context.Context, c core.SavingsConfig) (core.SavingsConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.configs[c.ID] = cloneConfig(c)
	s.cfgOrder = append(s.cfgOrder, c.ID)
	return c, nil
}

func (s *Store) UpdateSavingsConfig(ctx context.Context, c core.SavingsConfig) (core.SavingsConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.configs[c.ID]
	if !ok {
		return core.SavingsConfig{}, fmt.Errorf("savings config %s: %w", c.ID, ledger.ErrNotFound)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	s.configs[c.ID] = cloneConfig(c)
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Category, 0, len(s.catOrder))
	for _, id := range s.catOrder {
		if c, ok := s.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.categories[c.ID] = c
	s.catOrder = append(s.catOrder, c.ID)
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok {
		return core.Category{}, fmt.Errorf("category %s: %w", c.ID, ledger.ErrNotFound)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %s: %w", id, ledger.ErrNotFound)
	}
	// Referencing records keep their now-dangling weak id; readers treat
	// it as "no category".
	delete(s.categories, id)
	return nil
}

func cloneObligation(o core.Obligation) core.Obligation {
	if o.Settlement.Months != nil {
		months := make([]core.MonthKey, len(o.Settlement.Months))
		copy(months, o.Settlement.Months)
		o.Settlement.Months = months
	}
	return o
}

func cloneConfig(c core.SavingsConfig) core.SavingsConfig {
	if c.YearlyTarget != nil {
		v := *c.YearlyTarget
		c.YearlyTarget = &v
	}
	return c
}
