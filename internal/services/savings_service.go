package services

import (
	"context"
	"fmt"

	"budget/internal/core"
	"budget/internal/ledger"
)

// SavingsService manages the savings-target configuration. Storage may hold
// duplicate config records; reads resolve the latest and writes always land
// on it, so duplicates converge instead of multiplying.
type SavingsService struct {
	store ledger.SavingsConfigStore
}

func NewSavingsService(store ledger.SavingsConfigStore) *SavingsService {
	return &SavingsService{store: store}
}

// ResolveConfig returns the authoritative config, or ok=false when none has
// been saved yet.
func (s *SavingsService) ResolveConfig(ctx context.Context) (core.SavingsConfig, bool, error) {
	configs, err := s.store.ListSavingsConfigs(ctx)
	if err != nil {
		return core.SavingsConfig{}, false, fmt.Errorf("list savings configs: %w", err)
	}
	cfg, ok := core.PickLatestConfig(configs)
	return cfg, ok, nil
}

// SaveTargets upserts the savings targets: the latest existing record is
// updated in place, and a record is created only when none exists.
func (s *SavingsService) SaveTargets(ctx context.Context, monthlyTarget float64, yearlyTarget *float64) (core.SavingsConfig, error) {
	next := core.SavingsConfig{
		MonthlyTarget: monthlyTarget,
		YearlyTarget:  yearlyTarget,
	}
	if err := next.Validate(); err != nil {
		return core.SavingsConfig{}, err
	}

	existing, ok, err := s.ResolveConfig(ctx)
	if err != nil {
		return core.SavingsConfig{}, err
	}

	if !ok {
		created, err := s.store.CreateSavingsConfig(ctx, next)
		if err != nil {
			return core.SavingsConfig{}, fmt.Errorf("create savings config: %w", err)
		}
		return created, nil
	}

	existing.MonthlyTarget = next.MonthlyTarget
	existing.YearlyTarget = next.YearlyTarget
	updated, err := s.store.UpdateSavingsConfig(ctx, existing)
	if err != nil {
		return core.SavingsConfig{}, fmt.Errorf("update savings config: %w", err)
	}
	return updated, nil
}
