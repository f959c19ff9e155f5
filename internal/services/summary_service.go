// Package services orchestrates the aggregation core against the ledger
// store and the export queue.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"budget/internal/core"
	"budget/internal/ledger"
)

// SummaryService assembles dashboard numbers, snapshots and savings reports
// from the raw record sets.
type SummaryService struct {
	store ledger.Store
}

func NewSummaryService(store ledger.Store) *SummaryService {
	return &SummaryService{store: store}
}

// records is one consistent fetch of everything aggregation needs.
type records struct {
	txs     []core.Transaction
	bills   []core.Obligation
	incomes []core.Obligation
}

// fetch loads the three record sets concurrently. Transactions are the
// backbone of every number, so their failure aborts; a failed obligation
// fetch degrades to an empty set so the dashboard still renders.
func (s *SummaryService) fetch(ctx context.Context) (records, error) {
	var rec records

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txs, err := s.store.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		rec.txs = txs
		return nil
	})

	g.Go(func() error {
		bills, err := s.store.ListObligations(gctx, ledger.ObligationFilter{Kind: core.BillKind})
		if err != nil {
			slog.WarnContext(gctx, "Bills unavailable, aggregating without them", "error", err)
			return nil
		}
		rec.bills = bills
		return nil
	})

	g.Go(func() error {
		incomes, err := s.store.ListObligations(gctx, ledger.ObligationFilter{Kind: core.IncomeKind})
		if err != nil {
			slog.WarnContext(gctx, "Income sources unavailable, aggregating without them", "error", err)
			return nil
		}
		rec.incomes = incomes
		return nil
	})

	if err := g.Wait(); err != nil {
		return records{}, err
	}
	return rec, nil
}

// KPIFor computes the dashboard block for one month.
func (s *SummaryService) KPIFor(ctx context.Context, month core.MonthKey) (core.KPI, error) {
	if !month.Valid() {
		return core.KPI{}, fmt.Errorf("month %q: %w", month, core.ErrInvalidMonthKey)
	}
	rec, err := s.fetch(ctx)
	if err != nil {
		return core.KPI{}, err
	}
	return core.Summarize(month, rec.txs, rec.bills, rec.incomes), nil
}

// SnapshotFor builds an immutable summary snapshot. The limit bounds the
// latest-transaction preview.
func (s *SummaryService) SnapshotFor(ctx context.Context, month core.MonthKey, limit int) (core.Snapshot, error) {
	if !month.Valid() {
		return core.Snapshot{}, fmt.Errorf("month %q: %w", month, core.ErrInvalidMonthKey)
	}
	rec, err := s.fetch(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	return core.BuildSnapshot(month, rec.txs, rec.bills, rec.incomes, limit), nil
}

// SavingsReportFor builds the year-to-date savings report for the month's
// year, resolving the authoritative savings config on the way.
func (s *SummaryService) SavingsReportFor(ctx context.Context, month core.MonthKey) (core.SavingsReport, error) {
	if !month.Valid() {
		return core.SavingsReport{}, fmt.Errorf("month %q: %w", month, core.ErrInvalidMonthKey)
	}

	rec, err := s.fetch(ctx)
	if err != nil {
		return core.SavingsReport{}, err
	}

	var cfg core.SavingsConfig
	configs, err := s.store.ListSavingsConfigs(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Savings configs unavailable, reporting without targets", "error", err)
	} else if best, ok := core.PickLatestConfig(configs); ok {
		cfg = best
	}

	return core.BuildSavingsReport(month, cfg, rec.txs, rec.bills, rec.incomes), nil
}
