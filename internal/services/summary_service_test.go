package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/ledger/memory"
)

// faultStore wraps the in-memory store with injectable fetch failures.
type faultStore struct {
	ledger.Store
	txErr error
	obErr error
}

func (f *faultStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if f.txErr != nil {
		return nil, f.txErr
	}
	return f.Store.ListTransactions(ctx)
}

func (f *faultStore) ListObligations(ctx context.Context, filter ledger.ObligationFilter) ([]core.Obligation, error) {
	if f.obErr != nil {
		return nil, f.obErr
	}
	return f.Store.ListObligations(ctx, filter)
}

func seedStore(t *testing.T) ledger.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	_, err := store.CreateTransaction(ctx, core.Transaction{
		Amount: 200, Type: core.Income,
		Date: time.Date(2025, 6, 5, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	_, err = store.CreateObligation(ctx, core.Obligation{
		Kind: core.IncomeKind, Name: "salary", Amount: 1000, DueDay: 25, Active: true,
	})
	if err != nil {
		t.Fatalf("seed income source: %v", err)
	}
	_, err = store.CreateObligation(ctx, core.Obligation{
		Kind: core.BillKind, Name: "rent", Amount: 700, DueDay: 1, Active: true,
	})
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}
	return store
}

func TestKPIFor(t *testing.T) {
	svc := NewSummaryService(seedStore(t))

	kpi, err := svc.KPIFor(context.Background(), "2025-06")
	if err != nil {
		t.Fatalf("KPIFor() error = %v", err)
	}
	if kpi.IncomeExpected != 1000 || kpi.IncomeActual != 200 {
		t.Errorf("income expected/actual = %v/%v, want 1000/200", kpi.IncomeExpected, kpi.IncomeActual)
	}
	if kpi.RemainingIncome != 800 || kpi.RemainingBills != 700 {
		t.Errorf("remaining income/bills = %v/%v, want 800/700", kpi.RemainingIncome, kpi.RemainingBills)
	}
}

func TestKPIFor_RejectsInvalidMonth(t *testing.T) {
	svc := NewSummaryService(memory.New())

	_, err := svc.KPIFor(context.Background(), "2025-6")
	if !errors.Is(err, core.ErrInvalidMonthKey) {
		t.Errorf("KPIFor() error = %v, want ErrInvalidMonthKey", err)
	}
}

func TestKPIFor_ObligationFailureDegrades(t *testing.T) {
	store := &faultStore{Store: seedStore(t), obErr: errors.New("obligations table locked")}
	svc := NewSummaryService(store)

	kpi, err := svc.KPIFor(context.Background(), "2025-06")
	if err != nil {
		t.Fatalf("KPIFor() error = %v, want degraded success", err)
	}
	if kpi.IncomeExpected != 0 || kpi.BillsTotal != 0 {
		t.Errorf("degraded KPI kept obligations: %+v", kpi)
	}
	if kpi.TxIncome != 200 {
		t.Errorf("degraded KPI lost transactions: %+v", kpi)
	}
}

func TestKPIFor_TransactionFailureIsFatal(t *testing.T) {
	wantErr := errors.New("transactions table gone")
	store := &faultStore{Store: seedStore(t), txErr: wantErr}
	svc := NewSummaryService(store)

	_, err := svc.KPIFor(context.Background(), "2025-06")
	if !errors.Is(err, wantErr) {
		t.Errorf("KPIFor() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSnapshotFor_UsesLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for i := 1; i <= 8; i++ {
		_, err := store.CreateTransaction(ctx, core.Transaction{
			Amount: float64(i), Type: core.Expense,
			Date: time.Date(2025, 6, i, 0, 0, 0, 0, time.Local),
		})
		if err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}
	svc := NewSummaryService(store)

	snap, err := svc.SnapshotFor(ctx, "2025-06", core.PreviewLimit)
	if err != nil {
		t.Fatalf("SnapshotFor() error = %v", err)
	}
	if len(snap.LatestTx) != core.PreviewLimit {
		t.Errorf("LatestTx length = %d, want %d", len(snap.LatestTx), core.PreviewLimit)
	}
}

func TestSavingsReportFor_ResolvesLatestConfig(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)

	if _, err := store.CreateSavingsConfig(ctx, core.SavingsConfig{MonthlyTarget: 100}); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	time.Sleep(time.Millisecond) // distinct timestamps for the pick-latest rule
	if _, err := store.CreateSavingsConfig(ctx, core.SavingsConfig{MonthlyTarget: 250}); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	svc := NewSummaryService(store)
	r, err := svc.SavingsReportFor(ctx, "2025-03")
	if err != nil {
		t.Fatalf("SavingsReportFor() error = %v", err)
	}
	if r.MonthlyTarget != 250 {
		t.Errorf("MonthlyTarget = %v, want the most recent config's 250", r.MonthlyTarget)
	}
	if r.YTDTarget != 750 {
		t.Errorf("YTDTarget = %v, want 750", r.YTDTarget)
	}
}
