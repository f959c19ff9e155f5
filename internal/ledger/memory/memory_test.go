package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/ledger"
)

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateTransaction(ctx, core.Transaction{
		Amount: 12.5,
		Type:   core.Expense,
		Date:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateTransaction() assigned no id")
	}

	created.Amount = 20
	if _, err := s.UpdateTransaction(ctx, created); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	list, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 1 || list[0].Amount != 20 {
		t.Errorf("ListTransactions() = %+v, want one updated record", list)
	}

	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if err := s.DeleteTransaction(ctx, created.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestListObligationsFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, _ = s.CreateObligation(ctx, core.Obligation{Kind: core.BillKind, Name: "rent", Amount: 700, DueDay: 1, Active: true})
	_, _ = s.CreateObligation(ctx, core.Obligation{Kind: core.BillKind, Name: "gone", Amount: 50, DueDay: 2, Active: false})
	_, _ = s.CreateObligation(ctx, core.Obligation{Kind: core.IncomeKind, Name: "salary", Amount: 2000, DueDay: 25, Active: true})

	bills, err := s.ListObligations(ctx, ledger.ObligationFilter{Kind: core.BillKind, ActiveOnly: true})
	if err != nil {
		t.Fatalf("ListObligations() error = %v", err)
	}
	if len(bills) != 1 || bills[0].Name != "rent" {
		t.Errorf("ListObligations(bills, active) = %+v, want only rent", bills)
	}

	all, err := s.ListObligations(ctx, ledger.ObligationFilter{})
	if err != nil {
		t.Fatalf("ListObligations() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered ListObligations() = %d records, want 3", len(all))
	}
}

func TestCreateObligationGetsMonthSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	o, err := s.CreateObligation(ctx, core.Obligation{Kind: core.BillKind, Name: "rent", Amount: 1, DueDay: 1, Active: true})
	if err != nil {
		t.Fatalf("CreateObligation() error = %v", err)
	}
	if !o.Settlement.UsesMonthSet() {
		t.Error("new obligation should carry the month-set representation")
	}
}

func TestListObligationsReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, _ := s.CreateObligation(ctx, core.Obligation{Kind: core.BillKind, Name: "rent", Amount: 1, DueDay: 1, Active: true,
		Settlement: core.Settlement{Months: []core.MonthKey{"2025-01"}}})

	list, _ := s.ListObligations(ctx, ledger.ObligationFilter{})
	list[0].Settlement.Months[0] = "1999-01"

	got, _ := s.GetObligation(ctx, created.ID)
	if got.Settlement.Months[0] != "2025-01" {
		t.Error("mutating a listed obligation leaked into the store")
	}
}

func TestSavingsConfigStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.CreateSavingsConfig(ctx, core.SavingsConfig{MonthlyTarget: 100})
	if err != nil {
		t.Fatalf("CreateSavingsConfig() error = %v", err)
	}
	// The store keeps duplicates; resolution picks the newest.
	if _, err := s.CreateSavingsConfig(ctx, core.SavingsConfig{MonthlyTarget: 200}); err != nil {
		t.Fatalf("second CreateSavingsConfig() error = %v", err)
	}

	list, err := s.ListSavingsConfigs(ctx)
	if err != nil {
		t.Fatalf("ListSavingsConfigs() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListSavingsConfigs() = %d records, want 2", len(list))
	}

	first.MonthlyTarget = 150
	updated, err := s.UpdateSavingsConfig(ctx, first)
	if err != nil {
		t.Fatalf("UpdateSavingsConfig() error = %v", err)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("UpdateSavingsConfig() did not advance UpdatedAt")
	}
}
