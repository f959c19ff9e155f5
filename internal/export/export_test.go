package export

import (
	"bytes"
	"strings"
	"testing"

	"budget/internal/core"
)

func sampleSnapshot() core.Snapshot {
	return core.Snapshot{
		Month: "2025-06",
		KPI: core.KPI{
			IncomeExpected:  1000,
			IncomeActual:    200,
			BillsTotal:      700,
			ExpenseActual:   150,
			RemainingIncome: 800,
			RemainingBills:  700,
			Balance:         50,
		},
		LatestTx: []core.SnapshotTransaction{
			{Date: "2025-06-20", Type: "expense", Amount: 30, Description: "groceries"},
			{Date: "2025-06-05", Type: "income", Amount: 200, Description: "refund"},
		},
		UnpaidBills:      []core.SnapshotEntry{{Name: "rent", Amount: 700}},
		UnreceivedIncome: []core.SnapshotEntry{{Name: "salary", Amount: 1000}},
	}
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF(sampleSnapshot())
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", data[:min(8, len(data))])
	}
}

func TestRenderPDF_EmptySections(t *testing.T) {
	snap := core.Snapshot{Month: "2025-01"}
	if _, err := RenderPDF(snap); err != nil {
		t.Fatalf("RenderPDF() on empty snapshot error = %v", err)
	}
}

func TestRenderCSV(t *testing.T) {
	data, err := RenderCSV(sampleSnapshot())
	if err != nil {
		t.Fatalf("RenderCSV() error = %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"kpi,month,,2025-06,",
		"kpi,incomeExpected,,,1000.00",
		"transaction,groceries,expense,2025-06-20,30.00",
		"unpaidBill,rent,,,700.00",
		"unreceivedIncome,salary,,,1000.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("csv missing line %q\n%s", want, out)
		}
	}
}

func TestFileStoreSave(t *testing.T) {
	store := NewFileStore(t.TempDir(), "http://localhost:8080/exports/")

	path, url, err := store.Save("alice", "2025-06", "csv", []byte("data"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.Contains(path, "alice") || !strings.HasSuffix(path, ".csv") {
		t.Errorf("path = %q", path)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/exports/alice/2025-06-") {
		t.Errorf("url = %q", url)
	}
}

func TestFileStoreSave_AnonymousOwner(t *testing.T) {
	store := NewFileStore(t.TempDir(), "http://localhost")

	_, url, err := store.Save("", "2025-02", "pdf", []byte("data"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.Contains(url, "/all/") {
		t.Errorf("anonymous exports should land under /all/: %q", url)
	}
}

func TestOwnerSegmentSanitizes(t *testing.T) {
	if got := ownerSegment("a/b..c"); got != "a_b__c" {
		t.Errorf("ownerSegment() = %q, want %q", got, "a_b__c")
	}
}
