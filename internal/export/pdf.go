// Package export renders summary snapshots into downloadable report files.
package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"budget/internal/core"
)

// RenderPDF lays out the snapshot as a one-page A4 report.
func RenderPDF(snap core.Snapshot) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Monthly report %s", snap.Month), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Monthly report %s", snap.Month), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	kpiLine := func(label string, value float64) {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(80, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, formatAmount(value), "", 1, "R", false, 0, "")
	}

	k := snap.KPI
	kpiLine("Expected income", k.IncomeExpected)
	kpiLine("Actual income", k.IncomeActual)
	kpiLine("Expected bills", k.BillsTotal)
	kpiLine("Actual expenses", k.ExpenseActual)
	kpiLine("Remaining income", k.RemainingIncome)
	kpiLine("Remaining bills", k.RemainingBills)
	kpiLine("Balance", k.Balance)

	section := func(title string) {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	}

	section("Latest transactions")
	if len(snap.LatestTx) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, "No transactions this month", "", 1, "L", false, 0, "")
	}
	for _, tx := range snap.LatestTx {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(28, 6, tx.Date, "", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, string(tx.Type), "", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, tx.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, formatAmount(tx.Amount), "", 1, "R", false, 0, "")
	}

	entrySection := func(title, emptyNote string, entries []core.SnapshotEntry) {
		section(title)
		if len(entries) == 0 {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.CellFormat(0, 6, emptyNote, "", 1, "L", false, 0, "")
			return
		}
		for _, e := range entries {
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(120, 6, e.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, formatAmount(e.Amount), "", 1, "R", false, 0, "")
		}
	}

	entrySection("Unpaid bills", "All bills settled", snap.UnpaidBills)
	entrySection("Unreceived income", "All income received", snap.UnreceivedIncome)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
