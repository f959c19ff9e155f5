package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"budget/internal/core"
)

// RenderCSV writes the snapshot as a flat CSV with a section column, so one
// file carries the KPI block and all three record lists.
func RenderCSV(snap core.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	write := func(record ...string) {
		// Writer errors surface on Flush.
		_ = w.Write(record)
	}

	write("section", "name", "type", "date", "amount")
	write("kpi", "month", "", string(snap.Month), "")

	k := snap.KPI
	kpi := func(name string, value float64) {
		write("kpi", name, "", "", formatAmount(value))
	}
	kpi("incomeExpected", k.IncomeExpected)
	kpi("incomeActual", k.IncomeActual)
	kpi("billsTotal", k.BillsTotal)
	kpi("expensesActual", k.ExpenseActual)
	kpi("remainingIncome", k.RemainingIncome)
	kpi("remainingBills", k.RemainingBills)
	kpi("balance", k.Balance)

	for _, tx := range snap.LatestTx {
		write("transaction", tx.Description, string(tx.Type), tx.Date, formatAmount(tx.Amount))
	}
	for _, e := range snap.UnpaidBills {
		write("unpaidBill", e.Name, "", "", formatAmount(e.Amount))
	}
	for _, e := range snap.UnreceivedIncome {
		write("unreceivedIncome", e.Name, "", "", formatAmount(e.Amount))
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}
