package core

import "sort"

// List bounds for snapshot sections.
const (
	PreviewLimit = 5  // on-screen dashboard preview
	ExportLimit  = 10 // exported document
)

type (
	// SnapshotTransaction is a flattened transaction row inside a snapshot.
	SnapshotTransaction struct {
		Date        string  `json:"date,omitempty"`
		Type        string  `json:"type,omitempty"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description,omitempty"`
	}

	// SnapshotEntry is an outstanding bill or income source line.
	SnapshotEntry struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	// Snapshot is an immutable projection of one month's summary: the KPI
	// block plus the bounded display lists. It owns copies of everything it
	// contains so later mutation of the live record sets cannot reach it,
	// and a document rendered from it matches exactly what was on screen.
	Snapshot struct {
		Month            MonthKey              `json:"month"`
		KPI              KPI                   `json:"kpi"`
		LatestTx         []SnapshotTransaction `json:"latestTx"`
		UnpaidBills      []SnapshotEntry       `json:"unpaidBills"`
		UnreceivedIncome []SnapshotEntry       `json:"unreceivedIncome"`
	}
)

// BuildSnapshot freezes the month's summary for display or export.
//
// LatestTx holds the most recent limit transactions of the target month,
// newest first, ties broken by creation order (newest first). The unpaid
// and unreceived lists keep store order and are bounded by the same limit.
func BuildSnapshot(month MonthKey, txs []Transaction, bills, incomes []Obligation, limit int) Snapshot {
	if limit <= 0 {
		limit = ExportLimit
	}

	snap := Snapshot{
		Month:            month,
		KPI:              Summarize(month, txs, bills, incomes),
		LatestTx:         make([]SnapshotTransaction, 0, limit),
		UnpaidBills:      make([]SnapshotEntry, 0, limit),
		UnreceivedIncome: make([]SnapshotEntry, 0, limit),
	}

	monthTx := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if key, ok := t.MonthKey(); ok && key == month {
			monthTx = append(monthTx, t)
		}
	}
	sort.SliceStable(monthTx, func(i, j int) bool {
		if !monthTx[i].Date.Equal(monthTx[j].Date) {
			return monthTx[i].Date.After(monthTx[j].Date)
		}
		return monthTx[i].CreatedAt.After(monthTx[j].CreatedAt)
	})
	for _, t := range monthTx {
		if len(snap.LatestTx) == limit {
			break
		}
		row := SnapshotTransaction{
			Type:        string(t.Type),
			Amount:      amountOf(t.Amount),
			Description: t.Description,
		}
		if !t.Date.IsZero() {
			row.Date = t.Date.Local().Format("2006-01-02")
		}
		snap.LatestTx = append(snap.LatestTx, row)
	}

	for _, b := range bills {
		if len(snap.UnpaidBills) == limit {
			break
		}
		if b.Active && !b.Settlement.SettledFor(month) {
			snap.UnpaidBills = append(snap.UnpaidBills, SnapshotEntry{Name: b.Name, Amount: amountOf(b.Amount)})
		}
	}
	for _, inc := range incomes {
		if len(snap.UnreceivedIncome) == limit {
			break
		}
		if inc.Active && !inc.Settlement.SettledFor(month) {
			snap.UnreceivedIncome = append(snap.UnreceivedIncome, SnapshotEntry{Name: inc.Name, Amount: amountOf(inc.Amount)})
		}
	}

	return snap
}
