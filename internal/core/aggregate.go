package core

// KPI is the aggregate figure block for one target month. Field names on
// the wire match what the renderer and the dashboard expect.
type KPI struct {
	IncomeExpected  float64 `json:"incomeExpected"`
	BillsTotal      float64 `json:"billsTotal"`
	IncomeActual    float64 `json:"incomeActual"`
	IncomeRecurring float64 `json:"incomeReceivedRecurring"`
	TxIncome        float64 `json:"txIncome"`
	ExpenseActual   float64 `json:"expensesActual"`
	BillsSettled    float64 `json:"billsPaid"`
	TxExpense       float64 `json:"txExpense"`
	RemainingIncome float64 `json:"remainingIncome"`
	RemainingBills  float64 `json:"remainingBills"`
	Balance         float64 `json:"balance"`
}

// Summarize computes the monthly KPI block from the raw record sets.
//
// It is a pure function: same inputs, same output, no clock or shared state.
// The dashboard, the savings view and the export worker all call this one
// implementation so their numbers reconcile exactly.
//
// Transactions are filtered to the target month here (by local month key),
// so callers may pass the full set. Inactive obligations are skipped even
// if the caller forgot to filter them out. Expected totals are independent
// of the month: an active obligation recurs every month.
func Summarize(month MonthKey, txs []Transaction, bills, incomes []Obligation) KPI {
	var k KPI

	for _, inc := range incomes {
		if !inc.Active {
			continue
		}
		k.IncomeExpected += amountOf(inc.Amount)
		if inc.Settlement.SettledFor(month) {
			k.IncomeRecurring += amountOf(inc.Amount)
		}
	}

	for _, b := range bills {
		if !b.Active {
			continue
		}
		k.BillsTotal += amountOf(b.Amount)
		if b.Settlement.SettledFor(month) {
			k.BillsSettled += amountOf(b.Amount)
		}
	}

	for _, t := range txs {
		key, ok := t.MonthKey()
		if !ok || key != month {
			continue
		}
		typ, ok := t.NormalizedType()
		if !ok {
			continue
		}
		switch typ {
		case Income:
			k.TxIncome += amountOf(t.Amount)
		case Expense:
			k.TxExpense += amountOf(t.Amount)
		}
	}

	k.IncomeActual = k.IncomeRecurring + k.TxIncome
	k.ExpenseActual = k.BillsSettled + k.TxExpense
	// Over-settlement (duplicate records, hand-edited data) must not turn
	// "remaining" negative.
	k.RemainingIncome = floorZero(k.IncomeExpected - k.IncomeRecurring)
	k.RemainingBills = floorZero(k.BillsTotal - k.BillsSettled)
	k.Balance = k.IncomeActual - k.ExpenseActual
	return k
}

// NetSavings is the month's actual savings: everything received minus
// everything spent, deliberately unfloored.
func (k KPI) NetSavings() float64 {
	return k.Balance
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
