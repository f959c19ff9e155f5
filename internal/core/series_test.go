package core

import (
	"testing"
	"time"
)

func TestBuildSavingsReport_YTDIsPrefixSum(t *testing.T) {
	month := MonthKey("2025-05")
	txs := []Transaction{
		{Amount: 100, Type: "income", Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local)},
		{Amount: 40, Type: "expense", Date: time.Date(2025, 3, 4, 0, 0, 0, 0, time.Local)},
		{Amount: 70, Type: "income", Date: time.Date(2025, 5, 20, 0, 0, 0, 0, time.Local)},
	}

	r := BuildSavingsReport(month, SavingsConfig{MonthlyTarget: 50}, txs, nil, nil)

	if len(r.SeriesActual) != 12 {
		t.Fatalf("series length = %d, want 12", len(r.SeriesActual))
	}
	var want float64
	for i := 0; i <= month.Index(); i++ {
		want += r.SeriesActual[i]
	}
	if r.YTDActual != want {
		t.Errorf("YTDActual = %v, want prefix sum %v", r.YTDActual, want)
	}
	if r.YTDActual != 130 {
		t.Errorf("YTDActual = %v, want 130", r.YTDActual)
	}
	if r.MonthSavings != 70 {
		t.Errorf("MonthSavings = %v, want 70", r.MonthSavings)
	}
}

func TestBuildSavingsReport_LaterMonthsDoNotLeak(t *testing.T) {
	month := MonthKey("2025-03")
	base := []Transaction{
		{Amount: 200, Type: "income", Date: time.Date(2025, 2, 5, 0, 0, 0, 0, time.Local)},
	}
	withLater := append([]Transaction{}, base...)
	withLater = append(withLater, Transaction{
		Amount: 9999, Type: "income", Date: time.Date(2025, 11, 5, 0, 0, 0, 0, time.Local),
	})

	a := BuildSavingsReport(month, SavingsConfig{MonthlyTarget: 100}, base, nil, nil)
	b := BuildSavingsReport(month, SavingsConfig{MonthlyTarget: 100}, withLater, nil, nil)

	if a.YTDActual != b.YTDActual {
		t.Errorf("later-month transaction changed earlier YTD: %v vs %v", a.YTDActual, b.YTDActual)
	}
	if b.SeriesActual[10] != 9999 {
		t.Errorf("November entry = %v, want 9999", b.SeriesActual[10])
	}
}

func TestBuildSavingsReport_Target(t *testing.T) {
	yearly := 5000.0
	tests := []struct {
		name  string
		month MonthKey
		cfg   SavingsConfig
		want  float64
	}{
		{
			name:  "derived from monthly target through April",
			month: "2025-04",
			cfg:   SavingsConfig{MonthlyTarget: 100},
			want:  400,
		},
		{
			name:  "january derives one month",
			month: "2025-01",
			cfg:   SavingsConfig{MonthlyTarget: 250},
			want:  250,
		},
		{
			name:  "explicit yearly target overrides",
			month: "2025-02",
			cfg:   SavingsConfig{MonthlyTarget: 100, YearlyTarget: &yearly},
			want:  5000,
		},
		{
			name:  "absent config yields zero target",
			month: "2025-06",
			cfg:   SavingsConfig{},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BuildSavingsReport(tt.month, tt.cfg, nil, nil, nil)
			if r.YTDTarget != tt.want {
				t.Errorf("YTDTarget = %v, want %v", r.YTDTarget, tt.want)
			}
		})
	}
}

func TestBuildSavingsReport_SettledObligationsPerMonth(t *testing.T) {
	// An income source settled in two months contributes to exactly those
	// series entries.
	inc := Obligation{
		Kind: IncomeKind, Name: "salary", Amount: 1000, DueDay: 1, Active: true,
		Settlement: Settlement{Months: []MonthKey{"2025-01", "2025-02"}},
	}
	bill := Obligation{
		Kind: BillKind, Name: "rent", Amount: 300, DueDay: 1, Active: true,
		Settlement: Settlement{Months: []MonthKey{"2025-02"}},
	}

	r := BuildSavingsReport("2025-02", SavingsConfig{MonthlyTarget: 100}, nil, []Obligation{bill}, []Obligation{inc})

	if r.SeriesActual[0] != 1000 {
		t.Errorf("January = %v, want 1000", r.SeriesActual[0])
	}
	if r.SeriesActual[1] != 700 {
		t.Errorf("February = %v, want 700", r.SeriesActual[1])
	}
	if r.SeriesActual[2] != 0 {
		t.Errorf("March = %v, want 0", r.SeriesActual[2])
	}
	if r.YTDActual != 1700 {
		t.Errorf("YTDActual = %v, want 1700", r.YTDActual)
	}
}
