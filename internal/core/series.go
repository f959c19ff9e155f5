package core

// SavingsReport is the year-to-date savings view for the calendar year
// containing the target month.
type SavingsReport struct {
	Month         MonthKey   `json:"month"`
	Months        []MonthKey `json:"months"`
	SeriesActual  []float64  `json:"seriesActual"`
	SeriesTarget  []float64  `json:"seriesTarget"`
	MonthSavings  float64    `json:"savingsThisMonth"`
	YTDActual     float64    `json:"ytdActual"`
	YTDTarget     float64    `json:"targetYTD"`
	MonthlyTarget float64    `json:"monthlyTarget"`
}

// BuildSavingsReport computes the twelve-point actual-savings series for
// the year of the target month and the cumulative year-to-date totals.
//
// Each series entry independently re-runs the monthly aggregation (it is
// not derived incrementally), so a record change in one month can never
// leak into another month's figure. The year-to-date target uses the
// explicit yearly target when configured, otherwise the monthly target
// scaled by the months elapsed so far — progress through the year is not
// penalized against a full-year figure.
func BuildSavingsReport(month MonthKey, cfg SavingsConfig, txs []Transaction, bills, incomes []Obligation) SavingsReport {
	months := YearMonths(month.Year())
	actual := make([]float64, len(months))
	target := make([]float64, len(months))
	monthly := amountOf(cfg.MonthlyTarget)

	for i, m := range months {
		actual[i] = Summarize(m, txs, bills, incomes).NetSavings()
		target[i] = monthly
	}

	idx := month.Index()
	var ytd float64
	for i := 0; i <= idx && i < len(actual); i++ {
		ytd += actual[i]
	}

	ytdTarget := monthly * float64(idx+1)
	if cfg.YearlyTarget != nil {
		ytdTarget = amountOf(*cfg.YearlyTarget)
	}

	var monthSavings float64
	if idx >= 0 && idx < len(actual) {
		monthSavings = actual[idx]
	}

	return SavingsReport{
		Month:         month,
		Months:        months,
		SeriesActual:  actual,
		SeriesTarget:  target,
		MonthSavings:  monthSavings,
		YTDActual:     ytd,
		YTDTarget:     ytdTarget,
		MonthlyTarget: monthly,
	}
}
