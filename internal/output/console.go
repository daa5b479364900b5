package output

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// ConsoleFormatter renders a concise run summary for the terminal.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(run *domain.SimulationRun) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RETIREMENT SIMULATION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Run: %s  Scenario: %s  Status: %s\n", run.ID, run.ScenarioID, run.Status)
	if run.Status == domain.RunError {
		fmt.Fprintf(&buf, "Error: %s\n", run.ErrorMessage)
		return buf.Bytes(), nil
	}
	r := run.Result
	if r == nil {
		return buf.Bytes(), nil
	}

	s := r.Summary
	fmt.Fprintf(&buf, "Ending Balance: %s  (min %s, max %s)\n",
		FormatCurrency(s.EndingBalance), FormatCurrency(s.MinBalance), FormatCurrency(s.MaxBalance))
	fmt.Fprintf(&buf, "Guardrail: avg %s, min %s\n", FormatPercent(s.GuardrailAvg), FormatPercent(s.GuardrailMin))
	if s.DepletionMonth != nil {
		fmt.Fprintf(&buf, "Portfolio depleted at month %d\n", *s.DepletionMonth)
	}
	if s.ShortfallMonths > 0 {
		fmt.Fprintf(&buf, "Months with funding shortfall: %d\n", s.ShortfallMonths)
	}
	if s.StochasticRunsCancelled {
		fmt.Fprintln(&buf, "NOTE: run cancelled mid-way; trial results are partial")
	}

	if len(r.Trials) > 1 {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Monte Carlo (%d trials):\n", len(r.Trials))
		endings := make([]decimal.Decimal, len(r.Trials))
		survived := 0
		for i, t := range r.Trials {
			endings[i] = t.EndingBalance
			if t.EndingBalance.IsPositive() {
				survived++
			}
		}
		sort.Slice(endings, func(i, j int) bool { return endings[i].LessThan(endings[j]) })
		fmt.Fprintf(&buf, "  Success rate: %d/%d (%s)\n", survived, len(r.Trials),
			FormatPercent(decimal.NewFromInt(int64(survived)).Div(decimal.NewFromInt(int64(len(r.Trials))))))
		fmt.Fprintf(&buf, "  Ending balance p10=%s p50=%s p90=%s\n",
			FormatCurrency(percentile(endings, 10)),
			FormatCurrency(percentile(endings, 50)),
			FormatCurrency(percentile(endings, 90)))
	}

	if len(r.Yearly) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Year    Balance          Spending        Taxes")
		for _, y := range r.Yearly {
			fmt.Fprintf(&buf, "%d  %14s  %14s  %12s\n",
				y.Year, FormatCurrency(y.EndingBalance), FormatCurrency(y.Spending), FormatCurrency(y.Taxes.TaxPaid))
		}
	}
	return buf.Bytes(), nil
}

// percentile reads the pth percentile from an ascending-sorted slice using
// the nearest-rank method.
func percentile(sorted []decimal.Decimal, p int) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
