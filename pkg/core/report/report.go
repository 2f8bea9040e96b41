// Package report renders valuation results as Markdown and HTML for the
// credit request pages and for export.
package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"credit_valuation/pkg/core/validate"
	"credit_valuation/pkg/core/valuation"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Year-over-year revenue moves above this fraction are called out in DCF reports.
const outlierThreshold = 0.5

// Money formats v with two decimals and thousands separators, e.g. "1,080,000.00".
func Money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg && out != "0.00" {
		out = "-" + out
	}
	return out
}

// Percent formats a fraction as a percentage with two decimals, e.g. 0.09588 -> "9.59%".
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

// DCFMarkdown renders a DCF result: assumptions, projection table and sensitivity grid.
func DCFMarkdown(title string, res *valuation.DCFResult) string {
	var b strings.Builder
	a := res.Assumptions

	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("## Discounted Cash Flow\n\n")

	b.WriteString("| Assumption | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Projection years | %d |\n", a.ProjectionYears)
	fmt.Fprintf(&b, "| Cost of equity | %s |\n", Percent(a.CostOfEquity))
	fmt.Fprintf(&b, "| Cost of debt (pre-tax) | %s |\n", Percent(a.CostOfDebt))
	fmt.Fprintf(&b, "| Tax rate | %s |\n", Percent(a.TaxRate))
	fmt.Fprintf(&b, "| Equity / debt weight | %s / %s |\n", Percent(a.EquityWeight), Percent(a.DebtWeight))
	fmt.Fprintf(&b, "| WACC | %s |\n", Percent(res.WACC))
	fmt.Fprintf(&b, "| Terminal growth | %s |\n", Percent(a.TerminalGrowthRate))
	fmt.Fprintf(&b, "| Net debt | %s |\n\n", Money(a.NetDebt))

	revenues := make([]float64, len(res.Years))
	for i, y := range res.Years {
		revenues[i] = y.Revenue
	}
	growth := validate.SeriesYoY(revenues)

	b.WriteString("### Projection\n\n")
	b.WriteString("| Year | Revenue | Growth | EBIT | Taxes | NOPAT | Capex | ΔWC | FCF | PV |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
	for i, y := range res.Years {
		g := "-"
		if i > 0 && growth[i-1] != nil {
			g = Percent(*growth[i-1])
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			y.Year, Money(y.Revenue), g, Money(y.EBIT), Money(y.Taxes), Money(y.NOPAT),
			Money(y.Capex), Money(y.WorkingCapitalChange), Money(y.FreeCashFlow), Money(y.PresentValue))
	}
	b.WriteString("\n")

	if outliers := validate.FindOutliers("Revenue", revenues, outlierThreshold); len(outliers) > 0 {
		b.WriteString("Projection warnings:\n\n")
		for _, o := range outliers {
			fmt.Fprintf(&b, "- %s in year %d %s\n", o.Item, o.Year, o.Reason)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Value\n\n")
	b.WriteString("| Item | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Terminal value | %s |\n", Money(res.TerminalValue))
	fmt.Fprintf(&b, "| PV of terminal value | %s |\n", Money(res.PresentValueOfTerminalValue))
	fmt.Fprintf(&b, "| Enterprise value | %s |\n", Money(res.EnterpriseValue))
	fmt.Fprintf(&b, "| Equity value | %s |\n", Money(res.EquityValue))
	if res.EquityValuePerShare != nil {
		fmt.Fprintf(&b, "| Equity value per share | %s |\n", Money(*res.EquityValuePerShare))
	}
	if len(revenues) > 1 {
		if cagr, err := validate.CalculateCAGR(revenues[0], revenues[len(revenues)-1], len(revenues)-1); err == nil {
			fmt.Fprintf(&b, "| Revenue CAGR | %s |\n", Percent(cagr))
		}
	}
	b.WriteString("\n")

	b.WriteString("### Sensitivity (equity value)\n\n")
	b.WriteString("| WACC \\ g |")
	for _, g := range res.SensitivityGrowthRates {
		fmt.Fprintf(&b, " %s |", Percent(g))
	}
	b.WriteString("\n|---|---|---|---|---|---|\n")
	for r, w := range res.SensitivityWACCs {
		fmt.Fprintf(&b, "| %s |", Percent(w))
		for c := range res.SensitivityGrowthRates {
			fmt.Fprintf(&b, " %s |", Money(res.SensitivityMatrix[r][c]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// MultiplesMarkdown renders a multiples result. Multiples that were not supplied are
// listed as "n/a" rather than zero.
func MultiplesMarkdown(title string, res *valuation.MultiplesResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("## Comparable Multiples\n\n")
	b.WriteString("| Multiple | Implied value |\n|---|---|\n")
	rows := []struct {
		name string
		v    *float64
	}{
		{"P/E", res.PEValuation},
		{"EV/EBITDA", res.EVEBITDAValuation},
		{"P/BV", res.PVPValuation},
		{"EV/Revenue", res.EVRevenueValuation},
	}
	for _, r := range rows {
		cell := "n/a"
		if r.v != nil {
			cell = Money(*r.v)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", r.name, cell)
	}
	b.WriteString("\n| Item | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Average valuation | %s |\n", Money(res.AverageValuation))
	fmt.Fprintf(&b, "| Liquidity discount | %s |\n", Percent(res.LiquidityDiscount))
	fmt.Fprintf(&b, "| Control premium | %s |\n", Percent(res.ControlPremium))
	fmt.Fprintf(&b, "| Adjusted valuation | %s |\n", Money(res.AdjustedValuation))

	if res.ComparablesSources != "" {
		fmt.Fprintf(&b, "\nSources: %s\n", res.ComparablesSources)
	}
	return b.String()
}

// HTML converts a rendered Markdown report to HTML.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}
