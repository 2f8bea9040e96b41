package valuation

import (
	"math"
)

// YearRow is one projected year of the free cash flow build.
type YearRow struct {
	Year                 int     `json:"year"`
	Revenue              float64 `json:"revenue"`
	EBIT                 float64 `json:"ebit"`
	Taxes                float64 `json:"taxes"`
	NOPAT                float64 `json:"nopat"`
	Capex                float64 `json:"capex"`
	WorkingCapitalChange float64 `json:"working_capital_change"`
	FreeCashFlow         float64 `json:"free_cash_flow"`
	DiscountFactor       float64 `json:"discount_factor"`
	PresentValue         float64 `json:"present_value"`
}

// discounted holds the outputs of one discounting pass at a given WACC / growth pair.
type discounted struct {
	PresentValues   []float64
	TerminalValue   float64
	PVTerminal      float64
	EnterpriseValue float64
	EquityValue     float64
}

// CalculateDCF validates the raw request and runs the DCF.
func CalculateDCF(raw RawDCFInput) (*DCFResult, error) {
	in, err := ValidateDCF(raw)
	if err != nil {
		return nil, err
	}
	return RunDCF(in)
}

// RunDCF performs a two-stage DCF (explicit horizon + Gordon growth) on validated input.
// Depreciation is not modelled: EBIT and EBITDA are the same quantity here.
func RunDCF(in DCFInput) (*DCFResult, error) {
	w := CalculateWACC(WACCInput{
		CostOfEquity: in.CostOfEquity,
		CostOfDebt:   in.CostOfDebt,
		TaxRate:      in.TaxRate,
		DebtWeight:   in.DebtWeight,
		EquityWeight: in.EquityWeight,
	})

	rows := projectFreeCashFlows(in)
	fcfs := make([]float64, len(rows))
	for i, r := range rows {
		fcfs[i] = r.FreeCashFlow
	}

	base, err := discountCashFlows(fcfs, w.WACC, in.TerminalGrowthRate, in.NetDebt, "base case")
	if err != nil {
		return nil, err
	}

	grid, err := buildSensitivity(fcfs, w.WACC, in.TerminalGrowthRate, in.NetDebt)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].DiscountFactor = 1.0 / math.Pow(1.0+w.WACC, float64(i+1))
		rows[i].PresentValue = base.PresentValues[i]
	}

	return formatDCFResult(in, w, rows, base, grid), nil
}

func projectFreeCashFlows(in DCFInput) []YearRow {
	rows := make([]YearRow, in.ProjectionYears)
	for i := 0; i < in.ProjectionYears; i++ {
		ebit := in.Revenues[i] - in.Costs[i] - in.OperatingExpenses[i]
		taxes := ebit * in.TaxRate
		nopat := ebit - taxes
		rows[i] = YearRow{
			Year:                 i + 1,
			Revenue:              in.Revenues[i],
			EBIT:                 ebit,
			Taxes:                taxes,
			NOPAT:                nopat,
			Capex:                in.Capex[i],
			WorkingCapitalChange: in.WorkingCapitalChange[i],
			FreeCashFlow:         nopat - in.Capex[i] - in.WorkingCapitalChange[i],
		}
	}
	return rows
}

// discountCashFlows is shared by the base case and every sensitivity cell so that the
// zero-offset cell reproduces the base equity value exactly.
func discountCashFlows(fcfs []float64, wacc, growth, netDebt float64, scope string) (discounted, error) {
	// Also rejects NaN.
	if !(wacc > growth) {
		return discounted{}, &DomainError{WACC: wacc, Growth: growth, Scope: scope}
	}

	out := discounted{PresentValues: make([]float64, len(fcfs))}
	var pvSum float64
	for i, fcf := range fcfs {
		// Year 1 is discounted one full period.
		pv := fcf / math.Pow(1.0+wacc, float64(i+1))
		out.PresentValues[i] = pv
		pvSum += pv
	}

	// Gordon growth on the final projected year
	terminalFCF := fcfs[len(fcfs)-1] * (1 + growth)
	out.TerminalValue = terminalFCF / (wacc - growth)
	out.PVTerminal = out.TerminalValue / math.Pow(1.0+wacc, float64(len(fcfs)))

	out.EnterpriseValue = pvSum + out.PVTerminal
	out.EquityValue = out.EnterpriseValue - netDebt

	if !isFinite(out.EnterpriseValue) {
		return discounted{}, &DomainError{WACC: wacc, Growth: growth, Scope: scope}
	}
	return out, nil
}
