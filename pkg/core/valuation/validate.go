package valuation

import (
	"math"
)

// ValidateDCF range-checks a raw DCF request and returns the typed input.
// All violations are collected; nothing is clamped.
func ValidateDCF(raw RawDCFInput) (DCFInput, error) {
	errs := &ValidationError{}

	years := DefaultProjectionYears
	yearsValid := true
	if raw.ProjectionYears != nil {
		years = *raw.ProjectionYears
		if years < MinProjectionYears || years > MaxProjectionYears {
			errs.add("projection_years", "must be between %d and %d, got %d", MinProjectionYears, MaxProjectionYears, years)
			yearsValid = false
		}
	}

	series := []struct {
		field  string
		values []float64
	}{
		{"revenues", raw.Revenues},
		{"costs", raw.Costs},
		{"operating_expenses", raw.OperatingExpenses},
		{"capex", raw.Capex},
		{"working_capital_change", raw.WorkingCapitalChange},
	}

	// With an unusable horizon the series can still be checked against each other.
	expected := years
	if !yearsValid {
		expected = len(raw.Revenues)
	}
	for _, s := range series {
		if len(s.values) != expected {
			errs.add(s.field, "has %d entries, expected %d", len(s.values), expected)
		}
		for i, v := range s.values {
			if !isFinite(v) {
				errs.add(s.field, "year %d is not a finite number", i+1)
			}
		}
	}

	in := DCFInput{
		ProjectionYears:      years,
		Revenues:             raw.Revenues,
		Costs:                raw.Costs,
		OperatingExpenses:    raw.OperatingExpenses,
		Capex:                raw.Capex,
		WorkingCapitalChange: raw.WorkingCapitalChange,
		CostOfEquity:         requireRange(errs, "cost_of_equity", raw.CostOfEquity, 0, 1),
		CostOfDebt:           requireRange(errs, "cost_of_debt", raw.CostOfDebt, 0, 1),
		TaxRate:              requireRange(errs, "tax_rate", raw.TaxRate, 0, 1),
		DebtWeight:           requireRange(errs, "debt_weight", raw.DebtWeight, 0, 1),
		EquityWeight:         requireRange(errs, "equity_weight", raw.EquityWeight, 0, 1),
		TerminalGrowthRate:   requireRange(errs, "terminal_growth_rate", raw.TerminalGrowthRate, 0, MaxTerminalGrowthRate),
	}

	if raw.NetDebt != nil {
		if !isFinite(*raw.NetDebt) {
			errs.add("net_debt", "must be a finite number")
		} else {
			in.NetDebt = *raw.NetDebt
		}
	}

	if raw.SharesOutstanding != nil {
		shares := *raw.SharesOutstanding
		if !isFinite(shares) || shares <= 0 {
			errs.add("shares_outstanding", "must be a positive number, got %v", shares)
		} else {
			in.SharesOutstanding = &shares
		}
	}

	if err := errs.orNil(); err != nil {
		return DCFInput{}, err
	}
	return in, nil
}

// ValidateMultiples range-checks a raw multiples request and returns the typed input.
func ValidateMultiples(raw RawMultiplesInput) (MultiplesInput, error) {
	errs := &ValidationError{}

	optional := []struct {
		field string
		value *float64
	}{
		{"pe_multiple", raw.PEMultiple},
		{"net_income", raw.NetIncome},
		{"ev_ebitda_multiple", raw.EVEBITDAMultiple},
		{"ebitda", raw.EBITDA},
		{"pv_vp_multiple", raw.PVPMultiple},
		{"book_value", raw.BookValue},
		{"ev_revenue_multiple", raw.EVRevenueMultiple},
		{"revenue", raw.Revenue},
	}
	for _, o := range optional {
		if o.value != nil && !isFinite(*o.value) {
			errs.add(o.field, "must be a finite number")
		}
	}

	in := MultiplesInput{
		PEMultiple:         raw.PEMultiple,
		NetIncome:          raw.NetIncome,
		EVEBITDAMultiple:   raw.EVEBITDAMultiple,
		EBITDA:             raw.EBITDA,
		PVPMultiple:        raw.PVPMultiple,
		BookValue:          raw.BookValue,
		EVRevenueMultiple:  raw.EVRevenueMultiple,
		Revenue:            raw.Revenue,
		LiquidityDiscount:  optionalRange(errs, "liquidity_discount", raw.LiquidityDiscount, 0, 1),
		ControlPremium:     optionalRange(errs, "control_premium", raw.ControlPremium, 0, 1),
		ComparablesSources: raw.ComparablesSources,
	}

	if err := errs.orNil(); err != nil {
		return MultiplesInput{}, err
	}
	return in, nil
}

func requireRange(errs *ValidationError, field string, v *float64, lo, hi float64) float64 {
	if v == nil {
		errs.add(field, "is required")
		return 0
	}
	return optionalRange(errs, field, v, lo, hi)
}

// optionalRange treats a missing value as 0, which is the documented default for
// every optional fraction.
func optionalRange(errs *ValidationError, field string, v *float64, lo, hi float64) float64 {
	if v == nil {
		return 0
	}
	if !isFinite(*v) || *v < lo || *v > hi {
		errs.add(field, "must be between %g and %g, got %v", lo, hi, *v)
		return 0
	}
	return *v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
