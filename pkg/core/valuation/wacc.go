package valuation

// WACCInput parameters for calculating Cost of Capital
type WACCInput struct {
	CostOfEquity float64
	CostOfDebt   float64 // Pre-tax
	TaxRate      float64
	DebtWeight   float64
	EquityWeight float64
}

// WACCResult holds the calculated rates
type WACCResult struct {
	CostOfEquity       float64
	AfterTaxCostOfDebt float64
	WeightDebt         float64
	WeightEquity       float64
	WACC               float64
}

// CalculateWACC computes the after-tax Weighted Average Cost of Capital.
// The weights are used exactly as given; they are not renormalized to sum to 1.
func CalculateWACC(input WACCInput) WACCResult {
	// Kd after tax: the tax shield only applies to debt
	kd := input.CostOfDebt * (1 - input.TaxRate)

	// WACC = Ke*We + Kd*(1-t)*Wd
	wacc := input.CostOfEquity*input.EquityWeight + kd*input.DebtWeight

	return WACCResult{
		CostOfEquity:       input.CostOfEquity,
		AfterTaxCostOfDebt: kd,
		WeightDebt:         input.DebtWeight,
		WeightEquity:       input.EquityWeight,
		WACC:               wacc,
	}
}
