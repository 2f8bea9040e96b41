package valuation

// Method names used in results and persisted records.
const (
	MethodDCF       = "dcf"
	MethodMultiples = "multiples"
)

// DCFAssumptions echoes the inputs that drove a DCF result.
type DCFAssumptions struct {
	ProjectionYears    int      `json:"projection_years"`
	CostOfEquity       float64  `json:"cost_of_equity"`
	CostOfDebt         float64  `json:"cost_of_debt"`
	AfterTaxCostOfDebt float64  `json:"after_tax_cost_of_debt"`
	TaxRate            float64  `json:"tax_rate"`
	DebtWeight         float64  `json:"debt_weight"`
	EquityWeight       float64  `json:"equity_weight"`
	TerminalGrowthRate float64  `json:"terminal_growth_rate"`
	NetDebt            float64  `json:"net_debt"`
	SharesOutstanding  *float64 `json:"shares_outstanding,omitempty"`
}

// DCFResult is the stable DCF output contract handed to callers and to storage.
type DCFResult struct {
	Method                      string         `json:"method"`
	WACC                        float64        `json:"wacc"`
	FreeCashFlows               []float64      `json:"free_cash_flows"`
	PresentValues               []float64      `json:"present_values"`
	TerminalValue               float64        `json:"terminal_value"`
	PresentValueOfTerminalValue float64        `json:"present_value_of_terminal_value"`
	EnterpriseValue             float64        `json:"enterprise_value"`
	EquityValue                 float64        `json:"equity_value"`
	EquityValuePerShare         *float64       `json:"equity_value_per_share,omitempty"`
	Years                       []YearRow      `json:"years"`
	SensitivityMatrix           [5][5]float64  `json:"sensitivity_matrix"`
	SensitivityWACCs            [5]float64     `json:"sensitivity_waccs"`
	SensitivityGrowthRates      [5]float64     `json:"sensitivity_growth_rates"`
	Assumptions                 DCFAssumptions `json:"assumptions"`
}

// MultiplesResult is the stable comparable multiples output contract.
// Per-multiple valuations are nil when their pair was incomplete.
type MultiplesResult struct {
	Method             string   `json:"method"`
	PEValuation        *float64 `json:"pe_valuation,omitempty"`
	EVEBITDAValuation  *float64 `json:"ev_ebitda_valuation,omitempty"`
	PVPValuation       *float64 `json:"pv_vp_valuation,omitempty"`
	EVRevenueValuation *float64 `json:"ev_revenue_valuation,omitempty"`
	MultiplesUsed      int      `json:"multiples_used"`
	AverageValuation   float64  `json:"average_valuation"`
	AdjustedValuation  float64  `json:"adjusted_valuation"`
	LiquidityDiscount  float64  `json:"liquidity_discount"`
	ControlPremium     float64  `json:"control_premium"`
	ComparablesSources string   `json:"comparables_sources,omitempty"`
}

func formatDCFResult(in DCFInput, w WACCResult, rows []YearRow, base discounted, grid sensitivityGrid) *DCFResult {
	fcfs := make([]float64, len(rows))
	for i, r := range rows {
		fcfs[i] = r.FreeCashFlow
	}

	res := &DCFResult{
		Method:                      MethodDCF,
		WACC:                        w.WACC,
		FreeCashFlows:               fcfs,
		PresentValues:               base.PresentValues,
		TerminalValue:               base.TerminalValue,
		PresentValueOfTerminalValue: base.PVTerminal,
		EnterpriseValue:             base.EnterpriseValue,
		EquityValue:                 base.EquityValue,
		Years:                       rows,
		SensitivityMatrix:           grid.EquityValues,
		SensitivityWACCs:            grid.WACCs,
		SensitivityGrowthRates:      grid.GrowthRates,
		Assumptions: DCFAssumptions{
			ProjectionYears:    in.ProjectionYears,
			CostOfEquity:       in.CostOfEquity,
			CostOfDebt:         in.CostOfDebt,
			AfterTaxCostOfDebt: w.AfterTaxCostOfDebt,
			TaxRate:            in.TaxRate,
			DebtWeight:         in.DebtWeight,
			EquityWeight:       in.EquityWeight,
			TerminalGrowthRate: in.TerminalGrowthRate,
			NetDebt:            in.NetDebt,
			SharesOutstanding:  in.SharesOutstanding,
		},
	}

	if in.SharesOutstanding != nil {
		perShare := base.EquityValue / *in.SharesOutstanding
		res.EquityValuePerShare = &perShare
	}
	return res
}

func formatMultiplesResult(in MultiplesInput, v impliedValuations, used int, average, adjusted float64) *MultiplesResult {
	return &MultiplesResult{
		Method:             MethodMultiples,
		PEValuation:        v.PE,
		EVEBITDAValuation:  v.EVEBITDA,
		PVPValuation:       v.PVP,
		EVRevenueValuation: v.EVRevenue,
		MultiplesUsed:      used,
		AverageValuation:   average,
		AdjustedValuation:  adjusted,
		LiquidityDiscount:  in.LiquidityDiscount,
		ControlPremium:     in.ControlPremium,
		ComparablesSources: in.ComparablesSources,
	}
}
