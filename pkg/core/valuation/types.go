package valuation

// Default values applied when the caller omits an optional input.
const (
	DefaultProjectionYears = 5
	MinProjectionYears     = 3
	MaxProjectionYears     = 15
	MaxTerminalGrowthRate  = 0.1
)

// RawDCFInput is the DCF request as it arrives from a caller (form, API body, CLI payload).
// Pointer fields distinguish "not supplied" from zero.
type RawDCFInput struct {
	ProjectionYears      *int      `json:"projection_years,omitempty"`
	Revenues             []float64 `json:"revenues"`
	Costs                []float64 `json:"costs"`
	OperatingExpenses    []float64 `json:"operating_expenses"`
	Capex                []float64 `json:"capex"`
	WorkingCapitalChange []float64 `json:"working_capital_change"`
	CostOfEquity         *float64  `json:"cost_of_equity"`
	CostOfDebt           *float64  `json:"cost_of_debt"`
	TaxRate              *float64  `json:"tax_rate"`
	DebtWeight           *float64  `json:"debt_weight"`
	EquityWeight         *float64  `json:"equity_weight"`
	TerminalGrowthRate   *float64  `json:"terminal_growth_rate"`
	NetDebt              *float64  `json:"net_debt,omitempty"`
	SharesOutstanding    *float64  `json:"shares_outstanding,omitempty"`
}

// DCFInput is a validated DCF request. Every per-year series has ProjectionYears entries.
type DCFInput struct {
	ProjectionYears      int
	Revenues             []float64
	Costs                []float64
	OperatingExpenses    []float64
	Capex                []float64
	WorkingCapitalChange []float64
	CostOfEquity         float64
	CostOfDebt           float64
	TaxRate              float64
	DebtWeight           float64
	EquityWeight         float64
	TerminalGrowthRate   float64
	NetDebt              float64
	SharesOutstanding    *float64
}

// RawMultiplesInput is the comparable multiples request as supplied by the caller.
// A multiple only contributes when its metric is also present.
type RawMultiplesInput struct {
	PEMultiple         *float64 `json:"pe_multiple,omitempty"`
	NetIncome          *float64 `json:"net_income,omitempty"`
	EVEBITDAMultiple   *float64 `json:"ev_ebitda_multiple,omitempty"`
	EBITDA             *float64 `json:"ebitda,omitempty"`
	PVPMultiple        *float64 `json:"pv_vp_multiple,omitempty"` // price / book value
	BookValue          *float64 `json:"book_value,omitempty"`
	EVRevenueMultiple  *float64 `json:"ev_revenue_multiple,omitempty"`
	Revenue            *float64 `json:"revenue,omitempty"`
	LiquidityDiscount  *float64 `json:"liquidity_discount,omitempty"`
	ControlPremium     *float64 `json:"control_premium,omitempty"`
	ComparablesSources string   `json:"comparables_sources,omitempty"`
}

// MultiplesInput is a validated multiples request.
type MultiplesInput struct {
	PEMultiple         *float64
	NetIncome          *float64
	EVEBITDAMultiple   *float64
	EBITDA             *float64
	PVPMultiple        *float64
	BookValue          *float64
	EVRevenueMultiple  *float64
	Revenue            *float64
	LiquidityDiscount  float64
	ControlPremium     float64
	ComparablesSources string
}
