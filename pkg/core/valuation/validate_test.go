package valuation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func violationFields(t *testing.T, err error) map[string]bool {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := map[string]bool{}
	for _, v := range vErr.Violations {
		fields[v.Field] = true
	}
	return fields
}

func TestValidateDCF_Valid(t *testing.T) {
	in, err := ValidateDCF(baselineDCF())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.ProjectionYears != 3 {
		t.Errorf("ProjectionYears = %d, want 3", in.ProjectionYears)
	}
	if in.TaxRate != 0.34 {
		t.Errorf("TaxRate = %v", in.TaxRate)
	}
}

func TestValidateDCF_Defaults(t *testing.T) {
	raw := baselineDCF()
	raw.ProjectionYears = nil
	raw.NetDebt = nil
	raw.Revenues = []float64{1, 2, 3, 4, 5}
	raw.Costs = []float64{0, 0, 0, 0, 0}
	raw.OperatingExpenses = []float64{0, 0, 0, 0, 0}
	raw.Capex = []float64{0, 0, 0, 0, 0}
	raw.WorkingCapitalChange = []float64{0, 0, 0, 0, 0}

	in, err := ValidateDCF(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.ProjectionYears != DefaultProjectionYears {
		t.Errorf("ProjectionYears = %d, want default %d", in.ProjectionYears, DefaultProjectionYears)
	}
	if in.NetDebt != 0 {
		t.Errorf("NetDebt default = %v, want 0", in.NetDebt)
	}
	if in.SharesOutstanding != nil {
		t.Errorf("SharesOutstanding should stay nil")
	}
}

func TestValidateDCF_LengthMismatch(t *testing.T) {
	raw := baselineDCF()
	raw.WorkingCapitalChange = []float64{0, 0, 0, 0}

	_, err := ValidateDCF(raw)
	fields := violationFields(t, err)
	if !fields["working_capital_change"] {
		t.Errorf("missing working_capital_change violation: %v", err)
	}
	if len(fields) != 1 {
		t.Errorf("expected exactly one violated field, got %v", fields)
	}
}

func TestValidateDCF_CollectsEveryViolation(t *testing.T) {
	raw := baselineDCF()
	raw.TaxRate = f64(1.2)
	raw.CostOfDebt = f64(-0.01)
	raw.TerminalGrowthRate = f64(0.15)
	raw.EquityWeight = nil
	raw.Costs = []float64{400}
	raw.SharesOutstanding = f64(0)

	_, err := ValidateDCF(raw)
	fields := violationFields(t, err)
	for _, want := range []string{"tax_rate", "cost_of_debt", "terminal_growth_rate", "equity_weight", "costs", "shares_outstanding"} {
		if !fields[want] {
			t.Errorf("missing violation for %s", want)
		}
	}
	if !strings.Contains(err.Error(), "tax_rate") || !strings.Contains(err.Error(), "costs") {
		t.Errorf("error message should list violations: %s", err)
	}
}

func TestValidateDCF_ProjectionYearsRange(t *testing.T) {
	tests := []struct {
		name  string
		years int
		ok    bool
	}{
		{"below minimum", 2, false},
		{"minimum", 3, true},
		{"maximum", 15, true},
		{"above maximum", 16, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := baselineDCF()
			raw.ProjectionYears = intp(tt.years)
			series := make([]float64, tt.years)
			raw.Revenues, raw.Costs, raw.OperatingExpenses = series, series, series
			raw.Capex, raw.WorkingCapitalChange = series, series

			_, err := ValidateDCF(raw)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				fields := violationFields(t, err)
				if !fields["projection_years"] {
					t.Errorf("missing projection_years violation")
				}
				if len(fields) != 1 {
					t.Errorf("consistent series should not be flagged: %v", fields)
				}
			}
		})
	}
}

func TestValidateDCF_NoClamping(t *testing.T) {
	raw := baselineDCF()
	raw.TerminalGrowthRate = f64(0.1000001)

	in, err := ValidateDCF(raw)
	if err == nil {
		t.Fatalf("out-of-range growth accepted as %v", in.TerminalGrowthRate)
	}
}

func TestValidateDCF_NonFinite(t *testing.T) {
	raw := baselineDCF()
	raw.Revenues = []float64{1000, math.NaN(), 1000}
	raw.NetDebt = f64(math.Inf(1))
	raw.CostOfEquity = f64(math.NaN())

	_, err := ValidateDCF(raw)
	fields := violationFields(t, err)
	for _, want := range []string{"revenues", "net_debt", "cost_of_equity"} {
		if !fields[want] {
			t.Errorf("missing violation for %s", want)
		}
	}
}

func TestValidateMultiples(t *testing.T) {
	in, err := ValidateMultiples(RawMultiplesInput{EVEBITDAMultiple: f64(8), EBITDA: f64(100)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.LiquidityDiscount != 0 || in.ControlPremium != 0 {
		t.Errorf("adjustments should default to 0, got %v/%v", in.LiquidityDiscount, in.ControlPremium)
	}

	_, err = ValidateMultiples(RawMultiplesInput{
		LiquidityDiscount: f64(1.5),
		ControlPremium:    f64(-0.1),
		NetIncome:         f64(math.Inf(-1)),
	})
	fields := violationFields(t, err)
	for _, want := range []string{"liquidity_discount", "control_premium", "net_income"} {
		if !fields[want] {
			t.Errorf("missing violation for %s", want)
		}
	}
}
