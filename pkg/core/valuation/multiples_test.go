package valuation

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestCalculateMultiples_SinglePair(t *testing.T) {
	res, err := CalculateMultiples(RawMultiplesInput{
		EVEBITDAMultiple: f64(7.5),
		EBITDA:           f64(200000),
		// Incomplete pairs must not contribute
		PEMultiple:        f64(12),
		BookValue:         f64(500000),
		EVRevenueMultiple: nil,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.EVEBITDAValuation == nil || *res.EVEBITDAValuation != 1500000 {
		t.Fatalf("EVEBITDAValuation = %v, want 1500000", res.EVEBITDAValuation)
	}
	if res.PEValuation != nil || res.PVPValuation != nil || res.EVRevenueValuation != nil {
		t.Errorf("incomplete pairs produced valuations: %+v", res)
	}
	if res.MultiplesUsed != 1 {
		t.Errorf("MultiplesUsed = %d, want 1", res.MultiplesUsed)
	}
	if res.AverageValuation != 1500000 {
		t.Errorf("AverageValuation = %v, want 1500000", res.AverageValuation)
	}
}

func TestCalculateMultiples_Average(t *testing.T) {
	res, err := CalculateMultiples(RawMultiplesInput{
		PEMultiple:        f64(10),
		NetIncome:         f64(100),
		EVEBITDAMultiple:  f64(6),
		EBITDA:            f64(200),
		PVPMultiple:       f64(2),
		BookValue:         f64(400),
		EVRevenueMultiple: f64(1.5),
		Revenue:           f64(1000),
	})
	if err != nil {
		t.Fatal(err)
	}
	// (1000 + 1200 + 800 + 1500) / 4
	if math.Abs(res.AverageValuation-1125) > 1e-9 {
		t.Errorf("AverageValuation = %v, want 1125", res.AverageValuation)
	}
	if res.AdjustedValuation != res.AverageValuation {
		t.Errorf("no adjustments should leave value unchanged")
	}
}

func TestCalculateMultiples_Adjustments(t *testing.T) {
	res, err := CalculateMultiples(RawMultiplesInput{
		PEMultiple:         f64(10),
		NetIncome:          f64(100000),
		LiquidityDiscount:  f64(0.1),
		ControlPremium:     f64(0.2),
		ComparablesSources: "listed peers, 2024 deals",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.AverageValuation != 1000000 {
		t.Fatalf("AverageValuation = %v", res.AverageValuation)
	}
	// 1_000_000 * 0.9 * 1.2
	if math.Abs(res.AdjustedValuation-1080000) > 1e-6 {
		t.Errorf("AdjustedValuation = %v, want 1080000", res.AdjustedValuation)
	}
	if res.LiquidityDiscount != 0.1 || res.ControlPremium != 0.2 {
		t.Errorf("adjustment factors not echoed: %v/%v", res.LiquidityDiscount, res.ControlPremium)
	}
	if res.ComparablesSources != "listed peers, 2024 deals" {
		t.Errorf("sources not echoed")
	}
}

func TestCalculateMultiples_NoPairs(t *testing.T) {
	res, err := CalculateMultiples(RawMultiplesInput{PEMultiple: f64(10), EBITDA: f64(50), ControlPremium: f64(0.3)})
	if err != nil {
		t.Fatal(err)
	}
	if res.MultiplesUsed != 0 || res.AverageValuation != 0 || res.AdjustedValuation != 0 {
		t.Errorf("expected zero fallback, got %+v", res)
	}
}

func TestCalculateMultiples_ZeroIsNotAbsent(t *testing.T) {
	res, err := CalculateMultiples(RawMultiplesInput{PVPMultiple: f64(1.2), BookValue: f64(0)})
	if err != nil {
		t.Fatal(err)
	}
	if res.PVPValuation == nil || *res.PVPValuation != 0 {
		t.Fatalf("zero valuation must be present, got %v", res.PVPValuation)
	}

	body, _ := json.Marshal(res)
	if !strings.Contains(string(body), `"pv_vp_valuation":0`) {
		t.Errorf("zero valuation dropped from JSON: %s", body)
	}
	if strings.Contains(string(body), "pe_valuation") {
		t.Errorf("absent valuation serialized: %s", body)
	}
}

func TestCalculateMultiples_OverflowingProduct(t *testing.T) {
	_, err := CalculateMultiples(RawMultiplesInput{EVEBITDAMultiple: f64(1e200), EBITDA: f64(1e200)})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := map[string]bool{}
	for _, v := range verr.Violations {
		fields[v.Field] = true
	}
	if !fields["ev_ebitda_multiple"] || !fields["ebitda"] {
		t.Errorf("violations should name the pair, got %+v", verr.Violations)
	}
}

func TestCalculateMultiples_OverflowingAverage(t *testing.T) {
	_, err := CalculateMultiples(RawMultiplesInput{
		PEMultiple:        f64(1e154),
		NetIncome:         f64(1e154),
		EVRevenueMultiple: f64(1e154),
		Revenue:           f64(1e154),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) != 1 || verr.Violations[0].Field != "average_valuation" {
		t.Errorf("unexpected violations: %+v", verr.Violations)
	}
}

func TestCalculateMultiples_OverflowingAdjustment(t *testing.T) {
	_, err := CalculateMultiples(RawMultiplesInput{
		PEMultiple:     f64(1e154),
		NetIncome:      f64(1.5e154),
		ControlPremium: f64(0.5),
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Violations[0].Field != "adjusted_valuation" {
		t.Errorf("unexpected violations: %+v", verr.Violations)
	}
}
