package valuation

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	dcf := &DCFResult{EquityValue: 900}
	mult := &MultiplesResult{AdjustedValuation: 1100}

	s := Summarize(dcf, mult)
	if len(s.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(s.Lines))
	}
	if s.Midpoint == nil || *s.Midpoint != 1000 {
		t.Errorf("Midpoint = %v, want 1000", s.Midpoint)
	}
	if *s.Low != 900 || *s.High != 1100 {
		t.Errorf("range = %v..%v, want 900..1100", *s.Low, *s.High)
	}

	empty := Summarize(nil, nil)
	if len(empty.Lines) != 0 || empty.Midpoint != nil {
		t.Errorf("empty summary = %+v", empty)
	}
}
