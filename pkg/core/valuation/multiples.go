package valuation

// CalculateMultiples validates the raw request and applies the comparable multiples.
func CalculateMultiples(raw RawMultiplesInput) (*MultiplesResult, error) {
	in, err := ValidateMultiples(raw)
	if err != nil {
		return nil, err
	}
	return RunMultiples(in)
}

// RunMultiples performs Comparable Multiples valuation on validated input.
// A multiple is applied only when both it and its metric are present; the others
// stay nil. Finite inputs whose products overflow are reported as a ValidationError.
func RunMultiples(in MultiplesInput) (*MultiplesResult, error) {
	implied := impliedValuations{
		PE:        applyMultiple(in.PEMultiple, in.NetIncome),
		EVEBITDA:  applyMultiple(in.EVEBITDAMultiple, in.EBITDA),
		PVP:       applyMultiple(in.PVPMultiple, in.BookValue),
		EVRevenue: applyMultiple(in.EVRevenueMultiple, in.Revenue),
	}

	errs := &ValidationError{}
	var sum float64
	var count int
	for _, p := range implied.pairs() {
		if p.value == nil {
			continue
		}
		if !isFinite(*p.value) {
			errs.add(p.multipleField, "product with %s is not a finite number", p.metricField)
			errs.add(p.metricField, "product with %s is not a finite number", p.multipleField)
			continue
		}
		sum += *p.value
		count++
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	// No usable pair falls back to zero rather than failing.
	average := 0.0
	if count > 0 {
		average = sum / float64(count)
	}
	if !isFinite(average) {
		errs.add("average_valuation", "is not a finite number")
		return nil, errs
	}

	adjusted := average * (1 - in.LiquidityDiscount) * (1 + in.ControlPremium)
	if !isFinite(adjusted) {
		errs.add("adjusted_valuation", "is not a finite number")
		return nil, errs
	}

	return formatMultiplesResult(in, implied, count, average, adjusted), nil
}

type impliedValuations struct {
	PE        *float64
	EVEBITDA  *float64
	PVP       *float64
	EVRevenue *float64
}

type impliedPair struct {
	multipleField string
	metricField   string
	value         *float64
}

func (v impliedValuations) pairs() []impliedPair {
	return []impliedPair{
		{"pe_multiple", "net_income", v.PE},
		{"ev_ebitda_multiple", "ebitda", v.EVEBITDA},
		{"pv_vp_multiple", "book_value", v.PVP},
		{"ev_revenue_multiple", "revenue", v.EVRevenue},
	}
}

func applyMultiple(multiple, metric *float64) *float64 {
	if multiple == nil || metric == nil {
		return nil
	}
	v := *multiple * *metric
	return &v
}
