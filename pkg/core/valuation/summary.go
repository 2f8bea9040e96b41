package valuation

// ValuationLineItem represents one row in the summary table shown next to a credit request.
type ValuationLineItem struct {
	ModelName   string  `json:"model_name"`
	EquityValue float64 `json:"equity_value"`
}

// Summary aggregates whichever methods were run for a company.
type Summary struct {
	Lines []ValuationLineItem `json:"lines"`
	// Midpoint is the mean of the line values; nil when no method was run.
	Midpoint *float64 `json:"midpoint,omitempty"`
	Low      *float64 `json:"low,omitempty"`
	High     *float64 `json:"high,omitempty"`
}

// Summarize builds the summary table. Either result may be nil.
func Summarize(dcf *DCFResult, multiples *MultiplesResult) Summary {
	s := Summary{Lines: []ValuationLineItem{}}

	if dcf != nil {
		s.Lines = append(s.Lines, ValuationLineItem{
			ModelName:   "Discounted Cash Flow",
			EquityValue: dcf.EquityValue,
		})
	}
	if multiples != nil {
		s.Lines = append(s.Lines, ValuationLineItem{
			ModelName:   "Comparable Multiples (adjusted)",
			EquityValue: multiples.AdjustedValuation,
		})
	}

	if len(s.Lines) == 0 {
		return s
	}

	low, high, sum := s.Lines[0].EquityValue, s.Lines[0].EquityValue, 0.0
	for _, l := range s.Lines {
		sum += l.EquityValue
		if l.EquityValue < low {
			low = l.EquityValue
		}
		if l.EquityValue > high {
			high = l.EquityValue
		}
	}
	mid := sum / float64(len(s.Lines))
	s.Midpoint, s.Low, s.High = &mid, &low, &high
	return s
}
