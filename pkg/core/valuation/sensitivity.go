package valuation

import "fmt"

// SensitivityDeltas are the offsets applied to WACC (rows) and terminal growth (columns).
var SensitivityDeltas = [5]float64{-0.01, -0.005, 0, 0.005, 0.01}

// sensitivityGrid is the equity value at each WACC / growth offset pair.
type sensitivityGrid struct {
	WACCs        [5]float64
	GrowthRates  [5]float64
	EquityValues [5][5]float64
}

func buildSensitivity(fcfs []float64, wacc, growth, netDebt float64) (sensitivityGrid, error) {
	var grid sensitivityGrid
	for r, dw := range SensitivityDeltas {
		grid.WACCs[r] = wacc + dw
	}
	for c, dg := range SensitivityDeltas {
		grid.GrowthRates[c] = growth + dg
	}

	for r := range SensitivityDeltas {
		for c := range SensitivityDeltas {
			scope := fmt.Sprintf("sensitivity[%d][%d]", r, c)
			cell, err := discountCashFlows(fcfs, grid.WACCs[r], grid.GrowthRates[c], netDebt, scope)
			if err != nil {
				return sensitivityGrid{}, err
			}
			grid.EquityValues[r][c] = cell.EquityValue
		}
	}
	return grid, nil
}
