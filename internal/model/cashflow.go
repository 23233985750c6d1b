package model

// CashFlowParams are the business assumptions of the cash-flow simulation.
type CashFlowParams struct {
	RentPrice         float64 `json:"rent_price"`         // PLN per m² per month
	MonthlyAbsorption float64 `json:"monthly_absorption"` // m² newly rented per month
	MaxOccupancy      float64 `json:"max_occupancy"`      // %
	ContractYears     int     `json:"contract_years"`
	LicenseFee        float64 `json:"license_fee"` // % of gross revenue
	FixedCosts        float64 `json:"fixed_costs"` // PLN per month
}

func DefaultCashFlowParams() CashFlowParams {
	return CashFlowParams{
		RentPrice:         85,
		MonthlyAbsorption: 20,
		MaxOccupancy:      85,
		ContractYears:     10,
		LicenseFee:        15,
		FixedCosts:        5000,
	}
}

// MonthlyCashFlow is one simulated month.
type MonthlyCashFlow struct {
	Month              int     `json:"month"`
	RentedArea         float64 `json:"rented_area"`
	GrossRevenue       float64 `json:"gross_revenue"`
	LicenseFee         float64 `json:"license_fee"`
	FixedCosts         float64 `json:"fixed_costs"`
	NetRevenue         float64 `json:"net_revenue"`
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`
}

// CashFlowResult is the outcome of a simulation over the contract horizon.
type CashFlowResult struct {
	TotalInvestment     float64           `json:"total_investment"`
	MaxRentableArea     float64           `json:"max_rentable_area"`
	BreakEvenMonth      int               `json:"break_even_month"` // 0 when not reached
	BreakEvenReached    bool              `json:"break_even_reached"`
	MonthlyRevenueAtMax float64           `json:"monthly_revenue_at_max"`
	MonthlyNetAtMax     float64           `json:"monthly_net_at_max"`
	TotalProfit         float64           `json:"total_profit"`
	ROI                 float64           `json:"roi"`           // %
	AnnualReturn        float64           `json:"annual_return"` // % per year
	Months              []MonthlyCashFlow `json:"months"`
}

// YearSummary aggregates twelve months of a simulation.
type YearSummary struct {
	Year               int     `json:"year"`
	GrossRevenue       float64 `json:"gross_revenue"`
	LicenseFee         float64 `json:"license_fee"`
	FixedCosts         float64 `json:"fixed_costs"`
	NetRevenue         float64 `json:"net_revenue"`
	EndRentedArea      float64 `json:"end_rented_area"`
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`
}

// Years folds the monthly series into calendar years of the contract.
func (r CashFlowResult) Years() []YearSummary {
	var years []YearSummary
	for _, m := range r.Months {
		idx := (m.Month - 1) / 12
		for len(years) <= idx {
			years = append(years, YearSummary{Year: len(years) + 1})
		}
		y := &years[idx]
		y.GrossRevenue += m.GrossRevenue
		y.LicenseFee += m.LicenseFee
		y.FixedCosts += m.FixedCosts
		y.NetRevenue += m.NetRevenue
		y.EndRentedArea = m.RentedArea
		y.CumulativeCashFlow = m.CumulativeCashFlow
	}
	return years
}
