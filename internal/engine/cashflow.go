package engine

import (
	"errors"

	"github.com/piwi3910/boxplanner/internal/model"
)

// ErrNoCostReport is returned when a cash-flow simulation is requested
// before any cost report exists.
var ErrNoCostReport = errors.New("no cost report: generate a plan first")

// SimulateCashFlow runs the monthly occupancy and revenue model over the
// contract horizon. The investment is the grand total of report; netArea is
// the box area of the layout.
func SimulateCashFlow(report *model.CostReport, netArea float64, p model.CashFlowParams) (model.CashFlowResult, error) {
	if report == nil {
		return model.CashFlowResult{}, ErrNoCostReport
	}

	investment := report.GrandTotal
	maxRentable := netArea * (p.MaxOccupancy / 100)
	feeRate := p.LicenseFee / 100
	months := max(0, p.ContractYears*12)

	res := model.CashFlowResult{
		TotalInvestment: investment,
		MaxRentableArea: maxRentable,
		Months:          make([]model.MonthlyCashFlow, 0, months),
	}

	var rented float64
	cumulative := -investment
	series := make([]float64, 0, months)
	for month := 1; month <= months; month++ {
		rented = min(rented+p.MonthlyAbsorption, maxRentable)
		gross := rented * p.RentPrice
		fee := gross * feeRate
		net := gross - fee - p.FixedCosts
		cumulative += net

		series = append(series, cumulative)
		res.Months = append(res.Months, model.MonthlyCashFlow{
			Month:              month,
			RentedArea:         rented,
			GrossRevenue:       gross,
			LicenseFee:         fee,
			FixedCosts:         p.FixedCosts,
			NetRevenue:         net,
			CumulativeCashFlow: cumulative,
		})
	}

	res.BreakEvenMonth = firstBreakEven(series)
	res.BreakEvenReached = res.BreakEvenMonth > 0

	res.MonthlyRevenueAtMax = maxRentable * p.RentPrice
	res.MonthlyNetAtMax = res.MonthlyRevenueAtMax - res.MonthlyRevenueAtMax*feeRate - p.FixedCosts
	res.TotalProfit = cumulative
	if investment > 0 {
		res.ROI = round1((res.TotalProfit+investment)/investment*100 - 100)
	}
	if p.ContractYears > 0 {
		res.AnnualReturn = round1(res.ROI / float64(p.ContractYears))
	}
	return res, nil
}

// firstBreakEven returns the 1-based month at which cumulative first reaches
// zero, or 0 when it never does. Later dips do not move it.
func firstBreakEven(cumulative []float64) int {
	for i, c := range cumulative {
		if c >= 0 {
			return i + 1
		}
	}
	return 0
}
