package engine

import (
	"testing"

	"github.com/piwi3910/boxplanner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceParams() model.CashFlowParams {
	return model.CashFlowParams{
		RentPrice:         85,
		MonthlyAbsorption: 20,
		MaxOccupancy:      85,
		ContractYears:     10,
		LicenseFee:        15,
		FixedCosts:        5000,
	}
}

func TestSimulateCashFlow_ReferenceScenario(t *testing.T) {
	report := &model.CostReport{GrandTotal: 100000}

	res, err := SimulateCashFlow(report, 1000, referenceParams())
	require.NoError(t, err)

	assert.Equal(t, 100000.0, res.TotalInvestment)
	assert.Equal(t, 850.0, res.MaxRentableArea)
	require.Len(t, res.Months, 120)

	m1 := res.Months[0]
	assert.Equal(t, 1, m1.Month)
	assert.Equal(t, 20.0, m1.RentedArea)
	assert.Equal(t, 1700.0, m1.GrossRevenue)
	assert.Equal(t, 255.0, m1.LicenseFee)
	assert.Equal(t, 5000.0, m1.FixedCosts)
	assert.Equal(t, -3555.0, m1.NetRevenue)
	assert.Equal(t, -103555.0, m1.CumulativeCashFlow)

	// occupancy ramps by 20 m² a month and stops at the cap
	assert.Equal(t, 840.0, res.Months[41].RentedArea)
	assert.Equal(t, 850.0, res.Months[42].RentedArea)
	assert.Equal(t, 850.0, res.Months[119].RentedArea)

	require.True(t, res.BreakEvenReached)
	be := res.BreakEvenMonth
	require.Greater(t, be, 1)
	assert.Less(t, res.Months[be-2].CumulativeCashFlow, 0.0)
	assert.GreaterOrEqual(t, res.Months[be-1].CumulativeCashFlow, 0.0)

	assert.Equal(t, 72250.0, res.MonthlyRevenueAtMax)
	assert.Equal(t, 56412.5, res.MonthlyNetAtMax)
	assert.Equal(t, res.Months[119].CumulativeCashFlow, res.TotalProfit)
	assert.Equal(t, round1((res.TotalProfit+100000)/100000*100-100), res.ROI)
	assert.Equal(t, round1(res.ROI/10), res.AnnualReturn)
}

func TestSimulateCashFlow_RequiresReport(t *testing.T) {
	_, err := SimulateCashFlow(nil, 1000, referenceParams())
	assert.ErrorIs(t, err, ErrNoCostReport)
}

func TestSimulateCashFlow_NeverBreaksEven(t *testing.T) {
	p := referenceParams()
	p.FixedCosts = 1e6

	res, err := SimulateCashFlow(&model.CostReport{GrandTotal: 100000}, 1000, p)
	require.NoError(t, err)

	assert.False(t, res.BreakEvenReached)
	assert.Equal(t, 0, res.BreakEvenMonth)
	assert.Less(t, res.ROI, 0.0)
}

func TestSimulateCashFlow_DegenerateInputs(t *testing.T) {
	p := referenceParams()
	p.ContractYears = 0

	res, err := SimulateCashFlow(&model.CostReport{}, 1000, p)
	require.NoError(t, err)

	assert.Empty(t, res.Months)
	assert.Equal(t, 0.0, res.ROI, "no investment gives no ROI")
	assert.Equal(t, 0.0, res.AnnualReturn)
	assert.False(t, res.BreakEvenReached)
}

func TestFirstBreakEven_FirstOccurrenceWins(t *testing.T) {
	assert.Equal(t, 3, firstBreakEven([]float64{-5, -1, 0, -3, 2}))
	assert.Equal(t, 1, firstBreakEven([]float64{1, -1, -2}))
	assert.Equal(t, 0, firstBreakEven([]float64{-5, -4, -1}))
	assert.Equal(t, 0, firstBreakEven(nil))
}
