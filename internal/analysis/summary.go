package analysis

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piwi3910/boxplanner/internal/model"
)

// Summary is the project digest sent to an Advisor.
type Summary struct {
	GrossArea      float64           `json:"gross_area"`
	NetArea        float64           `json:"net_area"`
	Efficiency     int               `json:"efficiency"`
	Counts         model.BoxCounts   `json:"counts"`
	Sizes          []model.SizeCount `json:"sizes"`
	AverageBoxArea float64           `json:"average_box_area"`
	RoundedCost    decimal.Decimal   `json:"rounded_cost"` // PLN, down to full thousands
	RentPrice      float64           `json:"rent_price"`
	ContractYears  int               `json:"contract_years"`
	ROI            *float64          `json:"roi,omitempty"`
	BreakEvenMonth *int              `json:"break_even_month,omitempty"`
}

// NewSummary digests a plan and its costs. cf may be nil when no
// simulation has run yet.
func NewSummary(plan model.Plan, report model.CostReport, params model.CashFlowParams, cf *model.CashFlowResult) Summary {
	s := Summary{
		GrossArea:      plan.Stats.GrossArea,
		NetArea:        plan.Stats.NetArea,
		Efficiency:     plan.Stats.Efficiency,
		Counts:         plan.Stats.Counts,
		Sizes:          plan.Stats.Sizes,
		AverageBoxArea: plan.Stats.AverageBoxArea,
		RoundedCost:    model.RoundDownThousands(report.GrandTotal),
		RentPrice:      params.RentPrice,
		ContractYears:  params.ContractYears,
	}
	if cf != nil {
		roi := cf.ROI
		s.ROI = &roi
		if cf.BreakEvenReached {
			m := cf.BreakEvenMonth
			s.BreakEvenMonth = &m
		}
	}
	return s
}

// Prompt renders the summary as the user message of an advice request.
func (s Summary) Prompt() string {
	var mix []string
	for _, sc := range s.Sizes {
		mix = append(mix, fmt.Sprintf("%dx %g m²", sc.Count, sc.Area))
	}

	var b strings.Builder
	b.WriteString("Review the self-storage project below and give concrete recommendations to improve ROI and costs.\n\n")
	b.WriteString("PROJECT DATA:\n")
	fmt.Fprintf(&b, "- Gross area: %g m²\n", s.GrossArea)
	fmt.Fprintf(&b, "- Net box area: %g m²\n", s.NetArea)
	fmt.Fprintf(&b, "- Efficiency: %d%%\n", s.Efficiency)
	fmt.Fprintf(&b, "- Number of boxes: %d\n", s.Counts.Total())
	fmt.Fprintf(&b, "- Split: %d small (2-3 m²), %d medium (4-6 m²), %d large (8-12 m²)\n", s.Counts.Small, s.Counts.Medium, s.Counts.Large)
	fmt.Fprintf(&b, "- Size breakdown: %s\n", strings.Join(mix, ", "))
	fmt.Fprintf(&b, "- Average box size: %.2f m²\n", s.AverageBoxArea)
	fmt.Fprintf(&b, "- Estimated investment: %s PLN\n", s.RoundedCost.StringFixed(0))
	fmt.Fprintf(&b, "- Rent: %g PLN/m²/month\n", s.RentPrice)
	if s.ROI != nil {
		fmt.Fprintf(&b, "- ROI (%d years): %.1f%%\n", s.ContractYears, *s.ROI)
	}
	if s.BreakEvenMonth != nil {
		fmt.Fprintf(&b, "- Break-even: month %d\n", *s.BreakEvenMonth)
	}
	b.WriteString("\nAnswer in four sections:\n")
	b.WriteString("1. BOX MIX ASSESSMENT\n2. OPTIMISATION RECOMMENDATIONS\n3. REVENUE POTENTIAL\n4. RISKS AND NOTES\n")
	b.WriteString("Be concise and specific. At most 300 words.")
	return b.String()
}
