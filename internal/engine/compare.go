package engine

import (
	"fmt"

	"github.com/piwi3910/boxplanner/internal/model"
)

// ComparisonScenario defines a named configuration to compare.
type ComparisonScenario struct {
	Name   string
	Config model.Configuration
}

// ComparisonResult holds the pipeline output and headline figures
// for a single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Err            error
	Plan           model.Plan
	Report         model.CostReport
	CashFlow       model.CashFlowResult
	TotalBoxes     int
	NetArea        float64
	Efficiency     int
	TotalCost      float64
	ROI            float64
	BreakEvenMonth int
}

// CompareScenarios runs the full pipeline for each scenario with the same seed
// and returns the results in scenario order. This enables side-by-side
// comparison of tier mixes and equipment choices.
func CompareScenarios(scenarios []ComparisonScenario, seed int64) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		cfg := scenario.Config.Normalize()
		res := ComparisonResult{Scenario: scenario}

		plan, report, err := Estimate(cfg, NewRandomSource(seed))
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		cf, err := SimulateCashFlow(&report, plan.Stats.NetArea, cfg.CashFlow)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		res.Plan = plan
		res.Report = report
		res.CashFlow = cf
		res.TotalBoxes = len(plan.Boxes)
		res.NetArea = plan.Stats.NetArea
		res.Efficiency = plan.Stats.Efficiency
		res.TotalCost = report.GrandTotal
		res.ROI = cf.ROI
		res.BreakEvenMonth = cf.BreakEvenMonth
		results = append(results, res)
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current configuration, varying the tier mix and door type to show
// what-if alternatives.
func BuildDefaultScenarios(base model.Configuration) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:   "Current configuration",
			Config: base,
		},
	}

	// Scenario: more small boxes
	smallHeavy := base
	smallHeavy.SmallPercent, smallHeavy.MediumPercent, smallHeavy.LargePercent = 70, 20, 10
	if !sameMix(base, smallHeavy) {
		scenarios = append(scenarios, ComparisonScenario{
			Name:   mixName("Small-heavy", smallHeavy),
			Config: smallHeavy,
		})
	}

	// Scenario: more large boxes
	largeHeavy := base
	largeHeavy.SmallPercent, largeHeavy.MediumPercent, largeHeavy.LargePercent = 30, 30, 40
	if !sameMix(base, largeHeavy) {
		scenarios = append(scenarios, ComparisonScenario{
			Name:   mixName("Large-heavy", largeHeavy),
			Config: largeHeavy,
		})
	}

	// Scenario: the other door type on large boxes
	doors := base
	doors.Options.RollerDoors = !base.Options.RollerDoors
	name := "Roller doors on large boxes"
	if base.Options.RollerDoors {
		name = "Double doors on large boxes"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Config: doors})

	return scenarios
}

func sameMix(a, b model.Configuration) bool {
	return a.SmallPercent == b.SmallPercent && a.MediumPercent == b.MediumPercent && a.LargePercent == b.LargePercent
}

func mixName(prefix string, cfg model.Configuration) string {
	return fmt.Sprintf("%s %d/%d/%d", prefix, cfg.SmallPercent, cfg.MediumPercent, cfg.LargePercent)
}
