package engine

import "github.com/piwi3910/boxplanner/internal/model"

// BuildPlan runs area, layout, geometry and statistics for cfg.
// cfg must already be normalised. It returns model.ErrTierSum when the tier
// percentages do not add up to 100.
func BuildPlan(cfg model.Configuration, src RandomSource) (model.Plan, error) {
	if err := cfg.Validate(); err != nil {
		return model.Plan{}, err
	}

	gross := GrossArea(cfg.Hall)
	usable := gross * (float64(cfg.TargetEfficiency) / 100)
	small, medium, large := cfg.TierRatios()

	boxes := New(src).Generate(usable, small, medium, large)

	return model.Plan{
		Boxes:    boxes,
		Geometry: DeriveGeometry(boxes, cfg.Hall, gross),
		Stats:    ComputeStats(boxes, cfg, gross, usable),
	}, nil
}

// Estimate runs the full pipeline in automatic mode: plan, quantities and costs.
func Estimate(cfg model.Configuration, src RandomSource) (model.Plan, model.CostReport, error) {
	plan, err := BuildPlan(cfg, src)
	if err != nil {
		return model.Plan{}, model.CostReport{}, err
	}
	q := ComputeQuantities(plan, cfg)
	return plan, BuildCostReport(q, cfg.Prices, model.ManualOverrides{}, model.ModeAuto), nil
}
