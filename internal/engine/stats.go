package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/boxplanner/internal/model"
)

// corridorAllowance inflates the main corridor for side access paths.
const corridorAllowance = 1.3

// maxEfficiencyCap is the highest theoretical efficiency ever reported, %.
const maxEfficiencyCap = 88

// EstimateCorridorArea returns the corridor floor area before capping.
func EstimateCorridorArea(cfg model.Configuration) float64 {
	cw := cfg.CorridorWidthM()
	h := cfg.Hall
	switch h.Shape {
	case model.ShapeRectangle:
		return h.Length * cw * corridorAllowance
	case model.ShapeLShape:
		return (h.ArmALength*cw + h.ArmBLength*cw) * corridorAllowance
	default:
		return math.Sqrt(h.TotalArea) * 1.5 * cw * corridorAllowance
	}
}

// ComputeStats summarises a layout generated for cfg.
func ComputeStats(boxes []model.Box, cfg model.Configuration, grossArea, usableArea float64) model.PlanStats {
	nonUsable := grossArea - usableArea
	corridor := EstimateCorridorArea(cfg)
	net := model.TotalArea(boxes)

	stats := model.PlanStats{
		GrossArea:        grossArea,
		UsableArea:       usableArea,
		NonUsableArea:    nonUsable,
		NetArea:          net,
		CorridorArea:     min(corridor, nonUsable),
		TargetEfficiency: cfg.TargetEfficiency,
		Counts:           model.CountBoxes(boxes),
		Sizes:            sizeCounts(boxes),
	}
	if grossArea > 0 {
		stats.Efficiency = int(roundHalfUp(net / grossArea * 100))
		maxUsable := max(0, grossArea-corridor)
		stats.MaxEfficiency = min(int(roundHalfUp(maxUsable/grossArea*100)), maxEfficiencyCap)
	}
	if len(boxes) > 0 {
		stats.AverageBoxArea = round1(net / float64(len(boxes)))
	}
	return stats
}

// sizeCounts groups boxes by area, largest first.
func sizeCounts(boxes []model.Box) []model.SizeCount {
	idx := map[float64]int{}
	var out []model.SizeCount
	for _, b := range boxes {
		i, ok := idx[b.Area]
		if !ok {
			i = len(out)
			idx[b.Area] = i
			out = append(out, model.SizeCount{Area: b.Area, Category: b.Category})
		}
		out[i].Count++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Area > out[j].Area })
	return out
}
