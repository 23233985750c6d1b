package engine

import "github.com/piwi3910/boxplanner/internal/model"

// GrossArea returns the floor area of the hall in whole square meters.
// The l-shape formula subtracts the square of the narrower arm as the
// overlap of the two arms. Unknown shapes have no area and the result is
// never negative.
func GrossArea(h model.Hall) float64 {
	var area float64
	switch h.Shape {
	case model.ShapeRectangle:
		area = h.Length * h.Width
	case model.ShapeLShape:
		overlap := min(h.ArmAWidth, h.ArmBWidth)
		area = h.ArmALength*h.ArmAWidth + h.ArmBLength*h.ArmBWidth - overlap*overlap
	case model.ShapeCustom:
		area = h.TotalArea
	default:
		return 0
	}
	return roundHalfUp(max(area, 0))
}
