package model

// Geometry holds the wall and corridor lengths derived from a box list
// under the two-row layout model.
type Geometry struct {
	BoxDepth            float64 `json:"box_depth"`             // m
	FrontWallLength     float64 `json:"front_wall_length"`     // m, 0.1 precision
	PartitionWallLength float64 `json:"partition_wall_length"` // m, 0.1 precision
	CorridorLength      float64 `json:"corridor_length"`       // m, whole meters
}

// SizeCount is the number of boxes of one size.
type SizeCount struct {
	Area     float64  `json:"area"`
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// PlanStats summarises a generated layout.
type PlanStats struct {
	GrossArea        float64     `json:"gross_area"`
	UsableArea       float64     `json:"usable_area"`     // target budget of the optimizer
	NonUsableArea    float64     `json:"non_usable_area"` // corridors and service space
	NetArea          float64     `json:"net_area"`        // sum of box areas
	CorridorArea     float64     `json:"corridor_area"`   // estimate, capped at NonUsableArea
	TargetEfficiency int         `json:"target_efficiency"`
	Efficiency       int         `json:"efficiency"`     // achieved, %
	MaxEfficiency    int         `json:"max_efficiency"` // theoretical, %
	Counts           BoxCounts   `json:"counts"`
	Sizes            []SizeCount `json:"sizes"`
	AverageBoxArea   float64     `json:"average_box_area"`
}

// Plan is one generated layout with everything derived from it.
type Plan struct {
	Boxes    []Box     `json:"boxes"`
	Geometry Geometry  `json:"geometry"`
	Stats    PlanStats `json:"stats"`
}

// Clone returns a copy that shares no slices with p.
func (p Plan) Clone() Plan {
	out := p
	out.Boxes = append([]Box(nil), p.Boxes...)
	out.Stats.Sizes = append([]SizeCount(nil), p.Stats.Sizes...)
	return out
}
