package engine

import "github.com/piwi3910/boxplanner/internal/model"

// AutoValue returns the automatically computed value shown for an
// overridable field: the displayed line quantity for priced lines, the box
// count and net area as computed, and the corridor area to 0.1.
func AutoValue(auto model.CostReport, f model.OverrideField) float64 {
	switch f {
	case model.OverrideTotalBoxes:
		return auto.Quantities.TotalBoxes
	case model.OverrideNetArea:
		return auto.Quantities.NetArea
	case model.OverrideCorridorArea:
		return round1(auto.Quantities.CorridorArea)
	}
	for line, field := range lineOverride {
		if field == f {
			return auto.Item(line).Quantity
		}
	}
	return 0
}

// AutoOverrides returns a full set of overrides holding the automatic values.
func AutoOverrides(auto model.CostReport) model.ManualOverrides {
	var o model.ManualOverrides
	for _, f := range model.OverrideFields {
		_ = o.Set(f, model.Float(AutoValue(auto, f)))
	}
	return o
}

// OverrideRow is one line of the automatic versus manual comparison.
type OverrideRow struct {
	Field  model.OverrideField `json:"field"`
	Label  string              `json:"label"`
	Unit   string              `json:"unit"`
	Auto   float64             `json:"auto"`
	Manual *float64            `json:"manual,omitempty"`
	Diff   *float64            `json:"diff,omitempty"` // manual - auto
}

var overrideMeta = map[model.OverrideField]struct{ label, unit string }{
	model.OverrideWhiteWall:    {"Front walls (white)", model.UnitSquareMeter},
	model.OverrideGrayWall:     {"Partition walls (gray)", model.UnitSquareMeter},
	model.OverrideMesh:         {"Security mesh", model.UnitSquareMeter},
	model.OverrideKickPlate:    {"Kick plate", model.UnitRunningM},
	model.OverrideSingleDoors:  {"Single doors", model.UnitPiece},
	model.OverrideDoubleDoors:  {"Double doors", model.UnitPiece},
	model.OverrideRollers15:    {"Roller doors 1.5 m", model.UnitPiece},
	model.OverrideRollers20:    {"Roller doors 2.0 m", model.UnitPiece},
	model.OverrideElectroLocks: {"Electronic locks", model.UnitPiece},
	model.OverrideTotalBoxes:   {"Number of boxes", model.UnitPiece},
	model.OverrideNetArea:      {"Net box area", model.UnitSquareMeter},
	model.OverrideCorridorArea: {"Corridor area", model.UnitSquareMeter},
}

// CompareOverrides lists every overridable field with its automatic value
// and, when set, the manual value and the difference.
func CompareOverrides(auto model.CostReport, overrides model.ManualOverrides) []OverrideRow {
	rows := make([]OverrideRow, 0, len(model.OverrideFields))
	for _, f := range model.OverrideFields {
		meta := overrideMeta[f]
		row := OverrideRow{
			Field: f,
			Label: meta.label,
			Unit:  meta.unit,
			Auto:  AutoValue(auto, f),
		}
		if v := overrides.Get(f); v != nil {
			row.Manual = v
			row.Diff = model.Float(round1(*v - row.Auto))
		}
		rows = append(rows, row)
	}
	return rows
}
