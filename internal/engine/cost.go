package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/boxplanner/internal/model"
)

// Door opening dimensions, meters. All openings are priced at 2.1 m height
// whatever door height is configured; the configured height is display only.
const (
	doorHeight      = 2.1
	singleDoorWidth = 1.0
	doubleDoorWidth = 2.0
	roller15Width   = 1.5
	roller20Width   = 2.0
)

// Coverage rules for fixtures.
const (
	areaPerCamera   = 50.0 // m² of hall per camera
	corridorPerLamp = 10.0 // m of corridor per lamp
)

// ComputeQuantities derives every countable and measurable quantity of a plan.
// Small and medium boxes get single doors; large boxes get double doors, or
// 2.0 m rollers when the roller option is on. The white wall area is not
// clamped and goes negative when door openings exceed the front wall.
func ComputeQuantities(plan model.Plan, cfg model.Configuration) model.Quantities {
	counts := model.CountBoxes(plan.Boxes)
	opts := cfg.Options
	geo := plan.Geometry
	sysH := cfg.SystemHeightM()

	q := model.Quantities{
		Boxes:               counts,
		TotalBoxes:          float64(counts.Total()),
		NetArea:             plan.Stats.NetArea,
		GrossArea:           plan.Stats.GrossArea,
		CorridorArea:        plan.Stats.CorridorArea,
		FrontWallLength:     geo.FrontWallLength,
		PartitionWallLength: geo.PartitionWallLength,
		CorridorLength:      geo.CorridorLength,
		SystemHeightM:       sysH,
		DoorHeightM:         cfg.DoorHeight / 1000,
		SingleDoors:         float64(counts.Small + counts.Medium),
		Options:             opts,
	}
	if opts.RollerDoors {
		q.Rollers20 = float64(counts.Large)
	} else {
		q.DoubleDoors = float64(counts.Large)
	}

	q.TotalDoorWidth = q.SingleDoors*singleDoorWidth + q.DoubleDoors*doubleDoorWidth +
		q.Rollers15*roller15Width + q.Rollers20*roller20Width
	q.TotalDoorsArea = q.SingleDoors*singleDoorWidth*doorHeight + q.DoubleDoors*doubleDoorWidth*doorHeight +
		q.Rollers15*roller15Width*doorHeight + q.Rollers20*roller20Width*doorHeight

	q.FrontWallGrossArea = geo.FrontWallLength * sysH
	q.WhiteWallArea = q.FrontWallGrossArea - q.TotalDoorsArea
	q.GrayWallArea = geo.PartitionWallLength * sysH
	q.KickPlateLength = geo.FrontWallLength - q.TotalDoorWidth

	if opts.Mesh {
		q.MeshArea = q.NetArea
	}
	if opts.ElectroLock {
		q.ElectroLocks = q.TotalBoxes
	}
	if opts.Soffit {
		q.SoffitLength = geo.CorridorLength
	}
	if opts.Cameras {
		q.Cameras = math.Ceil(q.GrossArea / areaPerCamera)
	}
	if opts.Lighting {
		q.Lamps = math.Ceil(geo.CorridorLength / corridorPerLamp)
	}
	if opts.Gate {
		q.Gates = 1
	}
	return q
}

// ApplyOverrides returns q with the manual values substituted. A direct line
// override always wins. A net area override feeds the mesh quantity and a box
// count override feeds the electro-lock quantity, each only while its option
// is on. The corridor area override changes the reported corridor area only.
func ApplyOverrides(q model.Quantities, o model.ManualOverrides) model.Quantities {
	set := func(dst *float64, f model.OverrideField) bool {
		if v := o.Get(f); v != nil {
			*dst = *v
			return true
		}
		return false
	}

	set(&q.NetArea, model.OverrideNetArea)
	set(&q.TotalBoxes, model.OverrideTotalBoxes)
	set(&q.CorridorArea, model.OverrideCorridorArea)

	set(&q.WhiteWallArea, model.OverrideWhiteWall)
	set(&q.GrayWallArea, model.OverrideGrayWall)
	set(&q.KickPlateLength, model.OverrideKickPlate)
	set(&q.SingleDoors, model.OverrideSingleDoors)
	set(&q.DoubleDoors, model.OverrideDoubleDoors)
	set(&q.Rollers15, model.OverrideRollers15)
	set(&q.Rollers20, model.OverrideRollers20)

	if !set(&q.MeshArea, model.OverrideMesh) && q.Options.Mesh {
		q.MeshArea = q.NetArea
	}
	if !set(&q.ElectroLocks, model.OverrideElectroLocks) && q.Options.ElectroLock {
		q.ElectroLocks = q.TotalBoxes
	}
	return q
}

// lineOverride maps cost lines to the override that replaces their quantity.
var lineOverride = map[model.LineKey]model.OverrideField{
	model.LineWhiteWall:    model.OverrideWhiteWall,
	model.LineGrayWall:     model.OverrideGrayWall,
	model.LineMesh:         model.OverrideMesh,
	model.LineKickPlate:    model.OverrideKickPlate,
	model.LineSingleDoors:  model.OverrideSingleDoors,
	model.LineDoubleDoors:  model.OverrideDoubleDoors,
	model.LineRollers15:    model.OverrideRollers15,
	model.LineRollers20:    model.OverrideRollers20,
	model.LineElectroLocks: model.OverrideElectroLocks,
}

// BuildCostReport prices the quantities. In manual mode the overrides are
// applied first; in auto mode they are ignored. Area and length lines show
// their quantity rounded to 0.1 but are priced on the exact value.
func BuildCostReport(q model.Quantities, prices model.PriceList, overrides model.ManualOverrides, mode model.CalcMode) model.CostReport {
	if mode == model.ModeManual {
		q = ApplyOverrides(q, overrides)
	} else {
		mode = model.ModeAuto
	}

	report := model.CostReport{
		Mode:       mode,
		Items:      make(map[model.LineKey]model.CostLineItem, len(model.LineKeys)),
		Quantities: q,
	}

	add := func(key model.LineKey, qty float64, unit string, price float64, formula string) {
		shown := qty
		if unit != model.UnitPiece {
			shown = round1(qty)
		}
		item := model.CostLineItem{
			Key:       key,
			Quantity:  shown,
			Unit:      unit,
			UnitPrice: price,
			Total:     qty * price,
			Formula:   formula,
		}
		if f, ok := lineOverride[key]; ok && mode == model.ModeManual {
			item.Overridden = overrides.Get(f) != nil
		}
		report.Items[key] = item
	}

	add(model.LineWhiteWall, q.WhiteWallArea, model.UnitSquareMeter, prices.WhiteWall,
		fmt.Sprintf("(%g m × %g m) - %.1f m² of doors", q.FrontWallLength, q.SystemHeightM, q.TotalDoorsArea))
	add(model.LineGrayWall, q.GrayWallArea, model.UnitSquareMeter, prices.GrayWall,
		fmt.Sprintf("%g m × %g m", q.PartitionWallLength, q.SystemHeightM))
	add(model.LineMesh, q.MeshArea, model.UnitSquareMeter, prices.Mesh,
		fmt.Sprintf("Sum of box areas = %g m²", q.NetArea))
	add(model.LineKickPlate, q.KickPlateLength, model.UnitRunningM, prices.KickPlate,
		fmt.Sprintf("%g m - %.1f m of doors", q.FrontWallLength, q.TotalDoorWidth))
	add(model.LineSingleDoors, q.SingleDoors, model.UnitPiece, prices.DoorSingle,
		fmt.Sprintf("Small (%d) + medium (%d) boxes", q.Boxes.Small, q.Boxes.Medium))
	add(model.LineDoubleDoors, q.DoubleDoors, model.UnitPiece, prices.DoorDouble,
		fmt.Sprintf("Large boxes without rollers = %g", q.DoubleDoors))
	add(model.LineRollers15, q.Rollers15, model.UnitPiece, prices.Roller15,
		"Rollers 1.5 m")
	add(model.LineRollers20, q.Rollers20, model.UnitPiece, prices.Roller20,
		fmt.Sprintf("Large boxes with rollers = %g", q.Rollers20))
	add(model.LineElectroLocks, q.ElectroLocks, model.UnitPiece, prices.ElectroLock,
		fmt.Sprintf("1 lock × %g boxes", q.TotalBoxes))
	add(model.LineSoffit, q.SoffitLength, model.UnitRunningM, prices.Soffit,
		fmt.Sprintf("Corridor length = %g m", q.CorridorLength))
	gate := "Not required"
	if q.Gates > 0 {
		gate = "Entry gate required"
	}
	add(model.LineGate, q.Gates, model.UnitPiece, prices.Gate, gate)
	add(model.LineCameras, q.Cameras, model.UnitPiece, prices.Camera,
		fmt.Sprintf("%g m² ÷ %g m² = %g cameras", q.GrossArea, areaPerCamera, q.Cameras))
	add(model.LineLamps, q.Lamps, model.UnitPiece, prices.Lamp,
		fmt.Sprintf("%g m of corridor ÷ %g = %g lamps", q.CorridorLength, corridorPerLamp, q.Lamps))

	for _, k := range model.LineKeys {
		report.GrandTotal += report.Items[k].Total
	}
	return report
}
