package engine

import (
	"testing"

	"github.com/piwi3910/boxplanner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPlan builds 2 large (8), 3 medium (5) and 5 small (2) boxes: 41 m², 10 boxes.
// Geometry: front 41/3 → 13.7; partitions 4 × 2 × 3 + 13.67 → 37.7; corridor 30.
func testPlan(cfg model.Configuration) model.Plan {
	var boxes []model.Box
	for i := 0; i < 2; i++ {
		boxes = append(boxes, model.Box{Area: 8, Category: model.CategoryLarge})
	}
	for i := 0; i < 3; i++ {
		boxes = append(boxes, model.Box{Area: 5, Category: model.CategoryMedium})
	}
	for i := 0; i < 5; i++ {
		boxes = append(boxes, model.Box{Area: 2, Category: model.CategorySmall})
	}
	gross := GrossArea(cfg.Hall)
	return model.Plan{
		Boxes:    boxes,
		Geometry: DeriveGeometry(boxes, cfg.Hall, gross),
		Stats:    ComputeStats(boxes, cfg, gross, gross*0.7),
	}
}

func TestComputeQuantities_DefaultOptions(t *testing.T) {
	cfg := model.DefaultConfiguration()
	plan := testPlan(cfg)
	require.Equal(t, 13.7, plan.Geometry.FrontWallLength)
	require.Equal(t, 37.7, plan.Geometry.PartitionWallLength)

	q := ComputeQuantities(plan, cfg)

	assert.Equal(t, 8.0, q.SingleDoors)
	assert.Equal(t, 2.0, q.DoubleDoors)
	assert.Equal(t, 0.0, q.Rollers15)
	assert.Equal(t, 0.0, q.Rollers20)
	assert.InDelta(t, 12.0, q.TotalDoorWidth, 1e-9)
	assert.InDelta(t, 25.2, q.TotalDoorsArea, 1e-9, "openings use 2.1 m, not the configured 2.13 m")
	assert.InDelta(t, 41.1, q.FrontWallGrossArea, 1e-9)
	assert.InDelta(t, 15.9, q.WhiteWallArea, 1e-9)
	assert.InDelta(t, 113.1, q.GrayWallArea, 1e-9)
	assert.InDelta(t, 1.7, q.KickPlateLength, 1e-9)
	assert.Equal(t, 41.0, q.MeshArea)
	assert.Equal(t, 10.0, q.ElectroLocks)
	assert.Equal(t, 0.0, q.SoffitLength)
	assert.Equal(t, 12.0, q.Cameras)
	assert.Equal(t, 3.0, q.Lamps)
	assert.Equal(t, 0.0, q.Gates)
	assert.Equal(t, 2.13, q.DoorHeightM)
}

func TestComputeQuantities_RollersReplaceDoubleDoors(t *testing.T) {
	cfg := model.DefaultConfiguration()
	cfg.Options.RollerDoors = true
	cfg.Options.Soffit = true
	cfg.Options.Gate = true

	q := ComputeQuantities(testPlan(cfg), cfg)

	assert.Equal(t, 0.0, q.DoubleDoors)
	assert.Equal(t, 2.0, q.Rollers20)
	assert.InDelta(t, 12.0, q.TotalDoorWidth, 1e-9)
	assert.Equal(t, 30.0, q.SoffitLength)
	assert.Equal(t, 1.0, q.Gates)
}

func TestComputeQuantities_DisabledOptionsAreZero(t *testing.T) {
	cfg := model.DefaultConfiguration()
	cfg.Options = model.Options{}

	q := ComputeQuantities(testPlan(cfg), cfg)

	assert.Zero(t, q.MeshArea)
	assert.Zero(t, q.ElectroLocks)
	assert.Zero(t, q.Cameras)
	assert.Zero(t, q.Lamps)
}

func TestComputeQuantities_NegativeWhiteWallIsKept(t *testing.T) {
	cfg := model.DefaultConfiguration()
	cfg.SystemHeight = 1000

	q := ComputeQuantities(testPlan(cfg), cfg)
	report := BuildCostReport(q, cfg.Prices, model.ManualOverrides{}, model.ModeAuto)

	assert.InDelta(t, -11.5, q.WhiteWallArea, 1e-9)
	assert.InDelta(t, -11.5, report.Item(model.LineWhiteWall).Quantity, 1e-9)
	assert.Less(t, report.Item(model.LineWhiteWall).Total, 0.0)
}

func TestBuildCostReport_Auto(t *testing.T) {
	cfg := model.DefaultConfiguration()
	q := ComputeQuantities(testPlan(cfg), cfg)

	report := BuildCostReport(q, cfg.Prices, model.ManualOverrides{}, model.ModeAuto)

	assert.Equal(t, model.ModeAuto, report.Mode)
	assert.Len(t, report.Items, len(model.LineKeys))

	white := report.Item(model.LineWhiteWall)
	assert.Equal(t, 15.9, white.Quantity)
	assert.Equal(t, model.UnitSquareMeter, white.Unit)
	assert.Equal(t, 110.0, white.UnitPrice)
	assert.InDelta(t, 1749.0, white.Total, 1e-6)
	assert.NotEmpty(t, white.Formula)

	assert.InDelta(t, 9500.4, report.Item(model.LineGrayWall).Total, 1e-6)
	assert.InDelta(t, 137.7, report.Item(model.LineKickPlate).Total, 1e-6)
	assert.Equal(t, 6240.0, report.Item(model.LineSingleDoors).Total)
	assert.Equal(t, 3120.0, report.Item(model.LineDoubleDoors).Total)
	assert.Equal(t, 5500.0, report.Item(model.LineElectroLocks).Total)
	assert.Equal(t, 6000.0, report.Item(model.LineCameras).Total)
	assert.Equal(t, 1050.0, report.Item(model.LineLamps).Total)
	assert.Equal(t, 0.0, report.Item(model.LineGate).Total)

	assert.InDelta(t, 35347.1, report.GrandTotal, 1e-6)
	assert.Equal(t, 35000.0, report.RoundedTotal())
}

func TestBuildCostReport_DisplayRoundsButTotalsDoNot(t *testing.T) {
	q := model.Quantities{GrayWallArea: 10.04}
	prices := model.PriceList{GrayWall: 100}

	report := BuildCostReport(q, prices, model.ManualOverrides{}, model.ModeAuto)

	gray := report.Item(model.LineGrayWall)
	assert.Equal(t, 10.0, gray.Quantity)
	assert.InDelta(t, 1004.0, gray.Total, 1e-9)
}

func TestBuildCostReport_IsPure(t *testing.T) {
	cfg := model.DefaultConfiguration()
	q := ComputeQuantities(testPlan(cfg), cfg)
	var o model.ManualOverrides
	_ = o.Set(model.OverrideGrayWall, model.Float(100))

	a := BuildCostReport(q, cfg.Prices, o, model.ModeManual)
	b := BuildCostReport(q, cfg.Prices, o, model.ModeManual)
	assert.Equal(t, a, b)
}

func TestBuildCostReport_NetAreaOverrideOnlyMovesMesh(t *testing.T) {
	cfg := model.DefaultConfiguration()
	q := ComputeQuantities(testPlan(cfg), cfg)
	auto := BuildCostReport(q, cfg.Prices, model.ManualOverrides{}, model.ModeAuto)

	var o model.ManualOverrides
	_ = o.Set(model.OverrideNetArea, model.Float(100))
	manual := BuildCostReport(q, cfg.Prices, o, model.ModeManual)

	assert.Equal(t, 100.0, manual.Item(model.LineMesh).Quantity)
	assert.Equal(t, auto.Item(model.LineKickPlate), manual.Item(model.LineKickPlate))
	assert.Equal(t, auto.Item(model.LineWhiteWall), manual.Item(model.LineWhiteWall))
	assert.Equal(t, auto.Item(model.LineElectroLocks), manual.Item(model.LineElectroLocks))
	assert.False(t, manual.Item(model.LineMesh).Overridden, "mesh follows net area, it is not overridden itself")
}

func TestBuildCostReport_OverridesIgnoredInAutoMode(t *testing.T) {
	cfg := model.DefaultConfiguration()
	q := ComputeQuantities(testPlan(cfg), cfg)
	var o model.ManualOverrides
	_ = o.Set(model.OverrideMesh, model.Float(999))

	report := BuildCostReport(q, cfg.Prices, o, model.ModeAuto)

	assert.Equal(t, 41.0, report.Item(model.LineMesh).Quantity)
	assert.False(t, report.Item(model.LineMesh).Overridden)
}

func TestBuildCostReport_OverridePrecedence(t *testing.T) {
	cfg := model.DefaultConfiguration()
	q := ComputeQuantities(testPlan(cfg), cfg)

	t.Run("direct mesh override beats net area", func(t *testing.T) {
		var o model.ManualOverrides
		_ = o.Set(model.OverrideNetArea, model.Float(100))
		_ = o.Set(model.OverrideMesh, model.Float(5))
		r := BuildCostReport(q, cfg.Prices, o, model.ModeManual)
		assert.Equal(t, 5.0, r.Item(model.LineMesh).Quantity)
		assert.True(t, r.Item(model.LineMesh).Overridden)
		assert.Equal(t, 100.0, r.Quantities.NetArea)
	})

	t.Run("net area does not enable mesh", func(t *testing.T) {
		off := cfg
		off.Options.Mesh = false
		q := ComputeQuantities(testPlan(off), off)
		var o model.ManualOverrides
		_ = o.Set(model.OverrideNetArea, model.Float(100))
		r := BuildCostReport(q, off.Prices, o, model.ModeManual)
		assert.Equal(t, 0.0, r.Item(model.LineMesh).Quantity)
	})

	t.Run("box count feeds electro locks", func(t *testing.T) {
		var o model.ManualOverrides
		_ = o.Set(model.OverrideTotalBoxes, model.Float(20))
		r := BuildCostReport(q, cfg.Prices, o, model.ModeManual)
		assert.Equal(t, 20.0, r.Item(model.LineElectroLocks).Quantity)
		assert.Equal(t, 8.0, r.Item(model.LineSingleDoors).Quantity)
	})

	t.Run("corridor area changes no line", func(t *testing.T) {
		auto := BuildCostReport(q, cfg.Prices, model.ManualOverrides{}, model.ModeAuto)
		var o model.ManualOverrides
		_ = o.Set(model.OverrideCorridorArea, model.Float(80))
		r := BuildCostReport(q, cfg.Prices, o, model.ModeManual)
		assert.Equal(t, 80.0, r.Quantities.CorridorArea)
		assert.Equal(t, auto.GrandTotal, r.GrandTotal)
	})

	t.Run("door overrides are priced", func(t *testing.T) {
		var o model.ManualOverrides
		_ = o.Set(model.OverrideRollers15, model.Float(4))
		r := BuildCostReport(q, cfg.Prices, o, model.ModeManual)
		assert.Equal(t, 4.0, r.Item(model.LineRollers15).Quantity)
		assert.Equal(t, 6800.0, r.Item(model.LineRollers15).Total)
		assert.True(t, r.Item(model.LineRollers15).Overridden)
	})
}

func TestAutoOverridesRoundTrip(t *testing.T) {
	cfg := model.DefaultConfiguration()
	q := ComputeQuantities(testPlan(cfg), cfg)
	auto := BuildCostReport(q, cfg.Prices, model.ManualOverrides{}, model.ModeAuto)

	o := AutoOverrides(auto)
	assert.Equal(t, len(model.OverrideFields), o.Count())
	assert.Equal(t, 15.9, *o.Get(model.OverrideWhiteWall))
	assert.Equal(t, 10.0, *o.Get(model.OverrideTotalBoxes))
	assert.Equal(t, 41.0, *o.Get(model.OverrideNetArea))

	manual := BuildCostReport(q, cfg.Prices, o, model.ModeManual)
	// displayed quantities are rounded, so totals agree to within the rounding
	assert.InDelta(t, auto.GrandTotal, manual.GrandTotal, 10)
}

func TestCompareOverrides(t *testing.T) {
	cfg := model.DefaultConfiguration()
	q := ComputeQuantities(testPlan(cfg), cfg)
	auto := BuildCostReport(q, cfg.Prices, model.ManualOverrides{}, model.ModeAuto)

	var o model.ManualOverrides
	_ = o.Set(model.OverrideNetArea, model.Float(50))
	rows := CompareOverrides(auto, o)

	require.Len(t, rows, len(model.OverrideFields))
	for _, r := range rows {
		assert.NotEmpty(t, r.Label)
		if r.Field == model.OverrideNetArea {
			require.NotNil(t, r.Diff)
			assert.Equal(t, 41.0, r.Auto)
			assert.Equal(t, 9.0, *r.Diff)
		} else {
			assert.Nil(t, r.Manual)
			assert.Nil(t, r.Diff)
		}
	}
}
