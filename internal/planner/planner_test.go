package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/boxplanner/internal/analysis"
	"github.com/piwi3910/boxplanner/internal/engine"
	"github.com/piwi3910/boxplanner/internal/model"
)

type zeroSource struct{}

func (zeroSource) Float64() float64 { return 0 }

func newTestPlanner(opts ...Option) *Planner {
	opts = append([]Option{WithRandomSource(zeroSource{})}, opts...)
	return New(model.DefaultConfiguration(), opts...)
}

func TestGeneratePlan(t *testing.T) {
	p := newTestPlanner()

	s, err := p.GeneratePlan()
	require.NoError(t, err)

	require.NotNil(t, s.Plan)
	require.NotNil(t, s.Report)
	require.NotNil(t, s.AutoReport)
	assert.Equal(t, 420.0, s.Plan.Stats.NetArea)
	assert.Equal(t, model.ModeAuto, s.Report.Mode)
	assert.Equal(t, s.AutoReport.GrandTotal, s.Report.GrandTotal)
	assert.Len(t, s.Comparison, len(model.OverrideFields))
	assert.Nil(t, s.CashFlow)
}

func TestGeneratePlan_TierSumLeavesStateUntouched(t *testing.T) {
	p := newTestPlanner()
	before, err := p.GeneratePlan()
	require.NoError(t, err)

	cfg := model.DefaultConfiguration()
	cfg.SmallPercent = 45
	p.Configure(cfg)

	_, err = p.GeneratePlan()
	assert.ErrorIs(t, err, model.ErrTierSum)

	after := p.Snapshot()
	assert.Equal(t, before.Plan, after.Plan)
	assert.Equal(t, before.Report, after.Report)
}

func TestConfigureClampsEfficiency(t *testing.T) {
	p := newTestPlanner()
	cfg := model.DefaultConfiguration()
	cfg.TargetEfficiency = 99
	s := p.Configure(cfg)
	assert.Equal(t, 85, s.Config.TargetEfficiency)
}

func TestPipelineIsIdempotentWithSeed(t *testing.T) {
	run := func() State {
		p := New(model.DefaultConfiguration(), WithSeed(1234))
		_, err := p.GeneratePlan()
		require.NoError(t, err)
		s, err := p.RunCashFlow()
		require.NoError(t, err)
		return s
	}
	a, b := run(), run()
	assert.Equal(t, a.Report, b.Report)
	assert.Equal(t, a.CashFlow, b.CashFlow)

	// the same planner regenerates the same layout too
	p := New(model.DefaultConfiguration(), WithSeed(1234))
	first, err := p.GeneratePlan()
	require.NoError(t, err)
	second, err := p.GeneratePlan()
	require.NoError(t, err)
	assert.Equal(t, first.Plan, second.Plan)
}

func TestRunCashFlowRequiresReport(t *testing.T) {
	p := newTestPlanner()
	_, err := p.RunCashFlow()
	assert.ErrorIs(t, err, ErrNoCostReport)
	assert.ErrorIs(t, err, engine.ErrNoCostReport)

	_, err = p.GeneratePlan()
	require.NoError(t, err)
	s, err := p.RunCashFlow()
	require.NoError(t, err)
	require.NotNil(t, s.CashFlow)
	assert.Equal(t, s.Report.GrandTotal, s.CashFlow.TotalInvestment)
	assert.Len(t, s.CashFlow.Months, 120)
}

func TestNewPlanDropsCashFlow(t *testing.T) {
	p := newTestPlanner()
	_, err := p.GeneratePlan()
	require.NoError(t, err)
	_, err = p.RunCashFlow()
	require.NoError(t, err)

	s, err := p.GeneratePlan()
	require.NoError(t, err)
	assert.Nil(t, s.CashFlow)
}

func TestRecalculateManual(t *testing.T) {
	p := newTestPlanner()

	_, err := p.RecalculateManual()
	assert.ErrorIs(t, err, ErrNotManualMode)

	_, err = p.SetMode(model.ModeManual)
	require.NoError(t, err)
	_, err = p.RecalculateManual()
	assert.ErrorIs(t, err, ErrNoPlan)

	auto, err := p.GeneratePlan()
	require.NoError(t, err)

	_, err = p.SetOverride(model.OverrideNetArea, model.Float(500))
	require.NoError(t, err)
	s, err := p.RecalculateManual()
	require.NoError(t, err)

	assert.Equal(t, model.ModeManual, s.Report.Mode)
	assert.Equal(t, 500.0, s.Report.Item(model.LineMesh).Quantity)
	assert.Equal(t, auto.Report.Item(model.LineKickPlate), s.Report.Item(model.LineKickPlate))
	assert.InDelta(t, auto.Report.GrandTotal+80*50, s.Report.GrandTotal, 1e-6)
	assert.Equal(t, auto.AutoReport, s.AutoReport, "the automatic report is kept for comparison")

	for _, row := range s.Comparison {
		if row.Field == model.OverrideNetArea {
			require.NotNil(t, row.Diff)
			assert.Equal(t, 80.0, *row.Diff)
		}
	}
}

func TestSetModeRejectsUnknown(t *testing.T) {
	p := newTestPlanner()
	_, err := p.SetMode("hybrid")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestSetOverrideUnknownField(t *testing.T) {
	p := newTestPlanner()
	_, err := p.SetOverride("paint", model.Float(1))
	assert.Error(t, err)
	assert.Equal(t, 0, p.Snapshot().Overrides.Count())
}

func TestCopyAutoToManual(t *testing.T) {
	p := newTestPlanner()
	_, err := p.CopyAutoToManual()
	assert.ErrorIs(t, err, ErrNoPlan)

	auto, err := p.GeneratePlan()
	require.NoError(t, err)

	s, err := p.CopyAutoToManual()
	require.NoError(t, err)
	assert.Equal(t, model.ModeManual, s.Mode)
	assert.Equal(t, len(model.OverrideFields), s.Overrides.Count())
	assert.Equal(t, float64(len(auto.Plan.Boxes)), *s.Overrides.Get(model.OverrideTotalBoxes))

	s = p.ClearOverrides()
	assert.Equal(t, 0, s.Overrides.Count())
}

func TestSnapshotIsACopy(t *testing.T) {
	p := newTestPlanner()
	_, err := p.GeneratePlan()
	require.NoError(t, err)

	s := p.Snapshot()
	s.Plan.Boxes[0].Area = 999
	s.Report.Items[model.LineGate] = model.CostLineItem{Total: 1e9}
	_ = s.Overrides.Set(model.OverrideMesh, model.Float(1))

	fresh := p.Snapshot()
	assert.NotEqual(t, 999.0, fresh.Plan.Boxes[0].Area)
	assert.Equal(t, 0.0, fresh.Report.Item(model.LineGate).Total)
	assert.Equal(t, 0, fresh.Overrides.Count())
}

func TestFromProject(t *testing.T) {
	proj := model.NewProject()
	proj.Mode = model.ModeManual
	proj.Seed = 99
	_ = proj.Overrides.Set(model.OverrideGrayWall, model.Float(10))

	p := FromProject(proj)
	s := p.Snapshot()
	assert.Equal(t, model.ModeManual, s.Mode)
	assert.Equal(t, 10.0, *s.Overrides.Get(model.OverrideGrayWall))

	doc := p.Project(proj.ID, proj.Name, proj.Seed)
	assert.Equal(t, proj.Config.Normalize(), doc.Config)
	assert.Equal(t, proj.Overrides, doc.Overrides)
}

type fakeAnalyzer struct {
	ext     analysis.Extraction
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeAnalyzer) AnalyzeFloorPlan(ctx context.Context, _ []analysis.Image) (analysis.Extraction, error) {
	if f.started != nil {
		close(f.started)
		select {
		case <-f.release:
		case <-ctx.Done():
			return analysis.Extraction{}, ctx.Err()
		}
	}
	return f.ext, f.err
}

func TestAnalyzeAppliesExtraction(t *testing.T) {
	fa := &fakeAnalyzer{ext: analysis.Extraction{
		WhiteWallArea: model.Float(150),
		RollerDoors:   model.Float(4),
		Hall:          analysis.HallDimensions{Length: model.Float(40), Width: model.Float(25)},
		Notes:         "clear plan",
	}}
	p := newTestPlanner(WithAnalyzer(fa))

	s, err := p.Analyze(context.Background(), []analysis.Image{{Data: []byte{1}}})
	require.NoError(t, err)

	assert.Equal(t, model.ModeManual, s.Mode)
	assert.Equal(t, 150.0, *s.Overrides.Get(model.OverrideWhiteWall))
	assert.Equal(t, 4.0, *s.Overrides.Get(model.OverrideRollers15))
	assert.Nil(t, s.Overrides.Get(model.OverrideGrayWall))
	assert.Equal(t, 40.0, s.Config.Hall.Length)
	assert.Equal(t, 25.0, s.Config.Hall.Width)
	require.NotNil(t, s.Analysis)
	assert.Equal(t, "clear plan", s.Analysis.Notes)
}

func TestAnalyzeFailureLeavesStateUntouched(t *testing.T) {
	fa := &fakeAnalyzer{err: errors.New("service unavailable")}
	p := newTestPlanner(WithAnalyzer(fa))
	before, err := p.GeneratePlan()
	require.NoError(t, err)

	_, err = p.Analyze(context.Background(), []analysis.Image{{Data: []byte{1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceFailed)
	assert.Contains(t, err.Error(), "service unavailable")

	after := p.Snapshot()
	assert.Equal(t, before.Report, after.Report)
	assert.Equal(t, before.Plan, after.Plan)
	assert.Equal(t, model.ModeAuto, after.Mode)
	assert.Equal(t, 0, after.Overrides.Count())
}

func TestAnalyzeRejectsConcurrentCall(t *testing.T) {
	fa := &fakeAnalyzer{
		ext:     analysis.Extraction{TotalBoxes: model.Float(3)},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	p := newTestPlanner(WithAnalyzer(fa))

	done := make(chan error, 1)
	go func() {
		_, err := p.Analyze(context.Background(), nil)
		done <- err
	}()
	<-fa.started

	_, err := p.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAnalysisInProgress)

	// the state stays readable while the first call is in flight
	assert.Equal(t, model.ModeAuto, p.Snapshot().Mode)

	close(fa.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not finish")
	}
	assert.Equal(t, 3.0, *p.Snapshot().Overrides.Get(model.OverrideTotalBoxes))
}

func TestAnalyzeWithoutService(t *testing.T) {
	p := newTestPlanner()
	_, err := p.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAnalyzer)
}

type fakeAdvisor struct {
	got analysis.Summary
}

func (f *fakeAdvisor) Advise(_ context.Context, s analysis.Summary) (string, error) {
	f.got = s
	return "Add more small boxes.", nil
}

func TestAdvise(t *testing.T) {
	fa := &fakeAdvisor{}
	p := newTestPlanner(WithAdvisor(fa))

	_, err := p.Advise(context.Background())
	assert.ErrorIs(t, err, ErrNoCostReport)

	_, err = p.GeneratePlan()
	require.NoError(t, err)
	_, err = p.RunCashFlow()
	require.NoError(t, err)

	text, err := p.Advise(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Add more small boxes.", text)
	assert.Equal(t, 420.0, fa.got.NetArea)
	assert.NotNil(t, fa.got.ROI)
	assert.Equal(t, text, p.Snapshot().Advice)
}

type blockingAdvisor struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAdvisor) Advise(_ context.Context, _ analysis.Summary) (string, error) {
	close(b.started)
	<-b.release
	return "review of the previous plan", nil
}

func TestAdviseDiscardedWhenPlanChanges(t *testing.T) {
	ba := &blockingAdvisor{started: make(chan struct{}), release: make(chan struct{})}
	p := newTestPlanner(WithAdvisor(ba))
	_, err := p.GeneratePlan()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := p.Advise(context.Background())
		done <- err
	}()
	<-ba.started

	cfg := p.Snapshot().Config
	cfg.Hall.Length = 40
	p.Configure(cfg)
	_, err = p.GeneratePlan()
	require.NoError(t, err)

	close(ba.release)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStaleResult)
	case <-time.After(5 * time.Second):
		t.Fatal("advice did not finish")
	}
	assert.Empty(t, p.Snapshot().Advice)
}

func TestUpdateConfig(t *testing.T) {
	p := newTestPlanner()

	state, err := p.UpdateConfig(func(cfg *model.Configuration) error {
		cfg.Prices.Gate = 17000
		cfg.TargetEfficiency = 95
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 17000.0, state.Config.Prices.Gate)
	assert.Equal(t, 85, state.Config.TargetEfficiency, "stored configuration is normalized")

	boom := errors.New("boom")
	_, err = p.UpdateConfig(func(cfg *model.Configuration) error {
		cfg.Prices.Gate = 1
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 17000.0, p.Snapshot().Config.Prices.Gate)
}
