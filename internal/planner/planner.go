// Package planner owns the application state of one planning session.
// Every action runs a full recompute on a snapshot of the inputs and swaps
// the results in under a single lock, so readers never see partial results.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/piwi3910/boxplanner/internal/analysis"
	"github.com/piwi3910/boxplanner/internal/engine"
	"github.com/piwi3910/boxplanner/internal/model"
)

var (
	ErrNoPlan             = errors.New("no plan: generate a plan first")
	ErrNoCostReport       = engine.ErrNoCostReport
	ErrNotManualMode      = errors.New("switch to manual mode to recalculate with manual values")
	ErrAnalysisInProgress = errors.New("a floor plan analysis is already running")
	ErrNoAnalyzer         = errors.New("no analysis service configured")
	ErrInvalidMode        = errors.New("mode must be auto or manual")
	// ErrServiceFailed wraps every error returned by the analysis or advice service.
	ErrServiceFailed = errors.New("analysis service request failed")
	// ErrStaleResult is returned when the plan changed while a service call was running.
	ErrStaleResult = errors.New("the plan changed while the request was running")
)

// State is a consistent copy of everything the planner shows.
type State struct {
	Config     model.Configuration   `json:"config"`
	Mode       model.CalcMode        `json:"mode"`
	Overrides  model.ManualOverrides `json:"overrides"`
	Plan       *model.Plan           `json:"plan,omitempty"`
	AutoReport *model.CostReport     `json:"auto_report,omitempty"`
	Report     *model.CostReport     `json:"report,omitempty"`
	CashFlow   *model.CashFlowResult `json:"cash_flow,omitempty"`
	Comparison []engine.OverrideRow  `json:"comparison,omitempty"`
	Analysis   *analysis.Extraction  `json:"analysis,omitempty"`
	Advice     string                `json:"advice,omitempty"`
}

// Planner is safe for concurrent use.
type Planner struct {
	mu    sync.Mutex
	state State

	newSource func() engine.RandomSource
	analyzer  analysis.Analyzer
	advisor   analysis.Advisor
	analyzing atomic.Bool
	log       zerolog.Logger
}

type Option func(*Planner)

// WithSeed makes every GeneratePlan draw from a fresh source seeded with seed,
// so identical configurations give identical layouts. Seed 0 keeps the
// clock-seeded default.
func WithSeed(seed int64) Option {
	return func(p *Planner) {
		if seed != 0 {
			p.newSource = func() engine.RandomSource { return engine.NewRandomSource(seed) }
		}
	}
}

// WithRandomSource makes every GeneratePlan draw from src.
func WithRandomSource(src engine.RandomSource) Option {
	return func(p *Planner) {
		p.newSource = func() engine.RandomSource { return src }
	}
}

func WithAnalyzer(a analysis.Analyzer) Option {
	return func(p *Planner) { p.analyzer = a }
}

func WithAdvisor(a analysis.Advisor) Option {
	return func(p *Planner) { p.advisor = a }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// New creates a planner in auto mode for cfg.
func New(cfg model.Configuration, opts ...Option) *Planner {
	p := &Planner{
		state: State{
			Config: cfg.Normalize(),
			Mode:   model.ModeAuto,
		},
		newSource: func() engine.RandomSource { return engine.NewRandomSource(0) },
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromProject creates a planner with the configuration, mode, overrides and
// seed of a project document.
func FromProject(proj model.Project, opts ...Option) *Planner {
	opts = append([]Option{WithSeed(proj.Seed)}, opts...)
	p := New(proj.Config, opts...)
	if proj.Mode == model.ModeManual {
		p.state.Mode = model.ModeManual
	}
	p.state.Overrides = proj.Overrides.Clone()
	return p
}

// Snapshot returns a deep copy of the visible state.
func (p *Planner) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Planner) snapshotLocked() State {
	s := p.state
	s.Overrides = p.state.Overrides.Clone()
	if p.state.Plan != nil {
		plan := p.state.Plan.Clone()
		s.Plan = &plan
	}
	if p.state.AutoReport != nil {
		r := p.state.AutoReport.Clone()
		s.AutoReport = &r
		s.Comparison = engine.CompareOverrides(r, s.Overrides)
	}
	if p.state.Report != nil {
		r := p.state.Report.Clone()
		s.Report = &r
	}
	if p.state.CashFlow != nil {
		cf := *p.state.CashFlow
		cf.Months = append([]model.MonthlyCashFlow(nil), p.state.CashFlow.Months...)
		s.CashFlow = &cf
	}
	if p.state.Analysis != nil {
		e := *p.state.Analysis
		s.Analysis = &e
	}
	return s
}

// Project returns the current inputs as a project document.
func (p *Planner) Project(id, name string, seed int64) model.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return model.Project{
		ID:        id,
		Name:      name,
		Config:    p.state.Config,
		Mode:      p.state.Mode,
		Overrides: p.state.Overrides.Clone(),
		Seed:      seed,
	}
}

// Configure replaces the configuration. Results stay until the next GeneratePlan.
func (p *Planner) Configure(cfg model.Configuration) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Config = cfg.Normalize()
	return p.snapshotLocked()
}

// UpdateConfig edits a copy of the current configuration under the lock and
// stores it normalized. An error from fn leaves the configuration unchanged.
func (p *Planner) UpdateConfig(fn func(*model.Configuration) error) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg := p.state.Config
	if err := fn(&cfg); err != nil {
		return State{}, err
	}
	p.state.Config = cfg.Normalize()
	return p.snapshotLocked(), nil
}

// GeneratePlan runs layout, geometry and automatic costing for the current
// configuration. Invalid tier percentages leave the state untouched.
// A previous cash-flow result and advice are dropped.
func (p *Planner) GeneratePlan() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg := p.state.Config
	plan, err := engine.BuildPlan(cfg, p.newSource())
	if err != nil {
		p.log.Warn().Err(err).Int("tier_sum", cfg.TierSum()).Msg("plan rejected")
		return State{}, err
	}
	q := engine.ComputeQuantities(plan, cfg)
	auto := engine.BuildCostReport(q, cfg.Prices, model.ManualOverrides{}, model.ModeAuto)
	current := auto.Clone()

	p.state.Plan = &plan
	p.state.AutoReport = &auto
	p.state.Report = &current
	p.state.CashFlow = nil
	p.state.Advice = ""

	p.log.Debug().
		Int("boxes", len(plan.Boxes)).
		Float64("net_area", plan.Stats.NetArea).
		Float64("total", auto.GrandTotal).
		Msg("plan generated")
	return p.snapshotLocked(), nil
}

// SetMode switches between automatic and manual costing.
func (p *Planner) SetMode(mode model.CalcMode) (State, error) {
	if mode != model.ModeAuto && mode != model.ModeManual {
		return State{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Mode = mode
	return p.snapshotLocked(), nil
}

// SetOverride sets or, with a nil value, clears one manual value.
func (p *Planner) SetOverride(f model.OverrideField, v *float64) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.state.Overrides.Clone()
	if err := next.Set(f, v); err != nil {
		return State{}, err
	}
	p.state.Overrides = next
	return p.snapshotLocked(), nil
}

// SetOverrides replaces all manual values.
func (p *Planner) SetOverrides(o model.ManualOverrides) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Overrides = o.Clone()
	return p.snapshotLocked()
}

// ClearOverrides removes all manual values.
func (p *Planner) ClearOverrides() State {
	return p.SetOverrides(model.ManualOverrides{})
}

// CopyAutoToManual fills every manual value with its automatic counterpart
// and switches to manual mode.
func (p *Planner) CopyAutoToManual() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.AutoReport == nil {
		return State{}, ErrNoPlan
	}
	p.state.Overrides = engine.AutoOverrides(*p.state.AutoReport)
	p.state.Mode = model.ModeManual
	return p.snapshotLocked(), nil
}

// RecalculateManual reprices the plan with the manual values applied.
func (p *Planner) RecalculateManual() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Mode != model.ModeManual {
		p.log.Warn().Str("mode", string(p.state.Mode)).Msg("manual recalculation outside manual mode")
		return State{}, ErrNotManualMode
	}
	if p.state.AutoReport == nil {
		return State{}, ErrNoPlan
	}

	report := engine.BuildCostReport(p.state.AutoReport.Quantities, p.state.Config.Prices, p.state.Overrides, model.ModeManual)
	p.state.Report = &report
	p.state.CashFlow = nil

	p.log.Debug().
		Int("overrides", p.state.Overrides.Count()).
		Float64("total", report.GrandTotal).
		Msg("manual costs recalculated")
	return p.snapshotLocked(), nil
}

// RunCashFlow simulates the contract horizon against the current cost report.
func (p *Planner) RunCashFlow() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Plan == nil || p.state.Report == nil {
		p.log.Warn().Msg("cash flow requested without a cost report")
		return State{}, ErrNoCostReport
	}

	report := *p.state.Report
	res, err := engine.SimulateCashFlow(&report, p.state.Plan.Stats.NetArea, p.state.Config.CashFlow)
	if err != nil {
		return State{}, err
	}
	p.state.CashFlow = &res

	p.log.Debug().
		Int("break_even_month", res.BreakEvenMonth).
		Float64("roi", res.ROI).
		Msg("cash flow simulated")
	return p.snapshotLocked(), nil
}

// Analyze sends floor-plan images to the analysis service and applies the
// result as manual values. The lock is not held during the call; a second
// call while one is running fails with ErrAnalysisInProgress. On failure
// the state is unchanged.
func (p *Planner) Analyze(ctx context.Context, images []analysis.Image) (State, error) {
	if p.analyzer == nil {
		return State{}, ErrNoAnalyzer
	}
	if !p.analyzing.CompareAndSwap(false, true) {
		return State{}, ErrAnalysisInProgress
	}
	defer p.analyzing.Store(false)

	ext, err := p.analyzer.AnalyzeFloorPlan(ctx, images)
	if err != nil {
		p.log.Error().Err(err).Int("images", len(images)).Msg("floor plan analysis failed")
		return State{}, fmt.Errorf("floor plan analysis: %w: %w", ErrServiceFailed, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	overrides := p.state.Overrides.Clone()
	applied := ext.ApplyTo(&overrides)
	cfg := p.state.Config
	ext.ApplyHall(&cfg.Hall)

	p.state.Overrides = overrides
	p.state.Config = cfg
	p.state.Mode = model.ModeManual
	p.state.Analysis = &ext

	p.log.Info().Int("applied", applied).Msg("floor plan analysis applied")
	return p.snapshotLocked(), nil
}

// Advise asks the advisory service for a review of the current project.
func (p *Planner) Advise(ctx context.Context) (string, error) {
	if p.advisor == nil {
		return "", ErrNoAnalyzer
	}

	p.mu.Lock()
	if p.state.Plan == nil || p.state.Report == nil {
		p.mu.Unlock()
		return "", ErrNoCostReport
	}
	plan, report, cashFlow := p.state.Plan, p.state.Report, p.state.CashFlow
	summary := analysis.NewSummary(*plan, *report, p.state.Config.CashFlow, cashFlow)
	p.mu.Unlock()

	text, err := p.advisor.Advise(ctx, summary)
	if err != nil {
		p.log.Error().Err(err).Msg("advice request failed")
		return "", fmt.Errorf("advice: %w: %w", ErrServiceFailed, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Results are replaced, never mutated, so pointer identity means unchanged.
	if p.state.Plan != plan || p.state.Report != report || p.state.CashFlow != cashFlow {
		p.log.Warn().Msg("advice discarded, plan changed during the request")
		return "", ErrStaleResult
	}
	p.state.Advice = text
	return text, nil
}
