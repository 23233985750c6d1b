package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/boxplanner/internal/analysis"
	"github.com/piwi3910/boxplanner/internal/config"
	"github.com/piwi3910/boxplanner/internal/engine"
	"github.com/piwi3910/boxplanner/internal/export"
	"github.com/piwi3910/boxplanner/internal/importer"
	"github.com/piwi3910/boxplanner/internal/model"
	"github.com/piwi3910/boxplanner/internal/planner"
	"github.com/piwi3910/boxplanner/internal/project"
)

type planFlags struct {
	project  string
	preset   string
	name     string
	prices   string
	dxf      string
	units    string
	images   []string
	seed     int64
	cashFlow bool
	advise   bool
	compare  bool
	pdf      string
	xlsx     string
	labels   string
	save     string
}

func planCmd(cfg config.Config) *cobra.Command {
	var f planFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the planning pipeline once and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), cfg, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.project, "project", "", "project file to plan")
	fs.StringVar(&f.preset, "preset", "", "start from a preset (ID or name)")
	fs.StringVar(&f.name, "name", "", "project name")
	fs.StringVar(&f.prices, "prices", "", "price list to apply (CSV or XLSX)")
	fs.StringVar(&f.dxf, "dxf", "", "hall outline drawing (DXF)")
	fs.StringVar(&f.units, "units", "auto", "DXF drawing units: m, cm, mm or auto")
	fs.StringSliceVar(&f.images, "images", nil, "floor plan images to analyse")
	fs.Int64Var(&f.seed, "seed", 0, "layout seed; 0 keeps the project seed")
	fs.BoolVar(&f.cashFlow, "cashflow", false, "run the cash-flow simulation")
	fs.BoolVar(&f.advise, "advise", false, "ask the advisory service for a review")
	fs.BoolVar(&f.compare, "compare", false, "compare alternative tier mixes")
	fs.StringVar(&f.pdf, "pdf", "", "write the PDF report to this path")
	fs.StringVar(&f.xlsx, "xlsx", "", "write the Excel workbook to this path")
	fs.StringVar(&f.labels, "labels", "", "write the door label sheet to this path")
	fs.StringVar(&f.save, "save", "", "save the project inputs to this path")
	cmd.MarkFlagsMutuallyExclusive("project", "preset")
	return cmd
}

func runPlan(ctx context.Context, cfg config.Config, f planFlags) error {
	appCfg, err := project.LoadAppConfig(cfg.AppConfigPath)
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}
	proj, err := loadPlanProject(f, appCfg)
	if err != nil {
		return err
	}
	if err := applyInputFiles(f, &proj); err != nil {
		return err
	}

	opts := []planner.Option{planner.WithLogger(log.Logger)}
	if len(f.images) > 0 || f.advise {
		svc, cleanup := analysisOptions(cfg, log.Logger)
		defer cleanup()
		opts = append(opts, svc...)
	}
	p := planner.FromProject(proj, opts...)

	if len(f.images) > 0 {
		actx, cancel := context.WithTimeout(ctx, cfg.AnalysisTimeout)
		images, err := analysis.LoadImages(actx, f.images)
		if err == nil {
			_, err = p.Analyze(actx, images)
		}
		cancel()
		if err != nil {
			return err
		}
	}

	state, err := p.GeneratePlan()
	if err != nil {
		return err
	}
	if state.Mode == model.ModeManual {
		if state, err = p.RecalculateManual(); err != nil {
			return err
		}
	}
	if f.cashFlow {
		if state, err = p.RunCashFlow(); err != nil {
			return err
		}
	}
	if f.advise {
		actx, cancel := context.WithTimeout(ctx, cfg.AnalysisTimeout)
		_, err := p.Advise(actx)
		cancel()
		if err != nil {
			return err
		}
		state = p.Snapshot()
	}

	printSummary(os.Stdout, proj.Name, state, export.DefaultFormatter)

	if f.compare {
		results := engine.CompareScenarios(engine.BuildDefaultScenarios(state.Config), proj.Seed)
		printComparison(os.Stdout, results, export.DefaultFormatter)
	}

	if err := writeExports(f, proj.Name, state); err != nil {
		return err
	}

	if f.save != "" {
		if err := project.SaveProject(f.save, p.Project(proj.ID, proj.Name, proj.Seed)); err != nil {
			return err
		}
		if err := project.RememberProject(cfg.AppConfigPath, f.save); err != nil {
			log.Warn().Err(err).Msg("could not update recent projects")
		}
		log.Info().Str("path", f.save).Msg("project saved")
	}
	return nil
}

// loadPlanProject picks the project source: a file, a preset, or a new
// project seeded with the application defaults.
func loadPlanProject(f planFlags, appCfg model.AppConfig) (model.Project, error) {
	var proj model.Project
	switch {
	case f.project != "":
		var err error
		if proj, err = project.LoadProject(f.project); err != nil {
			return model.Project{}, err
		}
	case f.preset != "":
		store, err := project.LoadPresets(project.DefaultPresetPath())
		if err != nil {
			return model.Project{}, err
		}
		preset, ok := store.Lookup(f.preset)
		if !ok {
			return model.Project{}, fmt.Errorf("preset %q not found", f.preset)
		}
		proj = preset.ToProject(preset.Name)
	default:
		proj = model.NewProject()
		appCfg.ApplyToConfiguration(&proj.Config)
	}
	if f.name != "" {
		proj.Name = f.name
	}
	if f.seed != 0 {
		proj.Seed = f.seed
	}
	return proj, nil
}

func applyInputFiles(f planFlags, proj *model.Project) error {
	if f.prices != "" {
		res := importer.ImportFile(f.prices, proj.Config.Prices)
		for _, w := range res.Warnings {
			log.Warn().Str("file", f.prices).Msg(w)
		}
		if !res.OK() {
			return fmt.Errorf("price list %s rejected: %s", f.prices, strings.Join(res.Errors, "; "))
		}
		proj.Config.Prices = res.Prices
		log.Info().Strs("updated", res.Updated).Msg("prices imported")
	}

	if f.dxf != "" {
		units, err := importer.ParseUnits(f.units)
		if err != nil {
			return err
		}
		res := importer.ImportHallDXF(f.dxf, units)
		for _, w := range res.Warnings {
			log.Warn().Str("file", f.dxf).Msg(w)
		}
		if len(res.Errors) > 0 {
			return fmt.Errorf("hall drawing %s rejected: %s", f.dxf, strings.Join(res.Errors, "; "))
		}
		proj.Config.Hall = res.Hall
		log.Info().
			Str("shape", string(res.Hall.Shape)).
			Float64("area", res.Area).
			Str("units", string(res.Units)).
			Msg("hall imported")
	}
	return nil
}

func writeExports(f planFlags, name string, state planner.State) error {
	if f.pdf == "" && f.xlsx == "" && f.labels == "" {
		return nil
	}
	doc := export.Document{
		ProjectName: name,
		Config:      state.Config,
		Plan:        *state.Plan,
		Report:      *state.Report,
		CashFlow:    state.CashFlow,
		Advice:      state.Advice,
		GeneratedAt: time.Now(),
	}
	if state.Mode == model.ModeManual {
		doc.AutoReport = state.AutoReport
	}

	if f.pdf != "" {
		if err := export.ExportPDF(f.pdf, doc); err != nil {
			return fmt.Errorf("export PDF: %w", err)
		}
		log.Info().Str("path", f.pdf).Msg("report written")
	}
	if f.xlsx != "" {
		if err := export.ExportXLSX(f.xlsx, doc); err != nil {
			return fmt.Errorf("export workbook: %w", err)
		}
		log.Info().Str("path", f.xlsx).Msg("workbook written")
	}
	if f.labels != "" {
		if err := export.ExportLabels(f.labels, name, doc.Plan, doc.Config.Options); err != nil {
			return fmt.Errorf("export labels: %w", err)
		}
		log.Info().Str("path", f.labels).Msg("labels written")
	}
	return nil
}

func printSummary(w io.Writer, name string, s planner.State, f export.Formatter) {
	plan, report := s.Plan, s.Report
	stats := plan.Stats

	fmt.Fprintf(w, "%s\n\n", name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Gross area\t%s\n", f.Quantity(stats.GrossArea, model.UnitSquareMeter))
	fmt.Fprintf(tw, "Net area\t%s\n", f.Quantity(stats.NetArea, model.UnitSquareMeter))
	fmt.Fprintf(tw, "Efficiency\t%d %% (target %d %%, max %d %%)\n", stats.Efficiency, stats.TargetEfficiency, stats.MaxEfficiency)
	fmt.Fprintf(tw, "Boxes\t%d (small %d, medium %d, large %d)\n",
		stats.Counts.Total(), stats.Counts.Small, stats.Counts.Medium, stats.Counts.Large)
	fmt.Fprintf(tw, "Average box\t%s\n", f.Quantity(stats.AverageBoxArea, model.UnitSquareMeter))
	tw.Flush()

	fmt.Fprintf(w, "\nCosts (%s)\n", report.Mode)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, it := range report.OrderedItems() {
		mark := ""
		if it.Overridden {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t\n", it.Key.Label(), mark, f.Quantity(it.Quantity, it.Unit), f.Money(it.Total))
	}
	fmt.Fprintf(tw, "Total\t\t%s\t\n", f.Money(report.GrandTotal))
	tw.Flush()
	fmt.Fprintf(w, "Investment (rounded): %s\n", f.WholeMoney(report.RoundedTotal()))

	if cf := s.CashFlow; cf != nil {
		fmt.Fprintln(w, "\nCash flow")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		breakEven := "not reached"
		if cf.BreakEvenReached {
			breakEven = fmt.Sprintf("month %d", cf.BreakEvenMonth)
		}
		fmt.Fprintf(tw, "Break-even\t%s\n", breakEven)
		fmt.Fprintf(tw, "Total profit\t%s\n", f.Money(cf.TotalProfit))
		fmt.Fprintf(tw, "ROI\t%s\n", f.Percent(cf.ROI))
		fmt.Fprintf(tw, "Annual return\t%s\n", f.Percent(cf.AnnualReturn))
		tw.Flush()
	}

	if s.Advice != "" {
		fmt.Fprintf(w, "\nReview\n%s\n", s.Advice)
	}
}

func printComparison(w io.Writer, results []engine.ComparisonResult, f export.Formatter) {
	fmt.Fprintln(w, "\nScenarios")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Scenario\tBoxes\tNet area\tCost\tROI\tBreak-even")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\n", r.Scenario.Name, r.Err)
			continue
		}
		breakEven := "-"
		if r.BreakEvenMonth > 0 {
			breakEven = fmt.Sprintf("%d", r.BreakEvenMonth)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", r.Scenario.Name, r.TotalBoxes,
			f.Quantity(r.NetArea, model.UnitSquareMeter), f.Money(r.TotalCost), f.Percent(r.ROI), breakEven)
	}
	tw.Flush()
}
