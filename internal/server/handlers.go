package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/piwi3910/boxplanner/internal/analysis"
	"github.com/piwi3910/boxplanner/internal/engine"
	"github.com/piwi3910/boxplanner/internal/export"
	"github.com/piwi3910/boxplanner/internal/importer"
	"github.com/piwi3910/boxplanner/internal/model"
	"github.com/piwi3910/boxplanner/internal/planner"
	"github.com/piwi3910/boxplanner/internal/project"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.planner.Snapshot())
}

// putConfig decodes the body over the current configuration, so clients
// may send only the fields they change.
func (s *Server) putConfig(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.handleError(c, badRequest("cannot read request body"))
		return
	}
	state, err := s.planner.UpdateConfig(func(cfg *model.Configuration) error {
		if err := binding.JSON.BindBody(body, cfg); err != nil {
			return badRequest("invalid configuration: " + err.Error())
		}
		return nil
	})
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) generatePlan(c *gin.Context) {
	state, err := s.planner.GeneratePlan()
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type modeRequest struct {
	Mode model.CalcMode `json:"mode" binding:"required"`
}

func (s *Server) putMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, badRequest("mode is required"))
		return
	}
	state, err := s.planner.SetMode(req.Mode)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) putOverrides(c *gin.Context) {
	var o model.ManualOverrides
	if err := c.ShouldBindJSON(&o); err != nil {
		s.handleError(c, badRequest("invalid overrides: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.planner.SetOverrides(o))
}

func (s *Server) clearOverrides(c *gin.Context) {
	c.JSON(http.StatusOK, s.planner.ClearOverrides())
}

// overrideRequest carries one manual value; a null value clears it.
type overrideRequest struct {
	Value *float64 `json:"value"`
}

func (s *Server) putOverride(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, badRequest("invalid override: "+err.Error()))
		return
	}
	state, err := s.planner.SetOverride(model.OverrideField(c.Param("field")), req.Value)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) copyAutoToManual(c *gin.Context) {
	state, err := s.planner.CopyAutoToManual()
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) recalculateManual(c *gin.Context) {
	state, err := s.planner.RecalculateManual()
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) runCashFlow(c *gin.Context) {
	state, err := s.planner.RunCashFlow()
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) analyze(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		s.handleError(c, badRequest("expected a multipart form with images"))
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		s.handleError(c, badRequest("no images uploaded"))
		return
	}

	images := make([]analysis.Image, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			s.handleError(c, badRequest(err.Error()))
			return
		}
		images = append(images, analysis.NewImage(fh.Filename, data))
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.analysisTimeout)
	defer cancel()
	state, err := s.planner.Analyze(ctx, images)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

func (s *Server) advise(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.analysisTimeout)
	defer cancel()
	text, err := s.planner.Advise(ctx)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"advice": text})
}

type scenarioResult struct {
	Name           string  `json:"name"`
	Small          int     `json:"small_percent"`
	Medium         int     `json:"medium_percent"`
	Large          int     `json:"large_percent"`
	Error          string  `json:"error,omitempty"`
	TotalBoxes     int     `json:"total_boxes"`
	NetArea        float64 `json:"net_area"`
	Efficiency     int     `json:"efficiency"`
	TotalCost      float64 `json:"total_cost"`
	ROI            float64 `json:"roi"`
	BreakEvenMonth int     `json:"break_even_month"`
}

// compare runs the current configuration against the built-in alternative
// tier mixes without touching the planner state.
func (s *Server) compare(c *gin.Context) {
	cfg := s.planner.Snapshot().Config
	results := engine.CompareScenarios(engine.BuildDefaultScenarios(cfg), s.seed)

	out := make([]scenarioResult, 0, len(results))
	for _, r := range results {
		sc := r.Scenario.Config
		row := scenarioResult{
			Name:           r.Scenario.Name,
			Small:          sc.SmallPercent,
			Medium:         sc.MediumPercent,
			Large:          sc.LargePercent,
			TotalBoxes:     r.TotalBoxes,
			NetArea:        r.NetArea,
			Efficiency:     r.Efficiency,
			TotalCost:      r.TotalCost,
			ROI:            r.ROI,
			BreakEvenMonth: r.BreakEvenMonth,
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": out})
}

// importPrices reads an uploaded CSV or XLSX price list. Nothing is applied
// when any row fails.
func (s *Server) importPrices(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		s.handleError(c, badRequest("expected a price list in the 'file' field"))
		return
	}

	file, err := fh.Open()
	if err != nil {
		s.handleError(c, err)
		return
	}
	defer file.Close()

	// Parsed against an empty list; only the rows in the file are applied.
	result := importer.ImportReader(file, fh.Filename, model.PriceList{})
	if !result.OK() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "price list rejected",
			"code":     "IMPORT_FAILED",
			"errors":   result.Errors,
			"warnings": result.Warnings,
		})
		return
	}

	state, err := s.planner.UpdateConfig(func(cfg *model.Configuration) error {
		for _, key := range result.Updated {
			v, _ := result.Prices.Get(key)
			if err := cfg.Prices.Set(key, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.handleError(c, err)
		return
	}
	s.log.Info().Strs("updated", result.Updated).Str("file", fh.Filename).Msg("prices imported")
	c.JSON(http.StatusOK, gin.H{
		"updated":  result.Updated,
		"warnings": result.Warnings,
		"state":    state,
	})
}

func (s *Server) resetPrices(c *gin.Context) {
	state, _ := s.planner.UpdateConfig(func(cfg *model.Configuration) error {
		cfg.Prices = model.DefaultPrices()
		return nil
	})
	c.JSON(http.StatusOK, state)
}

func (s *Server) presetStore() (model.PresetStore, error) {
	if s.presetPath == "" {
		return model.NewPresetStore(), nil
	}
	return project.LoadPresets(s.presetPath)
}

func (s *Server) listPresets(c *gin.Context) {
	store, err := s.presetStore()
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"built_in": model.BuiltInPresets(),
		"user":     store.Presets,
	})
}

// applyPreset replaces the configuration with a preset, looked up by ID or name.
func (s *Server) applyPreset(c *gin.Context) {
	store, err := s.presetStore()
	if err != nil {
		s.handleError(c, err)
		return
	}
	preset, ok := store.Lookup(c.Param("id"))
	if !ok {
		s.handleError(c, NewAPIError("preset not found", http.StatusNotFound, "NOT_FOUND"))
		return
	}
	c.JSON(http.StatusOK, s.planner.Configure(preset.Config))
}

// document assembles the export document from the current state.
func (s *Server) document() (export.Document, error) {
	state := s.planner.Snapshot()
	if state.Plan == nil || state.Report == nil {
		return export.Document{}, planner.ErrNoPlan
	}
	doc := export.Document{
		ProjectName: s.projectName,
		Config:      state.Config,
		Plan:        *state.Plan,
		Report:      *state.Report,
		CashFlow:    state.CashFlow,
		Advice:      state.Advice,
		GeneratedAt: time.Now(),
	}
	if state.Report.Mode == model.ModeManual {
		doc.AutoReport = state.AutoReport
	}
	return doc, nil
}

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// download renders into memory first so a failed export still gets a JSON error.
func (s *Server) download(c *gin.Context, filename, contentType string, write func(io.Writer, export.Document) error) {
	doc, err := s.document()
	if err != nil {
		s.handleError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, doc); err != nil {
		s.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) reportPDF(c *gin.Context) {
	s.download(c, "report.pdf", contentTypePDF, export.WritePDF)
}

func (s *Server) reportXLSX(c *gin.Context) {
	s.download(c, "report.xlsx", contentTypeXLSX, export.WriteXLSX)
}

func (s *Server) labelsPDF(c *gin.Context) {
	s.download(c, "labels.pdf", contentTypePDF, func(w io.Writer, doc export.Document) error {
		return export.WriteLabels(w, doc.ProjectName, doc.Plan, doc.Config.Options)
	})
}
