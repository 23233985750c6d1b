// Package export writes planning results to PDF reports, box door labels
// and Excel workbooks.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/boxplanner/internal/model"
)

// ErrEmptyPlan is returned when there are no boxes to export.
var ErrEmptyPlan = errors.New("no boxes to export")

// Document is everything a report shows about one project.
type Document struct {
	ProjectName string
	Config      model.Configuration
	Plan        model.Plan
	Report      model.CostReport
	AutoReport  *model.CostReport     // shown next to manual values when set
	CashFlow    *model.CashFlowResult // cash-flow page is skipped when nil
	Advice      string
	GeneratedAt time.Time
}

func (d Document) validate() error {
	if len(d.Plan.Boxes) == 0 {
		return ErrEmptyPlan
	}
	return nil
}

// rgb is a fill color.
type rgb struct {
	R, G, B int
}

// Tier colors of the schematic, matching the on-screen plan.
var categoryColors = map[model.Category]rgb{
	model.CategorySmall:  {R: 0x26, G: 0xa6, B: 0x9a},
	model.CategoryMedium: {R: 0x42, G: 0xa5, B: 0xf5},
	model.CategoryLarge:  {R: 0x66, G: 0xbb, B: 0x6a},
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	contentWidth = pageWidth - marginLeft - marginRight
	drawAreaTop  = marginTop + headerHeight + 8.0
	corridorGap  = 0.5 // share of the box depth drawn as corridor
)

// pageWriter bundles the document with the text translator of the core fonts.
type pageWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	f   Formatter
}

func (w pageWriter) cell(width, height float64, text, border, align string, fill bool) {
	w.pdf.CellFormat(width, height, w.tr(text), border, 0, align, fill, 0, "")
}

func (w pageWriter) title(text string) float64 {
	w.pdf.SetFont("Helvetica", "B", 16)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.SetXY(marginLeft, marginTop)
	w.cell(contentWidth, 10, text, "", "L", false)

	w.pdf.SetDrawColor(0, 0, 0)
	w.pdf.SetLineWidth(0.5)
	w.pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)
	return marginTop + 18
}

func (w pageWriter) section(y float64, text string) float64 {
	w.pdf.SetFont("Helvetica", "B", 12)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.SetXY(marginLeft, y)
	w.cell(120, 7, text, "", "L", false)
	return y + 9
}

// table draws a header row and body rows; it returns the y below the table.
func (w pageWriter) table(y float64, widths []float64, headers []string, rows [][]string, align []string) float64 {
	w.pdf.SetFont("Helvetica", "B", 9)
	w.pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		w.pdf.SetXY(x, y)
		w.cell(widths[i], 6, h, "1", "C", true)
		x += widths[i]
	}
	y += 6

	w.pdf.SetFont("Helvetica", "", 9)
	for r, row := range rows {
		if r%2 == 0 {
			w.pdf.SetFillColor(245, 245, 245)
		} else {
			w.pdf.SetFillColor(255, 255, 255)
		}
		x = marginLeft
		for i, c := range row {
			w.pdf.SetXY(x, y)
			w.cell(widths[i], 6, c, "1", align[i], true)
			x += widths[i]
		}
		y += 6
	}
	return y
}

func (w pageWriter) keyValues(y float64, items [][2]string) float64 {
	w.pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		w.pdf.SetXY(marginLeft+5, y)
		w.cell(70, 6, item[0]+":", "", "L", false)
		w.pdf.SetFont("Helvetica", "B", 10)
		w.cell(60, 6, item[1], "", "L", false)
		w.pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
	return y
}

func (w pageWriter) footer(doc Document) {
	w.pdf.SetFont("Helvetica", "I", 8)
	w.pdf.SetTextColor(120, 120, 120)
	w.pdf.SetXY(marginLeft, pageHeight-marginBottom)
	text := fmt.Sprintf("%s | generated %s | page %d", doc.ProjectName, doc.GeneratedAt.Format("2006-01-02 15:04"), w.pdf.PageNo())
	w.cell(contentWidth, 4, text, "", "C", false)
	w.pdf.SetTextColor(0, 0, 0)
}

// ExportPDF writes the project report: a summary with the box structure,
// the cost table with its formulas, the yearly cash flow when simulated,
// the advisory notes when present, and a schematic floor plan.
func ExportPDF(path string, doc Document) error {
	pdf, err := renderPDF(doc)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WritePDF streams the project report to w.
func WritePDF(w io.Writer, doc Document) error {
	pdf, err := renderPDF(doc)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func renderPDF(doc Document) (*fpdf.Fpdf, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	if doc.ProjectName == "" {
		doc.ProjectName = "Self-storage project"
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(doc.ProjectName, true)
	w := pageWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), f: pdfFormatter}

	pdf.AddPage()
	renderSummaryPage(w, doc)
	w.footer(doc)

	pdf.AddPage()
	renderCostPage(w, doc)
	w.footer(doc)

	if doc.CashFlow != nil {
		pdf.AddPage()
		renderCashFlowPage(w, *doc.CashFlow)
		w.footer(doc)
	}

	if strings.TrimSpace(doc.Advice) != "" {
		pdf.AddPage()
		renderAdvicePage(w, doc.Advice)
		w.footer(doc)
	}

	pdf.AddPage()
	renderFloorPlanPage(w, doc.Plan)
	w.footer(doc)

	return pdf, pdf.Error()
}

func renderSummaryPage(w pageWriter, doc Document) {
	y := w.title(doc.ProjectName)
	stats := doc.Plan.Stats
	cfg := doc.Config

	y = w.section(y, "Hall")
	y = w.keyValues(y, [][2]string{
		{"Shape", w.f.Title(string(cfg.Hall.Shape))},
		{"Gross area", w.f.Quantity(stats.GrossArea, model.UnitSquareMeter)},
		{"System height", w.f.Number(cfg.SystemHeightM(), 2) + " m"},
		{"Corridor width", w.f.Number(cfg.CorridorWidthM(), 2) + " m"},
		{"Target efficiency", fmt.Sprintf("%d %%", stats.TargetEfficiency)},
	})

	y += 4
	y = w.section(y, "Layout")
	w.keyValues(y, [][2]string{
		{"Boxes", fmt.Sprintf("%d (%d small, %d medium, %d large)", stats.Counts.Total(), stats.Counts.Small, stats.Counts.Medium, stats.Counts.Large)},
		{"Net rentable area", w.f.Quantity(stats.NetArea, model.UnitSquareMeter)},
		{"Achieved efficiency", fmt.Sprintf("%d %% (max %d %%)", stats.Efficiency, stats.MaxEfficiency)},
		{"Corridor area", w.f.Quantity(stats.CorridorArea, model.UnitSquareMeter)},
		{"Average box", w.f.Quantity(stats.AverageBoxArea, model.UnitSquareMeter)},
		{"Investment", w.f.WholeMoney(doc.Report.RoundedTotal())},
	})

	// Box structure to the right of the key figures.
	rows := make([][]string, 0, len(stats.Sizes))
	for _, s := range stats.Sizes {
		rows = append(rows, []string{
			w.f.Quantity(s.Area, model.UnitSquareMeter),
			s.Category.Label(),
			fmt.Sprintf("%d", s.Count),
			w.f.Quantity(s.Area*float64(s.Count), model.UnitSquareMeter),
		})
	}
	w.pdf.SetFont("Helvetica", "B", 12)
	w.pdf.SetXY(marginLeft+150, marginTop+18)
	w.cell(100, 7, "Box structure", "", "L", false)

	widths := []float64{22, 45, 18, 30}
	headers := []string{"Size", "Tier", "Count", "Area"}
	align := []string{"R", "L", "R", "R"}
	ty := marginTop + 27
	w.pdf.SetFont("Helvetica", "B", 9)
	w.pdf.SetFillColor(230, 230, 230)
	x := marginLeft + 150
	for i, h := range headers {
		w.pdf.SetXY(x, ty)
		w.cell(widths[i], 6, h, "1", "C", true)
		x += widths[i]
	}
	ty += 6
	w.pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		x = marginLeft + 150
		for i, c := range row {
			w.pdf.SetXY(x, ty)
			w.cell(widths[i], 6, c, "1", align[i], false)
			x += widths[i]
		}
		ty += 6
	}
}

func renderCostPage(w pageWriter, doc Document) {
	mode := "automatic"
	if doc.Report.Mode == model.ModeManual {
		mode = "manual"
	}
	y := w.title(fmt.Sprintf("Investment costs (%s calculation)", mode))

	manual := doc.Report.Mode == model.ModeManual && doc.AutoReport != nil

	widths := []float64{45, 25, 25, 30, 35, 107}
	headers := []string{"Item", "Quantity", "Auto", "Unit price", "Total", "Formula"}
	align := []string{"L", "R", "R", "R", "R", "L"}
	if !manual {
		widths = []float64{45, 30, 30, 40, 122}
		headers = []string{"Item", "Quantity", "Unit price", "Total", "Formula"}
		align = []string{"L", "R", "R", "R", "L"}
	}

	var rows [][]string
	for _, it := range doc.Report.OrderedItems() {
		label := it.Key.Label()
		if it.Overridden {
			label += " *"
		}
		row := []string{label, w.f.Quantity(it.Quantity, it.Unit)}
		if manual {
			row = append(row, w.f.Quantity(doc.AutoReport.Item(it.Key).Quantity, it.Unit))
		}
		row = append(row, w.f.Money(it.UnitPrice), w.f.Money(it.Total), it.Formula)
		rows = append(rows, row)
	}
	y = w.table(y, widths, headers, rows, align)

	y += 4
	y = w.keyValues(y, [][2]string{
		{"Total", w.f.Money(doc.Report.GrandTotal)},
		{"Rounded", w.f.WholeMoney(doc.Report.RoundedTotal())},
	})
	if manual {
		w.pdf.SetFont("Helvetica", "I", 8)
		w.pdf.SetXY(marginLeft, y+2)
		w.cell(contentWidth, 4, "* manual value", "", "L", false)
	}
}

func renderCashFlowPage(w pageWriter, cf model.CashFlowResult) {
	y := w.title("Cash flow")

	breakEven := "not reached"
	if cf.BreakEvenReached {
		breakEven = fmt.Sprintf("month %d (%.1f years)", cf.BreakEvenMonth, float64(cf.BreakEvenMonth)/12)
	}
	y = w.keyValues(y, [][2]string{
		{"Investment", w.f.Money(cf.TotalInvestment)},
		{"Max rentable area", w.f.Quantity(cf.MaxRentableArea, model.UnitSquareMeter)},
		{"Monthly net at full occupancy", w.f.Money(cf.MonthlyNetAtMax)},
		{"Break-even", breakEven},
		{"Total profit", w.f.Money(cf.TotalProfit)},
		{"ROI", w.f.Percent(cf.ROI)},
		{"Annual return", w.f.Percent(cf.AnnualReturn)},
	})

	y += 4
	widths := []float64{18, 40, 40, 40, 40, 30, 59}
	headers := []string{"Year", "Gross revenue", "License fee", "Fixed costs", "Net revenue", "Rented", "Cumulative"}
	align := []string{"C", "R", "R", "R", "R", "R", "R"}
	var rows [][]string
	for _, yr := range cf.Years() {
		rows = append(rows, []string{
			fmt.Sprintf("%d", yr.Year),
			w.f.WholeMoney(yr.GrossRevenue),
			w.f.WholeMoney(yr.LicenseFee),
			w.f.WholeMoney(yr.FixedCosts),
			w.f.WholeMoney(yr.NetRevenue),
			w.f.Quantity(yr.EndRentedArea, model.UnitSquareMeter),
			w.f.WholeMoney(yr.CumulativeCashFlow),
		})
	}
	w.table(y, widths, headers, rows, align)
}

func renderAdvicePage(w pageWriter, advice string) {
	y := w.title("Expert review")
	w.pdf.SetFont("Helvetica", "", 10)
	w.pdf.SetXY(marginLeft, y)
	w.pdf.MultiCell(contentWidth, 5, w.tr(advice), "", "L", false)
}

// schematicBox is one box placed on the schematic, in meters.
type schematicBox struct {
	box        model.Box
	x, y, w, d float64
}

// layoutSchematic arranges boxes in double rows facing a corridor. Boxes
// alternate between the two rows; a band wraps once a row would exceed
// bandLength. It returns the boxes and the overall width and height.
func layoutSchematic(boxes []model.Box, depth, bandLength float64) ([]schematicBox, float64, float64) {
	corridor := depth * corridorGap
	bandHeight := 2*depth + corridor
	var out []schematicBox
	var rows [2]float64
	band := 0
	width := 0.0

	for i, b := range boxes {
		bw := b.FrontWidth(depth)
		row := i % 2
		if rows[row]+bw > bandLength && rows[row] > 0 {
			band++
			rows = [2]float64{}
		}
		y := float64(band)*(bandHeight+corridor) + float64(row)*(depth+corridor)
		out = append(out, schematicBox{box: b, x: rows[row], y: y, w: bw, d: depth})
		rows[row] += bw
		width = math.Max(width, rows[row])
	}
	height := float64(band+1)*bandHeight + float64(band)*corridor
	return out, width, height
}

func renderFloorPlanPage(w pageWriter, plan model.Plan) {
	w.title("Schematic floor plan")

	depth := plan.Geometry.BoxDepth
	if depth <= 0 {
		depth = 3
	}
	bandLength := math.Max(plan.Geometry.FrontWallLength/2, 12)
	if plan.Geometry.CorridorLength > 0 {
		bandLength = math.Max(plan.Geometry.CorridorLength, 12)
	}
	placed, width, height := layoutSchematic(plan.Boxes, depth, bandLength)

	drawW := contentWidth
	drawH := pageHeight - drawAreaTop - marginBottom - 12
	scale := math.Min(drawW/width, drawH/height)
	offsetX := marginLeft + (drawW-width*scale)/2
	offsetY := drawAreaTop

	for _, p := range placed {
		col := categoryColors[p.box.Category]
		px, py := offsetX+p.x*scale, offsetY+p.y*scale
		pw, ph := p.w*scale, p.d*scale

		w.pdf.SetFillColor(col.R, col.G, col.B)
		w.pdf.SetDrawColor(255, 255, 255)
		w.pdf.SetLineWidth(0.3)
		w.pdf.Rect(px, py, pw, ph, "FD")

		if pw > 6 && ph > 5 {
			w.pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			w.pdf.SetTextColor(255, 255, 255)
			text := fmt.Sprintf("%d", p.box.Number)
			tw := w.pdf.GetStringWidth(text)
			w.pdf.SetXY(px+(pw-tw)/2, py+ph/2-2)
			w.cell(tw, 4, text, "", "C", false)
		}
	}
	w.pdf.SetTextColor(0, 0, 0)

	drawLegend(w, offsetY+height*scale+4)
}

func drawLegend(w pageWriter, y float64) {
	w.pdf.SetFont("Helvetica", "", 8)
	x := marginLeft
	for _, c := range model.Categories {
		col := categoryColors[c]
		w.pdf.SetFillColor(col.R, col.G, col.B)
		w.pdf.Rect(x, y+0.5, 3, 3, "F")
		w.pdf.SetXY(x+4, y)
		label := c.Label()
		w.cell(w.pdf.GetStringWidth(w.tr(label))+2, 4, label, "", "L", false)
		x += w.pdf.GetStringWidth(w.tr(label)) + 12
	}
	w.pdf.SetXY(x, y)
	w.cell(80, 4, "Schematic only, not to scale of the real hall", "", "L", false)
}

// labelFontSize returns a font size that fits the rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 20:
		return 8
	case minDim > 10:
		return 7
	default:
		return 6
	}
}
