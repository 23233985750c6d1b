package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/boxplanner/internal/engine"
	"github.com/piwi3910/boxplanner/internal/model"
)

// Door types printed on labels.
const (
	DoorSingle   = "single"
	DoorDouble   = "double"
	DoorRoller20 = "roller 2.0 m"
)

// LabelInfo holds the data encoded into each box door label's QR code.
type LabelInfo struct {
	Project    string         `json:"project,omitempty"`
	Number     int            `json:"box"`
	Area       float64        `json:"area_m2"`
	Category   model.Category `json:"category"`
	FrontWidth float64        `json:"front_m"`
	Door       string         `json:"door"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// doorFor returns the door a box gets under the equipment options.
func doorFor(c model.Category, opts model.Options) string {
	if c != model.CategoryLarge {
		return DoorSingle
	}
	if opts.RollerDoors {
		return DoorRoller20
	}
	return DoorDouble
}

// CollectLabelInfos builds one label per box, in box number order.
func CollectLabelInfos(project string, plan model.Plan, opts model.Options) []LabelInfo {
	depth := plan.Geometry.BoxDepth
	if depth <= 0 {
		depth = engine.BoxDepth
	}
	labels := make([]LabelInfo, 0, len(plan.Boxes))
	for _, b := range plan.Boxes {
		labels = append(labels, LabelInfo{
			Project:    project,
			Number:     b.Number,
			Area:       b.Area,
			Category:   b.Category,
			FrontWidth: b.FrontWidth(depth),
			Door:       doorFor(b.Category, opts),
		})
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded door labels for every box.
// Each label shows the box number, its area and door type, and a QR code
// encoding the label data as JSON. Labels are laid out on a standard label
// sheet (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path, project string, plan model.Plan, opts model.Options) error {
	pdf, err := renderLabels(project, plan, opts)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WriteLabels streams the label sheet to w.
func WriteLabels(w io.Writer, project string, plan model.Plan, opts model.Options) error {
	pdf, err := renderLabels(project, plan, opts)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func renderLabels(project string, plan model.Plan, opts model.Options) (*fpdf.Fpdf, error) {
	labels := CollectLabelInfos(project, plan, opts)
	if len(labels) == 0 {
		return nil, ErrEmptyPlan
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, tr, x, y, label); err != nil {
			return nil, fmt.Errorf("render label for box %d: %w", label.Number, err)
		}
	}
	return pdf, nil
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, info LabelInfo) error {
	// cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_box_%d", info.Number)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Tier color strip on the left edge.
	c := categoryColors[info.Category]
	pdf.SetFillColor(c.R, c.G, c.B)
	pdf.Rect(x, y, 1.2, labelHeight, "F")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 6, fmt.Sprintf("Box %d", info.Number), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(textX, y+labelPadding+7)
	dims := fmt.Sprintf("%g m² | front %.2f m", info.Area, info.FrontWidth)
	pdf.CellFormat(textW, 3.5, tr(dims), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+11)
	pdf.CellFormat(textW, 3, tr("Door: "+info.Door), "", 1, "L", false, 0, "")

	if info.Project != "" {
		project := info.Project
		if pdf.GetStringWidth(tr(project)) > textW {
			runes := []rune(project)
			for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes)+"...")) > textW {
				runes = runes[:len(runes)-1]
			}
			project = string(runes) + "..."
		}
		pdf.SetXY(textX, y+labelPadding+14.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.CellFormat(textW, 3, tr(project), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
