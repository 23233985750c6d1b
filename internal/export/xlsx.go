package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetSummary  = "Summary"
	SheetBoxes    = "Boxes"
	SheetCosts    = "Costs"
	SheetCashFlow = "Cash flow"
)

// ExportXLSX writes the document as an Excel workbook to path.
func ExportXLSX(path string, doc Document) error {
	f, err := buildWorkbook(doc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteXLSX streams the workbook to w.
func WriteXLSX(w io.Writer, doc Document) error {
	f, err := buildWorkbook(doc)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(doc Document) (*excelize.File, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	// The default sheet becomes the summary.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	steps := []func(*excelize.File, Document, int) error{
		writeSummarySheet,
		writeBoxesSheet,
		writeCostsSheet,
	}
	if doc.CashFlow != nil {
		steps = append(steps, writeCashFlowSheet)
	}
	for _, step := range steps {
		if err := step(f, doc, header); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// writeRows writes rows starting at A<startRow>.
func writeRows(f *excelize.File, sheet string, startRow int, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, startRow+i, err)
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers ...any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeSummarySheet(f *excelize.File, doc Document, header int) error {
	stats := doc.Plan.Stats
	if err := writeHeader(f, SheetSummary, header, "Item", "Value"); err != nil {
		return err
	}
	rows := [][]any{
		{"Project", doc.ProjectName},
		{"Hall shape", string(doc.Config.Hall.Shape)},
		{"Gross area [m²]", stats.GrossArea},
		{"Usable area [m²]", stats.UsableArea},
		{"Net area [m²]", stats.NetArea},
		{"Corridor area [m²]", stats.CorridorArea},
		{"Target efficiency [%]", stats.TargetEfficiency},
		{"Efficiency [%]", stats.Efficiency},
		{"Max efficiency [%]", stats.MaxEfficiency},
		{"Boxes", stats.Counts.Total()},
		{"Small boxes", stats.Counts.Small},
		{"Medium boxes", stats.Counts.Medium},
		{"Large boxes", stats.Counts.Large},
		{"Average box [m²]", stats.AverageBoxArea},
		{"Front wall [m]", doc.Plan.Geometry.FrontWallLength},
		{"Partition walls [m]", doc.Plan.Geometry.PartitionWallLength},
		{"Corridor length [m]", doc.Plan.Geometry.CorridorLength},
		{"Calculation mode", string(doc.Report.Mode)},
		{"Investment [PLN]", doc.Report.GrandTotal},
		{"Investment, rounded [PLN]", doc.Report.RoundedTotal()},
	}
	if err := writeRows(f, SheetSummary, 2, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "A", 28)
}

func writeBoxesSheet(f *excelize.File, doc Document, header int) error {
	if _, err := f.NewSheet(SheetBoxes); err != nil {
		return fmt.Errorf("create boxes sheet: %w", err)
	}
	if err := writeHeader(f, SheetBoxes, header, "Box", "Area [m²]", "Tier", "Front [m]", "Door"); err != nil {
		return err
	}
	labels := CollectLabelInfos(doc.ProjectName, doc.Plan, doc.Config.Options)
	rows := make([][]any, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []any{l.Number, l.Area, string(l.Category), l.FrontWidth, l.Door})
	}
	return writeRows(f, SheetBoxes, 2, rows)
}

func writeCostsSheet(f *excelize.File, doc Document, header int) error {
	if _, err := f.NewSheet(SheetCosts); err != nil {
		return fmt.Errorf("create costs sheet: %w", err)
	}
	if err := writeHeader(f, SheetCosts, header, "Item", "Quantity", "Unit", "Unit price [PLN]", "Total [PLN]", "Manual", "Formula"); err != nil {
		return err
	}
	items := doc.Report.OrderedItems()
	rows := make([][]any, 0, len(items)+1)
	for _, it := range items {
		rows = append(rows, []any{it.Key.Label(), it.Quantity, it.Unit, it.UnitPrice, it.Total, it.Overridden, it.Formula})
	}
	if err := writeRows(f, SheetCosts, 2, rows); err != nil {
		return err
	}

	totalRow := len(items) + 2
	if err := f.SetCellValue(SheetCosts, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
		return err
	}
	if err := f.SetCellFormula(SheetCosts, fmt.Sprintf("E%d", totalRow), fmt.Sprintf("SUM(E2:E%d)", totalRow-1)); err != nil {
		return fmt.Errorf("write cost total: %w", err)
	}
	if err := f.SetCellValue(SheetCosts, fmt.Sprintf("F%d", totalRow), doc.Report.GrandTotal); err != nil {
		return err
	}
	return f.SetColWidth(SheetCosts, "A", "A", 24)
}

func writeCashFlowSheet(f *excelize.File, doc Document, header int) error {
	cf := doc.CashFlow
	if _, err := f.NewSheet(SheetCashFlow); err != nil {
		return fmt.Errorf("create cash flow sheet: %w", err)
	}
	if err := writeHeader(f, SheetCashFlow, header,
		"Month", "Rented [m²]", "Gross revenue", "License fee", "Fixed costs", "Net revenue", "Cumulative"); err != nil {
		return err
	}
	rows := make([][]any, 0, len(cf.Months))
	for _, m := range cf.Months {
		rows = append(rows, []any{m.Month, m.RentedArea, m.GrossRevenue, m.LicenseFee, m.FixedCosts, m.NetRevenue, m.CumulativeCashFlow})
	}
	if err := writeRows(f, SheetCashFlow, 2, rows); err != nil {
		return err
	}

	// Headline figures to the right of the monthly series.
	breakEven := any("not reached")
	if cf.BreakEvenReached {
		breakEven = cf.BreakEvenMonth
	}
	figures := [][]any{
		{"Investment", cf.TotalInvestment},
		{"Max rentable area", cf.MaxRentableArea},
		{"Break-even month", breakEven},
		{"Total profit", cf.TotalProfit},
		{"ROI [%]", cf.ROI},
		{"Annual return [%]", cf.AnnualReturn},
	}
	for i, row := range figures {
		cell := fmt.Sprintf("I%d", i+1)
		if err := f.SetSheetRow(SheetCashFlow, cell, &row); err != nil {
			return fmt.Errorf("write cash flow figures: %w", err)
		}
	}
	return nil
}
