package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/boxplanner/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Item,Price\nmesh,50\ngate,15000\n", ','},
		{"semicolon", "Item;Price\nmesh;50\ngate;15000\n", ';'},
		{"tab", "Item\tPrice\nmesh\t50\ngate\t15000\n", '\t'},
		{"pipe", "Item|Price\nmesh|50\ngate|15000\n", '|'},
		{"semicolon with decimal commas", "mesh;50,5\ngate;15000,0\n", ';'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("DetectCSVDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Item", "Price"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Key != 0 || mapping.Price != 1 {
		t.Errorf("mapping = %+v, want key 0 price 1", mapping)
	}
}

func TestDetectColumns_PolishReordered(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Cena", "JM", "Pozycja"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Key != 2 || mapping.Price != 0 {
		t.Errorf("mapping = %+v, want key 2 price 0", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"mesh", "50"})
	if isHeader {
		t.Error("data row should not be taken as header")
	}
	if mapping.Key != 0 || mapping.Price != 1 {
		t.Errorf("positional mapping = %+v", mapping)
	}
}

// ─── Key and amount parsing ────────────────────────────────

func TestResolvePriceKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"white_wall", "white_wall", true},
		{"White Wall", "white_wall", true},
		{"grey-wall", "gray_wall", true},
		{"single_doors", "door_single", true},
		{"Roller doors 2.0 m", "roller_20", true},
		{"rollers_15", "roller_15", true},
		{"Electronic locks", "electro_lock", true},
		{"cameras", "camera", true},
		{"Entry gate", "gate", true},
		{"paint", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolvePriceKey(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ResolvePriceKey(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"110", 110},
		{"110.5", 110.5},
		{"110,5", 110.5},
		{"15 000", 15000},
		{"15 000,00 zł", 15000},
		{"1.234,50", 1234.5},
		{"1,234.50", 1234.5},
		{"780 PLN", 780},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseAmount("cheap"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

// ─── Reader Import Tests ───────────────────────────────────

func TestImportCSVReader_WithHeaders(t *testing.T) {
	data := "Item,Price\nmesh,55\nGate,16000\n"
	result := ImportCSVReader(strings.NewReader(data), model.DefaultPrices())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !result.OK() {
		t.Error("expected OK result")
	}
	if result.Prices.Mesh != 55 || result.Prices.Gate != 16000 {
		t.Errorf("prices not applied: mesh %v gate %v", result.Prices.Mesh, result.Prices.Gate)
	}
	// untouched prices keep their base value
	if result.Prices.Lamp != model.DefaultPrices().Lamp {
		t.Errorf("lamp price changed to %v", result.Prices.Lamp)
	}
	if strings.Join(result.Updated, ",") != "mesh,gate" {
		t.Errorf("updated = %v", result.Updated)
	}
}

func TestImportCSVReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVReader(strings.NewReader("lamp;400\ncamera;650,5\n"), model.PriceList{})

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Prices.Lamp != 400 || result.Prices.Camera != 650.5 {
		t.Errorf("prices = %+v", result.Prices)
	}
}

func TestImportCSVReader_UnrecognizedHeaderSkipped(t *testing.T) {
	result := ImportCSVReader(strings.NewReader("Thing,Amount\nsoffit,90\n"), model.PriceList{})

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Prices.Soffit != 90 {
		t.Errorf("soffit = %v, want 90", result.Prices.Soffit)
	}
}

func TestImportCSVReader_RowErrors(t *testing.T) {
	data := "Item,Price\npaint,10\nmesh,abc\ngate,-5\n,7\nlamp,\nsoffit,85\n"
	result := ImportCSVReader(strings.NewReader(data), model.PriceList{})

	if len(result.Errors) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	wantSubstrings := []string{"Unknown price item 'paint'", "Invalid price 'abc'", "must not be negative", "Missing item name", "Missing price value"}
	for i, want := range wantSubstrings {
		if !strings.Contains(result.Errors[i], want) {
			t.Errorf("error %d = %q, want it to contain %q", i, result.Errors[i], want)
		}
	}
	if !strings.HasPrefix(result.Errors[0], "Line 2") {
		t.Errorf("error should name the line: %q", result.Errors[0])
	}
	if result.Prices.Soffit != 85 {
		t.Errorf("valid row not applied: soffit %v", result.Prices.Soffit)
	}
	if result.OK() {
		t.Error("result with row errors must not be OK")
	}
}

func TestImportCSVReader_DuplicateKeyWarns(t *testing.T) {
	result := ImportCSVReader(strings.NewReader("mesh,50\nMesh,60\n"), model.PriceList{})

	if result.Prices.Mesh != 60 {
		t.Errorf("later value should win, got %v", result.Prices.Mesh)
	}
	if len(result.Updated) != 1 {
		t.Errorf("updated = %v, want one key", result.Updated)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "already set") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate warning, got %v", result.Warnings)
	}
}

func TestImportCSVReader_MissingPriceColumn(t *testing.T) {
	result := ImportCSVReader(strings.NewReader("Item,Unit\nmesh,m2\n"), model.PriceList{})

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Price") {
		t.Errorf("expected missing Price column error, got %v", result.Errors)
	}
}

func TestImportCSVReader_EmptyInput(t *testing.T) {
	result := ImportCSVReader(strings.NewReader(""), model.PriceList{})
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}

	headerOnly := ImportCSVReader(strings.NewReader("Item,Price\n"), model.PriceList{})
	if len(headerOnly.Errors) == 0 {
		t.Error("expected error when only a header is present")
	}
}

// ─── File Import Tests ─────────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	content := "Pozycja;Cena\nwhite_wall;115,00\ngray_wall;88,50\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportFile(path, model.DefaultPrices())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Prices.WhiteWall != 115 || result.Prices.GrayWall != 88.5 {
		t.Errorf("prices = %v, %v", result.Prices.WhiteWall, result.Prices.GrayWall)
	}

	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/prices.csv", model.DefaultPrices())
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
	if result.Prices != model.DefaultPrices() {
		t.Error("base prices should be returned unchanged on failure")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if result := ImportCSV(path, model.PriceList{}); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Item", "Unit", "Price"},
		{"Front walls (white)", "m²", 120.5},
		{"Lamps", "pcs", 300},
	})

	result := ImportFile(path, model.DefaultPrices())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Prices.WhiteWall != 120.5 {
		t.Errorf("white wall = %v, want 120.5", result.Prices.WhiteWall)
	}
	if result.Prices.Lamp != 300 {
		t.Errorf("lamp = %v, want 300", result.Prices.Lamp)
	}
	if !strings.HasPrefix(strings.Join(result.Warnings, "|"), "Detected header row") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/path/prices.xlsx", model.PriceList{})
	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSVReader_NonFiniteRejected(t *testing.T) {
	base := model.DefaultPrices()
	result := ImportCSVReader(strings.NewReader("gate;NaN\nlamp;Inf\ncamera;+Inf\n"), base)

	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %v", result.Errors)
	}
	if result.OK() {
		t.Error("non-finite prices must not be accepted")
	}
	if result.Prices != base {
		t.Errorf("prices changed: %+v", result.Prices)
	}
	for _, in := range []string{"NaN", "inf", "-Inf"} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) should fail", in)
		}
	}
}

func TestImportReader_PicksFormatByName(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Item", "Price"},
		{"camera", 700},
	})
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	result := ImportReader(f, "upload.XLSX", model.PriceList{})
	if !result.OK() || result.Prices.Camera != 700 {
		t.Errorf("excel upload: errors %v camera %v", result.Errors, result.Prices.Camera)
	}

	result = ImportReader(strings.NewReader("soffit|95\n"), "prices.txt", model.PriceList{})
	if !result.OK() || result.Prices.Soffit != 95 {
		t.Errorf("csv upload: errors %v soffit %v", result.Errors, result.Prices.Soffit)
	}
}
