// Package importer reads unit price lists from CSV and Excel files and hall
// outlines from DXF drawings. Price lists get automatic delimiter detection,
// flexible column mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/boxplanner/internal/model"
)

// ImportResult holds the results of a price list import. Prices starts from
// the base list passed in and carries every successfully parsed row.
type ImportResult struct {
	Prices   model.PriceList
	Updated  []string // canonical keys set from the file, in file order
	Errors   []string
	Warnings []string
}

// OK reports whether at least one price was read and no row failed.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Updated) > 0
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Key   int
	Price int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"key":   {"key", "item", "name", "position", "description", "material", "pozycja", "nazwa"},
	"price": {"price", "unit price", "unit_price", "cost", "value", "pln", "cena", "cena jednostkowa"},
}

// priceKeyAliases resolves cost line keys and labels to price keys.
var priceKeyAliases = func() map[string]string {
	m := map[string]string{
		string(model.LineSingleDoors):  "door_single",
		string(model.LineDoubleDoors):  "door_double",
		string(model.LineRollers15):    "roller_15",
		string(model.LineRollers20):    "roller_20",
		string(model.LineElectroLocks): "electro_lock",
		string(model.LineCameras):      "camera",
		string(model.LineLamps):        "lamp",
	}
	for i, line := range model.LineKeys {
		m[strings.ToLower(line.Label())] = model.PriceKeys[i]
	}
	return m
}()

// ResolvePriceKey returns the canonical price key for a cell value.
func ResolvePriceKey(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if key, ok := priceKeyAliases[s]; ok {
		return key, true
	}
	return model.CanonicalPriceKey(s)
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries semicolon, tab, pipe, and comma. The delimiter that produces the most
// consistent (non-one) column count across lines wins; comma loses ties since
// it doubles as a decimal separator.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{';', '\t', '|', ','}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Only delimiters that split the first row count.
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping (key, price) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Key: -1, Price: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "key":
					if mapping.Key == -1 {
						mapping.Key = i
					}
				case "price":
					if mapping.Price == -1 {
						mapping.Price = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Key: 0, Price: 1}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseAmount reads a price written with either decimal separator and
// optional thousands spaces or a trailing currency.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, suffix := range []string{"zł", "PLN", "pln"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)

	// The separator that comes last is the decimal one.
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot > comma && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q is not a finite number", s)
	}
	return v, nil
}

// parseRow extracts one price from a row using the given column mapping.
// Returns the price key, the value, and an error message when the row is unusable.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (string, float64, string) {
	raw := getCell(row, mapping.Key)
	if raw == "" {
		return "", 0, fmt.Sprintf("%s: Missing item name", rowLabel)
	}
	key, ok := ResolvePriceKey(raw)
	if !ok {
		return "", 0, fmt.Sprintf("%s: Unknown price item '%s'", rowLabel, raw)
	}

	priceStr := getCell(row, mapping.Price)
	if priceStr == "" {
		return "", 0, fmt.Sprintf("%s: Missing price value", rowLabel)
	}
	price, err := ParseAmount(priceStr)
	if err != nil {
		return "", 0, fmt.Sprintf("%s: Invalid price '%s'", rowLabel, priceStr)
	}
	if price < 0 {
		return "", 0, fmt.Sprintf("%s: Price must not be negative", rowLabel)
	}
	return key, price, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports prices from a CSV file on top of base.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string, base model.PriceList) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Prices: base, Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	defer f.Close()
	return ImportCSVReader(f, base)
}

// ImportCSVReader imports prices from CSV data, detecting the delimiter.
func ImportCSVReader(r io.Reader, base model.PriceList) ImportResult {
	result := ImportResult{Prices: base}

	data, err := io.ReadAll(r)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", base, result.Warnings)
}

// ImportExcel imports prices from the first sheet of an Excel file.
func ImportExcel(path string, base model.PriceList) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Prices: base, Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f, base)
}

// ImportExcelReader imports prices from the first sheet of an Excel stream.
func ImportExcelReader(r io.Reader, base model.PriceList) ImportResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{Prices: base, Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f, base)
}

func importWorkbook(f *excelize.File, base model.PriceList) ImportResult {
	result := ImportResult{Prices: base}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", base, nil)
}

func isExcel(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}

// ImportFile picks the reader by file extension.
func ImportFile(path string, base model.PriceList) ImportResult {
	if isExcel(path) {
		return ImportExcel(path, base)
	}
	return ImportCSV(path, base)
}

// ImportReader reads an uploaded price list; name only selects the format.
func ImportReader(r io.Reader, name string, base model.PriceList) ImportResult {
	if isExcel(name) {
		return ImportExcelReader(r, base)
	}
	return ImportCSVReader(r, base)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into a price.
func importFromRows(rows [][]string, rowPrefix string, base model.PriceList, initialWarnings []string) ImportResult {
	result := ImportResult{
		Prices:   base,
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Key == -1 {
			missing = append(missing, "Item")
		}
		if mapping.Price == -1 {
			missing = append(missing, "Price")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 2 {
		// Unrecognized header: skip it but keep positional mapping.
		if _, err := ParseAmount(rows[0][1]); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	seen := map[string]string{}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		key, price, errMsg := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if prev, dup := seen[key]; dup {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: '%s' already set in %s, using the later value", rowLabel, key, prev))
		} else {
			result.Updated = append(result.Updated, key)
		}
		seen[key] = rowLabel
		_ = result.Prices.Set(key, price)
	}

	if len(result.Updated) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
