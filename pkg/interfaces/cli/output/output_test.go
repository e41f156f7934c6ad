package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/obrador/fabricacion/pkg/application/dto"
	"github.com/obrador/fabricacion/pkg/domain/entities"
)

func sampleResults() ([]entities.ManufacturingResult, dto.RecomputeReport) {
	supplier := entities.SupplierID("SUP1")
	results := []entities.ManufacturingResult{
		{
			JobID:          "J1",
			Name:           "Pan de molde",
			BatchSize:      decimal.NewFromInt(10),
			IngredientCost: decimal.NewFromInt(45),
			BatchCost:      decimal.NewFromInt(45),
			UnitCost:       decimal.RequireFromString("4.5"),
			TargetMargin:   decimal.NewFromInt(50),
			SuggestedPrice: decimal.NewNullDecimal(decimal.NewFromInt(9)),
			Currency:       "EUR",
			Status:         entities.StatusComplete,
			Lines: []entities.LineCost{{
				LineID: "L1", IngredientID: "FLOUR", Quantity: decimal.NewFromInt(1),
				EffectiveShrinkage: decimal.NewFromInt(10), NetQuantity: decimal.RequireFromString("0.9"),
				UnitCost: decimal.NewFromInt(5), Subtotal: decimal.NewFromInt(45),
				SupplierID: &supplier, Currency: "EUR", Priced: true,
			}},
			LastCalculatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			JobID:    "J2",
			Name:     "Roto",
			Currency: "EUR",
			Status:   entities.StatusRejected,
			Failure:  &entities.Failure{Field: "batch_size", Value: "0", Reason: "must be greater than zero"},
		},
	}

	var report dto.RecomputeReport
	report.Add(results[0], nil)
	report.Add(results[1], nil)
	return results, report
}

func TestGenerateResults_Text(t *testing.T) {
	results, report := sampleResults()
	var buf bytes.Buffer

	if err := GenerateResults(&buf, results, report, Config{Format: "text", Verbose: true}); err != nil {
		t.Fatalf("Failed to generate text: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Jobs: 2", "Rejected: 1", "4.50", "9.00", "J2 rejected: batch_size=0", "FLOUR"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestGenerateResults_CSVToWriter(t *testing.T) {
	results, report := sampleResults()
	var buf bytes.Buffer

	if err := GenerateResults(&buf, results, report, Config{Format: "csv"}); err != nil {
		t.Fatalf("Failed to generate CSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(records))
	}
	if records[1][11] != "9" || records[1][13] != "" {
		t.Errorf("Expected suggested price 9 and empty realized margin, got %q %q", records[1][11], records[1][13])
	}
	if records[2][2] != "rejected" {
		t.Errorf("Expected rejected status, got %s", records[2][2])
	}
}

func TestGenerateResults_CSVToDirectory(t *testing.T) {
	results, report := sampleResults()
	dir := t.TempDir()

	if err := GenerateResults(&bytes.Buffer{}, results, report, Config{Format: "csv", OutputDir: dir}); err != nil {
		t.Fatalf("Failed to generate CSV: %v", err)
	}

	for _, name := range []string{ResultsCSVFile, LinesCSVFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestGenerateResults_XLSX(t *testing.T) {
	results, report := sampleResults()
	dir := t.TempDir()

	if err := GenerateResults(&bytes.Buffer{}, results, report, Config{Format: "xlsx"}); err == nil {
		t.Error("Expected xlsx without an output directory to fail")
	}

	if err := GenerateResults(&bytes.Buffer{}, results, report, Config{Format: "xlsx", OutputDir: dir}); err != nil {
		t.Fatalf("Failed to generate workbook: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, ResultsXLSXFile))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(jobsSheet)
	if err != nil {
		t.Fatalf("Failed to read jobs sheet: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "J1" {
		t.Errorf("Expected 2 job rows starting with J1, got %v", rows)
	}

	lines, err := f.GetRows(linesSheet)
	if err != nil {
		t.Fatalf("Failed to read lines sheet: %v", err)
	}
	if len(lines) != 2 || lines[1][2] != "FLOUR" {
		t.Errorf("Expected one FLOUR line, got %v", lines)
	}
}

func TestGenerateCatalog(t *testing.T) {
	name := "Molinos"
	catalog := entities.NewPriceCatalog([]entities.IngredientPriceEntry{
		{IngredientID: "FLOUR", IngredientName: "Harina", Unit: "kg", UnitPrice: decimal.RequireFromString("1.5"), Currency: "EUR", SupplierName: &name},
	})

	var text bytes.Buffer
	if err := GenerateCatalog(&text, catalog, Config{Format: "text"}); err != nil {
		t.Fatalf("Failed to generate catalog text: %v", err)
	}
	if !strings.Contains(text.String(), "Molinos") {
		t.Error("Expected supplier name in catalog text")
	}

	var csvOut bytes.Buffer
	if err := GenerateCatalog(&csvOut, catalog, Config{Format: "csv"}); err != nil {
		t.Fatalf("Failed to generate catalog CSV: %v", err)
	}
	if !strings.Contains(csvOut.String(), "FLOUR,Harina,kg,1.5,EUR") {
		t.Errorf("Unexpected catalog CSV: %s", csvOut.String())
	}

	if err := GenerateCatalog(&bytes.Buffer{}, catalog, Config{Format: "xml"}); err == nil {
		t.Error("Expected unsupported format to fail")
	}
}
