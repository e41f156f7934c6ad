package output

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/obrador/fabricacion/pkg/domain/entities"
)

const (
	jobsSheet  = "Jobs"
	linesSheet = "Lines"
)

var (
	jobsSheetHeaders = []string{
		"Job", "Name", "Status", "Batch Size", "Ingredient Cost", "Labor", "Packaging",
		"Overhead", "Batch Cost", "Unit Cost", "Target Margin %", "Suggested Price",
		"Posted Price", "Realized Margin %", "Currency", "Notes",
	}
	linesSheetHeaders = []string{
		"Job", "Line", "Ingredient", "Name", "Quantity", "Unit", "Shrinkage %",
		"Net Quantity", "Unit Cost", "Subtotal", "Supplier", "Currency",
	}
)

// BuildWorkbook renders results into a workbook with a job sheet and a line sheet
func BuildWorkbook(results []entities.ManufacturingResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", jobsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create lines sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	writeHeader(f, jobsSheet, jobsSheetHeaders, headerStyle)
	writeHeader(f, linesSheet, linesSheetHeaders, headerStyle)

	lineRow := 2
	for i, result := range results {
		row := i + 2
		notes := ""
		if result.Failure != nil {
			notes = result.Failure.String()
		} else if len(result.MissingIngredients) > 0 {
			notes = fmt.Sprintf("missing prices: %v", result.MissingIngredients)
		}

		values := []any{
			string(result.JobID),
			result.Name,
			result.Status.String(),
			number(result.BatchSize),
			number(result.IngredientCost),
			number(result.LaborCost),
			number(result.PackagingCost),
			number(result.OverheadCost),
			number(result.BatchCost),
			number(result.UnitCost),
			number(result.TargetMargin),
			nullNumber(result.SuggestedPrice),
			nullNumber(result.PostedPrice),
			nullNumber(result.RealizedMargin),
			result.Currency,
			notes,
		}
		if err := setRow(f, jobsSheet, row, values); err != nil {
			f.Close()
			return nil, err
		}

		for _, line := range result.Lines {
			supplier := ""
			if line.SupplierID != nil {
				supplier = string(*line.SupplierID)
			}
			values := []any{
				string(result.JobID),
				string(line.LineID),
				string(line.IngredientID),
				line.IngredientName,
				number(line.Quantity),
				line.Unit,
				number(line.EffectiveShrinkage),
				number(line.NetQuantity),
				number(line.UnitCost),
				number(line.Subtotal),
				supplier,
				line.Currency,
			}
			if err := setRow(f, linesSheet, lineRow, values); err != nil {
				f.Close()
				return nil, err
			}
			lineRow++
		}
	}

	for i := range jobsSheetHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(jobsSheet, col, col, 14)
	}
	for i := range linesSheetHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(linesSheet, col, col, 14)
	}

	return f, nil
}

func generateResultsXLSX(w io.Writer, results []entities.ManufacturingResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}

	f, err := BuildWorkbook(results)
	if err != nil {
		return err
	}
	defer f.Close()

	path, err := outputPath(config.OutputDir, ResultsXLSXFile)
	if err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 Workbook saved to: %s\n", path)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// number converts for spreadsheet cells, which only hold floats
func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func nullNumber(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}
