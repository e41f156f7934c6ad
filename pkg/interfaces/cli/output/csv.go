package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obrador/fabricacion/pkg/domain/entities"
)

var (
	catalogCSVHeader = []string{
		"ingredient_id", "ingredient_name", "unit", "unit_price", "currency",
		"category_id", "category_name", "supplier_id", "supplier_name", "effective_from",
	}
	resultsCSVHeader = []string{
		"job_id", "name", "status", "batch_size", "ingredient_cost", "labor_cost", "packaging_cost",
		"overhead_cost", "batch_cost", "unit_cost", "target_margin", "suggested_price",
		"posted_price", "realized_margin", "currency", "missing_ingredients", "failure",
	}
	linesCSVHeader = []string{
		"job_id", "line_id", "ingredient_id", "ingredient_name", "quantity", "unit",
		"effective_shrinkage", "net_quantity", "unit_cost", "subtotal", "supplier_id", "currency", "priced",
	}
)

func writeCatalogCSV(w io.Writer, catalog entities.PriceCatalog) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(catalogCSVHeader); err != nil {
		return err
	}

	for _, entry := range catalog.Entries() {
		record := []string{
			string(entry.IngredientID),
			entry.IngredientName,
			entry.Unit,
			entry.UnitPrice.String(),
			entry.Currency,
			optional((*string)(entry.CategoryID)),
			optional(entry.CategoryName),
			optional((*string)(entry.SupplierID)),
			optional(entry.SupplierName),
			optionalTime(entry.EffectiveFrom),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// generateResultsCSV writes the job summary to w, or both the summary and the
// line breakdown into config.OutputDir
func generateResultsCSV(w io.Writer, results []entities.ManufacturingResult, config Config) error {
	if config.OutputDir == "" {
		return writeResultsCSV(w, results)
	}

	resultsFile, err := outputPath(config.OutputDir, ResultsCSVFile)
	if err != nil {
		return err
	}
	if err := writeCSVFile(resultsFile, func(out io.Writer) error { return writeResultsCSV(out, results) }); err != nil {
		return fmt.Errorf("failed to write results CSV: %w", err)
	}

	linesFile, err := outputPath(config.OutputDir, LinesCSVFile)
	if err != nil {
		return err
	}
	if err := writeCSVFile(linesFile, func(out io.Writer) error { return writeLinesCSV(out, results) }); err != nil {
		return fmt.Errorf("failed to write lines CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 CSV results saved to:\n")
		fmt.Fprintf(w, "  Jobs: %s\n", resultsFile)
		fmt.Fprintf(w, "  Lines: %s\n", linesFile)
	}
	return nil
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeResultsCSV(w io.Writer, results []entities.ManufacturingResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(resultsCSVHeader); err != nil {
		return err
	}

	for _, result := range results {
		missing := make([]string, len(result.MissingIngredients))
		for i, id := range result.MissingIngredients {
			missing[i] = string(id)
		}
		failure := ""
		if result.Failure != nil {
			failure = result.Failure.String()
		}

		record := []string{
			string(result.JobID),
			result.Name,
			result.Status.String(),
			result.BatchSize.String(),
			result.IngredientCost.String(),
			result.LaborCost.String(),
			result.PackagingCost.String(),
			result.OverheadCost.String(),
			result.BatchCost.String(),
			result.UnitCost.String(),
			result.TargetMargin.String(),
			nullString(result.SuggestedPrice),
			nullString(result.PostedPrice),
			nullString(result.RealizedMargin),
			result.Currency,
			strings.Join(missing, ";"),
			failure,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeLinesCSV(w io.Writer, results []entities.ManufacturingResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(linesCSVHeader); err != nil {
		return err
	}

	for _, result := range results {
		for _, line := range result.Lines {
			record := []string{
				string(result.JobID),
				string(line.LineID),
				string(line.IngredientID),
				line.IngredientName,
				line.Quantity.String(),
				line.Unit,
				line.EffectiveShrinkage.String(),
				line.NetQuantity.String(),
				line.UnitCost.String(),
				line.Subtotal.String(),
				optional((*string)(line.SupplierID)),
				line.Currency,
				fmt.Sprintf("%t", line.Priced),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
