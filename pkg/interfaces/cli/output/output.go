package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/obrador/fabricacion/pkg/application/dto"
	"github.com/obrador/fabricacion/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
}

// Output file names written under Config.OutputDir
const (
	CatalogJSONFile = "price_catalog.json"
	CatalogCSVFile  = "price_catalog.csv"
	ResultsTextFile = "cost_results.txt"
	ResultsJSONFile = "cost_results.json"
	ResultsCSVFile  = "cost_results.csv"
	LinesCSVFile    = "cost_lines.csv"
	ResultsXLSXFile = "cost_results.xlsx"
)

// GenerateCatalog writes the resolved price catalog in the configured format
func GenerateCatalog(w io.Writer, catalog entities.PriceCatalog, config Config) error {
	switch config.Format {
	case "text", "":
		writeCatalogText(w, catalog)
		return nil
	case "json":
		return emit(w, config, CatalogJSONFile, func(out io.Writer) error {
			return writeJSON(out, catalog.Entries())
		})
	case "csv":
		return emit(w, config, CatalogCSVFile, func(out io.Writer) error {
			return writeCatalogCSV(out, catalog)
		})
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateResults writes computed job results in the configured format
func GenerateResults(w io.Writer, results []entities.ManufacturingResult, report dto.RecomputeReport, config Config) error {
	switch config.Format {
	case "text", "":
		return emit(w, config, ResultsTextFile, func(out io.Writer) error {
			writeResultsText(out, results, report, config.Verbose)
			return nil
		})
	case "json":
		return emit(w, config, ResultsJSONFile, func(out io.Writer) error {
			return writeJSON(out, results)
		})
	case "csv":
		return generateResultsCSV(w, results, config)
	case "xlsx":
		return generateResultsXLSX(w, results, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// emit writes to w, or to filename under config.OutputDir when one is set
func emit(w io.Writer, config Config, filename string, write func(io.Writer) error) error {
	if config.OutputDir == "" {
		return write(w)
	}

	path, err := outputPath(config.OutputDir, filename)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 Results saved to: %s\n", path)
	}
	return nil
}

func outputPath(dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, filename), nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func writeCatalogText(w io.Writer, catalog entities.PriceCatalog) {
	fmt.Fprintf(w, "📒 Price Catalog\n")
	fmt.Fprintf(w, "===============\n\n")
	fmt.Fprintf(w, "Priced ingredients: %d\n\n", len(catalog))

	if len(catalog) == 0 {
		return
	}

	fmt.Fprintf(w, "%-15s %-20s %-12s %-8s %-6s %-20s\n",
		"Ingredient", "Name", "Unit Price", "Currency", "Unit", "Supplier")
	fmt.Fprintf(w, "%-15s %-20s %-12s %-8s %-6s %-20s\n",
		"---------------", "--------------------", "------------", "--------", "------", "--------------------")

	for _, entry := range catalog.Entries() {
		supplier := ""
		if entry.SupplierName != nil && *entry.SupplierName != "" {
			supplier = *entry.SupplierName
		} else if entry.SupplierID != nil {
			supplier = string(*entry.SupplierID)
		}
		fmt.Fprintf(w, "%-15s %-20s %-12s %-8s %-6s %-20s\n",
			entry.IngredientID,
			truncate(entry.IngredientName, 20),
			entry.UnitPrice.String(),
			entry.Currency,
			entry.Unit,
			truncate(supplier, 20))
	}
	fmt.Fprintln(w)
}

func writeResultsText(w io.Writer, results []entities.ManufacturingResult, report dto.RecomputeReport, verbose bool) {
	fmt.Fprintf(w, "📊 Cost Results Summary\n")
	fmt.Fprintf(w, "=======================\n\n")

	fmt.Fprintf(w, "Jobs: %d\n", len(results))
	fmt.Fprintf(w, "Complete: %d\n", report.Complete)
	fmt.Fprintf(w, "Incomplete: %d\n", report.Incomplete)
	fmt.Fprintf(w, "Rejected: %d\n", report.Rejected)
	if len(report.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped: %d\n", len(report.Skipped))
	}
	fmt.Fprintln(w)

	if len(results) == 0 {
		return
	}

	fmt.Fprintf(w, "📋 Jobs:\n")
	fmt.Fprintf(w, "%-12s %-20s %-10s %-12s %-10s %-10s %-8s %-4s\n",
		"Job", "Name", "Status", "Batch Cost", "Unit Cost", "Suggested", "Margin", "Cur")
	fmt.Fprintf(w, "%-12s %-20s %-10s %-12s %-10s %-10s %-8s %-4s\n",
		"------------", "--------------------", "----------", "------------", "----------", "----------", "--------", "----")

	for _, result := range results {
		fmt.Fprintf(w, "%-12s %-20s %-10s %-12s %-10s %-10s %-8s %-4s\n",
			result.JobID,
			truncate(result.Name, 20),
			result.Status,
			money(result.BatchCost),
			money(result.UnitCost),
			nullMoney(result.SuggestedPrice),
			nullPercent(result.RealizedMargin),
			result.Currency)
	}
	fmt.Fprintln(w)

	var problems []string
	for _, result := range results {
		switch {
		case result.Failure != nil:
			problems = append(problems, fmt.Sprintf("  %s rejected: %s", result.JobID, result.Failure))
		case len(result.MissingIngredients) > 0:
			missing := make([]string, len(result.MissingIngredients))
			for i, id := range result.MissingIngredients {
				missing[i] = string(id)
			}
			problems = append(problems, fmt.Sprintf("  %s missing prices: %s", result.JobID, strings.Join(missing, ", ")))
		}
	}
	for _, skipped := range report.Skipped {
		problems = append(problems, fmt.Sprintf("  %s skipped: %s", skipped.JobID, skipped.Reason))
	}
	if len(problems) > 0 {
		fmt.Fprintf(w, "⚠️  Attention:\n")
		for _, problem := range problems {
			fmt.Fprintln(w, problem)
		}
		fmt.Fprintln(w)
	}

	if !verbose {
		return
	}

	for _, result := range results {
		if len(result.Lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "🧾 %s %s\n", result.JobID, result.Name)
		fmt.Fprintf(w, "  %-8s %-15s %-10s %-10s %-10s %-12s\n",
			"Line", "Ingredient", "Quantity", "Net Qty", "Unit Cost", "Subtotal")
		for _, line := range result.Lines {
			fmt.Fprintf(w, "  %-8s %-15s %-10s %-10s %-10s %-12s\n",
				line.LineID,
				line.IngredientID,
				line.Quantity.String(),
				line.NetQuantity.String(),
				line.UnitCost.String(),
				money(line.Subtotal))
		}
		fmt.Fprintln(w)
	}
}

// money rounds for display only; stored figures stay exact
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return money(d.Decimal)
}

func nullPercent(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(1) + "%"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
