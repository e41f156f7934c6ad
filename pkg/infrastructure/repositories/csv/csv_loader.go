package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/obrador/fabricacion/pkg/domain/entities"
)

var (
	ingredientsHeader = []string{
		"ingredient_id", "ingredient_name", "unit", "category_id", "category_name",
		"supplier_id", "supplier_name", "supplier_active", "unit_price", "currency",
		"offer_unit", "min_order_qty", "effective_from",
	}
	jobsHeader = []string{
		"job_id", "name", "batch_size", "shrinkage_pct", "labor_cost",
		"packaging_cost", "overhead_pct", "target_margin_pct", "posted_price",
	}
	linesHeader = []string{
		"job_id", "line_id", "ingredient_id", "ingredient_name", "quantity", "unit", "shrinkage_pct",
	}
)

// Loader handles loading ingredient offers and manufacturing jobs from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadIngredients loads ingredients from a CSV file with one row per supplier offer.
// Offer price text is passed through untouched so that unusable prices are excluded at resolution.
func (l *Loader) LoadIngredients(filename string) ([]entities.IngredientRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingredients file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadIngredients(file)
}

// ReadIngredients reads the ingredients CSV format from r
func (l *Loader) ReadIngredients(r io.Reader) ([]entities.IngredientRecord, error) {
	records, err := readRecords(r, "ingredients", ingredientsHeader)
	if err != nil {
		return nil, err
	}

	var ingredients []entities.IngredientRecord
	index := make(map[entities.IngredientID]int)

	for i, record := range records {
		id := entities.IngredientID(strings.TrimSpace(record[0]))

		pos, seen := index[id]
		if !seen {
			ingredient := entities.IngredientRecord{
				ID:   id,
				Name: record[1],
				Unit: record[2],
			}
			if categoryID := strings.TrimSpace(record[3]); categoryID != "" {
				ingredient.Category = &entities.Category{ID: entities.CategoryID(categoryID), Name: record[4]}
			}
			ingredients = append(ingredients, ingredient)
			pos = len(ingredients) - 1
			index[id] = pos
		}

		// A row without a supplier only declares the ingredient
		if strings.TrimSpace(record[5]) == "" {
			continue
		}

		active, err := parseOptionalBool(record[7])
		if err != nil {
			return nil, fmt.Errorf("ingredients CSV row %d: invalid supplier_active: %s", i+2, record[7])
		}

		ingredients[pos].Offers = append(ingredients[pos].Offers, entities.OfferRecord{
			SupplierID:     entities.SupplierID(strings.TrimSpace(record[5])),
			SupplierName:   record[6],
			SupplierActive: active,
			UnitPrice:      record[8],
			Currency:       strings.TrimSpace(record[9]),
			Unit:           record[10],
			MinOrderQty:    record[11],
			EffectiveFrom:  record[12],
		})
	}

	return ingredients, nil
}

// LoadJobs loads manufacturing jobs and, when linesFile is not empty, their lines
func (l *Loader) LoadJobs(jobsFile, linesFile string) ([]entities.ManufacturingJobParams, error) {
	file, err := os.Open(jobsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file %s: %w", jobsFile, err)
	}
	defer file.Close()

	jobs, err := l.ReadJobs(file)
	if err != nil {
		return nil, err
	}
	if linesFile == "" {
		return jobs, nil
	}

	lines, err := os.Open(linesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open lines file %s: %w", linesFile, err)
	}
	defer lines.Close()

	return l.ReadLines(lines, jobs)
}

// ReadJobs reads the jobs CSV format from r. Jobs are returned without lines.
func (l *Loader) ReadJobs(r io.Reader) ([]entities.ManufacturingJobParams, error) {
	records, err := readRecords(r, "jobs", jobsHeader)
	if err != nil {
		return nil, err
	}

	jobs := make([]entities.ManufacturingJobParams, 0, len(records))
	for i, record := range records {
		job, err := parseJob(record)
		if err != nil {
			return nil, fmt.Errorf("jobs CSV row %d: %w", i+2, err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// ReadLines reads the lines CSV format from r and attaches each line to its job, in file order
func (l *Loader) ReadLines(r io.Reader, jobs []entities.ManufacturingJobParams) ([]entities.ManufacturingJobParams, error) {
	records, err := readRecords(r, "lines", linesHeader)
	if err != nil {
		return nil, err
	}

	index := make(map[entities.JobID]int, len(jobs))
	for i, job := range jobs {
		index[job.ID] = i
	}

	for i, record := range records {
		jobID := entities.JobID(strings.TrimSpace(record[0]))
		pos, ok := index[jobID]
		if !ok {
			return nil, fmt.Errorf("lines CSV row %d: unknown job_id: %s", i+2, jobID)
		}

		line, err := parseLine(record)
		if err != nil {
			return nil, fmt.Errorf("lines CSV row %d: %w", i+2, err)
		}
		jobs[pos].Lines = append(jobs[pos].Lines, line)
	}

	return jobs, nil
}

func readRecords(r io.Reader, name string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}

	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(strings.TrimPrefix(actual[i], "\ufeff"))) != col {
			return false
		}
	}

	return true
}

func parseJob(record []string) (entities.ManufacturingJobParams, error) {
	job := entities.ManufacturingJobParams{
		ID:   entities.JobID(strings.TrimSpace(record[0])),
		Name: record[1],
	}

	var err error
	if job.BatchSize, err = parseDecimal("batch_size", record[2]); err != nil {
		return job, err
	}
	if job.Shrinkage, err = parseNullDecimal("shrinkage_pct", record[3]); err != nil {
		return job, err
	}
	if job.LaborCost, err = parseDecimal("labor_cost", record[4]); err != nil {
		return job, err
	}
	if job.PackagingCost, err = parseDecimal("packaging_cost", record[5]); err != nil {
		return job, err
	}
	if job.OverheadPercent, err = parseDecimal("overhead_pct", record[6]); err != nil {
		return job, err
	}
	if job.TargetMargin, err = parseDecimal("target_margin_pct", record[7]); err != nil {
		return job, err
	}
	if job.PostedPrice, err = parseNullDecimal("posted_price", record[8]); err != nil {
		return job, err
	}

	return job, nil
}

func parseLine(record []string) (entities.ManufacturingLine, error) {
	line := entities.ManufacturingLine{
		ID:             entities.LineID(strings.TrimSpace(record[1])),
		IngredientID:   entities.IngredientID(strings.TrimSpace(record[2])),
		IngredientName: record[3],
		Unit:           record[5],
	}

	var err error
	if line.Quantity, err = parseDecimal("quantity", record[4]); err != nil {
		return line, err
	}
	if line.Shrinkage, err = parseNullDecimal("shrinkage_pct", record[6]); err != nil {
		return line, err
	}

	return line, nil
}

// parseDecimal reads a number, treating an empty cell as zero
func parseDecimal(field, text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", field, text)
	}
	return value, nil
}

// parseNullDecimal reads a number, treating an empty cell as omitted
func parseNullDecimal(field, text string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(text) == "" {
		return decimal.NullDecimal{}, nil
	}
	value, err := parseDecimal(field, text)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(value), nil
}

func parseOptionalBool(text string) (*bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	switch strings.ToLower(text) {
	case "yes", "y", "si", "sí":
		value := true
		return &value, nil
	case "no", "n":
		value := false
		return &value, nil
	}
	value, err := strconv.ParseBool(text)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
