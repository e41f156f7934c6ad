// Package document reads ingredient and job documents written as JSON or YAML
package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/obrador/fabricacion/pkg/domain/entities"
)

// Format selects the document syntax
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String method for Format enum
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatJSON, fmt.Errorf("unsupported document extension: %s (expected .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// IsDocumentPath reports whether path has a JSON or YAML extension
func IsDocumentPath(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

// OfferDocument is one supplier quote
type OfferDocument struct {
	SupplierID     string `json:"supplier_id" yaml:"supplier_id"`
	SupplierName   string `json:"supplier_name" yaml:"supplier_name"`
	SupplierActive *bool  `json:"supplier_active" yaml:"supplier_active"`
	UnitPrice      Scalar `json:"unit_price" yaml:"unit_price"`
	Currency       string `json:"currency" yaml:"currency"`
	Unit           string `json:"unit" yaml:"unit"`
	MinOrderQty    Scalar `json:"min_order_qty" yaml:"min_order_qty"`
	EffectiveFrom  string `json:"effective_from" yaml:"effective_from"`
}

// IngredientDocument is an ingredient with its supplier offers
type IngredientDocument struct {
	ID       string             `json:"id" yaml:"id"`
	Name     string             `json:"name" yaml:"name"`
	Unit     string             `json:"unit" yaml:"unit"`
	Category *entities.Category `json:"category" yaml:"category"`
	Offers   []OfferDocument    `json:"offers" yaml:"offers"`
}

// Record converts the document into an unvalidated ingredient record
func (d IngredientDocument) Record() entities.IngredientRecord {
	record := entities.IngredientRecord{
		ID:       entities.IngredientID(strings.TrimSpace(d.ID)),
		Name:     d.Name,
		Unit:     d.Unit,
		Category: d.Category,
		Offers:   make([]entities.OfferRecord, 0, len(d.Offers)),
	}
	for _, offer := range d.Offers {
		record.Offers = append(record.Offers, entities.OfferRecord{
			SupplierID:     entities.SupplierID(strings.TrimSpace(offer.SupplierID)),
			SupplierName:   offer.SupplierName,
			SupplierActive: offer.SupplierActive,
			UnitPrice:      offer.UnitPrice.Text(),
			Currency:       strings.TrimSpace(offer.Currency),
			Unit:           offer.Unit,
			MinOrderQty:    offer.MinOrderQty.Text(),
			EffectiveFrom:  offer.EffectiveFrom,
		})
	}
	return record
}

// LineDocument is one line of a job
type LineDocument struct {
	ID             string `json:"id" yaml:"id"`
	IngredientID   string `json:"ingredient_id" yaml:"ingredient_id"`
	IngredientName string `json:"ingredient_name" yaml:"ingredient_name"`
	Quantity       Scalar `json:"quantity" yaml:"quantity"`
	Unit           string `json:"unit" yaml:"unit"`
	Shrinkage      Scalar `json:"shrinkage" yaml:"shrinkage"`
}

// JobDocument is a manufacturing job as written by a user
type JobDocument struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	BatchSize       Scalar         `json:"batch_size" yaml:"batch_size"`
	Lines           []LineDocument `json:"lines" yaml:"lines"`
	Shrinkage       Scalar         `json:"shrinkage" yaml:"shrinkage"`
	LaborCost       Scalar         `json:"labor_cost" yaml:"labor_cost"`
	PackagingCost   Scalar         `json:"packaging_cost" yaml:"packaging_cost"`
	OverheadPercent Scalar         `json:"overhead_percent" yaml:"overhead_percent"`
	TargetMargin    Scalar         `json:"target_margin" yaml:"target_margin"`
	PostedPrice     Scalar         `json:"posted_price" yaml:"posted_price"`
}

// Params converts the document into job parameters. Number syntax errors name the
// offending field; range checks are left to the cost engine.
func (d JobDocument) Params() (entities.ManufacturingJobParams, error) {
	params := entities.ManufacturingJobParams{
		ID:   entities.JobID(strings.TrimSpace(d.ID)),
		Name: d.Name,
	}

	var err error
	if params.BatchSize, err = d.BatchSize.Decimal("batch_size"); err != nil {
		return params, err
	}
	if params.Shrinkage, err = d.Shrinkage.NullDecimal("shrinkage"); err != nil {
		return params, err
	}
	if params.LaborCost, err = d.LaborCost.Decimal("labor_cost"); err != nil {
		return params, err
	}
	if params.PackagingCost, err = d.PackagingCost.Decimal("packaging_cost"); err != nil {
		return params, err
	}
	if params.OverheadPercent, err = d.OverheadPercent.Decimal("overhead_percent"); err != nil {
		return params, err
	}
	if params.TargetMargin, err = d.TargetMargin.Decimal("target_margin"); err != nil {
		return params, err
	}
	if params.PostedPrice, err = d.PostedPrice.NullDecimal("posted_price"); err != nil {
		return params, err
	}

	params.Lines = make([]entities.ManufacturingLine, 0, len(d.Lines))
	for i, line := range d.Lines {
		converted := entities.ManufacturingLine{
			ID:             entities.LineID(strings.TrimSpace(line.ID)),
			IngredientID:   entities.IngredientID(strings.TrimSpace(line.IngredientID)),
			IngredientName: line.IngredientName,
			Unit:           line.Unit,
		}
		if converted.Quantity, err = line.Quantity.Decimal(fmt.Sprintf("lines[%d].quantity", i)); err != nil {
			return params, err
		}
		if converted.Shrinkage, err = line.Shrinkage.NullDecimal(fmt.Sprintf("lines[%d].shrinkage", i)); err != nil {
			return params, err
		}
		params.Lines = append(params.Lines, converted)
	}

	return params, nil
}

type ingredientsDocument struct {
	Ingredients []IngredientDocument `json:"ingredients" yaml:"ingredients"`
}

type jobsDocument struct {
	Jobs []JobDocument `json:"jobs" yaml:"jobs"`
}

// DecodeIngredients reads an ingredients document from r
func DecodeIngredients(r io.Reader, format Format) ([]entities.IngredientRecord, error) {
	var doc ingredientsDocument
	if err := decode(r, format, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients %s: %w", format, err)
	}

	records := make([]entities.IngredientRecord, 0, len(doc.Ingredients))
	for _, ingredient := range doc.Ingredients {
		records = append(records, ingredient.Record())
	}
	return records, nil
}

// DecodeJobs reads a jobs document from r
func DecodeJobs(r io.Reader, format Format) ([]entities.ManufacturingJobParams, error) {
	var doc jobsDocument
	if err := decode(r, format, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode jobs %s: %w", format, err)
	}

	jobs := make([]entities.ManufacturingJobParams, 0, len(doc.Jobs))
	for i, job := range doc.Jobs {
		params, err := job.Params()
		if err != nil {
			return nil, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		jobs = append(jobs, params)
	}
	return jobs, nil
}

// LoadIngredients reads an ingredients document file, picking the format from its extension
func LoadIngredients(path string) ([]entities.IngredientRecord, error) {
	format, file, err := open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeIngredients(file, format)
}

// LoadJobs reads a jobs document file, picking the format from its extension
func LoadJobs(path string) ([]entities.ManufacturingJobParams, error) {
	format, file, err := open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeJobs(file, format)
}

func open(path string) (Format, *os.File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return format, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return format, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return format, file, nil
}

func decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatYAML:
		err := yaml.NewDecoder(r).Decode(v)
		if err == io.EOF {
			return nil
		}
		return err
	default:
		return json.NewDecoder(r).Decode(v)
	}
}
