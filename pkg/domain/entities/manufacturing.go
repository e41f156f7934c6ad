package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// JobID represents a unique manufacturing job (fabricación) identifier
type JobID string

// LineID represents a unique line within a manufacturing job
type LineID string

// ResultStatus represents how far a cost computation got
type ResultStatus int

const (
	StatusComplete ResultStatus = iota
	StatusIncomplete
	StatusRejected
)

// String method for ResultStatus enum
func (s ResultStatus) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusIncomplete:
		return "incomplete"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name
func (s ResultStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *ResultStatus) UnmarshalText(text []byte) error {
	status, err := ParseResultStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseResultStatus parses a status name, case-insensitively
func ParseResultStatus(text string) (ResultStatus, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "complete":
		return StatusComplete, nil
	case "incomplete":
		return StatusIncomplete, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return StatusComplete, fmt.Errorf("invalid result status: %s (expected complete, incomplete or rejected)", text)
	}
}

// ManufacturingLine is one ingredient consumption within a job, per produced unit
type ManufacturingLine struct {
	ID             LineID              `json:"id"`
	IngredientID   IngredientID        `json:"ingredient_id"`
	IngredientName string              `json:"ingredient_name"`
	Quantity       decimal.Decimal     `json:"quantity"`
	Unit           string              `json:"unit"`
	Shrinkage      decimal.NullDecimal `json:"shrinkage"` // overrides the job-level shrinkage when valid
}

// ManufacturingJobParams is the editable input of a cost computation
type ManufacturingJobParams struct {
	ID              JobID               `json:"id"`
	Name            string              `json:"name"`
	BatchSize       decimal.Decimal     `json:"batch_size"`
	Lines           []ManufacturingLine `json:"lines"`
	Shrinkage       decimal.NullDecimal `json:"shrinkage"`
	LaborCost       decimal.Decimal     `json:"labor_cost"`
	PackagingCost   decimal.Decimal     `json:"packaging_cost"`
	OverheadPercent decimal.Decimal     `json:"overhead_percent"`
	TargetMargin    decimal.Decimal     `json:"target_margin"`
	PostedPrice     decimal.NullDecimal `json:"posted_price"` // only reported against, never used for pricing
}

// Clone returns a copy that shares no line storage with p
func (p ManufacturingJobParams) Clone() ManufacturingJobParams {
	clone := p
	if p.Lines != nil {
		clone.Lines = make([]ManufacturingLine, len(p.Lines))
		copy(clone.Lines, p.Lines)
	}
	return clone
}

// LineCost is the cost breakdown of one line.
// Quantity, Unit and LineShrinkage are the line as entered; NetQuantity is derived.
type LineCost struct {
	LineID             LineID              `json:"line_id"`
	IngredientID       IngredientID        `json:"ingredient_id"`
	IngredientName     string              `json:"ingredient_name"`
	Quantity           decimal.Decimal     `json:"quantity"`
	Unit               string              `json:"unit"`
	LineShrinkage      decimal.NullDecimal `json:"line_shrinkage"`
	EffectiveShrinkage decimal.Decimal     `json:"effective_shrinkage"`
	NetQuantity        decimal.Decimal     `json:"net_quantity"`
	UnitCost           decimal.Decimal     `json:"unit_cost"`
	Subtotal           decimal.Decimal     `json:"subtotal"`
	SupplierID         *SupplierID         `json:"supplier_id"`
	SupplierName       *string             `json:"supplier_name"`
	Currency           string              `json:"currency,omitempty"`
	Priced             bool                `json:"priced"`
}

// Line returns the line as originally entered
func (l LineCost) Line() ManufacturingLine {
	return ManufacturingLine{
		ID:             l.LineID,
		IngredientID:   l.IngredientID,
		IngredientName: l.IngredientName,
		Quantity:       l.Quantity,
		Unit:           l.Unit,
		Shrinkage:      l.LineShrinkage,
	}
}

// ManufacturingResult is the derived cost sheet of one job.
// Every recomputation produces a new value that replaces the previous one.
type ManufacturingResult struct {
	JobID           JobID               `json:"job_id"`
	Name            string              `json:"name"`
	BatchSize       decimal.Decimal     `json:"batch_size"`
	Shrinkage       decimal.NullDecimal `json:"shrinkage"`
	LaborCost       decimal.Decimal     `json:"labor_cost"`
	PackagingCost   decimal.Decimal     `json:"packaging_cost"`
	OverheadPercent decimal.Decimal     `json:"overhead_percent"`
	TargetMargin    decimal.Decimal     `json:"target_margin"`
	PostedPrice     decimal.NullDecimal `json:"posted_price"`

	Lines          []LineCost          `json:"lines"`
	IngredientCost decimal.Decimal     `json:"ingredient_cost"`
	OverheadCost   decimal.Decimal     `json:"overhead_cost"`
	BatchCost      decimal.Decimal     `json:"batch_cost"`
	UnitCost       decimal.Decimal     `json:"unit_cost"`
	SuggestedPrice decimal.NullDecimal `json:"suggested_price"`
	RealizedMargin decimal.NullDecimal `json:"realized_margin"`
	Currency       string              `json:"currency"`

	Status             ResultStatus   `json:"status"`
	Failure            *Failure       `json:"failure,omitempty"`
	MissingIngredients []IngredientID `json:"missing_ingredients,omitempty"`
	LastCalculatedAt   time.Time      `json:"last_calculated_at"`
}

// Params projects the result back into job parameters using the original,
// pre-shrinkage line quantities
func (r ManufacturingResult) Params() ManufacturingJobParams {
	lines := make([]ManufacturingLine, len(r.Lines))
	for i, line := range r.Lines {
		lines[i] = line.Line()
	}

	return ManufacturingJobParams{
		ID:              r.JobID,
		Name:            r.Name,
		BatchSize:       r.BatchSize,
		Lines:           lines,
		Shrinkage:       r.Shrinkage,
		LaborCost:       r.LaborCost,
		PackagingCost:   r.PackagingCost,
		OverheadPercent: r.OverheadPercent,
		TargetMargin:    r.TargetMargin,
		PostedPrice:     r.PostedPrice,
	}
}

// IsRejected reports whether the computation was refused
func (r ManufacturingResult) IsRejected() bool {
	return r.Status == StatusRejected
}

// SameFigures compares every derived figure of two results, ignoring LastCalculatedAt
func (r ManufacturingResult) SameFigures(other ManufacturingResult) bool {
	if r.Status != other.Status || r.Currency != other.Currency || len(r.Lines) != len(other.Lines) {
		return false
	}
	if !r.IngredientCost.Equal(other.IngredientCost) ||
		!r.OverheadCost.Equal(other.OverheadCost) ||
		!r.BatchCost.Equal(other.BatchCost) ||
		!r.UnitCost.Equal(other.UnitCost) ||
		!nullEqual(r.SuggestedPrice, other.SuggestedPrice) ||
		!nullEqual(r.RealizedMargin, other.RealizedMargin) {
		return false
	}
	for i := range r.Lines {
		a, b := r.Lines[i], other.Lines[i]
		if a.LineID != b.LineID || a.Priced != b.Priced ||
			!a.NetQuantity.Equal(b.NetQuantity) ||
			!a.UnitCost.Equal(b.UnitCost) ||
			!a.Subtotal.Equal(b.Subtotal) {
			return false
		}
	}
	return true
}

func nullEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
