package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IngredientID represents a unique ingredient identifier
type IngredientID string

// CategoryID represents a unique ingredient category identifier
type CategoryID string

// SupplierID represents a unique supplier identifier
type SupplierID string

// Category groups ingredients for reporting
type Category struct {
	ID   CategoryID `json:"id" yaml:"id"`
	Name string     `json:"name" yaml:"name"`
}

// OfferRecord is one supplier quote as received from the content API, before validation.
// Numeric and time fields are kept as raw text so a malformed row can be excluded
// without failing the whole snapshot.
type OfferRecord struct {
	SupplierID     SupplierID
	SupplierName   string
	SupplierActive *bool // nil = active
	UnitPrice      string
	Currency       string
	Unit           string
	MinOrderQty    string
	EffectiveFrom  string
}

// IngredientRecord is an ingredient with all of its known supplier offers
type IngredientRecord struct {
	ID       IngredientID
	Name     string
	Unit     string
	Category *Category
	Offers   []OfferRecord
}

// SupplierOffer represents a validated, immutable supplier quote for one ingredient
type SupplierOffer struct {
	SupplierID    SupplierID
	SupplierName  string
	Active        bool
	UnitPrice     decimal.Decimal
	Currency      string
	Unit          string
	MinOrderQty   decimal.Decimal
	EffectiveFrom *time.Time
}

// IsValidAt reports whether the offer may be used for pricing at t
func (o SupplierOffer) IsValidAt(t time.Time) bool {
	if !o.Active {
		return false
	}
	return o.EffectiveFrom == nil || !o.EffectiveFrom.After(t)
}

// effectiveFromLayouts are tried in order when parsing an offer's effective-from text
var effectiveFromLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseEffectiveFrom parses an effective-from timestamp. The second return value is
// false when the text is empty or in no known layout.
func ParseEffectiveFrom(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range effectiveFromLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewSupplierOffer validates an OfferRecord.
// An unparseable effective-from is dropped (the offer counts as already effective);
// a missing or malformed price is an error.
func NewSupplierOffer(record OfferRecord) (*SupplierOffer, error) {
	if record.SupplierID == "" {
		return nil, fmt.Errorf("supplier id cannot be empty")
	}

	price, err := parseAmount(record.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price %q: %w", record.UnitPrice, err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("unit price cannot be negative, got %s", price)
	}

	minOrderQty := decimal.Zero
	if record.MinOrderQty != "" {
		if qty, err := parseAmount(record.MinOrderQty); err == nil && !qty.IsNegative() {
			minOrderQty = qty
		}
	}

	offer := &SupplierOffer{
		SupplierID:   record.SupplierID,
		SupplierName: record.SupplierName,
		Active:       record.SupplierActive == nil || *record.SupplierActive,
		UnitPrice:    price,
		Currency:     record.Currency,
		Unit:         record.Unit,
		MinOrderQty:  minOrderQty,
	}
	if t, ok := ParseEffectiveFrom(record.EffectiveFrom); ok {
		offer.EffectiveFrom = &t
	}

	return offer, nil
}

// parseAmount parses decimal text. decimal.NewFromString already refuses NaN and Inf.
func parseAmount(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}
	return decimal.NewFromString(text)
}
