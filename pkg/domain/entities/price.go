package entities

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// IngredientPriceEntry is the cheapest valid supplier price resolved for one ingredient
type IngredientPriceEntry struct {
	IngredientID   IngredientID    `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	CategoryID     *CategoryID     `json:"category_id"`
	CategoryName   *string         `json:"category_name"`
	SupplierID     *SupplierID     `json:"supplier_id"`
	SupplierName   *string         `json:"supplier_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Currency       string          `json:"currency"`
	EffectiveFrom  *time.Time      `json:"effective_from"`
}

// PriceCatalog indexes resolved prices by ingredient.
// A catalog is always rebuilt as a whole from a fresh snapshot, never patched.
type PriceCatalog map[IngredientID]IngredientPriceEntry

// NewPriceCatalog indexes entries by ingredient id; a later entry for the same id wins
func NewPriceCatalog(entries []IngredientPriceEntry) PriceCatalog {
	catalog := make(PriceCatalog, len(entries))
	for _, entry := range entries {
		catalog[entry.IngredientID] = entry
	}
	return catalog
}

// Lookup returns the resolved price for an ingredient
func (c PriceCatalog) Lookup(id IngredientID) (IngredientPriceEntry, bool) {
	entry, ok := c[id]
	return entry, ok
}

// Entries returns the catalog contents ordered by ingredient id
func (c PriceCatalog) Entries() []IngredientPriceEntry {
	entries := make([]IngredientPriceEntry, 0, len(c))
	for _, entry := range c {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].IngredientID < entries[j].IngredientID
	})
	return entries
}

// Clone returns an independent copy of the catalog
func (c PriceCatalog) Clone() PriceCatalog {
	clone := make(PriceCatalog, len(c))
	for id, entry := range c {
		clone[id] = entry
	}
	return clone
}
