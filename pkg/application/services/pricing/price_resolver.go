package pricing

import (
	"time"

	"github.com/obrador/fabricacion/pkg/domain/entities"
)

// Resolver selects, per ingredient, the cheapest supplier offer valid at evaluation time
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a resolver that evaluates offers against the current time
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// NewResolverWithClock creates a resolver with an explicit clock
func NewResolverWithClock(now func() time.Time) *Resolver {
	return &Resolver{now: now}
}

// ResolveCheapestPrices resolves every ingredient against a single sampled "now"
func (r *Resolver) ResolveCheapestPrices(ingredients []entities.IngredientRecord) []entities.IngredientPriceEntry {
	return ResolveCheapestPricesAt(ingredients, r.now())
}

// BuildCatalog resolves ingredients and indexes the result by ingredient id
func (r *Resolver) BuildCatalog(ingredients []entities.IngredientRecord) entities.PriceCatalog {
	return entities.NewPriceCatalog(r.ResolveCheapestPrices(ingredients))
}

// ResolveCheapestPricesAt resolves every ingredient as of at.
// Ingredients with no valid offer are omitted.
func ResolveCheapestPricesAt(ingredients []entities.IngredientRecord, at time.Time) []entities.IngredientPriceEntry {
	entries := make([]entities.IngredientPriceEntry, 0, len(ingredients))
	for _, ingredient := range ingredients {
		if ingredient.ID == "" {
			continue
		}
		offer := SelectCheapestOffer(ingredient.Offers, at)
		if offer == nil {
			continue
		}
		entries = append(entries, newPriceEntry(ingredient, *offer))
	}
	return entries
}

// SelectCheapestOffer returns the lowest-priced offer valid at at, or nil if none is.
// Malformed records are skipped. On equal prices the first offer wins.
func SelectCheapestOffer(records []entities.OfferRecord, at time.Time) *entities.SupplierOffer {
	var best *entities.SupplierOffer
	for _, record := range records {
		offer, err := entities.NewSupplierOffer(record)
		if err != nil {
			continue
		}
		if !offer.IsValidAt(at) {
			continue
		}
		if best == nil || offer.UnitPrice.LessThan(best.UnitPrice) {
			best = offer
		}
	}
	return best
}

func newPriceEntry(ingredient entities.IngredientRecord, offer entities.SupplierOffer) entities.IngredientPriceEntry {
	supplierID := offer.SupplierID
	supplierName := offer.SupplierName

	entry := entities.IngredientPriceEntry{
		IngredientID:   ingredient.ID,
		IngredientName: ingredient.Name,
		Unit:           ingredient.Unit,
		SupplierID:     &supplierID,
		SupplierName:   &supplierName,
		UnitPrice:      offer.UnitPrice,
		Currency:       offer.Currency,
		EffectiveFrom:  offer.EffectiveFrom,
	}
	if entry.Unit == "" {
		entry.Unit = offer.Unit
	}
	if ingredient.Category != nil {
		categoryID := ingredient.Category.ID
		categoryName := ingredient.Category.Name
		entry.CategoryID = &categoryID
		entry.CategoryName = &categoryName
	}
	return entry
}
