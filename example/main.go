package main

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/obrador/fabricacion/pkg/application/services/costing"
	"github.com/obrador/fabricacion/pkg/application/services/pricing"
	"github.com/obrador/fabricacion/pkg/application/services/recompute"
	"github.com/obrador/fabricacion/pkg/domain/entities"
)

func main() {
	engine := costing.NewEngine(costing.Config{DefaultCurrency: "EUR"})
	coordinator := recompute.NewInMemoryCoordinator(engine, nil)

	// Resolve the bakery's supplier quotes into a catalog
	catalog := pricing.NewResolver().BuildCatalog(bakeryIngredients())
	coordinator.ReplaceCatalog(catalog)

	fmt.Println("📒 Cheapest valid prices:")
	for _, entry := range catalog.Entries() {
		fmt.Printf("  %s: %s %s/%s (%s)\n",
			entry.IngredientID, entry.UnitPrice.StringFixed(2), entry.Currency, entry.Unit, *entry.SupplierID)
	}
	fmt.Println()

	report := coordinator.RecomputeAll([]entities.ManufacturingJobParams{baguetteJob()})
	fmt.Printf("🔄 Computed %d job(s): %d complete, %d incomplete, %d rejected\n\n",
		report.Total(), report.Complete, report.Incomplete, report.Rejected)

	result, _ := coordinator.Result("BAGUETTE")
	printResult(result)

	// The baker raises labor; only this job is recomputed, from the quantities as entered
	labor := decimal.NewFromInt(45)
	result, _, err := coordinator.Recompute("BAGUETTE", recompute.JobPatch{LaborCost: &labor})
	if err != nil {
		fmt.Printf("❌ Recompute failed: %v\n", err)
		return
	}
	fmt.Println("✏️  After raising labor to 45.00:")
	printResult(result)

	fmt.Println("✅ Costing complete!")
}

func printResult(result entities.ManufacturingResult) {
	fmt.Printf("📊 %s (%s)\n", result.Name, result.Status)
	for _, line := range result.Lines {
		fmt.Printf("  %s: %s %s net of %s%% shrinkage -> %s\n",
			line.IngredientID, line.NetQuantity.String(), line.Unit,
			line.EffectiveShrinkage.String(), line.Subtotal.StringFixed(2))
	}
	fmt.Printf("  Batch cost: %s %s\n", result.BatchCost.StringFixed(2), result.Currency)
	fmt.Printf("  Unit cost: %s\n", result.UnitCost.StringFixed(4))
	if result.SuggestedPrice.Valid {
		fmt.Printf("  Suggested price: %s\n", result.SuggestedPrice.Decimal.StringFixed(2))
	}
	if result.RealizedMargin.Valid {
		fmt.Printf("  Realized margin at posted price: %s%%\n", result.RealizedMargin.Decimal.StringFixed(1))
	}
	fmt.Println()
}

func bakeryIngredients() []entities.IngredientRecord {
	inactive := false
	return []entities.IngredientRecord{
		{
			ID:       "FLOUR_T65",
			Name:     "Harina T65",
			Unit:     "kg",
			Category: &entities.Category{ID: "SECOS", Name: "Secos"},
			Offers: []entities.OfferRecord{
				{SupplierID: "MOLINOS_SUR", SupplierName: "Molinos del Sur", UnitPrice: "0.92", Currency: "EUR", MinOrderQty: "25"},
				{SupplierID: "HARINERA", SupplierName: "Harinera Central", UnitPrice: "0.85", Currency: "EUR", EffectiveFrom: "2099-01-01"},
				{SupplierID: "GRANEL", SupplierName: "Granel SA", UnitPrice: "0.80", Currency: "EUR", SupplierActive: &inactive},
			},
		},
		{
			ID:   "SALT",
			Name: "Sal marina",
			Unit: "kg",
			Offers: []entities.OfferRecord{
				{SupplierID: "SALINAS", SupplierName: "Salinas", UnitPrice: "0.40", Currency: "EUR"},
			},
		},
		{
			ID:   "YEAST",
			Name: "Levadura fresca",
			Unit: "kg",
			Offers: []entities.OfferRecord{
				{SupplierID: "LACTEA", SupplierName: "Lactea", UnitPrice: "3.10", Currency: "EUR"},
			},
		},
	}
}

func baguetteJob() entities.ManufacturingJobParams {
	return entities.ManufacturingJobParams{
		ID:        "BAGUETTE",
		Name:      "Baguette tradicional",
		BatchSize: decimal.NewFromInt(120),
		Shrinkage: decimal.NewNullDecimal(decimal.NewFromInt(3)),
		Lines: []entities.ManufacturingLine{
			{ID: "L1", IngredientID: "FLOUR_T65", Quantity: decimal.RequireFromString("0.18"), Unit: "kg"},
			{ID: "L2", IngredientID: "SALT", Quantity: decimal.RequireFromString("0.0036"), Unit: "kg"},
			{ID: "L3", IngredientID: "YEAST", Quantity: decimal.RequireFromString("0.0027"), Unit: "kg", Shrinkage: decimal.NewNullDecimal(decimal.Zero)},
		},
		LaborCost:       decimal.NewFromInt(30),
		PackagingCost:   decimal.NewFromInt(6),
		OverheadPercent: decimal.NewFromInt(12),
		TargetMargin:    decimal.NewFromInt(60),
		PostedPrice:     decimal.NewNullDecimal(decimal.RequireFromString("1.20")),
	}
}
