package testing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/obrador/fabricacion/pkg/domain/entities"
)

func boolPtr(b bool) *bool { return &b }

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// BuildBakeryTestData builds the bakery scenario: three priced ingredients, one
// without offers, and three jobs covering complete, incomplete and rejected results.
// Offers are dated so that resolution at any time in 2024-2098 gives the same catalog.
func BuildBakeryTestData() ([]entities.IngredientRecord, []entities.ManufacturingJobParams) {
	ingredients := []entities.IngredientRecord{
		{
			ID:   "FLOUR",
			Name: "Harina de trigo",
			Unit: "kg",
			Offers: []entities.OfferRecord{
				{SupplierID: "SUP_MOLINO", SupplierName: "Molino San José", UnitPrice: "0.80", Currency: "EUR", Unit: "kg"},
				{SupplierID: "SUP_HARINERA", SupplierName: "Harinera del Norte", SupplierActive: boolPtr(false), UnitPrice: "0.75", Currency: "EUR", Unit: "kg"},
				{SupplierID: "SUP_FUTURO", SupplierName: "Cereales Futuro", UnitPrice: "0.50", Currency: "EUR", Unit: "kg", EffectiveFrom: "2099-01-01"},
			},
		},
		{
			ID:   "BUTTER",
			Name: "Mantequilla",
			Unit: "kg",
			Offers: []entities.OfferRecord{
				{SupplierID: "SUP_GRANJA", SupplierName: "Granja La Vega", UnitPrice: "7.00", Currency: "EUR", Unit: "kg"},
				{SupplierID: "SUP_LACTEOS", SupplierName: "Lácteos Asturianos", UnitPrice: "6.50", Currency: "EUR", Unit: "kg", EffectiveFrom: "2024-01-01"},
			},
		},
		{
			ID:   "YEAST",
			Name: "Levadura fresca",
			Unit: "kg",
			Offers: []entities.OfferRecord{
				{SupplierID: "SUP_MOLINO", SupplierName: "Molino San José", UnitPrice: "consultar", Currency: "EUR", Unit: "kg"},
				{SupplierID: "SUP_LACTEOS", SupplierName: "Lácteos Asturianos", UnitPrice: "4.00", Currency: "EUR", Unit: "kg"},
			},
		},
		{
			ID:   "EGG",
			Name: "Huevo",
			Unit: "ud",
		},
	}

	jobs := []entities.ManufacturingJobParams{
		{
			ID:        "BAGUETTE",
			Name:      "Baguette tradicional",
			BatchSize: decimal.NewFromInt(20),
			Shrinkage: nullDec("10"),
			Lines: []entities.ManufacturingLine{
				{ID: "L1", IngredientID: "FLOUR", IngredientName: "Harina de trigo", Quantity: decimal.RequireFromString("0.25"), Unit: "kg"},
				{ID: "L2", IngredientID: "YEAST", IngredientName: "Levadura fresca", Quantity: decimal.RequireFromString("0.01"), Unit: "kg", Shrinkage: nullDec("0")},
			},
			LaborCost:       decimal.NewFromInt(30),
			PackagingCost:   decimal.NewFromInt(2),
			OverheadPercent: decimal.NewFromInt(10),
			TargetMargin:    decimal.NewFromInt(40),
			PostedPrice:     nullDec("3.50"),
		},
		{
			ID:        "CROISSANT",
			Name:      "Croissant de mantequilla",
			BatchSize: decimal.NewFromInt(12),
			Lines: []entities.ManufacturingLine{
				{ID: "L1", IngredientID: "FLOUR", IngredientName: "Harina de trigo", Quantity: decimal.RequireFromString("0.05"), Unit: "kg"},
				{ID: "L2", IngredientID: "BUTTER", IngredientName: "Mantequilla", Quantity: decimal.RequireFromString("0.03"), Unit: "kg"},
				{ID: "L3", IngredientID: "EGG", IngredientName: "Huevo", Quantity: decimal.NewFromInt(1), Unit: "ud"},
			},
			LaborCost:       decimal.NewFromInt(18),
			PackagingCost:   decimal.RequireFromString("1.2"),
			OverheadPercent: decimal.Zero,
			TargetMargin:    decimal.NewFromInt(50),
		},
		{
			ID:        "BRIOCHE",
			Name:      "Brioche",
			BatchSize: decimal.NewFromInt(8),
			Lines: []entities.ManufacturingLine{
				{ID: "L1", IngredientID: "BUTTER", IngredientName: "Mantequilla", Quantity: decimal.RequireFromString("0.1"), Unit: "kg"},
			},
			LaborCost:    decimal.NewFromInt(10),
			TargetMargin: decimal.NewFromInt(100),
		},
	}

	return ingredients, jobs
}

// BuildSimpleTestData creates one priced ingredient and one job using it
func BuildSimpleTestData() ([]entities.IngredientRecord, []entities.ManufacturingJobParams) {
	ingredients := []entities.IngredientRecord{
		{
			ID:   "SUGAR",
			Name: "Azúcar",
			Unit: "kg",
			Offers: []entities.OfferRecord{
				{SupplierID: "SUP_A", SupplierName: "Supplier A", UnitPrice: "1.00", Currency: "EUR", Unit: "kg"},
			},
		},
	}

	jobs := []entities.ManufacturingJobParams{
		{
			ID:        "CARAMEL",
			Name:      "Caramelo",
			BatchSize: decimal.NewFromInt(10),
			Lines: []entities.ManufacturingLine{
				{ID: "L1", IngredientID: "SUGAR", IngredientName: "Azúcar", Quantity: decimal.RequireFromString("0.5"), Unit: "kg"},
			},
			LaborCost:    decimal.NewFromInt(5),
			TargetMargin: decimal.NewFromInt(20),
		},
	}

	return ingredients, jobs
}

// BuildWideTestData generates ingredientCount ingredients with three offers each and
// jobCount jobs of linesPerJob lines spread over those ingredients
func BuildWideTestData(ingredientCount, jobCount, linesPerJob int) ([]entities.IngredientRecord, []entities.ManufacturingJobParams) {
	ingredients := make([]entities.IngredientRecord, ingredientCount)
	for i := range ingredients {
		id := entities.IngredientID(fmt.Sprintf("ING_%04d", i))
		offers := make([]entities.OfferRecord, 3)
		for s := range offers {
			offers[s] = entities.OfferRecord{
				SupplierID: entities.SupplierID(fmt.Sprintf("SUP_%d", s)),
				UnitPrice:  fmt.Sprintf("%d.%02d", 1+(i+s)%9, (i*7+s)%100),
				Currency:   "EUR",
				Unit:       "kg",
			}
		}
		ingredients[i] = entities.IngredientRecord{ID: id, Name: string(id), Unit: "kg", Offers: offers}
	}

	jobs := make([]entities.ManufacturingJobParams, jobCount)
	for j := range jobs {
		lines := make([]entities.ManufacturingLine, linesPerJob)
		for l := range lines {
			ingredient := ingredients[(j+l)%ingredientCount]
			lines[l] = entities.ManufacturingLine{
				ID:             entities.LineID(fmt.Sprintf("L%d", l+1)),
				IngredientID:   ingredient.ID,
				IngredientName: ingredient.Name,
				Quantity:       decimal.RequireFromString("0.125"),
				Unit:           "kg",
			}
		}
		jobs[j] = entities.ManufacturingJobParams{
			ID:              entities.JobID(fmt.Sprintf("JOB_%05d", j)),
			Name:            fmt.Sprintf("Job %d", j),
			BatchSize:       decimal.NewFromInt(int64(10 + j%40)),
			Shrinkage:       nullDec("5"),
			Lines:           lines,
			LaborCost:       decimal.NewFromInt(25),
			PackagingCost:   decimal.NewFromInt(3),
			OverheadPercent: decimal.NewFromInt(12),
			TargetMargin:    decimal.NewFromInt(35),
		}
	}

	return ingredients, jobs
}
