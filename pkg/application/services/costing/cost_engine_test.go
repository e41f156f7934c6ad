package costing

import (
	"errors"
	"testing"
	"time"

	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

var calculatedAt = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("Expected %s %s, got %s", name, want, got)
	}
}

func newTestEngine() *Engine {
	return NewEngine(Config{DefaultCurrency: "EUR", Now: func() time.Time { return calculatedAt }})
}

func priceEntry(id entities.IngredientID, price, currency string) entities.IngredientPriceEntry {
	supplier := entities.SupplierID("SUP_" + string(id))
	return entities.IngredientPriceEntry{
		IngredientID: id,
		SupplierID:   &supplier,
		UnitPrice:    dec(price),
		Currency:     currency,
	}
}

func singleLineJob() entities.ManufacturingJobParams {
	return entities.ManufacturingJobParams{
		ID:        "JOB1",
		Name:      "Pan rústico",
		BatchSize: dec("10"),
		Lines: []entities.ManufacturingLine{
			{ID: "L1", IngredientID: "FLOUR", IngredientName: "Harina", Quantity: dec("1"), Unit: "kg", Shrinkage: nullDec("10")},
		},
		LaborCost:       dec("0"),
		PackagingCost:   dec("0"),
		OverheadPercent: dec("0"),
		TargetMargin:    dec("50"),
	}
}

func flourCatalog() entities.PriceCatalog {
	return entities.NewPriceCatalog([]entities.IngredientPriceEntry{priceEntry("FLOUR", "5.00", "EUR")})
}

func TestCompute_SingleLineWithShrinkage(t *testing.T) {
	result, err := newTestEngine().Compute(singleLineJob(), flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Status != entities.StatusComplete {
		t.Errorf("Expected status complete, got %v", result.Status)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(result.Lines))
	}

	line := result.Lines[0]
	assertDecimal(t, "net quantity", line.NetQuantity, "0.9")
	assertDecimal(t, "original quantity", line.Quantity, "1")
	assertDecimal(t, "unit cost", line.UnitCost, "5")
	assertDecimal(t, "line subtotal", line.Subtotal, "45")
	assertDecimal(t, "ingredient cost", result.IngredientCost, "45")
	assertDecimal(t, "batch cost", result.BatchCost, "45")
	assertDecimal(t, "unit cost", result.UnitCost, "4.5")

	if !result.SuggestedPrice.Valid {
		t.Fatal("Expected a suggested price")
	}
	assertDecimal(t, "suggested price", result.SuggestedPrice.Decimal, "9")

	if result.RealizedMargin.Valid {
		t.Errorf("Expected realized margin to be omitted without a posted price, got %s", result.RealizedMargin.Decimal)
	}
	if result.Currency != "EUR" {
		t.Errorf("Expected currency EUR, got %s", result.Currency)
	}
	if !result.LastCalculatedAt.Equal(calculatedAt) {
		t.Errorf("Expected last calculated at %v, got %v", calculatedAt, result.LastCalculatedAt)
	}
}

func TestCompute_TargetMarginOfHundredIsRejected(t *testing.T) {
	params := singleLineJob()
	params.TargetMargin = dec("100")

	result, err := newTestEngine().Compute(params, flourCatalog())
	if err == nil {
		t.Fatal("Expected an invalid parameter error")
	}
	if !errors.Is(err, entities.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}

	var paramErr *entities.InvalidParameterError
	if !errors.As(err, &paramErr) || paramErr.Field != "target_margin" {
		t.Errorf("Expected failure on target_margin, got %v", err)
	}

	if result.Status != entities.StatusRejected {
		t.Errorf("Expected status rejected, got %v", result.Status)
	}
	if result.Failure == nil || result.Failure.Field != "target_margin" {
		t.Errorf("Expected result failure on target_margin, got %+v", result.Failure)
	}
	if result.SuggestedPrice.Valid {
		t.Error("Expected no suggested price on a rejected result")
	}
	if len(result.Lines) != 1 || !result.Lines[0].Quantity.Equal(dec("1")) {
		t.Error("Expected rejected result to keep the entered lines")
	}
}

func TestCompute_OutOfDomainParameters(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(p *entities.ManufacturingJobParams)
		field  string
	}{
		{"zero batch size", func(p *entities.ManufacturingJobParams) { p.BatchSize = dec("0") }, "batch_size"},
		{"negative batch size", func(p *entities.ManufacturingJobParams) { p.BatchSize = dec("-2") }, "batch_size"},
		{"global shrinkage of 100", func(p *entities.ManufacturingJobParams) { p.Shrinkage = nullDec("100") }, "shrinkage"},
		{"negative global shrinkage", func(p *entities.ManufacturingJobParams) { p.Shrinkage = nullDec("-1") }, "shrinkage"},
		{"line shrinkage of 100", func(p *entities.ManufacturingJobParams) { p.Lines[0].Shrinkage = nullDec("100") }, "lines[0].shrinkage"},
		{"line shrinkage above 100", func(p *entities.ManufacturingJobParams) { p.Lines[0].Shrinkage = nullDec("120") }, "lines[0].shrinkage"},
		{"negative line quantity", func(p *entities.ManufacturingJobParams) { p.Lines[0].Quantity = dec("-1") }, "lines[0].quantity"},
		{"target margin above 100", func(p *entities.ManufacturingJobParams) { p.TargetMargin = dec("150") }, "target_margin"},
		{"negative target margin", func(p *entities.ManufacturingJobParams) { p.TargetMargin = dec("-5") }, "target_margin"},
		{"negative labor", func(p *entities.ManufacturingJobParams) { p.LaborCost = dec("-1") }, "labor_cost"},
		{"negative packaging", func(p *entities.ManufacturingJobParams) { p.PackagingCost = dec("-1") }, "packaging_cost"},
		{"negative overhead", func(p *entities.ManufacturingJobParams) { p.OverheadPercent = dec("-1") }, "overhead_percent"},
		{"negative posted price", func(p *entities.ManufacturingJobParams) { p.PostedPrice = nullDec("-3") }, "posted_price"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := singleLineJob()
			tc.mutate(&params)

			result, err := newTestEngine().Compute(params, flourCatalog())
			var paramErr *entities.InvalidParameterError
			if !errors.As(err, &paramErr) {
				t.Fatalf("Expected InvalidParameterError, got %v", err)
			}
			if paramErr.Field != tc.field {
				t.Errorf("Expected field %s, got %s", tc.field, paramErr.Field)
			}
			if result.Status != entities.StatusRejected {
				t.Errorf("Expected status rejected, got %v", result.Status)
			}
		})
	}
}

func TestCompute_LineShrinkageOverridesGlobal(t *testing.T) {
	params := singleLineJob()
	params.Shrinkage = nullDec("20")
	params.Lines = append(params.Lines, entities.ManufacturingLine{
		ID: "L2", IngredientID: "FLOUR", Quantity: dec("2"), Unit: "kg",
	})

	result, err := newTestEngine().Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	assertDecimal(t, "L1 effective shrinkage", result.Lines[0].EffectiveShrinkage, "10")
	assertDecimal(t, "L1 net quantity", result.Lines[0].NetQuantity, "0.9")
	assertDecimal(t, "L2 effective shrinkage", result.Lines[1].EffectiveShrinkage, "20")
	assertDecimal(t, "L2 net quantity", result.Lines[1].NetQuantity, "1.6")
	assertDecimal(t, "L2 subtotal", result.Lines[1].Subtotal, "80")
	assertDecimal(t, "ingredient cost", result.IngredientCost, "125")
}

func TestCompute_NoShrinkageAnywhereMeansZero(t *testing.T) {
	params := singleLineJob()
	params.Lines[0].Shrinkage = decimal.NullDecimal{}

	result, err := newTestEngine().Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	assertDecimal(t, "net quantity", result.Lines[0].NetQuantity, "1")
	assertDecimal(t, "subtotal", result.Lines[0].Subtotal, "50")
}

func TestCompute_OverheadAppliesToIngredientsLaborAndPackaging(t *testing.T) {
	params := singleLineJob()
	params.LaborCost = dec("30")
	params.PackagingCost = dec("25")
	params.OverheadPercent = dec("10")

	result, err := newTestEngine().Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// (45 + 30 + 25) * 10% = 10
	assertDecimal(t, "overhead", result.OverheadCost, "10")
	assertDecimal(t, "batch cost", result.BatchCost, "110")
	assertDecimal(t, "unit cost", result.UnitCost, "11")
	assertDecimal(t, "suggested price", result.SuggestedPrice.Decimal, "22")
}

func TestCompute_RealizedMargin(t *testing.T) {
	params := singleLineJob()
	params.PostedPrice = nullDec("6")

	result, err := newTestEngine().Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.RealizedMargin.Valid {
		t.Fatal("Expected a realized margin")
	}
	// (6 - 4.5) / 6 * 100
	assertDecimal(t, "realized margin", result.RealizedMargin.Decimal, "25")

	params.PostedPrice = nullDec("4.5")
	result, err = newTestEngine().Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.RealizedMargin.Valid || !result.RealizedMargin.Decimal.IsZero() {
		t.Errorf("Expected a present zero margin, got %v", result.RealizedMargin)
	}

	params.PostedPrice = nullDec("0")
	result, err = newTestEngine().Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.RealizedMargin.Valid {
		t.Error("Expected a zero posted price to omit the realized margin")
	}
}

func TestCompute_PostedPriceDoesNotAffectSuggestedPrice(t *testing.T) {
	withoutPrice, _ := newTestEngine().Compute(singleLineJob(), flourCatalog())

	params := singleLineJob()
	params.PostedPrice = nullDec("100")
	withPrice, _ := newTestEngine().Compute(params, flourCatalog())

	if !withPrice.SuggestedPrice.Decimal.Equal(withoutPrice.SuggestedPrice.Decimal) {
		t.Errorf("Expected suggested price unchanged, got %s vs %s", withPrice.SuggestedPrice.Decimal, withoutPrice.SuggestedPrice.Decimal)
	}
}

func TestCompute_MissingPriceGivesIncompleteResult(t *testing.T) {
	params := singleLineJob()
	params.Lines = append(params.Lines,
		entities.ManufacturingLine{ID: "L2", IngredientID: "SAFFRON", Quantity: dec("0.01"), Unit: "g"},
		entities.ManufacturingLine{ID: "L3", IngredientID: "SAFFRON", Quantity: dec("0.02"), Unit: "g"},
		entities.ManufacturingLine{ID: "L4", Quantity: dec("1")},
	)

	result, err := newTestEngine().Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Missing prices must not be an error, got %v", err)
	}
	if result.Status != entities.StatusIncomplete {
		t.Errorf("Expected status incomplete, got %v", result.Status)
	}
	if len(result.MissingIngredients) != 1 || result.MissingIngredients[0] != "SAFFRON" {
		t.Errorf("Expected SAFFRON reported once, got %v", result.MissingIngredients)
	}
	for _, line := range result.Lines[1:] {
		if line.Priced {
			t.Errorf("Expected line %s to be unpriced", line.LineID)
		}
		assertDecimal(t, "unpriced subtotal", line.Subtotal, "0")
	}
	assertDecimal(t, "ingredient cost", result.IngredientCost, "45")
	if !result.SuggestedPrice.Valid {
		t.Error("Expected partial figures to include a suggested price")
	}
}

func TestCompute_MixedCurrenciesAreRejected(t *testing.T) {
	params := singleLineJob()
	params.Lines = append(params.Lines, entities.ManufacturingLine{ID: "L2", IngredientID: "VANILLA", Quantity: dec("0.1"), Unit: "l"})

	catalog := entities.NewPriceCatalog([]entities.IngredientPriceEntry{
		priceEntry("FLOUR", "5", "EUR"),
		priceEntry("VANILLA", "80", "USD"),
	})

	result, err := newTestEngine().Compute(params, catalog)
	if !errors.Is(err, entities.ErrMixedCurrency) {
		t.Fatalf("Expected ErrMixedCurrency, got %v", err)
	}
	if result.Status != entities.StatusRejected || result.Failure == nil || result.Failure.Field != "currency" {
		t.Errorf("Expected rejected result on currency, got %v %+v", result.Status, result.Failure)
	}
}

func TestCompute_EmptyCurrencyIsCompatible(t *testing.T) {
	params := singleLineJob()
	params.Lines = append(params.Lines, entities.ManufacturingLine{ID: "L2", IngredientID: "SALT", Quantity: dec("0.02"), Unit: "kg"})

	catalog := entities.NewPriceCatalog([]entities.IngredientPriceEntry{
		priceEntry("FLOUR", "5", "USD"),
		priceEntry("SALT", "1", ""),
	})

	result, err := newTestEngine().Compute(params, catalog)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Currency != "USD" {
		t.Errorf("Expected currency USD, got %s", result.Currency)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	params := singleLineJob()
	params.LaborCost = dec("12.34")
	params.OverheadPercent = dec("7.5")
	params.TargetMargin = dec("33")
	params.PostedPrice = nullDec("9.99")
	params.BatchSize = dec("7")

	engine := newTestEngine()
	first, err := engine.Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := engine.Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !first.SameFigures(second) {
		t.Error("Expected identical inputs to produce identical figures")
	}
	if first.UnitCost.String() != second.UnitCost.String() || first.SuggestedPrice.Decimal.String() != second.SuggestedPrice.Decimal.String() {
		t.Error("Expected identical decimal representations")
	}
}

func TestCompute_RoundTripThroughParams(t *testing.T) {
	params := singleLineJob()
	params.Shrinkage = nullDec("3")
	params.Lines = append(params.Lines, entities.ManufacturingLine{ID: "L2", IngredientID: "FLOUR", Quantity: dec("0.35"), Unit: "kg"})
	params.LaborCost = dec("18")
	params.PackagingCost = dec("4.2")
	params.OverheadPercent = dec("12")
	params.PostedPrice = nullDec("15")

	engine := newTestEngine()
	original, err := engine.Compute(params, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	recomputed, err := engine.Compute(original.Params(), flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error on round trip: %v", err)
	}

	if !original.SameFigures(recomputed) {
		t.Errorf("Expected round trip to reproduce figures: batch %s vs %s", original.BatchCost, recomputed.BatchCost)
	}
	assertDecimal(t, "L1 quantity after round trip", recomputed.Lines[0].Quantity, "1")
	if recomputed.Lines[1].LineShrinkage.Valid {
		t.Error("Expected L2 to keep inheriting the job shrinkage")
	}
}

func TestCompute_MonotonicBatchCost(t *testing.T) {
	base := singleLineJob()
	base.LaborCost = dec("10")
	base.PackagingCost = dec("5")
	base.OverheadPercent = dec("8")

	engine := newTestEngine()
	baseline, err := engine.Compute(base, flourCatalog())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	testCases := []struct {
		name   string
		mutate func(p *entities.ManufacturingJobParams)
	}{
		{"labor", func(p *entities.ManufacturingJobParams) { p.LaborCost = p.LaborCost.Add(dec("0.01")) }},
		{"packaging", func(p *entities.ManufacturingJobParams) { p.PackagingCost = p.PackagingCost.Add(dec("3")) }},
		{"overhead", func(p *entities.ManufacturingJobParams) { p.OverheadPercent = p.OverheadPercent.Add(dec("1")) }},
		{"line quantity", func(p *entities.ManufacturingJobParams) { p.Lines[0].Quantity = p.Lines[0].Quantity.Add(dec("0.5")) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := base.Clone()
			tc.mutate(&params)

			result, err := engine.Compute(params, flourCatalog())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.BatchCost.LessThan(baseline.BatchCost) {
				t.Errorf("Expected batch cost not to decrease: %s < %s", result.BatchCost, baseline.BatchCost)
			}
		})
	}
}

func TestCompute_EmptyCatalogKeepsDefaultCurrency(t *testing.T) {
	result, err := newTestEngine().Compute(singleLineJob(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Status != entities.StatusIncomplete {
		t.Errorf("Expected status incomplete, got %v", result.Status)
	}
	if result.Currency != "EUR" {
		t.Errorf("Expected default currency EUR, got %s", result.Currency)
	}
}
