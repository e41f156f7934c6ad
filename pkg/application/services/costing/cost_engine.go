package costing

import (
	"errors"
	"fmt"
	"time"

	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Config holds the engine's fixed settings
type Config struct {
	// DefaultCurrency labels results whose lines carry no priced currency
	DefaultCurrency string
	// Now stamps LastCalculatedAt; defaults to time.Now
	Now func() time.Time
}

// Engine derives a job's cost sheet from its parameters and a price catalog.
// It holds no state between calls.
type Engine struct {
	defaultCurrency string
	now             func() time.Time
}

// NewEngine creates a cost engine
func NewEngine(config Config) *Engine {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{defaultCurrency: config.DefaultCurrency, now: now}
}

// Compute derives the cost breakdown and suggested price for one job.
//
// Out-of-domain parameters return a result with StatusRejected together with an
// *entities.InvalidParameterError naming the field. Lines whose ingredient has no
// catalog entry cost zero and leave the result StatusIncomplete; that is not an error.
func (e *Engine) Compute(params entities.ManufacturingJobParams, catalog entities.PriceCatalog) (entities.ManufacturingResult, error) {
	calculatedAt := e.now()

	if err := ValidateParams(params); err != nil {
		return e.rejected(params, err, calculatedAt), err
	}

	globalShrinkage := decimal.Zero
	if params.Shrinkage.Valid {
		globalShrinkage = params.Shrinkage.Decimal
	}

	result := newResult(params, calculatedAt)
	result.Lines = make([]entities.LineCost, 0, len(params.Lines))

	ingredientCost := decimal.Zero
	currency := ""
	missing := make(map[entities.IngredientID]bool)
	incomplete := false

	for _, line := range params.Lines {
		shrinkage := globalShrinkage
		if line.Shrinkage.Valid {
			shrinkage = line.Shrinkage.Decimal
		}

		cost := entities.LineCost{
			LineID:             line.ID,
			IngredientID:       line.IngredientID,
			IngredientName:     line.IngredientName,
			Quantity:           line.Quantity,
			Unit:               line.Unit,
			LineShrinkage:      line.Shrinkage,
			EffectiveShrinkage: shrinkage,
			NetQuantity:        NetQuantity(line.Quantity, shrinkage),
			UnitCost:           decimal.Zero,
			Subtotal:           decimal.Zero,
		}

		entry, priced := catalog.Lookup(line.IngredientID)
		if line.IngredientID == "" || !priced {
			incomplete = true
			if line.IngredientID != "" && !missing[line.IngredientID] {
				missing[line.IngredientID] = true
				result.MissingIngredients = append(result.MissingIngredients, line.IngredientID)
			}
			result.Lines = append(result.Lines, cost)
			continue
		}

		if entry.Currency != "" {
			if currency == "" {
				currency = entry.Currency
			} else if entry.Currency != currency {
				err := entities.NewMixedCurrencyError(currency, entry.Currency)
				return e.rejected(params, err, calculatedAt), err
			}
		}

		cost.Priced = true
		cost.UnitCost = entry.UnitPrice
		cost.Subtotal = cost.NetQuantity.Mul(entry.UnitPrice).Mul(params.BatchSize)
		cost.SupplierID = entry.SupplierID
		cost.SupplierName = entry.SupplierName
		cost.Currency = entry.Currency

		ingredientCost = ingredientCost.Add(cost.Subtotal)
		result.Lines = append(result.Lines, cost)
	}

	base := ingredientCost.Add(params.LaborCost).Add(params.PackagingCost)
	overhead := base.Mul(params.OverheadPercent).Div(hundred)
	batchCost := base.Add(overhead)
	unitCost := batchCost.Div(params.BatchSize)

	result.IngredientCost = ingredientCost
	result.OverheadCost = overhead
	result.BatchCost = batchCost
	result.UnitCost = unitCost
	result.SuggestedPrice = decimal.NewNullDecimal(SuggestedPrice(unitCost, params.TargetMargin))
	result.RealizedMargin = RealizedMargin(unitCost, params.PostedPrice)

	result.Currency = currency
	if result.Currency == "" {
		result.Currency = e.defaultCurrency
	}

	if incomplete {
		result.Status = entities.StatusIncomplete
	}

	return result, nil
}

// ValidateParams checks every parameter whose value would make the figures meaningless
func ValidateParams(params entities.ManufacturingJobParams) error {
	if !params.BatchSize.IsPositive() {
		return entities.NewInvalidParameterError("batch_size", params.BatchSize.String(), "must be greater than zero")
	}
	if params.Shrinkage.Valid {
		if err := checkPercent("shrinkage", params.Shrinkage.Decimal); err != nil {
			return err
		}
	}
	if params.LaborCost.IsNegative() {
		return entities.NewInvalidParameterError("labor_cost", params.LaborCost.String(), "cannot be negative")
	}
	if params.PackagingCost.IsNegative() {
		return entities.NewInvalidParameterError("packaging_cost", params.PackagingCost.String(), "cannot be negative")
	}
	if params.OverheadPercent.IsNegative() {
		return entities.NewInvalidParameterError("overhead_percent", params.OverheadPercent.String(), "cannot be negative")
	}
	if err := checkPercent("target_margin", params.TargetMargin); err != nil {
		return err
	}
	if params.PostedPrice.Valid && params.PostedPrice.Decimal.IsNegative() {
		return entities.NewInvalidParameterError("posted_price", params.PostedPrice.Decimal.String(), "cannot be negative")
	}

	for i, line := range params.Lines {
		if line.Quantity.IsNegative() {
			return entities.NewInvalidParameterError(fmt.Sprintf("lines[%d].quantity", i), line.Quantity.String(), "cannot be negative")
		}
		if line.Shrinkage.Valid {
			if err := checkPercent(fmt.Sprintf("lines[%d].shrinkage", i), line.Shrinkage.Decimal); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkPercent requires 0 <= value < 100
func checkPercent(field string, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThanOrEqual(hundred) {
		return entities.NewInvalidParameterError(field, value.String(), "must be at least 0 and below 100")
	}
	return nil
}

// NetQuantity is the usable quantity left after shrinkage percent is lost
func NetQuantity(quantity, shrinkage decimal.Decimal) decimal.Decimal {
	return quantity.Mul(hundred.Sub(shrinkage)).Div(hundred)
}

// SuggestedPrice is the sale price that yields targetMargin percent over unitCost.
// targetMargin must be below 100.
func SuggestedPrice(unitCost, targetMargin decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(hundred).Div(hundred.Sub(targetMargin))
}

// RealizedMargin is the margin percent implied by the posted price.
// It is omitted when no positive price is posted.
func RealizedMargin(unitCost decimal.Decimal, postedPrice decimal.NullDecimal) decimal.NullDecimal {
	if !postedPrice.Valid || !postedPrice.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}
	price := postedPrice.Decimal
	return decimal.NewNullDecimal(price.Sub(unitCost).Mul(hundred).Div(price))
}

func newResult(params entities.ManufacturingJobParams, calculatedAt time.Time) entities.ManufacturingResult {
	return entities.ManufacturingResult{
		JobID:            params.ID,
		Name:             params.Name,
		BatchSize:        params.BatchSize,
		Shrinkage:        params.Shrinkage,
		LaborCost:        params.LaborCost,
		PackagingCost:    params.PackagingCost,
		OverheadPercent:  params.OverheadPercent,
		TargetMargin:     params.TargetMargin,
		PostedPrice:      params.PostedPrice,
		IngredientCost:   decimal.Zero,
		OverheadCost:     decimal.Zero,
		BatchCost:        decimal.Zero,
		UnitCost:         decimal.Zero,
		Status:           entities.StatusComplete,
		LastCalculatedAt: calculatedAt,
	}
}

// rejected keeps the entered parameters so the job can be edited back into shape
func (e *Engine) rejected(params entities.ManufacturingJobParams, err error, calculatedAt time.Time) entities.ManufacturingResult {
	result := newResult(params, calculatedAt)
	result.Status = entities.StatusRejected
	result.Currency = e.defaultCurrency
	result.Lines = make([]entities.LineCost, len(params.Lines))
	for i, line := range params.Lines {
		result.Lines[i] = entities.LineCost{
			LineID:         line.ID,
			IngredientID:   line.IngredientID,
			IngredientName: line.IngredientName,
			Quantity:       line.Quantity,
			Unit:           line.Unit,
			LineShrinkage:  line.Shrinkage,
		}
	}

	var paramErr *entities.InvalidParameterError
	if errors.As(err, &paramErr) {
		result.Failure = paramErr.Failure()
	} else {
		result.Failure = &entities.Failure{Field: "job", Reason: err.Error()}
	}
	return result
}
