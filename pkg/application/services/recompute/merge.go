package recompute

import (
	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// JobPatch lists the editable fields of a job. Nil fields keep their previous value.
type JobPatch struct {
	Name             *string          `json:"name,omitempty"`
	BatchSize        *decimal.Decimal `json:"batch_size,omitempty"`
	Shrinkage        *decimal.Decimal `json:"shrinkage,omitempty"`
	ClearShrinkage   bool             `json:"clear_shrinkage,omitempty"`
	LaborCost        *decimal.Decimal `json:"labor_cost,omitempty"`
	PackagingCost    *decimal.Decimal `json:"packaging_cost,omitempty"`
	OverheadPercent  *decimal.Decimal `json:"overhead_percent,omitempty"`
	TargetMargin     *decimal.Decimal `json:"target_margin,omitempty"`
	PostedPrice      *decimal.Decimal `json:"posted_price,omitempty"`
	ClearPostedPrice bool             `json:"clear_posted_price,omitempty"`

	// Lines, when non-nil, replaces every line; LineEdits are applied afterwards
	Lines     []entities.ManufacturingLine `json:"lines,omitempty"`
	LineEdits []LinePatch                  `json:"line_edits,omitempty"`
}

// LinePatch edits one existing line, matched by id
type LinePatch struct {
	LineID         entities.LineID        `json:"line_id"`
	IngredientID   *entities.IngredientID `json:"ingredient_id,omitempty"`
	IngredientName *string                `json:"ingredient_name,omitempty"`
	Quantity       *decimal.Decimal       `json:"quantity,omitempty"`
	Unit           *string                `json:"unit,omitempty"`
	Shrinkage      *decimal.Decimal       `json:"shrinkage,omitempty"`
	ClearShrinkage bool                   `json:"clear_shrinkage,omitempty"`
}

// MergeParams rebuilds full job parameters from the previous result and a patch.
// Lines start from the quantities as entered, never from the net quantities.
// Line edits naming an unknown line are ignored.
func MergeParams(previous entities.ManufacturingResult, patch JobPatch) entities.ManufacturingJobParams {
	params := previous.Params()

	if patch.Name != nil {
		params.Name = *patch.Name
	}
	if patch.BatchSize != nil {
		params.BatchSize = *patch.BatchSize
	}
	params.Shrinkage = mergeOptional(params.Shrinkage, patch.Shrinkage, patch.ClearShrinkage)
	if patch.LaborCost != nil {
		params.LaborCost = *patch.LaborCost
	}
	if patch.PackagingCost != nil {
		params.PackagingCost = *patch.PackagingCost
	}
	if patch.OverheadPercent != nil {
		params.OverheadPercent = *patch.OverheadPercent
	}
	if patch.TargetMargin != nil {
		params.TargetMargin = *patch.TargetMargin
	}
	params.PostedPrice = mergeOptional(params.PostedPrice, patch.PostedPrice, patch.ClearPostedPrice)

	if patch.Lines != nil {
		params.Lines = make([]entities.ManufacturingLine, len(patch.Lines))
		copy(params.Lines, patch.Lines)
	}

	for _, edit := range patch.LineEdits {
		for i := range params.Lines {
			if params.Lines[i].ID != edit.LineID {
				continue
			}
			applyLinePatch(&params.Lines[i], edit)
			break
		}
	}

	return params
}

func applyLinePatch(line *entities.ManufacturingLine, edit LinePatch) {
	if edit.IngredientID != nil {
		line.IngredientID = *edit.IngredientID
	}
	if edit.IngredientName != nil {
		line.IngredientName = *edit.IngredientName
	}
	if edit.Quantity != nil {
		line.Quantity = *edit.Quantity
	}
	if edit.Unit != nil {
		line.Unit = *edit.Unit
	}
	line.Shrinkage = mergeOptional(line.Shrinkage, edit.Shrinkage, edit.ClearShrinkage)
}

// mergeOptional applies set-or-clear semantics; a value wins over clear
func mergeOptional(current decimal.NullDecimal, value *decimal.Decimal, clear bool) decimal.NullDecimal {
	if value != nil {
		return decimal.NewNullDecimal(*value)
	}
	if clear {
		return decimal.NullDecimal{}
	}
	return current
}
