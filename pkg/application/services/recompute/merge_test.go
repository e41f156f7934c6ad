package recompute

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/obrador/fabricacion/pkg/domain/entities"
)

func previousResult() entities.ManufacturingResult {
	return entities.ManufacturingResult{
		JobID:           "JOB1",
		Name:            "Croissant",
		BatchSize:       dec("24"),
		Shrinkage:       decimal.NewNullDecimal(dec("5")),
		LaborCost:       dec("40"),
		PackagingCost:   dec("6"),
		OverheadPercent: dec("12"),
		TargetMargin:    dec("60"),
		PostedPrice:     decimal.NewNullDecimal(dec("2.5")),
		Lines: []entities.LineCost{
			{LineID: "L1", IngredientID: "FLOUR", Quantity: dec("0.05"), Unit: "kg", EffectiveShrinkage: dec("5"), NetQuantity: dec("0.0475")},
			{LineID: "L2", IngredientID: "BUTTER", Quantity: dec("0.025"), Unit: "kg", LineShrinkage: decimal.NewNullDecimal(dec("2")), NetQuantity: dec("0.0245")},
		},
	}
}

func TestMergeParams_EmptyPatchKeepsEverything(t *testing.T) {
	params := MergeParams(previousResult(), JobPatch{})

	if params.ID != "JOB1" || params.Name != "Croissant" {
		t.Errorf("Expected identity kept, got %s %q", params.ID, params.Name)
	}
	if !params.BatchSize.Equal(dec("24")) || !params.LaborCost.Equal(dec("40")) {
		t.Error("Expected job figures kept")
	}
	if !params.Lines[0].Quantity.Equal(dec("0.05")) {
		t.Errorf("Expected original quantity 0.05, got %s", params.Lines[0].Quantity)
	}
	if !params.PostedPrice.Valid || !params.PostedPrice.Decimal.Equal(dec("2.5")) {
		t.Error("Expected posted price kept")
	}
}

func TestMergeParams_AppliesFieldsAndClears(t *testing.T) {
	name := "Croissant de mantequilla"
	params := MergeParams(previousResult(), JobPatch{
		Name:             &name,
		OverheadPercent:  decPtr("15"),
		ClearShrinkage:   true,
		ClearPostedPrice: true,
	})

	if params.Name != name {
		t.Errorf("Expected name %q, got %q", name, params.Name)
	}
	if !params.OverheadPercent.Equal(dec("15")) {
		t.Errorf("Expected overhead 15, got %s", params.OverheadPercent)
	}
	if params.Shrinkage.Valid {
		t.Error("Expected job shrinkage cleared")
	}
	if params.PostedPrice.Valid {
		t.Error("Expected posted price cleared")
	}
	if !params.TargetMargin.Equal(dec("60")) {
		t.Error("Expected untouched target margin")
	}
}

func TestMergeParams_ValueWinsOverClear(t *testing.T) {
	params := MergeParams(previousResult(), JobPatch{Shrinkage: decPtr("8"), ClearShrinkage: true})
	if !params.Shrinkage.Valid || !params.Shrinkage.Decimal.Equal(dec("8")) {
		t.Errorf("Expected shrinkage 8, got %v", params.Shrinkage)
	}
}

func TestMergeParams_LineEdits(t *testing.T) {
	unit := "g"
	params := MergeParams(previousResult(), JobPatch{
		LineEdits: []LinePatch{
			{LineID: "L1", Quantity: decPtr("50"), Unit: &unit, Shrinkage: decPtr("3")},
			{LineID: "L2", ClearShrinkage: true},
			{LineID: "NOPE", Quantity: decPtr("99")},
		},
	})

	if len(params.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(params.Lines))
	}
	l1, l2 := params.Lines[0], params.Lines[1]
	if !l1.Quantity.Equal(dec("50")) || l1.Unit != "g" {
		t.Errorf("Expected L1 50 g, got %s %s", l1.Quantity, l1.Unit)
	}
	if !l1.Shrinkage.Valid || !l1.Shrinkage.Decimal.Equal(dec("3")) {
		t.Errorf("Expected L1 shrinkage 3, got %v", l1.Shrinkage)
	}
	if l2.Shrinkage.Valid {
		t.Error("Expected L2 shrinkage override cleared")
	}
	if !l2.Quantity.Equal(dec("0.025")) {
		t.Errorf("Expected L2 quantity untouched, got %s", l2.Quantity)
	}
}

func TestMergeParams_ReplaceLines(t *testing.T) {
	replacement := []entities.ManufacturingLine{{ID: "N1", IngredientID: "SUGAR", Quantity: dec("0.01"), Unit: "kg"}}
	params := MergeParams(previousResult(), JobPatch{
		Lines:     replacement,
		LineEdits: []LinePatch{{LineID: "N1", Quantity: decPtr("0.02")}},
	})

	if len(params.Lines) != 1 || params.Lines[0].ID != "N1" {
		t.Fatalf("Expected lines replaced with N1, got %+v", params.Lines)
	}
	if !params.Lines[0].Quantity.Equal(dec("0.02")) {
		t.Errorf("Expected edit applied after replacement, got %s", params.Lines[0].Quantity)
	}
	if !replacement[0].Quantity.Equal(dec("0.01")) {
		t.Error("Expected the caller's line slice to stay untouched")
	}
}

func TestMergeParams_DoesNotAliasPreviousLines(t *testing.T) {
	previous := previousResult()
	MergeParams(previous, JobPatch{LineEdits: []LinePatch{{LineID: "L1", Quantity: decPtr("7")}}})

	if !previous.Lines[0].Quantity.Equal(dec("0.05")) {
		t.Error("Expected the previous result to stay untouched")
	}
}
