package memory

import (
	"testing"

	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

func TestResultRepository_SaveResult(t *testing.T) {
	repo := NewResultRepository(2)

	repo.SaveResult(entities.ManufacturingResult{JobID: "JOB1", Name: "Bizcocho"})
	repo.SaveResult(entities.ManufacturingResult{JobID: "JOB2", Name: "Galletas"})

	retrieved, ok := repo.GetResult("JOB1")
	if !ok {
		t.Fatal("Expected JOB1 to be stored")
	}
	if retrieved.Name != "Bizcocho" {
		t.Errorf("Expected name Bizcocho, got %s", retrieved.Name)
	}

	if _, ok := repo.GetResult("MISSING"); ok {
		t.Error("Expected missing job to be absent")
	}
}

func TestResultRepository_SaveResult_ReplacesInPlace(t *testing.T) {
	repo := NewResultRepository(2)

	repo.SaveResult(entities.ManufacturingResult{JobID: "JOB1", UnitCost: decimal.NewFromInt(1)})
	repo.SaveResult(entities.ManufacturingResult{JobID: "JOB2", UnitCost: decimal.NewFromInt(2)})
	repo.SaveResult(entities.ManufacturingResult{JobID: "JOB1", UnitCost: decimal.NewFromInt(3)})

	all := repo.GetAllResults()
	if len(all) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(all))
	}
	if all[0].JobID != "JOB1" || !all[0].UnitCost.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected JOB1 replaced in place with unit cost 3, got %s %s", all[0].JobID, all[0].UnitCost)
	}
}

func TestResultRepository_DeleteResult(t *testing.T) {
	repo := NewResultRepository(3)
	for _, id := range []entities.JobID{"A", "B", "C"} {
		repo.SaveResult(entities.ManufacturingResult{JobID: id})
	}

	if !repo.DeleteResult("A") {
		t.Fatal("Expected A to be deleted")
	}
	if repo.DeleteResult("A") {
		t.Error("Expected second delete of A to report absence")
	}

	result, ok := repo.GetResult("C")
	if !ok || result.JobID != "C" {
		t.Errorf("Expected C to stay reachable after reindexing, got %v %v", result.JobID, ok)
	}
	if len(repo.GetAllResults()) != 2 {
		t.Errorf("Expected 2 results after delete, got %d", len(repo.GetAllResults()))
	}
}

func TestResultRepository_ReplaceAll(t *testing.T) {
	repo := NewResultRepository(2)
	repo.SaveResult(entities.ManufacturingResult{JobID: "OLD"})

	repo.ReplaceAll([]entities.ManufacturingResult{{JobID: "NEW1"}, {JobID: "NEW2"}})

	if _, ok := repo.GetResult("OLD"); ok {
		t.Error("Expected OLD to be discarded")
	}
	if len(repo.GetAllResults()) != 2 {
		t.Errorf("Expected 2 results, got %d", len(repo.GetAllResults()))
	}
}

func TestCatalogRepository_ReplaceCatalog(t *testing.T) {
	repo := NewCatalogRepository()
	if len(repo.Catalog()) != 0 {
		t.Fatalf("Expected empty catalog, got %d entries", len(repo.Catalog()))
	}

	catalog := entities.NewPriceCatalog([]entities.IngredientPriceEntry{
		{IngredientID: "FLOUR", UnitPrice: decimal.NewFromInt(2)},
	})
	repo.ReplaceCatalog(catalog)

	// Mutating the caller's map must not leak into the stored catalog
	delete(catalog, "FLOUR")
	if _, ok := repo.Catalog().Lookup("FLOUR"); !ok {
		t.Error("Expected stored catalog to be a copy")
	}

	repo.ReplaceCatalog(nil)
	if repo.Catalog() == nil || len(repo.Catalog()) != 0 {
		t.Error("Expected nil replacement to leave an empty catalog")
	}
}
