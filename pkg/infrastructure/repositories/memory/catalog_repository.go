package memory

import (
	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/obrador/fabricacion/pkg/domain/repositories"
)

// CatalogRepository provides in-memory storage for the current price catalog
type CatalogRepository struct {
	catalog entities.PriceCatalog
}

// NewCatalogRepository creates a repository holding an empty catalog
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{catalog: entities.PriceCatalog{}}
}

// Verify interface compliance
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// Catalog returns the current catalog. Callers must treat it as read-only.
func (r *CatalogRepository) Catalog() entities.PriceCatalog {
	return r.catalog
}

// ReplaceCatalog swaps in a copy of catalog as the current one
func (r *CatalogRepository) ReplaceCatalog(catalog entities.PriceCatalog) {
	if catalog == nil {
		r.catalog = entities.PriceCatalog{}
		return
	}
	r.catalog = catalog.Clone()
}
