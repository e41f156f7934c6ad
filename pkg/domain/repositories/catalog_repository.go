package repositories

import "github.com/obrador/fabricacion/pkg/domain/entities"

// CatalogRepository holds the current price catalog as a single replaceable value
type CatalogRepository interface {
	Catalog() entities.PriceCatalog
	ReplaceCatalog(catalog entities.PriceCatalog)
}
