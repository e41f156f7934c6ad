package repositories

import "github.com/obrador/fabricacion/pkg/domain/entities"

// ResultRepository provides access to the computed manufacturing results, one per job
type ResultRepository interface {
	GetResult(jobID entities.JobID) (entities.ManufacturingResult, bool)
	GetAllResults() []entities.ManufacturingResult
	SaveResult(result entities.ManufacturingResult)
	DeleteResult(jobID entities.JobID) bool
	ReplaceAll(results []entities.ManufacturingResult)
}
