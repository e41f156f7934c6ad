package memory

import (
	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/obrador/fabricacion/pkg/domain/repositories"
)

// ResultRepository provides in-memory storage of manufacturing results in insertion order
type ResultRepository struct {
	results    []entities.ManufacturingResult
	resultsMap map[entities.JobID]int
}

// NewResultRepository creates a new in-memory result repository
func NewResultRepository(expectedJobs int) *ResultRepository {
	return &ResultRepository{
		results:    make([]entities.ManufacturingResult, 0, expectedJobs),
		resultsMap: make(map[entities.JobID]int, expectedJobs),
	}
}

// Verify interface compliance
var _ repositories.ResultRepository = (*ResultRepository)(nil)

// GetResult returns the stored result for a job
func (r *ResultRepository) GetResult(jobID entities.JobID) (entities.ManufacturingResult, bool) {
	index, exists := r.resultsMap[jobID]
	if !exists {
		return entities.ManufacturingResult{}, false
	}
	return r.results[index], true
}

// GetAllResults returns all stored results in insertion order
func (r *ResultRepository) GetAllResults() []entities.ManufacturingResult {
	results := make([]entities.ManufacturingResult, len(r.results))
	copy(results, r.results)
	return results
}

// SaveResult stores a result, replacing any previous result for the same job in place
func (r *ResultRepository) SaveResult(result entities.ManufacturingResult) {
	if index, exists := r.resultsMap[result.JobID]; exists {
		r.results[index] = result
		return
	}
	r.resultsMap[result.JobID] = len(r.results)
	r.results = append(r.results, result)
}

// DeleteResult removes a job's result. It reports whether the job was present.
func (r *ResultRepository) DeleteResult(jobID entities.JobID) bool {
	index, exists := r.resultsMap[jobID]
	if !exists {
		return false
	}

	r.results = append(r.results[:index], r.results[index+1:]...)
	delete(r.resultsMap, jobID)
	for i := index; i < len(r.results); i++ {
		r.resultsMap[r.results[i].JobID] = i
	}
	return true
}

// ReplaceAll discards every stored result and stores results instead
func (r *ResultRepository) ReplaceAll(results []entities.ManufacturingResult) {
	r.results = make([]entities.ManufacturingResult, 0, len(results))
	r.resultsMap = make(map[entities.JobID]int, len(results))
	for _, result := range results {
		r.SaveResult(result)
	}
}
