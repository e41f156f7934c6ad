package dto

import "github.com/obrador/fabricacion/pkg/domain/entities"

// JobOutcome is the outcome of one job inside a bulk recomputation
type JobOutcome struct {
	JobID  entities.JobID        `json:"job_id"`
	Status entities.ResultStatus `json:"status"`
	Error  string                `json:"error,omitempty"`
}

// SkippedJob is an input job that was not computed
type SkippedJob struct {
	JobID  entities.JobID `json:"job_id"`
	Reason string         `json:"reason"`
}

// RecomputeReport summarizes a bulk recomputation
type RecomputeReport struct {
	Outcomes   []JobOutcome `json:"outcomes"`
	Complete   int          `json:"complete"`
	Incomplete int          `json:"incomplete"`
	Rejected   int          `json:"rejected"`
	Skipped    []SkippedJob `json:"skipped,omitempty"`
}

// Add records one job's outcome
func (r *RecomputeReport) Add(result entities.ManufacturingResult, err error) {
	outcome := JobOutcome{JobID: result.JobID, Status: result.Status}
	if err != nil {
		outcome.Error = err.Error()
	}
	r.Outcomes = append(r.Outcomes, outcome)

	switch result.Status {
	case entities.StatusComplete:
		r.Complete++
	case entities.StatusIncomplete:
		r.Incomplete++
	case entities.StatusRejected:
		r.Rejected++
	}
}

// Skip records a job left out of the result set
func (r *RecomputeReport) Skip(jobID entities.JobID, reason string) {
	r.Skipped = append(r.Skipped, SkippedJob{JobID: jobID, Reason: reason})
}

// Total is the number of jobs processed
func (r RecomputeReport) Total() int {
	return len(r.Outcomes)
}
