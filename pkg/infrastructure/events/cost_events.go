package events

import (
	"time"

	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

const (
	CatalogReplacedEvent = "catalog.replaced"

	JobComputedEvent = "job.computed"
	JobRejectedEvent = "job.rejected"
	JobRemovedEvent  = "job.removed"

	// CatalogStream carries catalog events; job events use the job id as stream
	CatalogStream = "catalog"
)

type CatalogReplaced struct {
	Entries int `json:"entries"`
}

// JobComputed summarizes a stored result; the full breakdown stays in the result repository
type JobComputed struct {
	JobID          entities.JobID        `json:"job_id"`
	Trigger        string                `json:"trigger"`
	Status         entities.ResultStatus `json:"status"`
	BatchCost      decimal.Decimal       `json:"batch_cost"`
	UnitCost       decimal.Decimal       `json:"unit_cost"`
	SuggestedPrice decimal.NullDecimal   `json:"suggested_price"`
}

type JobRejected struct {
	JobID   entities.JobID   `json:"job_id"`
	Trigger string           `json:"trigger"`
	Failure entities.Failure `json:"failure"`
}

type JobRemoved struct {
	JobID entities.JobID `json:"job_id"`
}

func NewCatalogReplacedEvent(catalog entities.PriceCatalog, at time.Time) Event {
	return NewEventAt(CatalogReplacedEvent, CatalogStream, CatalogReplaced{Entries: len(catalog)}, at)
}

// NewJobResultEvent records a computation outcome; rejected results produce JobRejectedEvent
func NewJobResultEvent(result entities.ManufacturingResult, trigger string) Event {
	if result.IsRejected() && result.Failure != nil {
		return NewEventAt(JobRejectedEvent, string(result.JobID), JobRejected{
			JobID:   result.JobID,
			Trigger: trigger,
			Failure: *result.Failure,
		}, result.LastCalculatedAt)
	}

	return NewEventAt(JobComputedEvent, string(result.JobID), JobComputed{
		JobID:          result.JobID,
		Trigger:        trigger,
		Status:         result.Status,
		BatchCost:      result.BatchCost,
		UnitCost:       result.UnitCost,
		SuggestedPrice: result.SuggestedPrice,
	}, result.LastCalculatedAt)
}

func NewJobRemovedEvent(jobID entities.JobID, at time.Time) Event {
	return NewEventAt(JobRemovedEvent, string(jobID), JobRemoved{JobID: jobID}, at)
}
