package repositories

import (
	"context"
	"errors"

	"github.com/obrador/fabricacion/pkg/domain/entities"
)

// SnapshotRepository persists computed results verbatim for later display
type SnapshotRepository interface {
	SaveSnapshots(ctx context.Context, results []entities.ManufacturingResult) error
	// ReplaceSnapshots stores results as the complete set, dropping every other job
	ReplaceSnapshots(ctx context.Context, results []entities.ManufacturingResult) error
	GetSnapshot(ctx context.Context, jobID entities.JobID) (entities.ManufacturingResult, error)
	ListSnapshots(ctx context.Context) ([]entities.ManufacturingResult, error)
	DeleteSnapshot(ctx context.Context, jobID entities.JobID) error
}

// ErrSnapshotNotFound is returned when no snapshot exists for a job
var ErrSnapshotNotFound = errors.New("snapshot not found")
