package recompute

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/obrador/fabricacion/pkg/application/dto"
	"github.com/obrador/fabricacion/pkg/application/services/costing"
	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/obrador/fabricacion/pkg/domain/repositories"
	"github.com/obrador/fabricacion/pkg/infrastructure/events"
	"github.com/obrador/fabricacion/pkg/infrastructure/repositories/memory"
)

// Recomputation triggers recorded on job events
const (
	TriggerBulk    = "bulk"
	TriggerEdit    = "edit"
	TriggerReprice = "reprice"
)

// Coordinator owns the current price catalog and the computed result of every job.
// Writers are serialized by the coordinator; between independent callers the last write wins.
type Coordinator struct {
	mu          sync.Mutex
	engine      *costing.Engine
	catalogRepo repositories.CatalogRepository
	resultRepo  repositories.ResultRepository
	eventStore  events.EventStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewCoordinator creates a coordinator over the given stores. A nil logger disables logging.
func NewCoordinator(
	engine *costing.Engine,
	catalogRepo repositories.CatalogRepository,
	resultRepo repositories.ResultRepository,
	eventStore events.EventStore,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		engine:      engine,
		catalogRepo: catalogRepo,
		resultRepo:  resultRepo,
		eventStore:  eventStore,
		logger:      logger,
		now:         time.Now,
	}
}

// NewInMemoryCoordinator creates a coordinator backed by fresh in-memory stores
func NewInMemoryCoordinator(engine *costing.Engine, logger *zap.Logger) *Coordinator {
	return NewCoordinator(
		engine,
		memory.NewCatalogRepository(),
		memory.NewResultRepository(0),
		events.NewInMemoryEventStore(),
		logger,
	)
}

// ReplaceCatalog swaps the whole catalog. Stored results are not recomputed; call Reprice for that.
func (c *Coordinator) ReplaceCatalog(catalog entities.PriceCatalog) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.catalogRepo.ReplaceCatalog(catalog)
	c.publish(events.CatalogStream, events.NewCatalogReplacedEvent(catalog, c.now()))
	c.logger.Info("price catalog replaced", zap.Int("entries", len(catalog)))
}

// Catalog returns a copy of the current catalog
func (c *Coordinator) Catalog() entities.PriceCatalog {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.catalogRepo.Catalog().Clone()
}

// RecomputeAll computes every job against the current catalog and replaces the whole
// result set. A rejected job is stored as rejected and does not stop the others.
// When a job id repeats, the first occurrence is computed and later ones are skipped.
func (c *Coordinator) RecomputeAll(jobs []entities.ManufacturingJobParams) dto.RecomputeReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	catalog := c.catalogRepo.Catalog()
	results := make([]entities.ManufacturingResult, 0, len(jobs))
	seen := make(map[entities.JobID]bool, len(jobs))
	var report dto.RecomputeReport

	for _, job := range jobs {
		if seen[job.ID] {
			report.Skip(job.ID, "duplicate job id")
			c.logger.Warn("duplicate job skipped", zap.String("job_id", string(job.ID)))
			continue
		}
		seen[job.ID] = true

		result, err := c.evaluate(job, catalog, TriggerBulk)
		results = append(results, result)
		report.Add(result, err)
	}

	c.resultRepo.ReplaceAll(results)
	c.logger.Info("recomputed all jobs",
		zap.Int("jobs", report.Total()),
		zap.Int("complete", report.Complete),
		zap.Int("incomplete", report.Incomplete),
		zap.Int("rejected", report.Rejected),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report
}

// Recompute applies patch to a stored job and recomputes only that job.
// The second return value is false, with no error, when the job is unknown.
// A rejected computation is stored and its error returned.
func (c *Coordinator) Recompute(jobID entities.JobID, patch JobPatch) (entities.ManufacturingResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, ok := c.resultRepo.GetResult(jobID)
	if !ok {
		c.logger.Debug("recompute skipped for unknown job", zap.String("job_id", string(jobID)))
		return entities.ManufacturingResult{}, false, nil
	}

	result, err := c.evaluate(MergeParams(previous, patch), c.catalogRepo.Catalog(), TriggerEdit)
	c.resultRepo.SaveResult(result)
	return result, true, err
}

// Reprice recomputes every stored job, as entered, against the current catalog
func (c *Coordinator) Reprice() dto.RecomputeReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	catalog := c.catalogRepo.Catalog()
	var report dto.RecomputeReport
	for _, previous := range c.resultRepo.GetAllResults() {
		result, err := c.evaluate(previous.Params(), catalog, TriggerReprice)
		c.resultRepo.SaveResult(result)
		report.Add(result, err)
	}
	return report
}

// Remove drops a job's result. It reports whether the job was present.
func (c *Coordinator) Remove(jobID entities.JobID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.resultRepo.DeleteResult(jobID) {
		return false
	}
	c.publish(string(jobID), events.NewJobRemovedEvent(jobID, c.now()))
	return true
}

// Result returns the current result for a job
func (c *Coordinator) Result(jobID entities.JobID) (entities.ManufacturingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.resultRepo.GetResult(jobID)
}

// Results returns every current result
func (c *Coordinator) Results() []entities.ManufacturingResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.resultRepo.GetAllResults()
}

// History returns the recorded events of one job, oldest first
func (c *Coordinator) History(jobID entities.JobID) ([]events.Event, error) {
	return c.eventStore.ReadEvents(string(jobID), 1)
}

// evaluate runs the engine, records the outcome event and logs it. Callers hold c.mu
// and decide how the result is stored.
func (c *Coordinator) evaluate(params entities.ManufacturingJobParams, catalog entities.PriceCatalog, trigger string) (entities.ManufacturingResult, error) {
	result, err := c.engine.Compute(params, catalog)

	if result.JobID != "" {
		c.publish(string(result.JobID), events.NewJobResultEvent(result, trigger))
	}

	if err != nil {
		c.logger.Warn("job rejected",
			zap.String("job_id", string(result.JobID)),
			zap.String("trigger", trigger),
			zap.Error(err),
		)
		return result, err
	}
	c.logger.Debug("job computed",
		zap.String("job_id", string(result.JobID)),
		zap.String("trigger", trigger),
		zap.Stringer("status", result.Status),
		zap.String("unit_cost", result.UnitCost.String()),
	)
	return result, nil
}

func (c *Coordinator) publish(streamID string, event events.Event) {
	if err := c.eventStore.AppendEvent(streamID, event); err != nil {
		c.logger.Warn("failed to record event", zap.String("type", event.Type()), zap.Error(err))
	}
}
