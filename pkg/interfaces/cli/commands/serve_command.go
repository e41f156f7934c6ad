package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/obrador/fabricacion/pkg/application/services/costing"
	"github.com/obrador/fabricacion/pkg/application/services/pricing"
	"github.com/obrador/fabricacion/pkg/application/services/recompute"
	"github.com/obrador/fabricacion/pkg/domain/entities"
	"github.com/obrador/fabricacion/pkg/domain/repositories"
	"github.com/obrador/fabricacion/pkg/infrastructure/events"
	"github.com/obrador/fabricacion/pkg/infrastructure/repositories/memory"
	"github.com/obrador/fabricacion/pkg/infrastructure/repositories/sqlite"
	"github.com/obrador/fabricacion/pkg/interfaces/api"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Inputs          InputFiles // optional preload
	SnapshotDB      string
	Currency        string
	EventLimit      int

	// Ready, when set, receives the bound listener address once the server accepts connections
	Ready chan<- string
}

// ServeCommand runs the HTTP API until its context is cancelled
type ServeCommand struct {
	config ServeConfig
	logger *zap.Logger
}

// NewServeCommand creates a new serve command with the given configuration
func NewServeCommand(config ServeConfig, logger *zap.Logger) *ServeCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServeCommand{
		config: config,
		logger: logger,
	}
}

// Execute starts the server and shuts it down gracefully when ctx is done
func (c *ServeCommand) Execute(ctx context.Context) error {
	engine := costing.NewEngine(costing.Config{DefaultCurrency: c.config.Currency})
	coordinator := recompute.NewCoordinator(
		engine,
		memory.NewCatalogRepository(),
		memory.NewResultRepository(0),
		events.NewBoundedEventStore(c.config.EventLimit),
		c.logger,
	)

	var snapshots repositories.SnapshotRepository
	if c.config.SnapshotDB != "" {
		db, err := sqlite.OpenMigrated(c.config.SnapshotDB)
		if err != nil {
			return fmt.Errorf("error opening snapshot database: %w", err)
		}
		defer db.Close()
		snapshots = sqlite.NewSnapshotRepository(db)
	}

	if err := c.preload(ctx, coordinator, snapshots); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         c.config.Addr,
		Handler:      api.NewServer(pricing.NewResolver(), coordinator, snapshots, c.logger).Routes(),
		ReadTimeout:  c.config.ReadTimeout,
		WriteTimeout: c.config.WriteTimeout,
	}

	listener, err := net.Listen("tcp", c.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.config.Addr, err)
	}
	c.logger.Info("listening", zap.String("addr", listener.Addr().String()))
	if c.config.Ready != nil {
		c.config.Ready <- listener.Addr().String()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	c.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// preload seeds the catalog and jobs from files, or the jobs from stored snapshots
// when no jobs file is given
func (c *ServeCommand) preload(ctx context.Context, coordinator *recompute.Coordinator, snapshots repositories.SnapshotRepository) error {
	inputs := c.config.Inputs
	if inputs.ScenarioDir == "" && inputs.Ingredients == "" {
		return nil
	}

	needJobs := inputs.Jobs != "" ||
		(inputs.ScenarioDir != "" && fileExists(filepath.Join(inputs.ScenarioDir, scenarioJobsFile)))
	files, err := inputs.resolve(needJobs)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	ingredients, err := loadIngredients(files.Ingredients)
	if err != nil {
		return fmt.Errorf("error loading ingredients: %w", err)
	}
	coordinator.ReplaceCatalog(pricing.NewResolver().BuildCatalog(ingredients))

	var jobs []entities.ManufacturingJobParams
	switch {
	case files.Jobs != "":
		if jobs, err = loadJobs(files.Jobs, files.Lines); err != nil {
			return fmt.Errorf("error loading jobs: %w", err)
		}
	case snapshots != nil:
		stored, err := snapshots.ListSnapshots(ctx)
		if err != nil {
			return fmt.Errorf("error loading snapshots: %w", err)
		}
		for _, result := range stored {
			jobs = append(jobs, result.Params())
		}
	}

	if len(jobs) == 0 {
		return nil
	}

	report := coordinator.RecomputeAll(jobs)
	if snapshots != nil {
		if err := snapshots.ReplaceSnapshots(ctx, coordinator.Results()); err != nil {
			return fmt.Errorf("error saving snapshots: %w", err)
		}
	}
	c.logger.Info("preloaded jobs", zap.Int("jobs", report.Total()), zap.Int("rejected", report.Rejected))
	return nil
}
