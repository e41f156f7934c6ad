package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/obrador/fabricacion/pkg/application/services/costing"
	"github.com/obrador/fabricacion/pkg/application/services/pricing"
	"github.com/obrador/fabricacion/pkg/application/services/recompute"
	"github.com/obrador/fabricacion/pkg/infrastructure/repositories/sqlite"
	"github.com/obrador/fabricacion/pkg/interfaces/cli/output"
)

// CostConfig holds configuration for the cost command
type CostConfig struct {
	Inputs     InputFiles
	OutputDir  string
	Format     string
	SnapshotDB string // empty skips persistence
	Currency   string
	Verbose    bool
	Out        io.Writer
}

// CostCommand resolves prices and computes every job's cost sheet
type CostCommand struct {
	config CostConfig
	logger *zap.Logger
}

// NewCostCommand creates a new cost command with the given configuration
func NewCostCommand(config CostConfig, logger *zap.Logger) *CostCommand {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostCommand{
		config: config,
		logger: logger,
	}
}

// Execute runs the cost command. Rejected jobs are reported, not returned as errors.
func (c *CostCommand) Execute(ctx context.Context) error {
	files, err := c.config.Inputs.resolve(true)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	ingredients, err := loadIngredients(files.Ingredients)
	if err != nil {
		return fmt.Errorf("error loading ingredients: %w", err)
	}

	jobs, err := loadJobs(files.Jobs, files.Lines)
	if err != nil {
		return fmt.Errorf("error loading jobs: %w", err)
	}

	c.logger.Debug("inputs loaded",
		zap.String("ingredients_file", files.Ingredients),
		zap.String("jobs_file", files.Jobs),
		zap.Int("ingredients", len(ingredients)),
		zap.Int("jobs", len(jobs)),
	)

	engine := costing.NewEngine(costing.Config{DefaultCurrency: c.config.Currency})
	coordinator := recompute.NewInMemoryCoordinator(engine, c.logger)

	startTime := time.Now()
	coordinator.ReplaceCatalog(pricing.NewResolver().BuildCatalog(ingredients))
	report := coordinator.RecomputeAll(jobs)
	results := coordinator.Results()
	c.logger.Debug("cost computation completed", zap.Duration("elapsed", time.Since(startTime)))

	if c.config.SnapshotDB != "" {
		db, err := sqlite.OpenMigrated(c.config.SnapshotDB)
		if err != nil {
			return fmt.Errorf("error opening snapshot database: %w", err)
		}
		defer db.Close()

		if err := sqlite.NewSnapshotRepository(db).ReplaceSnapshots(ctx, results); err != nil {
			return fmt.Errorf("error saving snapshots: %w", err)
		}
		c.logger.Info("snapshots saved", zap.String("db", c.config.SnapshotDB), zap.Int("results", len(results)))
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.GenerateResults(c.config.Out, results, report, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	return nil
}
