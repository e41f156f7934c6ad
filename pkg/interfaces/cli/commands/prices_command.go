package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/obrador/fabricacion/pkg/application/services/pricing"
	"github.com/obrador/fabricacion/pkg/interfaces/cli/output"
)

// PricesConfig holds configuration for the prices command
type PricesConfig struct {
	Inputs    InputFiles
	OutputDir string
	Format    string
	Verbose   bool
	Out       io.Writer
}

// PricesCommand resolves the cheapest valid price of every ingredient
type PricesCommand struct {
	config   PricesConfig
	resolver *pricing.Resolver
	logger   *zap.Logger
}

// NewPricesCommand creates a new prices command with the given configuration
func NewPricesCommand(config PricesConfig, logger *zap.Logger) *PricesCommand {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricesCommand{
		config:   config,
		resolver: pricing.NewResolver(),
		logger:   logger,
	}
}

// Execute runs the prices command
func (c *PricesCommand) Execute(ctx context.Context) error {
	files, err := c.config.Inputs.resolve(false)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	ingredients, err := loadIngredients(files.Ingredients)
	if err != nil {
		return fmt.Errorf("error loading ingredients: %w", err)
	}
	c.logger.Debug("ingredients loaded", zap.String("file", files.Ingredients), zap.Int("ingredients", len(ingredients)))

	catalog := c.resolver.BuildCatalog(ingredients)
	if unpriced := len(ingredients) - len(catalog); unpriced > 0 {
		c.logger.Info("ingredients without a valid offer", zap.Int("count", unpriced))
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.GenerateCatalog(c.config.Out, catalog, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	return nil
}
