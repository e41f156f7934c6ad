package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/obrador/fabricacion/pkg/infrastructure/config"
	"github.com/obrador/fabricacion/pkg/infrastructure/logging"
	"github.com/obrador/fabricacion/pkg/interfaces/cli/commands"
)

// app carries state shared by every subcommand once the root pre-run has loaded it
type app struct {
	configFile string
	envFiles   []string
	logLevel   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "fabricacion",
		Short:         "Manufacturing cost and pricing engine",
		Long:          "Resolves the cheapest valid supplier price of every ingredient and derives\nthe cost sheet and suggested sale price of each manufacturing job.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: fabricacion.yaml in ./configs or .)")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, ".env files to load (default: ./.env)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newPricesCommand(a), newCostCommand(a), newServeCommand(a))
	return root
}

func (a *app) load() error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func addInputFlags(cmd *cobra.Command, inputs *commands.InputFiles, withJobs bool) {
	flags := cmd.Flags()
	flags.StringVar(&inputs.ScenarioDir, "scenario", "", "directory containing ingredients.csv, jobs.csv and lines.csv")
	flags.StringVar(&inputs.Ingredients, "ingredients", "", "ingredients file (.csv, .json, .yaml)")
	if withJobs {
		flags.StringVar(&inputs.Jobs, "jobs", "", "jobs file (.csv, .json, .yaml)")
		flags.StringVar(&inputs.Lines, "lines", "", "lines CSV file for a CSV jobs file")
	}
}

func newPricesCommand(a *app) *cobra.Command {
	var (
		inputs    commands.InputFiles
		format    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Resolve the cheapest valid price of every ingredient",
		Example: `  fabricacion prices --ingredients ingredients.csv
  fabricacion prices --scenario examples/panaderia --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewPricesCommand(commands.PricesConfig{
				Inputs:    inputs,
				Format:    format,
				OutputDir: outputDir,
				Verbose:   a.verbose,
				Out:       cmd.OutOrStdout(),
			}, a.logger).Execute(cmd.Context())
		},
	}

	addInputFlags(cmd, &inputs, false)
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, csv")
	cmd.Flags().StringVar(&outputDir, "output", "", "output directory for results (optional)")
	return cmd
}

func newCostCommand(a *app) *cobra.Command {
	var (
		inputs     commands.InputFiles
		format     string
		outputDir  string
		snapshotDB string
		currency   string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Compute the cost sheet and suggested price of every job",
		Example: `  fabricacion cost --scenario examples/panaderia --verbose
  fabricacion cost --ingredients ingredients.csv --jobs jobs.yaml --format xlsx --output results/
  fabricacion cost --scenario examples/panaderia --snapshot-db fabricacion.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("currency") {
				currency = a.cfg.Pricing.Currency
			}
			if !cmd.Flags().Changed("snapshot-db") {
				snapshotDB = a.cfg.Snapshot.DBPath
			}
			return commands.NewCostCommand(commands.CostConfig{
				Inputs:     inputs,
				Format:     format,
				OutputDir:  outputDir,
				SnapshotDB: snapshotDB,
				Currency:   currency,
				Verbose:    a.verbose,
				Out:        cmd.OutOrStdout(),
			}, a.logger).Execute(cmd.Context())
		},
	}

	addInputFlags(cmd, &inputs, true)
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, csv, xlsx")
	cmd.Flags().StringVar(&outputDir, "output", "", "output directory for results (required for xlsx)")
	cmd.Flags().StringVar(&snapshotDB, "snapshot-db", "", "SQLite file to store result snapshots in")
	cmd.Flags().StringVar(&currency, "currency", "", "currency reported when no priced line carries one")
	return cmd
}

func newServeCommand(a *app) *cobra.Command {
	var inputs commands.InputFiles

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		Example: `  fabricacion serve --addr :8080
  fabricacion serve --scenario examples/panaderia --config configs/fabricacion.yaml
  fabricacion serve --ingredients ingredients.csv --snapshot-db fabricacion.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewServeCommand(a.serveConfig(cmd, inputs), a.logger).Execute(cmd.Context())
		},
	}

	addInputFlags(cmd, &inputs, true)
	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	cmd.Flags().String("snapshot-db", "", "SQLite file to restore and store result snapshots (default from snapshot.db_path)")
	return cmd
}

// serveConfig merges the serve flags over the loaded configuration; unset flags keep the config value
func (a *app) serveConfig(cmd *cobra.Command, inputs commands.InputFiles) commands.ServeConfig {
	return commands.ServeConfig{
		Addr:            flagOrConfig(cmd, "addr", a.cfg.Server.Addr),
		ReadTimeout:     a.cfg.Server.ReadTimeout,
		WriteTimeout:    a.cfg.Server.WriteTimeout,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		Inputs:          inputs,
		SnapshotDB:      flagOrConfig(cmd, "snapshot-db", a.cfg.Snapshot.DBPath),
		Currency:        a.cfg.Pricing.Currency,
		EventLimit:      a.cfg.Events.Limit,
	}
}

// flagOrConfig returns the named string flag when it was set on the command line, else fallback
func flagOrConfig(cmd *cobra.Command, name, fallback string) string {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return fallback
	}
	return value
}
