package cli

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradecoach/internal/challenges"
	"tradecoach/internal/config"
	"tradecoach/internal/logging"
	"tradecoach/internal/mentor"
	"tradecoach/internal/narrative"
	"tradecoach/internal/report"
	"tradecoach/internal/scoring"
	"tradecoach/internal/sentiment"
	"tradecoach/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-08-01"
)

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      store.DataStore
	Sentiment  sentiment.Provider
	Narrative  narrative.Generator
	Scoring    *scoring.Aggregator
	Mentor     *mentor.Engine
	Challenges *challenges.Engine
	Reports    *report.Builder
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Sentiment: sentiment.NopProvider{},
		Narrative: narrative.NopGenerator{},
	}

	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize store, most commands will be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store initialized")
	}

	if cfg.Sentiment.Enabled {
		cache, err := sentiment.NewRedisCache(sentiment.RedisConfig{
			Addr:     cfg.Sentiment.Addr,
			Password: cfg.Sentiment.Password,
			DB:       cfg.Sentiment.DB,
		})
		if err != nil {
			// Sentiment is an optional collaborator; detection degrades
			// to price-only patterns without it
			logger.Warn().Err(err).Msg("sentiment cache unavailable")
		} else {
			app.Sentiment = cache
			logger.Debug().Str("addr", cfg.Sentiment.Addr).Msg("sentiment cache connected")
		}
	}

	if cfg.Narrative.Enabled && cfg.Narrative.APIKey != "" {
		app.Narrative = narrative.NewOpenAIGenerator(cfg.Narrative.APIKey, cfg.Narrative.Model)
		logger.Debug().Str("model", cfg.Narrative.Model).Msg("narrative generator initialized")
	}

	if app.Store != nil {
		app.Scoring = scoring.NewAggregator(app.Store, logger)
		app.Mentor = mentor.NewEngine(app.Store, app.Sentiment, app.Narrative, logger)
		app.Reports = report.NewBuilder(app.Store, app.Sentiment, app.Narrative, logger)

		engine, err := challenges.NewEngine(app.Store, app.Sentiment, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("challenge engine unavailable")
		} else {
			app.Challenges = engine
		}
	}

	rootCmd := &cobra.Command{
		Use:   "tradecoach",
		Short: "TradeCoach - trading behavior analytics for paper traders",
		Long: `TradeCoach analyzes paper-trading behavior and coaches traders toward
better habits. It scores five behavioral dimensions over a rolling window,
detects risky patterns, awards badges, and runs improvement challenges.

Use 'tradecoach help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradecoach)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addServeCommand(rootCmd, app)
	addScoreCommands(rootCmd, app)
	addMentorCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addChallengeCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("TradeCoach v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			redacted := *app.Config
			redacted.Narrative.APIKey = logging.MaskSecret(redacted.Narrative.APIKey)
			redacted.Sentiment.Password = logging.MaskSecret(redacted.Sentiment.Password)
			if output.IsJSON() {
				return output.JSON(redacted)
			}
			return showConfig(output, &redacted)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Database")
	output.Printf("  Path:            %s\n", cfg.Database.Path)
	output.Println()

	output.Bold("Server")
	output.Printf("  Addr:            %s\n", cfg.Server.Addr)
	output.Println()

	output.Bold("Scheduler")
	output.Printf("  Enabled:         %v\n", cfg.Scheduler.Enabled)
	output.Printf("  Interval:        %s\n", cfg.Scheduler.Interval)
	output.Println()

	output.Bold("Sentiment Cache")
	output.Printf("  Enabled:         %v\n", cfg.Sentiment.Enabled)
	output.Printf("  Addr:            %s\n", cfg.Sentiment.Addr)
	output.Println()

	output.Bold("Narrative")
	output.Printf("  Enabled:         %v\n", cfg.Narrative.Enabled)
	output.Printf("  Model:           %s\n", cfg.Narrative.Model)
	if cfg.Narrative.APIKey != "" {
		output.Printf("  API Key:         %s\n", cfg.Narrative.APIKey)
	}
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v\n", cfg.Logging.File)

	return nil
}

var errStoreUnavailable = errors.New("data store unavailable, check database configuration")

// requireStore guards commands that need the data store.
func requireStore(app *App) error {
	if app.Store == nil {
		return errStoreUnavailable
	}
	return nil
}
