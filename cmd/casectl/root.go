package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/config"
)

// Settings are the process-level options of casectl. Case storage is
// configured separately through config.WithEnv.
type Settings struct {
	EnvPrefix       string        `env:"CASECTL_ENV_PREFIX" env-default:""`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" env-default:"text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type app struct {
	envFile  string
	settings Settings
	logger   *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "casectl",
		Short:         "Browse and serve forensic case content",
		Long:          `casectl opens a case database and lists, walks or serves the images, file systems and files it holds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	// use stdout as default output for cmd.Print()
	root.SetOut(os.Stdout)
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load before reading settings")

	root.AddCommand(
		newServeCommand(a),
		newLsCommand(a),
		newWalkCommand(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", a.envFile, err)
		}
	}
	if err := cleanenv.ReadEnv(&a.settings); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.settings.LogLevel)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", a.settings.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(a.settings.LogFormat, "json") {
		a.logger = slog.New(slog.NewJSONHandler(stderr, opts))
	} else {
		a.logger = slog.New(slog.NewTextHandler(stderr, opts))
	}
	return nil
}

// openCase loads the case configuration from the environment and opens it.
func (a *app) openCase(ctx context.Context, reg prometheus.Registerer) (*simplecase.Case, *config.CaseConfig, error) {
	cfg, err := config.Load(config.WithEnv(a.settings.EnvPrefix))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	c, err := cfg.BuildCase(ctx, a.logger, reg)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("case opened", "database", cfg.DatabaseType, "storage", cfg.Storage.Type)
	return c, cfg, nil
}
