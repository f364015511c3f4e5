package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kwheeler/garage/internal/config"
	"github.com/kwheeler/garage/internal/database"
	"github.com/kwheeler/garage/internal/repository"
	"github.com/kwheeler/garage/internal/services"
	"github.com/kwheeler/garage/internal/storage"
	"github.com/kwheeler/garage/internal/transfer"
)

var rootCmd = &cobra.Command{
	Use:   "garage",
	Short: "Track vehicle maintenance tasks, completions and costs",
	Long: `garage is a local vehicle maintenance tracker: define time- or
distance-based maintenance tasks, log completions against the odometer,
and review cost and frequency statistics.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components one command invocation needs.
type app struct {
	config     config.Config
	repository repository.TaskRepository
	tasks      *services.TaskService
	codec      *transfer.Codec
	close      func()
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	configureLogging(cfg.LogLevel)

	var store storage.Store
	closer := func() {}

	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		store = storage.NewSQLiteStore(db)
		closer = func() { db.Close() }
	case config.BackendFile:
		fileStore, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		store = fileStore
	}

	taskRepository := repository.NewTaskRepository(store)
	return &app{
		config:     cfg,
		repository: taskRepository,
		tasks:      services.NewTaskService(taskRepository),
		codec:      transfer.NewCodec(taskRepository),
		close:      closer,
	}, nil
}

func configureLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}
