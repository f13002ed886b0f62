package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func runId() string {
	if id := os.Getenv("GITHUB_RUN_ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

func initLogger() {
	logLevel := os.Getenv("TASKLINK_LOG_LEVEL")
	var level slog.Leveler
	if logLevel == "DEBUG" {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With("run_id", runId())

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:     "tasklink",
	Short:   "Connects GitHub pull requests, issues and commits to Asana tasks",
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}
