package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/diggerhq/tasklink"
	"github.com/diggerhq/tasklink/pkg/ci"
	"github.com/diggerhq/tasklink/pkg/ci/github"
	"github.com/diggerhq/tasklink/pkg/ci/github/models"
	"github.com/diggerhq/tasklink/pkg/dispatch"
	"github.com/diggerhq/tasklink/pkg/inputs"
	"github.com/diggerhq/tasklink/pkg/orchestrator"
	"github.com/diggerhq/tasklink/pkg/tracker/asana"
	"github.com/diggerhq/tasklink/pkg/usage"
	"github.com/spf13/cobra"
)

var runInputs *inputs.Inputs

var envFile string

// runAction dispatches the configured action for the event of the run and
// publishes its outputs. Failed per-task outcomes are logged, not returned.
func runAction(ctx context.Context, in inputs.Source, runner models.RunnerEnv, dispatcher dispatch.Dispatcher, writer ci.OutputWriter) (*orchestrator.Result, error) {
	action, err := in.Required("action")
	if err != nil {
		return nil, err
	}

	ghAction, err := models.LoadGitHubContext(runner)
	if err != nil {
		return nil, fmt.Errorf("failed to load GitHub context: %v", err)
	}
	event, err := ghAction.ToEventContext()
	if err != nil {
		return nil, inputs.NewConfigurationError("failed to parse %v event: %v", ghAction.EventName, err)
	}
	slog.Info("GitHub context parsed successfully", "event", event.Name, "kind", event.Kind.String(), "repository", ghAction.Repository)

	result, err := dispatcher.Dispatch(ctx, dispatch.Request{Action: action, Inputs: in, Event: event})
	if err != nil {
		return nil, err
	}

	for key, value := range result.Outputs {
		if err := writer.SetOutput(key, value); err != nil {
			slog.Warn("could not set step output", "key", key, "error", err)
		}
	}
	for _, outcome := range result.Failed() {
		slog.Error("task operation failed",
			"operation", outcome.Operation,
			"projectId", outcome.Reference.ProjectId,
			"taskId", outcome.Reference.TaskId,
			"error", outcome.Err,
		)
	}
	slog.Info("action completed",
		"action", result.Action,
		"succeeded", len(result.Succeeded()),
		"failed", len(result.Failed()),
	)
	return result, nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the action selected by the action input for the current workflow event",
	Run: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			if err := inputs.LoadEnvFile(envFile); err != nil {
				usage.ReportErrorAndExit(err.Error(), 1)
			}
		}
		usage.InitSentry(os.Getenv("SENTRY_DSN"), Version)

		runner, err := models.ParseRunnerEnv()
		if err != nil {
			usage.ReportErrorAndExit(err.Error(), 2)
		}

		dispatcher := dispatch.Dispatcher{
			TrackerProvider:       asana.AsanaServiceProvider{BaseUrl: os.Getenv("ASANA_BASE_URL")},
			SourceControlProvider: github.GithubServiceProviderBasic{},
		}
		writer := github.StepOutputWriter{Path: runner.OutputPath}

		_, err = runAction(cmd.Context(), runInputs, *runner, dispatcher, writer)
		if err != nil {
			if inputs.IsConfigurationError(err) {
				usage.ReportErrorAndExit(err.Error(), 1)
			}
			usage.ReportErrorAndExit(err.Error(), 3)
		}
	},
}

func init() {
	declarations, err := inputs.ParseDeclarations(tasklink.ActionMetadata)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded action.yml: %v", err))
	}
	runInputs = inputs.New(declarations)
	runInputs.BindFlags(runCmd.Flags())
	runCmd.Flags().StringVar(&envFile, "env-file", "", "Load inputs from a dotenv file, variables already set win")

	rootCmd.AddCommand(runCmd)
}
