package models

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RunnerEnv holds the default environment variables of a GitHub Actions runner.
// https://docs.github.com/en/actions/learn-github-actions/variables#default-environment-variables
type RunnerEnv struct {
	Actions    bool   `env:"GITHUB_ACTIONS"`
	Actor      string `env:"GITHUB_ACTOR"`
	Context    string `env:"GITHUB_CONTEXT"`
	EventName  string `env:"GITHUB_EVENT_NAME"`
	EventPath  string `env:"GITHUB_EVENT_PATH"`
	OutputPath string `env:"GITHUB_OUTPUT"`
	Repository string `env:"GITHUB_REPOSITORY"`
	RunId      string `env:"GITHUB_RUN_ID"`
}

func ParseRunnerEnv() (*RunnerEnv, error) {
	var runner RunnerEnv
	if err := env.Parse(&runner); err != nil {
		return nil, fmt.Errorf("could not parse runner environment: %v", err)
	}
	return &runner, nil
}
