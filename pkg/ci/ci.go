package ci

import "context"

type SourceControlService interface {
	GetLatestRelease(ctx context.Context, owner string, repo string) (string, error)
	GetPullRequestBody(ctx context.Context, owner string, repo string, prNumber int) (string, error)
	UpdatePullRequestBody(ctx context.Context, owner string, repo string, prNumber int, body string) error
}

type SourceControlServiceProvider interface {
	NewService(token string) (SourceControlService, error)
}

// OutputWriter publishes step outputs of the action.
type OutputWriter interface {
	SetOutput(key string, value string) error
}
