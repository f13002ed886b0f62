package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/diggerhq/tasklink/pkg/ci"
	"github.com/google/go-github/v61/github"
)

type GithubServiceProviderBasic struct {
	// HttpClient is used instead of http.DefaultClient when set
	HttpClient *http.Client
}

func (p GithubServiceProviderBasic) NewService(ghToken string) (ci.SourceControlService, error) {
	client := github.NewClient(p.HttpClient)
	if ghToken != "" {
		client = client.WithAuthToken(ghToken)
	}
	return GithubService{Client: client}, nil
}

type GithubService struct {
	Client *github.Client
}

func (svc GithubService) GetLatestRelease(ctx context.Context, owner string, repo string) (string, error) {
	release, _, err := svc.Client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		slog.Error("error getting latest release", "owner", owner, "repo", repo, "error", err)
		return "", fmt.Errorf("error getting latest release of %v/%v: %v", owner, repo, err)
	}
	return release.GetTagName(), nil
}

func (svc GithubService) GetPullRequestBody(ctx context.Context, owner string, repo string, prNumber int) (string, error) {
	pr, _, err := svc.Client.PullRequests.Get(ctx, owner, repo, prNumber)
	if err != nil {
		slog.Error("error getting pull request", "owner", owner, "repo", repo, "prNumber", prNumber, "error", err)
		return "", fmt.Errorf("error getting pull request %v: %v", prNumber, err)
	}
	return pr.GetBody(), nil
}

func (svc GithubService) UpdatePullRequestBody(ctx context.Context, owner string, repo string, prNumber int, body string) error {
	_, _, err := svc.Client.PullRequests.Edit(ctx, owner, repo, prNumber, &github.PullRequest{Body: &body})
	if err != nil {
		slog.Error("error updating pull request", "owner", owner, "repo", repo, "prNumber", prNumber, "error", err)
		return fmt.Errorf("error updating pull request %v: %v", prNumber, err)
	}
	return nil
}
