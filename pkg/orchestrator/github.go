package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/diggerhq/tasklink/pkg/inputs"
	"github.com/diggerhq/tasklink/pkg/references"
)

const taskUrlFormat = "https://app.asana.com/0/%s/%s/f"

// CheckPullRequestMembership flags pull requests opened from outside the
// organisation that owns the base repository.
func (o *Orchestrator) CheckPullRequestMembership(ctx context.Context) (*Result, error) {
	pr, err := o.pullRequest("check-pr-membership")
	if err != nil {
		return nil, err
	}
	slog.Info("checking pull request membership", "author", pr.Author, "org", pr.BaseOwner)

	result := newResult()
	if pr.HeadOwner == pr.BaseOwner {
		slog.Info("pull request author belongs to the organisation", "author", pr.Author, "org", pr.BaseOwner)
		result.Outputs["external"] = "false"
	} else {
		slog.Info("pull request author does not belong to the organisation", "author", pr.Author, "org", pr.BaseOwner)
		result.Outputs["external"] = "true"
	}
	return result, nil
}

// GetLatestRelease publishes the latest release tag. Failing to find it fails the run.
func (o *Orchestrator) GetLatestRelease(ctx context.Context) (*Result, error) {
	token, err := o.Inputs.Required("github-pat")
	if err != nil {
		return nil, err
	}
	org, err := o.Inputs.Required("github-org")
	if err != nil {
		return nil, err
	}
	repo, err := o.Inputs.Required("github-repository")
	if err != nil {
		return nil, err
	}
	scm, err := o.SourceControlProvider.NewService(token)
	if err != nil {
		return nil, fmt.Errorf("could not create github client: %v", err)
	}

	version, err := scm.GetLatestRelease(ctx, org, repo)
	if err != nil {
		slog.Error("can't find latest version", "repo", repo, "error", err)
		return nil, fmt.Errorf("can't find latest version for %v", repo)
	}
	slog.Info("latest version found", "repo", repo, "version", version)

	result := newResult()
	result.Outputs["version"] = version
	return result, nil
}

// AddTaskToPullRequestDescription prefixes the pull request body with the task url.
func (o *Orchestrator) AddTaskToPullRequestDescription(ctx context.Context) (*Result, error) {
	org, err := o.Inputs.Required("github-org")
	if err != nil {
		return nil, err
	}
	repo, err := o.Inputs.Required("github-repository")
	if err != nil {
		return nil, err
	}
	prInput, err := o.Inputs.Required("github-pr")
	if err != nil {
		return nil, err
	}
	prNumber, err := strconv.Atoi(prInput)
	if err != nil {
		return nil, &inputs.ConfigurationError{Input: "github-pr", Message: fmt.Sprintf("github-pr is not a number: %q", prInput)}
	}
	projectId, err := o.Inputs.Required("asana-project")
	if err != nil {
		return nil, err
	}
	taskId, err := o.Inputs.Required("asana-task-id")
	if err != nil {
		return nil, err
	}
	scm, err := o.SourceControlProvider.NewService(o.Inputs.Get("github-pat"))
	if err != nil {
		return nil, fmt.Errorf("could not create github client: %v", err)
	}

	ref := references.Reference{ProjectId: projectId, TaskId: taskId}
	result := newResult()
	result.Outcomes = o.runAll(ctx, []operation{{
		name:      "link pull request",
		reference: ref,
		run: func(ctx context.Context) error {
			body, err := scm.GetPullRequestBody(ctx, org, repo, prNumber)
			if err != nil {
				return err
			}
			return scm.UpdatePullRequestBody(ctx, org, repo, prNumber, PullRequestDescription(ref, body))
		},
	}})
	return result, nil
}

func PullRequestDescription(ref references.Reference, body string) string {
	taskMessage := "Task/Issue URL: " + fmt.Sprintf(taskUrlFormat, ref.ProjectId, ref.TaskId)
	return fmt.Sprintf("%s \n\n ----- \n%s", taskMessage, body)
}
