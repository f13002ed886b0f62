package models

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/diggerhq/tasklink/pkg/events"
	"github.com/google/go-github/v61/github"
)

// GithubAction is the subset of the `github` context of a workflow run we
// need. Event is kept raw until EventName is known.
type GithubAction struct {
	Actor           string          `json:"actor"`
	Event           json.RawMessage `json:"event"`
	EventName       string          `json:"event_name"`
	EventPath       string          `json:"event_path"`
	Repository      string          `json:"repository"`
	RepositoryOwner string          `json:"repository_owner"`
	RunId           string          `json:"run_id"`
}

func GetGitHubContext(ghContext string) (*GithubAction, error) {
	parsedGhContext := new(GithubAction)
	err := json.Unmarshal([]byte(ghContext), parsedGhContext)
	if err != nil {
		return &GithubAction{}, fmt.Errorf("error parsing GitHub context JSON: %v", err)
	}
	return parsedGhContext, nil
}

// LoadGitHubContext builds the context from the runner environment. The
// GITHUB_CONTEXT json wins when present, otherwise the payload is read from
// GITHUB_EVENT_PATH.
func LoadGitHubContext(runner RunnerEnv) (*GithubAction, error) {
	if runner.Context != "" {
		return GetGitHubContext(runner.Context)
	}

	action := &GithubAction{
		Actor:      runner.Actor,
		EventName:  runner.EventName,
		EventPath:  runner.EventPath,
		Repository: runner.Repository,
		RunId:      runner.RunId,
	}
	if runner.EventPath == "" {
		slog.Warn("GITHUB_EVENT_PATH is not set, running without an event payload")
		return action, nil
	}

	payload, err := os.ReadFile(runner.EventPath)
	if err != nil {
		return nil, fmt.Errorf("could not read event payload %v: %v", runner.EventPath, err)
	}
	action.Event = payload
	return action, nil
}

// ToEventContext decodes the raw event according to its name. Events the
// connector does not act on map to an Unknown context, not an error.
func (g *GithubAction) ToEventContext() (events.EventContext, error) {
	unknown := events.EventContext{Kind: events.Unknown, Name: g.EventName}
	if len(g.Event) == 0 {
		return unknown, nil
	}

	switch g.EventName {
	case "issues", "issue_comment":
		var event github.IssuesEvent
		if err := json.Unmarshal(g.Event, &event); err != nil {
			return unknown, fmt.Errorf("could not parse %v event: %v", g.EventName, err)
		}
		if event.Issue == nil {
			return unknown, fmt.Errorf("%v event has no issue", g.EventName)
		}
		ctx := events.NewIssueContext(events.Issue{
			Title: event.Issue.GetTitle(),
			Body:  event.Issue.GetBody(),
			URL:   event.Issue.GetHTMLURL(),
		})
		ctx.Name = g.EventName
		return ctx, nil
	case "pull_request", "pull_request_target", "pull_request_review":
		// the review payload carries the same pull_request object
		var event github.PullRequestEvent
		if err := json.Unmarshal(g.Event, &event); err != nil {
			return unknown, fmt.Errorf("could not parse %v event: %v", g.EventName, err)
		}
		if event.PullRequest == nil {
			return unknown, fmt.Errorf("%v event has no pull_request", g.EventName)
		}
		ctx := events.NewPullRequestContext(toPullRequest(event.PullRequest))
		ctx.Name = g.EventName
		return ctx, nil
	case "push":
		var event github.PushEvent
		if err := json.Unmarshal(g.Event, &event); err != nil {
			return unknown, fmt.Errorf("could not parse push event: %v", err)
		}
		commits := make([]events.Commit, 0, len(event.Commits))
		for _, c := range event.Commits {
			commits = append(commits, events.Commit{
				ID:      c.GetID(),
				Message: c.GetMessage(),
				Author:  c.GetAuthor().GetName(),
				URL:     c.GetURL(),
			})
		}
		return events.NewPushContext(commits...), nil
	default:
		slog.Debug("event is not used for task references", "eventName", g.EventName)
		return unknown, nil
	}
}

func toPullRequest(pr *github.PullRequest) events.PullRequest {
	return events.PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		URL:       pr.GetHTMLURL(),
		Author:    pr.GetUser().GetLogin(),
		BaseOwner: pr.GetBase().GetRepo().GetOwner().GetLogin(),
		HeadOwner: pr.GetHead().GetUser().GetLogin(),
	}
}
