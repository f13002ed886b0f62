package dispatch

import (
	"context"
	"log/slog"

	"github.com/diggerhq/tasklink/pkg/ci"
	"github.com/diggerhq/tasklink/pkg/events"
	"github.com/diggerhq/tasklink/pkg/inputs"
	"github.com/diggerhq/tasklink/pkg/orchestrator"
	"github.com/diggerhq/tasklink/pkg/tracker"
)

type Action int

const (
	CreateIssueTask Action = iota
	NotifyPullRequestApproved
	NotifyPullRequestMerged
	CheckPullRequestMembership
	AddCommitComment
	AddPullRequestComment
	AddTaskToProject
	CreatePullRequestTask
	GetLatestRelease
	CreateTask
	AddTaskToPullRequestDescription
	AddTag
	RemoveTag
	MoveToSection
)

var actionNames = map[Action]string{
	CreateIssueTask:                 "create-asana-issue-task",
	NotifyPullRequestApproved:       "notify-pr-approved",
	NotifyPullRequestMerged:         "notify-pr-merged",
	CheckPullRequestMembership:      "check-pr-membership",
	AddCommitComment:                "add-asana-commit-comment",
	AddPullRequestComment:           "add-asana-pr-comment",
	AddTaskToProject:                "add-task-asana-project",
	CreatePullRequestTask:           "create-asana-pr-task",
	GetLatestRelease:                "get-latest-repo-release",
	CreateTask:                      "create-asana-task",
	AddTaskToPullRequestDescription: "add-task-pr-description",
	AddTag:                          "add-tag-to-task",
	RemoveTag:                       "remove-tag-from-task",
	MoveToSection:                   "move-task-to-section",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// AllActions returns every recognized action in declaration order.
func AllActions() []Action {
	res := make([]Action, 0, len(actionNames))
	for a := CreateIssueTask; a <= MoveToSection; a++ {
		res = append(res, a)
	}
	return res
}

func ParseAction(name string) (Action, error) {
	for action, actionName := range actionNames {
		if actionName == name {
			return action, nil
		}
	}
	return 0, &inputs.ConfigurationError{Input: "action", Message: "unexpected action " + name}
}

type Request struct {
	Action string
	Inputs inputs.Source
	Event  events.EventContext
}

type Dispatcher struct {
	TrackerProvider       tracker.ServiceProvider
	SourceControlProvider ci.SourceControlServiceProvider
}

// Dispatch runs the routine selected by request.Action and waits for it.
func (d Dispatcher) Dispatch(ctx context.Context, request Request) (*orchestrator.Result, error) {
	action, err := ParseAction(request.Action)
	if err != nil {
		return nil, err
	}
	slog.Info("calling", "action", action.String(), "event", request.Event.Name)

	o := &orchestrator.Orchestrator{
		Inputs:                request.Inputs,
		Event:                 request.Event,
		TrackerProvider:       d.TrackerProvider,
		SourceControlProvider: d.SourceControlProvider,
	}

	var result *orchestrator.Result
	switch action {
	case CreateIssueTask:
		result, err = o.CreateIssueTask(ctx)
	case NotifyPullRequestApproved:
		result, err = o.NotifyPullRequestApproved(ctx)
	case NotifyPullRequestMerged:
		result, err = o.CompletePullRequestTasks(ctx)
	case CheckPullRequestMembership:
		result, err = o.CheckPullRequestMembership(ctx)
	case AddCommitComment:
		result, err = o.AddCommitComments(ctx)
	case AddPullRequestComment:
		result, err = o.AddPullRequestComment(ctx)
	case AddTaskToProject:
		result, err = o.AddTaskToProject(ctx)
	case CreatePullRequestTask:
		result, err = o.CreatePullRequestTask(ctx)
	case GetLatestRelease:
		result, err = o.GetLatestRelease(ctx)
	case CreateTask:
		result, err = o.CreateTask(ctx)
	case AddTaskToPullRequestDescription:
		result, err = o.AddTaskToPullRequestDescription(ctx)
	case AddTag:
		result, err = o.AddTag(ctx)
	case RemoveTag:
		result, err = o.RemoveTag(ctx)
	case MoveToSection:
		result, err = o.MoveToSection(ctx)
	default:
		return nil, &inputs.ConfigurationError{Input: "action", Message: "unexpected action " + request.Action}
	}
	if err != nil {
		return nil, err
	}
	result.Action = action.String()
	return result, nil
}
