package orchestrator

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"

	"github.com/diggerhq/tasklink/pkg/events"
	"github.com/diggerhq/tasklink/pkg/references"
	"github.com/diggerhq/tasklink/pkg/tracker"
)

func (o *Orchestrator) tagTasks(ctx context.Context, name string, apply func(client tracker.Service, ctx context.Context, taskId string, tagId string) error) (*Result, error) {
	tagId, err := o.Inputs.Required("asana-tag-id")
	if err != nil {
		return nil, err
	}
	sources, err := o.textSources()
	if err != nil {
		return nil, err
	}
	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	ops := o.collect(sources, func(_ events.TextSource, ref references.Reference) (operation, bool) {
		return operation{
			name:      name,
			reference: ref,
			run: func(ctx context.Context) error {
				slog.Info(name, "tagId", tagId, "taskId", ref.TaskId)
				return apply(client, ctx, ref.TaskId, tagId)
			},
		}, true
	})
	result := newResult()
	result.Outcomes = o.runAll(ctx, ops)
	return result, nil
}

func (o *Orchestrator) AddTag(ctx context.Context) (*Result, error) {
	return o.tagTasks(ctx, "add tag", tracker.Service.AddTag)
}

func (o *Orchestrator) RemoveTag(ctx context.Context) (*Result, error) {
	return o.tagTasks(ctx, "remove tag", tracker.Service.RemoveTag)
}

// MoveToSection moves referenced tasks of asana-project-id to asana-section-id.
// Tasks of other projects are skipped without a call or a failed outcome.
func (o *Orchestrator) MoveToSection(ctx context.Context) (*Result, error) {
	sectionId, err := o.Inputs.Required("asana-section-id")
	if err != nil {
		return nil, err
	}
	projectId, err := o.Inputs.Required("asana-project-id")
	if err != nil {
		return nil, err
	}
	sources, err := o.textSources()
	if err != nil {
		return nil, err
	}
	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	ops := o.collect(sources, func(_ events.TextSource, ref references.Reference) (operation, bool) {
		if ref.ProjectId != projectId {
			slog.Info("task not in project, skipping", "taskId", ref.TaskId, "taskProjectId", ref.ProjectId, "projectId", projectId)
			return operation{}, false
		}
		return operation{
			name:      "move",
			reference: ref,
			run: func(ctx context.Context) error {
				slog.Info("moving task", "taskId", ref.TaskId, "sectionId", sectionId)
				return client.MoveToSection(ctx, ref.TaskId, sectionId)
			},
		}, true
	})
	result := newResult()
	result.Outcomes = o.runAll(ctx, ops)
	return result, nil
}

// CompletePullRequestTasks sets the completion state of every task referenced by
// the pull request to the is-complete input.
func (o *Orchestrator) CompletePullRequestTasks(ctx context.Context) (*Result, error) {
	pr, err := o.pullRequest("notify-pr-merged")
	if err != nil {
		return nil, err
	}
	isComplete := o.Inputs.Bool("is-complete")
	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	ops := o.collect([]events.TextSource{{Text: pr.Body}}, func(_ events.TextSource, ref references.Reference) (operation, bool) {
		return operation{
			name:      "complete",
			reference: ref,
			run: func(ctx context.Context) error {
				slog.Info("marking task", "taskId", ref.TaskId, "completed", isComplete)
				return client.SetCompleted(ctx, ref.TaskId, isComplete)
			},
		}, true
	})
	result := newResult()
	result.Outcomes = o.runAll(ctx, ops)
	return result, nil
}

// createTaskWithComment creates the task, then pins comment on it.
func (o *Orchestrator) createTaskWithComment(ctx context.Context, name string, notes string, comment string) (*Result, error) {
	projectId, err := o.Inputs.Required("asana-project")
	if err != nil {
		return nil, err
	}
	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	result := newResult()
	taskId, err := client.CreateTask(ctx, tracker.TaskRequest{Name: name, Notes: notes, ProjectId: projectId})
	ref := references.Reference{ProjectId: projectId, TaskId: taskId}
	if err != nil {
		slog.Error("could not create task", "name", name, "error", err)
		result.Outcomes = append(result.Outcomes, Outcome{Reference: ref, Operation: "create", Err: err})
		return result, nil
	}
	slog.Info("task created", "taskId", taskId)
	result.Outcomes = append(result.Outcomes, Outcome{Reference: ref, Operation: "create", Succeeded: true})
	result.Outputs["taskId"] = taskId

	result.Outcomes = append(result.Outcomes, o.runAll(ctx, []operation{storyOperation(client, ref, comment, true)})...)
	return result, nil
}

func (o *Orchestrator) CreateIssueTask(ctx context.Context) (*Result, error) {
	issue, err := o.issue("create-asana-issue-task")
	if err != nil {
		return nil, err
	}
	slog.Info("creating asana task from issue", "title", issue.Title)
	return o.createTaskWithComment(ctx,
		fmt.Sprintf("Github Issue: %s", issue.Title),
		fmt.Sprintf("Description: %s", issue.Body),
		htmlBody(fmt.Sprintf("Link to Issue: %s", html.EscapeString(issue.URL))),
	)
}

func (o *Orchestrator) CreatePullRequestTask(ctx context.Context) (*Result, error) {
	pr, err := o.pullRequest("create-asana-pr-task")
	if err != nil {
		return nil, err
	}
	slog.Info("creating asana task from pull request", "title", pr.Title)
	return o.createTaskWithComment(ctx,
		fmt.Sprintf("Community Pull Request: %s", pr.Title),
		fmt.Sprintf("Description: %s", pr.Body),
		htmlBody(fmt.Sprintf("Link to Pull Request: %s", html.EscapeString(pr.URL))),
	)
}

// AddTaskToProject adds asana-task-id to asana-project, at the top of
// asana-section when one is given.
func (o *Orchestrator) AddTaskToProject(ctx context.Context) (*Result, error) {
	projectId, err := o.Inputs.Required("asana-project")
	if err != nil {
		return nil, err
	}
	taskId, err := o.Inputs.Required("asana-task-id")
	if err != nil {
		return nil, err
	}
	sectionId := o.Inputs.Get("asana-section")
	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	ref := references.Reference{ProjectId: projectId, TaskId: taskId}
	result := newResult()
	result.Outcomes = o.runAll(ctx, []operation{{
		name:      "add to project",
		reference: ref,
		run: func(ctx context.Context) error {
			slog.Info("adding asana task to project", "taskId", taskId, "projectId", projectId, "sectionId", sectionId)
			return client.AddToProject(ctx, taskId, projectId, sectionId)
		},
	}})
	return result, nil
}

// CreateTask creates asana-task-name in asana-project. When asana-section is
// set an existing task with the same name in that section is reused instead.
func (o *Orchestrator) CreateTask(ctx context.Context) (*Result, error) {
	projectId, err := o.Inputs.Required("asana-project")
	if err != nil {
		return nil, err
	}
	name, err := o.Inputs.Required("asana-task-name")
	if err != nil {
		return nil, err
	}
	notes, err := o.Inputs.Required("asana-task-description")
	if err != nil {
		return nil, err
	}
	sectionId := o.Inputs.Get("asana-section")
	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	result := newResult()
	request := tracker.TaskRequest{Name: name, Notes: notes, ProjectId: projectId, SectionId: sectionId}
	if sectionId == "" {
		outcome := createOutcome(ctx, client, request)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Succeeded {
			result.Outputs["taskId"] = outcome.Reference.TaskId
		}
		return result, nil
	}

	created, err := CreateTaskIfNotDuplicate(ctx, client, request)
	ref := references.Reference{ProjectId: projectId, TaskId: created.TaskId}
	if err != nil {
		result.Outcomes = append(result.Outcomes, Outcome{Reference: ref, Operation: "create", Err: err})
		return result, nil
	}
	result.Outcomes = append(result.Outcomes, Outcome{Reference: ref, Operation: "create", Succeeded: true})
	result.Outputs["taskId"] = created.TaskId
	result.Outputs["duplicate"] = strconv.FormatBool(created.Duplicate)
	return result, nil
}

func createOutcome(ctx context.Context, client tracker.Service, request tracker.TaskRequest) Outcome {
	slog.Info("creating new task", "name", request.Name, "projectId", request.ProjectId)
	taskId, err := client.CreateTask(ctx, request)
	ref := references.Reference{ProjectId: request.ProjectId, TaskId: taskId}
	if err != nil {
		slog.Error("could not create task", "name", request.Name, "error", err)
		return Outcome{Reference: ref, Operation: "create", Err: err}
	}
	return Outcome{Reference: ref, Operation: "create", Succeeded: true}
}
