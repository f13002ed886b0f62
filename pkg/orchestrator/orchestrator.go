package orchestrator

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/diggerhq/tasklink/pkg/ci"
	"github.com/diggerhq/tasklink/pkg/events"
	"github.com/diggerhq/tasklink/pkg/inputs"
	"github.com/diggerhq/tasklink/pkg/references"
	"github.com/diggerhq/tasklink/pkg/tracker"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Outcome is the result of one operation on one task.
type Outcome struct {
	Reference references.Reference
	Operation string
	Succeeded bool
	Err       error
}

type Result struct {
	Action   string
	Outcomes []Outcome
	// Outputs are published as step outputs of the action
	Outputs map[string]string
}

func newResult() *Result {
	return &Result{Outcomes: make([]Outcome, 0), Outputs: make(map[string]string)}
}

func (r *Result) Failed() []Outcome {
	return lo.Filter(r.Outcomes, func(o Outcome, _ int) bool { return !o.Succeeded })
}

func (r *Result) Succeeded() []Outcome {
	return lo.Filter(r.Outcomes, func(o Outcome, _ int) bool { return o.Succeeded })
}

type Orchestrator struct {
	Inputs                inputs.Source
	Event                 events.EventContext
	TrackerProvider       tracker.ServiceProvider
	SourceControlProvider ci.SourceControlServiceProvider
}

// operation is a single call against the tracker for one reference.
type operation struct {
	name      string
	reference references.Reference
	run       func(ctx context.Context) error
}

func (o *Orchestrator) tracker(ctx context.Context) (tracker.Service, error) {
	token, err := o.Inputs.Required("asana-pat")
	if err != nil {
		return nil, err
	}
	return o.TrackerProvider.NewService(ctx, token)
}

func (o *Orchestrator) concurrency() int {
	value := o.Inputs.Get("max-concurrency")
	if value == "" {
		return defaultConcurrency
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		slog.Warn("invalid max-concurrency, using default", "value", value, "default", defaultConcurrency)
		return defaultConcurrency
	}
	return n
}

// collect scans every text source of the event and builds one operation per
// reference found, in discovery order. build may return false to skip a reference.
func (o *Orchestrator) collect(sources []events.TextSource, build func(source events.TextSource, ref references.Reference) (operation, bool)) []operation {
	// a trailing space is part of the trigger
	trigger := o.Inputs.Raw("trigger-phrase")
	ops := make([]operation, 0)
	for _, source := range sources {
		for _, ref := range references.Extract(source.Text, trigger) {
			op, ok := build(source, ref)
			if !ok {
				continue
			}
			ops = append(ops, op)
		}
	}
	return ops
}

// runAll issues the operations concurrently and waits for all of them. A
// failing operation never stops the others; outcomes keep the order of ops.
func (o *Orchestrator) runAll(ctx context.Context, ops []operation) []Outcome {
	outcomes := make([]Outcome, len(ops))

	var group errgroup.Group
	group.SetLimit(o.concurrency())
	for i, op := range ops {
		i, op := i, op
		group.Go(func() error {
			err := op.run(ctx)
			outcomes[i] = Outcome{
				Reference: op.reference,
				Operation: op.name,
				Succeeded: err == nil,
				Err:       err,
			}
			if err != nil {
				slog.Error("operation failed",
					"operation", op.name,
					"projectId", op.reference.ProjectId,
					"taskId", op.reference.TaskId,
					"error", err,
				)
			} else {
				slog.Info("operation succeeded",
					"operation", op.name,
					"taskId", op.reference.TaskId,
				)
			}
			return nil
		})
	}
	// operations report through outcomes, the closures never return an error
	_ = group.Wait()
	return outcomes
}

func (o *Orchestrator) textSources() ([]events.TextSource, error) {
	sources, err := o.Event.TextSources()
	if err != nil {
		return nil, inputs.NewConfigurationError("%v", err)
	}
	return sources, nil
}

func (o *Orchestrator) pullRequest(action string) (*events.PullRequest, error) {
	if o.Event.Kind != events.PullRequestKind || o.Event.PullRequest == nil {
		return nil, inputs.NewConfigurationError("%v requires a pull_request event, got %q", action, o.Event.Name)
	}
	return o.Event.PullRequest, nil
}

func (o *Orchestrator) issue(action string) (*events.Issue, error) {
	if o.Event.Kind != events.IssueKind || o.Event.Issue == nil {
		return nil, inputs.NewConfigurationError("%v requires an issues event, got %q", action, o.Event.Name)
	}
	return o.Event.Issue, nil
}

func (o *Orchestrator) commits(action string) ([]events.Commit, error) {
	if o.Event.Kind != events.CommitPushKind {
		return nil, inputs.NewConfigurationError("%v requires a push event, got %q", action, o.Event.Name)
	}
	return o.Event.Commits, nil
}
