package orchestrator

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/diggerhq/tasklink/pkg/events"
	"github.com/diggerhq/tasklink/pkg/references"
	"github.com/diggerhq/tasklink/pkg/tracker"
)

const shortShaLength = 7

// htmlBody wraps text into the <body> element asana requires for html_text.
func htmlBody(text string) string {
	if strings.HasPrefix(strings.TrimSpace(text), "<body>") {
		return text
	}
	return "<body>" + text + "</body>"
}

func messageHeader(message string) string {
	if i := strings.Index(message, "\n"); i != -1 {
		return message[:i]
	}
	return message
}

func shortSha(id string) string {
	if len(id) > shortShaLength {
		return id[:shortShaLength]
	}
	return id
}

// CommitComment renders the default story for a commit.
func CommitComment(commit events.Commit) string {
	return fmt.Sprintf(`<body><code><a href="%s">%s</a></code> %s [%s]</body>`,
		html.EscapeString(commit.URL),
		html.EscapeString(shortSha(commit.ID)),
		html.EscapeString(messageHeader(commit.Message)),
		html.EscapeString(commit.Author),
	)
}

func (o *Orchestrator) customComment() string {
	commentText := o.Inputs.Get("comment-text")
	if commentText != "" {
		slog.Info("using custom comment text", "commentText", commentText)
		return htmlBody(commentText)
	}
	return ""
}

func storyOperation(client tracker.Service, ref references.Reference, text string, isPinned bool) operation {
	return operation{
		name:      "comment",
		reference: ref,
		run: func(ctx context.Context) error {
			return client.AddStory(ctx, ref.TaskId, text, isPinned)
		},
	}
}

// AddPullRequestComment comments on every task referenced by the pull request body.
func (o *Orchestrator) AddPullRequestComment(ctx context.Context) (*Result, error) {
	pr, err := o.pullRequest("add-asana-pr-comment")
	if err != nil {
		return nil, err
	}
	isPinned := o.Inputs.Bool("is-pinned")
	comment := o.customComment()
	if comment == "" {
		comment = htmlBody(fmt.Sprintf("PR: %s", html.EscapeString(pr.URL)))
	}

	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	ops := o.collect([]events.TextSource{{Text: pr.Body}}, func(_ events.TextSource, ref references.Reference) (operation, bool) {
		return storyOperation(client, ref, comment, isPinned), true
	})
	result := newResult()
	result.Outcomes = o.runAll(ctx, ops)
	return result, nil
}

// AddCommitComments comments on the tasks referenced by each pushed commit,
// commit by commit.
func (o *Orchestrator) AddCommitComments(ctx context.Context) (*Result, error) {
	commits, err := o.commits("add-asana-commit-comment")
	if err != nil {
		return nil, err
	}
	isPinned := o.Inputs.Bool("is-pinned")
	custom := o.customComment()

	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	result := newResult()
	for _, commit := range commits {
		comment := custom
		if comment == "" {
			comment = CommitComment(commit)
		}
		ops := o.collect([]events.TextSource{{Text: commit.Message}}, func(_ events.TextSource, ref references.Reference) (operation, bool) {
			return storyOperation(client, ref, comment, isPinned), true
		})
		result.Outcomes = append(result.Outcomes, o.runAll(ctx, ops)...)
	}
	return result, nil
}

// NotifyPullRequestApproved leaves an approval note on every referenced task.
func (o *Orchestrator) NotifyPullRequestApproved(ctx context.Context) (*Result, error) {
	pr, err := o.pullRequest("notify-pr-approved")
	if err != nil {
		return nil, err
	}
	comment := htmlBody(fmt.Sprintf("PR: %s has been approved", html.EscapeString(pr.URL)))

	client, err := o.tracker(ctx)
	if err != nil {
		return nil, err
	}

	ops := o.collect([]events.TextSource{{Text: pr.Body}}, func(_ events.TextSource, ref references.Reference) (operation, bool) {
		return storyOperation(client, ref, comment, false), true
	})
	result := newResult()
	result.Outcomes = o.runAll(ctx, ops)
	return result, nil
}
