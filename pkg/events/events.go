package events

import "fmt"

type Kind int

const (
	Unknown Kind = iota
	IssueKind
	PullRequestKind
	CommitPushKind
)

func (k Kind) String() string {
	switch k {
	case IssueKind:
		return "issue"
	case PullRequestKind:
		return "pull_request"
	case CommitPushKind:
		return "push"
	default:
		return "unknown"
	}
}

type Issue struct {
	Title string
	Body  string
	URL   string
}

type PullRequest struct {
	Number    int
	Title     string
	Body      string
	URL       string
	Author    string
	BaseOwner string
	HeadOwner string
}

type Commit struct {
	ID      string
	Message string
	Author  string
	URL     string
}

// EventContext is the part of a source control event the connector acts on.
// Exactly one of Issue, PullRequest or Commits is populated, according to Kind.
type EventContext struct {
	Kind        Kind
	Name        string
	Issue       *Issue
	PullRequest *PullRequest
	Commits     []Commit
}

func NewIssueContext(issue Issue) EventContext {
	return EventContext{Kind: IssueKind, Name: "issues", Issue: &issue}
}

func NewPullRequestContext(pr PullRequest) EventContext {
	return EventContext{Kind: PullRequestKind, Name: "pull_request", PullRequest: &pr}
}

func NewPushContext(commits ...Commit) EventContext {
	return EventContext{Kind: CommitPushKind, Name: "push", Commits: commits}
}

// TextSource is a piece of free text that may carry task references.
// Commit is set when the text is a commit message.
type TextSource struct {
	Text   string
	Commit *Commit
}

// TextSources returns the texts to scan, in order: the pull request body, the
// issue body, or every commit message of a push.
func (e EventContext) TextSources() ([]TextSource, error) {
	switch e.Kind {
	case PullRequestKind:
		return []TextSource{{Text: e.PullRequest.Body}}, nil
	case IssueKind:
		return []TextSource{{Text: e.Issue.Body}}, nil
	case CommitPushKind:
		sources := make([]TextSource, 0, len(e.Commits))
		for i := range e.Commits {
			sources = append(sources, TextSource{Text: e.Commits[i].Message, Commit: &e.Commits[i]})
		}
		return sources, nil
	default:
		return nil, fmt.Errorf("event %q carries no text to search for tasks", e.Name)
	}
}
