package references

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

const DefaultHost = "app.asana.com"

var ErrInvalidReference = errors.New("invalid asana task url")

// Reference points at a single task inside a single project.
type Reference struct {
	ProjectId string
	TaskId    string
}

func (r Reference) String() string {
	return r.ProjectId + "/" + r.TaskId
}

// Token is one piece of text consumed by a Matcher. A token is not
// necessarily a valid reference, see Token.Reference.
type Token struct {
	Text  string
	Start int
	End   int

	projectId string
	taskId    string
}

// Reference returns the task reference carried by the token or
// ErrInvalidReference when the url was cut short before the project or task id.
func (t Token) Reference() (Reference, error) {
	if t.projectId == "" || t.taskId == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, t.Text)
	}
	return Reference{ProjectId: t.projectId, TaskId: t.taskId}, nil
}

type Matcher struct {
	Trigger string
	Host    string

	pattern *regexp.Regexp
}

func NewMatcher(trigger string) *Matcher {
	return NewMatcherForHost(trigger, DefaultHost)
}

// NewMatcherForHost builds a matcher that requires the literal trigger to be
// immediately followed by a task url on host. The version segment is
// mandatory, project and task ids are optional in the pattern so that
// truncated urls still surface as (invalid) tokens.
func NewMatcherForHost(trigger string, host string) *Matcher {
	expr := regexp.QuoteMeta(trigger) +
		`https?://` + regexp.QuoteMeta(host) +
		`/(?P<version>\d+)(?:/(?P<projectId>\d+))?(?:/(?P<taskId>\d+))?`
	return &Matcher{
		Trigger: trigger,
		Host:    host,
		pattern: regexp.MustCompile(expr),
	}
}

func (m *Matcher) Pattern() string {
	return m.pattern.String()
}

// Tokens returns every non-overlapping match in text, left to right.
func (m *Matcher) Tokens(text string) []Token {
	projectIdx := m.pattern.SubexpIndex("projectId")
	taskIdx := m.pattern.SubexpIndex("taskId")

	matches := m.pattern.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]Token, 0, len(matches))
	for _, loc := range matches {
		tokens = append(tokens, Token{
			Text:      text[loc[0]:loc[1]],
			Start:     loc[0],
			End:       loc[1],
			projectId: group(text, loc, projectIdx),
			taskId:    group(text, loc, taskIdx),
		})
	}
	return tokens
}

// References drops invalid tokens, logging each of them.
func (m *Matcher) References(text string) []Reference {
	refs := make([]Reference, 0)
	for _, token := range m.Tokens(text) {
		ref, err := token.Reference()
		if err != nil {
			slog.Error("Invalid Asana task URL after trigger phrase",
				"triggerPhrase", m.Trigger,
				"match", token.Text,
				"error", err,
			)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func group(text string, loc []int, idx int) string {
	if idx < 0 || 2*idx+1 >= len(loc) || loc[2*idx] < 0 {
		return ""
	}
	return text[loc[2*idx]:loc[2*idx+1]]
}

// Extract finds all task references preceded by triggerPhrase in text.
// An empty trigger phrase matches any task url.
func Extract(text string, triggerPhrase string) []Reference {
	matcher := NewMatcher(triggerPhrase)
	slog.Debug("looking for asana task links",
		"text", text,
		"pattern", matcher.Pattern(),
	)

	refs := matcher.References(text)
	slog.Info("found asana task references",
		"count", len(refs),
		"taskIds", strings.Join(lo.Map(refs, func(r Reference, _ int) string { return r.TaskId }), ","),
	)
	return refs
}
