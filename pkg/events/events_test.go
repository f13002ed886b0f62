package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSourcesForPush(t *testing.T) {
	ctx := NewPushContext(
		Commit{ID: "a", Message: "first"},
		Commit{ID: "b", Message: "second"},
	)
	sources, err := ctx.TextSources()
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "first", sources[0].Text)
	assert.Equal(t, "a", sources[0].Commit.ID)
	assert.Equal(t, "b", sources[1].Commit.ID)
}

func TestTextSourcesForPullRequestAndIssue(t *testing.T) {
	sources, err := NewPullRequestContext(PullRequest{Body: "pr body"}).TextSources()
	require.NoError(t, err)
	assert.Equal(t, []TextSource{{Text: "pr body"}}, sources)

	sources, err = NewIssueContext(Issue{Body: "issue body"}).TextSources()
	require.NoError(t, err)
	assert.Equal(t, []TextSource{{Text: "issue body"}}, sources)
}

func TestTextSourcesUnknownEvent(t *testing.T) {
	_, err := EventContext{Name: "workflow_dispatch"}.TextSources()
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "push", CommitPushKind.String())
	assert.Equal(t, "unknown", Unknown.String())
}
