package github

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-github/v61/github"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedService(t *testing.T, options ...mock.MockBackendOption) GithubService {
	t.Helper()
	svc, err := GithubServiceProviderBasic{HttpClient: mock.NewMockedHTTPClient(options...)}.NewService("token")
	require.NoError(t, err)
	return svc.(GithubService)
}

func TestGetLatestRelease(t *testing.T) {
	svc := newMockedService(t,
		mock.WithRequestMatch(
			mock.GetReposReleasesLatestByOwnerByRepo,
			github.RepositoryRelease{TagName: github.String("v1.2.3")},
		),
	)

	version, err := svc.GetLatestRelease(context.Background(), "acme", "web")
	assert.NoError(t, err)
	assert.Equal(t, "v1.2.3", version)
}

func TestGetLatestReleaseNotFound(t *testing.T) {
	svc := newMockedService(t,
		mock.WithRequestMatchHandler(
			mock.GetReposReleasesLatestByOwnerByRepo,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mock.WriteError(w, http.StatusNotFound, "Not Found")
			}),
		),
	)

	_, err := svc.GetLatestRelease(context.Background(), "acme", "web")
	assert.Error(t, err)
}

func TestGetAndUpdatePullRequestBody(t *testing.T) {
	var patched github.PullRequest
	svc := newMockedService(t,
		mock.WithRequestMatch(
			mock.GetReposPullsByOwnerByRepoByPullNumber,
			github.PullRequest{Number: github.Int(7), Body: github.String("original body")},
		),
		mock.WithRequestMatchHandler(
			mock.PatchReposPullsByOwnerByRepoByPullNumber,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err := json.NewDecoder(r.Body).Decode(&patched)
				assert.NoError(t, err)
				w.Write(mock.MustMarshal(patched))
			}),
		),
	)

	body, err := svc.GetPullRequestBody(context.Background(), "acme", "web", 7)
	require.NoError(t, err)
	assert.Equal(t, "original body", body)

	err = svc.UpdatePullRequestBody(context.Background(), "acme", "web", 7, "new body")
	require.NoError(t, err)
	assert.Equal(t, "new body", patched.GetBody())
}

func TestStepOutputWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	w := StepOutputWriter{Path: path}

	require.NoError(t, w.SetOutput("taskId", "1234"))
	require.NoError(t, w.SetOutput("duplicate", "false"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "taskId=1234\nduplicate=false\n", string(content))
}

func TestStepOutputWriterMultiline(t *testing.T) {
	out := formatOutput("notes", "line one\nline two")
	assert.Regexp(t, `^notes<<ghadelimiter_[0-9a-f-]+\nline one\nline two\nghadelimiter_[0-9a-f-]+\n$`, out)
}

func TestStepOutputWriterWithoutPath(t *testing.T) {
	err := StepOutputWriter{}.SetOutput("version", "v1")
	assert.Error(t, err)
}
