package asana

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/diggerhq/tasklink/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Enable string
	Body   map[string]interface{}
}

type fakeAsana struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeAsana) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Enable: r.Header.Get("asana-enable"),
	}
	raw, _ := io.ReadAll(r.Body)
	if len(raw) > 0 {
		var envelope struct {
			Data map[string]interface{} `json:"data"`
		}
		_ = json.Unmarshal(raw, &envelope)
		rec.Body = envelope.Data
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	if f.handler != nil {
		f.handler(w, r)
		return
	}
	w.Write([]byte(`{"data": {}}`))
}

func newTestService(t *testing.T, fake *fakeAsana) *AsanaService {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	svc, err := AsanaServiceProvider{BaseUrl: server.URL}.NewService(context.Background(), "secret-pat")
	require.NoError(t, err)
	return svc.(*AsanaService)
}

func TestNewServiceRequiresToken(t *testing.T) {
	_, err := AsanaServiceProvider{}.NewService(context.Background(), "")
	assert.Error(t, err)
}

func TestCreateTaskInSection(t *testing.T) {
	fake := &fakeAsana{handler: func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"gid": "777", "name": "Release 1.0"}}`))
	}}
	svc := newTestService(t, fake)

	gid, err := svc.CreateTask(context.Background(), tracker.TaskRequest{
		Name:      "Release 1.0",
		Notes:     "notes",
		ProjectId: "10",
		SectionId: "20",
	})
	require.NoError(t, err)
	assert.Equal(t, "777", gid)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/tasks", req.Path)
	assert.Equal(t, "Bearer secret-pat", req.Auth)
	assert.Equal(t, "new-sections,string_ids", req.Enable)
	assert.Equal(t, "Release 1.0", req.Body["name"])
	assert.Equal(t, []interface{}{"10"}, req.Body["projects"])
	assert.Equal(t, []interface{}{map[string]interface{}{"project": "10", "section": "20"}}, req.Body["memberships"])
}

func TestCreateTaskWithoutSectionHasNoMemberships(t *testing.T) {
	fake := &fakeAsana{handler: func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"gid": "1"}}`))
	}}
	svc := newTestService(t, fake)

	_, err := svc.CreateTask(context.Background(), tracker.TaskRequest{Name: "x", ProjectId: "10"})
	require.NoError(t, err)
	_, ok := fake.requests[0].Body["memberships"]
	assert.False(t, ok)
}

func TestAddStory(t *testing.T) {
	fake := &fakeAsana{}
	svc := newTestService(t, fake)

	err := svc.AddStory(context.Background(), "456", "<body>hi</body>", true)
	require.NoError(t, err)
	assert.Equal(t, "/tasks/456/stories", fake.requests[0].Path)
	assert.Equal(t, "<body>hi</body>", fake.requests[0].Body["html_text"])
	assert.Equal(t, true, fake.requests[0].Body["is_pinned"])
}

func TestTagAndSectionCalls(t *testing.T) {
	fake := &fakeAsana{}
	svc := newTestService(t, fake)
	ctx := context.Background()

	require.NoError(t, svc.AddTag(ctx, "1", "t1"))
	require.NoError(t, svc.RemoveTag(ctx, "1", "t1"))
	require.NoError(t, svc.MoveToSection(ctx, "1", "s1"))
	require.NoError(t, svc.SetCompleted(ctx, "1", true))

	require.Len(t, fake.requests, 4)
	assert.Equal(t, "/tasks/1/addTag", fake.requests[0].Path)
	assert.Equal(t, "t1", fake.requests[0].Body["tag"])
	assert.Equal(t, "/tasks/1/removeTag", fake.requests[1].Path)
	assert.Equal(t, "/sections/s1/addTask", fake.requests[2].Path)
	assert.Equal(t, "1", fake.requests[2].Body["task"])
	assert.Equal(t, http.MethodPut, fake.requests[3].Method)
	assert.Equal(t, "/tasks/1", fake.requests[3].Path)
	assert.Equal(t, true, fake.requests[3].Body["completed"])
}

func TestAddToProjectWithSection(t *testing.T) {
	fake := &fakeAsana{}
	svc := newTestService(t, fake)

	require.NoError(t, svc.AddToProject(context.Background(), "1", "p1", "s1"))
	require.Len(t, fake.requests, 2)
	assert.Equal(t, "/tasks/1/addProject", fake.requests[0].Path)
	assert.Equal(t, "p1", fake.requests[0].Body["project"])
	assert.Equal(t, "/sections/s1/addTask", fake.requests[1].Path)
}

func TestAddToProjectWithoutSection(t *testing.T) {
	fake := &fakeAsana{}
	svc := newTestService(t, fake)

	require.NoError(t, svc.AddToProject(context.Background(), "1", "p1", ""))
	require.Len(t, fake.requests, 1)
	v, ok := fake.requests[0].Body["insert_after"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestListTasksInSectionFollowsPages(t *testing.T) {
	fake := &fakeAsana{handler: func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			w.Write([]byte(`{"data": [{"gid": "1", "name": "a"}], "next_page": {"offset": "abc"}}`))
			return
		}
		w.Write([]byte(`{"data": [{"gid": "2", "name": "b"}], "next_page": null}`))
	}}
	svc := newTestService(t, fake)

	tasks, err := svc.ListTasksInSection(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []tracker.Task{{Gid: "1", Name: "a"}, {Gid: "2", Name: "b"}}, tasks)
	require.Len(t, fake.requests, 2)
	assert.Equal(t, "/sections/s1/tasks", fake.requests[0].Path)
	assert.Contains(t, fake.requests[1].Query, "offset=abc")
	assert.Contains(t, fake.requests[0].Query, "opt_fields=name")
}

func TestErrorResponseIsReported(t *testing.T) {
	fake := &fakeAsana{handler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors": [{"message": "task: Unknown object: 404"}]}`))
	}}
	svc := newTestService(t, fake)

	err := svc.AddTag(context.Background(), "404", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown object")
	assert.Contains(t, err.Error(), "404")
}
