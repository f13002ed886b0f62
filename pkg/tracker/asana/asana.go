package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/diggerhq/tasklink/pkg/tracker"
	"golang.org/x/oauth2"
)

const DefaultBaseUrl = "https://app.asana.com/api/1.0"

const pageSize = 100

type AsanaServiceProvider struct {
	BaseUrl string
}

func (p AsanaServiceProvider) NewService(ctx context.Context, token string) (tracker.Service, error) {
	if token == "" {
		return nil, fmt.Errorf("asana personal access token is empty")
	}
	baseUrl := p.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return &AsanaService{
		BaseUrl:    baseUrl,
		HttpClient: oauth2.NewClient(ctx, ts),
	}, nil
}

// AsanaService talks to the Asana REST API. HttpClient is expected to
// authenticate requests.
type AsanaService struct {
	BaseUrl    string
	HttpClient *http.Client
}

type envelope struct {
	Data     interface{} `json:"data"`
	NextPage *nextPage   `json:"next_page,omitempty"`
}

type nextPage struct {
	Offset string `json:"offset"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (a *AsanaService) do(ctx context.Context, method string, path string, query url.Values, body interface{}, out interface{}) (*nextPage, error) {
	u, err := url.Parse(a.BaseUrl + path)
	if err != nil {
		return nil, fmt.Errorf("not able to parse asana url: %v", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(envelope{Data: body})
		if err != nil {
			return nil, fmt.Errorf("not able to marshal request: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("error while creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("asana-enable", "new-sections,string_ids")

	slog.Debug("calling asana", "method", method, "path", path)
	resp, err := a.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %v from asana %v %v: %v", resp.StatusCode, method, path, errorMessage(respBody))
	}

	if out == nil {
		return nil, nil
	}
	response := envelope{Data: out}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("could not parse asana response: %v", err)
	}
	return response.NextPage, nil
}

func errorMessage(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || len(errResp.Errors) == 0 {
		return strings.TrimSpace(string(body))
	}
	messages := make([]string, 0, len(errResp.Errors))
	for _, e := range errResp.Errors {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}

type membership struct {
	Project string `json:"project"`
	Section string `json:"section"`
}

type createTaskRequest struct {
	Name        string       `json:"name"`
	Notes       string       `json:"notes"`
	Projects    []string     `json:"projects"`
	Memberships []membership `json:"memberships,omitempty"`
}

func (a *AsanaService) CreateTask(ctx context.Context, request tracker.TaskRequest) (string, error) {
	body := createTaskRequest{
		Name:     request.Name,
		Notes:    request.Notes,
		Projects: []string{request.ProjectId},
	}
	if request.SectionId != "" {
		body.Memberships = []membership{{Project: request.ProjectId, Section: request.SectionId}}
	}

	var task tracker.Task
	if _, err := a.do(ctx, http.MethodPost, "/tasks", nil, body, &task); err != nil {
		return "", fmt.Errorf("could not create task %q: %v", request.Name, err)
	}
	slog.Info("task created", "taskId", task.Gid, "projectId", request.ProjectId, "sectionId", request.SectionId)
	return task.Gid, nil
}

func (a *AsanaService) AddStory(ctx context.Context, taskId string, htmlText string, isPinned bool) error {
	body := map[string]interface{}{
		"html_text": htmlText,
		"is_pinned": isPinned,
	}
	if _, err := a.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskId)+"/stories", nil, body, nil); err != nil {
		return fmt.Errorf("could not add story to task %v: %v", taskId, err)
	}
	return nil
}

func (a *AsanaService) AddTag(ctx context.Context, taskId string, tagId string) error {
	body := map[string]string{"tag": tagId}
	if _, err := a.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskId)+"/addTag", nil, body, nil); err != nil {
		return fmt.Errorf("could not add tag %v to task %v: %v", tagId, taskId, err)
	}
	return nil
}

func (a *AsanaService) RemoveTag(ctx context.Context, taskId string, tagId string) error {
	body := map[string]string{"tag": tagId}
	if _, err := a.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskId)+"/removeTag", nil, body, nil); err != nil {
		return fmt.Errorf("could not remove tag %v from task %v: %v", tagId, taskId, err)
	}
	return nil
}

// MoveToSection inserts the task at the top of the section.
func (a *AsanaService) MoveToSection(ctx context.Context, taskId string, sectionId string) error {
	body := map[string]string{"task": taskId}
	if _, err := a.do(ctx, http.MethodPost, "/sections/"+url.PathEscape(sectionId)+"/addTask", nil, body, nil); err != nil {
		return fmt.Errorf("could not move task %v to section %v: %v", taskId, sectionId, err)
	}
	return nil
}

func (a *AsanaService) SetCompleted(ctx context.Context, taskId string, completed bool) error {
	body := map[string]bool{"completed": completed}
	if _, err := a.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(taskId), nil, body, nil); err != nil {
		return fmt.Errorf("could not update task %v: %v", taskId, err)
	}
	return nil
}

// AddToProject adds the task to the project and, when sectionId is set,
// moves it to the top of that section.
func (a *AsanaService) AddToProject(ctx context.Context, taskId string, projectId string, sectionId string) error {
	body := map[string]interface{}{"project": projectId}
	if sectionId == "" {
		body["insert_after"] = nil
	}
	if _, err := a.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskId)+"/addProject", nil, body, nil); err != nil {
		return fmt.Errorf("could not add task %v to project %v: %v", taskId, projectId, err)
	}
	if sectionId == "" {
		return nil
	}
	return a.MoveToSection(ctx, taskId, sectionId)
}

func (a *AsanaService) ListTasksInSection(ctx context.Context, sectionId string) ([]tracker.Task, error) {
	allTasks := make([]tracker.Task, 0)
	query := url.Values{}
	query.Set("opt_fields", "name")
	query.Set("limit", fmt.Sprint(pageSize))
	for {
		var tasks []tracker.Task
		next, err := a.do(ctx, http.MethodGet, "/sections/"+url.PathEscape(sectionId)+"/tasks", query, nil, &tasks)
		if err != nil {
			return nil, fmt.Errorf("could not list tasks of section %v: %v", sectionId, err)
		}
		allTasks = append(allTasks, tasks...)
		if next == nil || next.Offset == "" {
			break
		}
		query.Set("offset", next.Offset)
	}
	return allTasks, nil
}
