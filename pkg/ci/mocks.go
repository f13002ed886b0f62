package ci

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

type RunInfo struct {
	Command string
	Params  string
}

type MockSourceControlService struct {
	// Releases maps owner/repo to the latest release tag
	Releases map[string]string
	Bodies   map[int]string
	Err      error
	Commands []RunInfo

	mu sync.Mutex
}

func (m *MockSourceControlService) record(command string, params string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = append(m.Commands, RunInfo{Command: command, Params: params})
}

func (m *MockSourceControlService) GetLatestRelease(ctx context.Context, owner string, repo string) (string, error) {
	m.record("GetLatestRelease", owner+"/"+repo)
	if m.Err != nil {
		return "", m.Err
	}
	tag, ok := m.Releases[owner+"/"+repo]
	if !ok {
		return "", fmt.Errorf("no release for %v/%v", owner, repo)
	}
	return tag, nil
}

func (m *MockSourceControlService) GetPullRequestBody(ctx context.Context, owner string, repo string, prNumber int) (string, error) {
	m.record("GetPullRequestBody", owner+"/"+repo+"#"+strconv.Itoa(prNumber))
	if m.Err != nil {
		return "", m.Err
	}
	return m.Bodies[prNumber], nil
}

func (m *MockSourceControlService) UpdatePullRequestBody(ctx context.Context, owner string, repo string, prNumber int, body string) error {
	m.record("UpdatePullRequestBody", owner+"/"+repo+"#"+strconv.Itoa(prNumber))
	if m.Err != nil {
		return m.Err
	}
	if m.Bodies == nil {
		m.Bodies = make(map[int]string)
	}
	m.Bodies[prNumber] = body
	return nil
}

type MockSourceControlServiceProvider struct {
	Service *MockSourceControlService
	Tokens  []string
}

func (p *MockSourceControlServiceProvider) NewService(token string) (SourceControlService, error) {
	p.Tokens = append(p.Tokens, token)
	return p.Service, nil
}

type MockOutputWriter struct {
	Outputs map[string]string
}

func (w *MockOutputWriter) SetOutput(key string, value string) error {
	if w.Outputs == nil {
		w.Outputs = make(map[string]string)
	}
	w.Outputs[key] = value
	return nil
}
