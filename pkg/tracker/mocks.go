package tracker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type RunInfo struct {
	Command string
	Params  string
}

// MockTracker records every call. It is safe for concurrent use.
type MockTracker struct {
	// TasksPerSection is returned by ListTasksInSection
	TasksPerSection map[string][]Task
	// FailTasks makes every call on these task ids fail
	FailTasks map[string]error
	ListErr   error
	CreateErr error
	Commands  []RunInfo

	mu     sync.Mutex
	nextId int
}

func (m *MockTracker) record(command string, params ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = append(m.Commands, RunInfo{Command: command, Params: strings.Join(params, " ")})
}

func (m *MockTracker) failure(taskId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailTasks[taskId]
}

// CommandsNamed returns the recorded calls of one kind, in call order.
func (m *MockTracker) CommandsNamed(command string) []RunInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]RunInfo, 0)
	for _, c := range m.Commands {
		if c.Command == command {
			res = append(res, c)
		}
	}
	return res
}

func (m *MockTracker) CreateTask(ctx context.Context, request TaskRequest) (string, error) {
	m.record("CreateTask", request.Name, request.ProjectId, request.SectionId)
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextId++
	gid := strconv.Itoa(9000 + m.nextId)
	if request.SectionId != "" {
		if m.TasksPerSection == nil {
			m.TasksPerSection = make(map[string][]Task)
		}
		m.TasksPerSection[request.SectionId] = append(m.TasksPerSection[request.SectionId], Task{Gid: gid, Name: request.Name})
	}
	return gid, nil
}

func (m *MockTracker) AddStory(ctx context.Context, taskId string, htmlText string, isPinned bool) error {
	m.record("AddStory", taskId, strconv.FormatBool(isPinned), htmlText)
	return m.failure(taskId)
}

func (m *MockTracker) AddTag(ctx context.Context, taskId string, tagId string) error {
	m.record("AddTag", taskId, tagId)
	return m.failure(taskId)
}

func (m *MockTracker) RemoveTag(ctx context.Context, taskId string, tagId string) error {
	m.record("RemoveTag", taskId, tagId)
	return m.failure(taskId)
}

func (m *MockTracker) MoveToSection(ctx context.Context, taskId string, sectionId string) error {
	m.record("MoveToSection", taskId, sectionId)
	return m.failure(taskId)
}

func (m *MockTracker) SetCompleted(ctx context.Context, taskId string, completed bool) error {
	m.record("SetCompleted", taskId, strconv.FormatBool(completed))
	return m.failure(taskId)
}

func (m *MockTracker) AddToProject(ctx context.Context, taskId string, projectId string, sectionId string) error {
	m.record("AddToProject", taskId, projectId, sectionId)
	return m.failure(taskId)
}

func (m *MockTracker) ListTasksInSection(ctx context.Context, sectionId string) ([]Task, error) {
	m.record("ListTasksInSection", sectionId)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.TasksPerSection[sectionId]
	if !ok {
		return []Task{}, nil
	}
	return append([]Task(nil), tasks...), nil
}

type MockTrackerProvider struct {
	Tracker *MockTracker
	Tokens  []string
}

func (p *MockTrackerProvider) NewService(ctx context.Context, token string) (Service, error) {
	if p.Tracker == nil {
		return nil, fmt.Errorf("no tracker configured")
	}
	p.Tokens = append(p.Tokens, token)
	return p.Tracker, nil
}
