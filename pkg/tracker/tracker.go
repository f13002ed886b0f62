package tracker

import "context"

type Task struct {
	Gid  string `json:"gid"`
	Name string `json:"name"`
}

type TaskRequest struct {
	Name      string
	Notes     string
	ProjectId string
	// SectionId is optional, the task lands in the project's default section without it
	SectionId string
}

// Service is the work tracking side of the connector.
type Service interface {
	CreateTask(ctx context.Context, request TaskRequest) (string, error)
	AddStory(ctx context.Context, taskId string, htmlText string, isPinned bool) error
	AddTag(ctx context.Context, taskId string, tagId string) error
	RemoveTag(ctx context.Context, taskId string, tagId string) error
	MoveToSection(ctx context.Context, taskId string, sectionId string) error
	SetCompleted(ctx context.Context, taskId string, completed bool) error
	AddToProject(ctx context.Context, taskId string, projectId string, sectionId string) error
	ListTasksInSection(ctx context.Context, sectionId string) ([]Task, error)
}

type ServiceProvider interface {
	NewService(ctx context.Context, token string) (Service, error)
}
