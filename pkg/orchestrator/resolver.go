package orchestrator

import (
	"context"
	"log/slog"

	"github.com/diggerhq/tasklink/pkg/tracker"
)

type TaskResolver struct {
	Tracker tracker.Service
}

// FindByName returns the id of the first task of the section named exactly
// name. A failed lookup is logged and reported as not found.
func (r TaskResolver) FindByName(ctx context.Context, sectionId string, name string) (string, bool) {
	slog.Info("searching tasks in section", "sectionId", sectionId, "name", name)
	tasks, err := r.Tracker.ListTasksInSection(ctx, sectionId)
	if err != nil {
		slog.Error("could not list tasks of section", "sectionId", sectionId, "error", err)
		return "", false
	}
	for _, task := range tasks {
		if task.Name == name {
			slog.Info("task found", "taskId", task.Gid)
			return task.Gid, true
		}
	}
	slog.Info("task not found", "sectionId", sectionId, "name", name)
	return "", false
}

type CreatedTask struct {
	TaskId    string
	Duplicate bool
}

// CreateTaskIfNotDuplicate looks the task up by name in request.SectionId and
// creates it only when absent. Two concurrent runs may both create the task.
func CreateTaskIfNotDuplicate(ctx context.Context, client tracker.Service, request tracker.TaskRequest) (CreatedTask, error) {
	slog.Info("checking for duplicate task before creating a new one", "name", request.Name)
	resolver := TaskResolver{Tracker: client}
	if existingId, found := resolver.FindByName(ctx, request.SectionId, request.Name); found {
		slog.Info("task already exists, skipping", "taskId", existingId)
		return CreatedTask{TaskId: existingId, Duplicate: true}, nil
	}

	slog.Info("creating new task in section", "sectionId", request.SectionId)
	taskId, err := client.CreateTask(ctx, request)
	if err != nil {
		slog.Error("could not create task", "name", request.Name, "error", err)
		return CreatedTask{}, err
	}
	return CreatedTask{TaskId: taskId, Duplicate: false}, nil
}
