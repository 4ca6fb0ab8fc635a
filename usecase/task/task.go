// Package task is the read side used by the UI: the browser re-fetches the
// full task list after each command instead of patching state locally.
package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
)

// TaskView decorates a task with display-only attributes.
type TaskView struct {
	domain.Task
	Overdue bool `json:"overdue"`
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Tests use it to pin "today" for
// overdue computation.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// ListTasks returns all tasks ordered by id, each flagged as overdue when
// its due date has passed and it is still pending.
func (uc *UseCase) ListTasks(ctx context.Context) ([]TaskView, error) {
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, err
	}

	today := uc.now().Format(domain.DueDateLayout)
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, TaskView{
			Task:    t,
			Overdue: t.IsOverdue(today),
		})
	}
	return views, nil
}

// Categories returns the distinct non-empty category labels in use.
func (uc *UseCase) Categories(ctx context.Context) ([]string, error) {
	return uc.tasks.Categories(ctx)
}
