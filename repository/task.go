package repository

import (
	"context"

	"github.com/taskpilot/backend/domain"
)

// Sort orders accepted by TaskFilter.SortBy. The zero value orders by id.
const (
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"
	SortByCreatedAt = "created_at"
)

// TaskFilter narrows and orders List results. Empty fields match everything.
type TaskFilter struct {
	Status   string
	Priority string
	Category string
	SortBy   string
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}
