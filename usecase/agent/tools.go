package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
)

// Outcome is the structured result of one executed operation. Failures are
// data, not errors: the orchestrator feeds them back to the model so it can
// explain the problem conversationally.
type Outcome struct {
	Operation string           `json:"operation"`
	OK        bool             `json:"ok"`
	ErrorKind domain.ErrorCode `json:"error_kind,omitempty"`
	Message   string           `json:"message"`
	Task      *domain.Task     `json:"task,omitempty"`
	Tasks     []domain.Task    `json:"tasks,omitempty"`
}

func success(operation, message string) Outcome {
	return Outcome{Operation: operation, OK: true, Message: message}
}

func failure(operation string, err error) Outcome {
	return Outcome{
		Operation: operation,
		OK:        false,
		ErrorKind: domain.CodeOf(err),
		Message:   err.Error(),
	}
}

func invalid(operation, message string) Outcome {
	return Outcome{
		Operation: operation,
		OK:        false,
		ErrorKind: domain.ErrCodeInvalidField,
		Message:   message,
	}
}

// dispatch resolves an operation by name and executes it. Unknown names
// produce a failed outcome rather than an error: the model may hallucinate
// a tool and deserves a chance to recover.
func (uc *UseCase) dispatch(ctx context.Context, name string, args Args) Outcome {
	switch name {
	case OpAddTask:
		return uc.addTask(ctx, args)
	case OpListTasks:
		return uc.listTasks(ctx, args)
	case OpUpdateTask:
		return uc.updateTask(ctx, args)
	case OpCompleteTask:
		return uc.completeTask(ctx, args)
	case OpDeleteTask:
		return uc.deleteTask(ctx, args)
	default:
		uc.logger.Warn("unknown operation requested", zap.String("operation", name))
		return invalid(name, fmt.Sprintf("unknown operation '%s'", name))
	}
}

func (uc *UseCase) addTask(ctx context.Context, args Args) Outcome {
	title, err := args.String("title")
	if err != nil {
		return invalid(OpAddTask, err.Error())
	}
	title = strings.TrimSpace(title)
	if err := domain.ValidateTitle(title); err != nil {
		return failure(OpAddTask, err)
	}

	priority, err := domain.ParsePriority(args.StringOr("priority", ""))
	if err != nil {
		return failure(OpAddTask, err)
	}

	dueDate := args.StringOr("due_date", "")
	if err := domain.ValidateDueDate(dueDate); err != nil {
		return failure(OpAddTask, err)
	}

	category, err := domain.NormalizeCategory(args.StringOr("category", ""))
	if err != nil {
		return failure(OpAddTask, err)
	}

	task := &domain.Task{
		Title:       title,
		Description: args.StringOr("description", ""),
		Priority:    priority,
		Status:      domain.StatusPending,
		Category:    category,
	}
	if dueDate != "" {
		task.DueDate = &dueDate
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		uc.logger.Error("add_task failed", zap.Error(err))
		return failure(OpAddTask, domain.WrapError(domain.ErrCodeInternal, "database error while adding task", err))
	}

	msg := fmt.Sprintf("Task added (ID %d): '%s' | priority: %s", created.ID, created.Title, created.Priority)
	if created.DueDate != nil {
		msg += " | due: " + *created.DueDate
	}
	if created.Category != "" {
		msg += " | category: " + created.Category
	}

	out := success(OpAddTask, msg)
	out.Task = created
	return out
}

func (uc *UseCase) listTasks(ctx context.Context, args Args) Outcome {
	filter := repository.TaskFilter{}

	// An explicit empty string means "no filter", same as an absent
	// argument. Parsing it would silently apply the enum default.
	if raw := args.StringOr("status", ""); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return failure(OpListTasks, err)
		}
		filter.Status = string(status)
	}
	if raw := args.StringOr("priority", ""); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return failure(OpListTasks, err)
		}
		filter.Priority = string(priority)
	}
	if raw := args.StringOr("category", ""); raw != "" {
		category, err := domain.NormalizeCategory(raw)
		if err != nil {
			return failure(OpListTasks, err)
		}
		filter.Category = category
	}
	switch sortBy := args.StringOr("sort_by", ""); sortBy {
	case "", repository.SortByDueDate, repository.SortByPriority, repository.SortByCreatedAt:
		filter.SortBy = sortBy
	default:
		return invalid(OpListTasks, fmt.Sprintf("invalid sort_by '%s': must be due_date, priority or created_at", sortBy))
	}

	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		uc.logger.Error("list_tasks failed", zap.Error(err))
		return failure(OpListTasks, domain.WrapError(domain.ErrCodeInternal, "database error while listing tasks", err))
	}

	if len(tasks) == 0 {
		return success(OpListTasks, "No tasks found.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d task(s):", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(&b, "\n  [%d] %s | priority: %s | status: %s", t.ID, t.Title, t.Priority, t.Status)
		if t.DueDate != nil {
			b.WriteString(" | due: " + *t.DueDate)
		}
		if t.Category != "" {
			b.WriteString(" | category: " + t.Category)
		}
	}

	out := success(OpListTasks, b.String())
	out.Tasks = tasks
	return out
}

func (uc *UseCase) updateTask(ctx context.Context, args Args) Outcome {
	id, err := args.Int64("task_id")
	if err != nil {
		return invalid(OpUpdateTask, err.Error())
	}

	fields := map[string]interface{}{}

	if args.Has("title") {
		title := strings.TrimSpace(args.StringOr("title", ""))
		if err := domain.ValidateTitle(title); err != nil {
			return failure(OpUpdateTask, err)
		}
		fields["title"] = title
	}
	if args.Has("description") {
		fields["description"] = args.StringOr("description", "")
	}
	if args.Has("priority") {
		priority, err := domain.ParsePriority(args.StringOr("priority", ""))
		if err != nil {
			return failure(OpUpdateTask, err)
		}
		fields["priority"] = string(priority)
	}
	if args.Has("status") {
		status, err := domain.ParseStatus(args.StringOr("status", ""))
		if err != nil {
			return failure(OpUpdateTask, err)
		}
		// Status only moves forward. The schema offers completed alone,
		// but the argument is model output and gets checked anyway.
		if status != domain.StatusCompleted {
			return invalid(OpUpdateTask, "status can only be set to 'completed'; completed tasks cannot be reopened")
		}
		fields["status"] = string(status)
	}
	if args.Has("due_date") {
		dueDate := args.StringOr("due_date", "")
		if err := domain.ValidateDueDate(dueDate); err != nil {
			return failure(OpUpdateTask, err)
		}
		if dueDate == "" {
			fields["due_date"] = nil
		} else {
			fields["due_date"] = dueDate
		}
	}
	if args.Has("category") {
		category, err := domain.NormalizeCategory(args.StringOr("category", ""))
		if err != nil {
			return failure(OpUpdateTask, err)
		}
		// Empty string removes the category.
		fields["category"] = category
	}

	if len(fields) == 0 {
		return invalid(OpUpdateTask, "no fields to update")
	}

	updated, err := uc.tasks.Update(ctx, id, fields)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return failure(OpUpdateTask, domain.NewError(domain.ErrCodeNotFound, fmt.Sprintf("no task found with ID %d", id)))
		}
		uc.logger.Error("update_task failed", zap.Int64("task_id", id), zap.Error(err))
		return failure(OpUpdateTask, domain.WrapError(domain.ErrCodeInternal, "database error while updating task", err))
	}

	out := success(OpUpdateTask, fmt.Sprintf("Task %d updated successfully.", id))
	out.Task = updated
	return out
}

func (uc *UseCase) completeTask(ctx context.Context, args Args) Outcome {
	id, err := args.Int64("task_id")
	if err != nil {
		return invalid(OpCompleteTask, err.Error())
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return failure(OpCompleteTask, domain.NewError(domain.ErrCodeNotFound, fmt.Sprintf("no task found with ID %d", id)))
		}
		uc.logger.Error("complete_task failed", zap.Int64("task_id", id), zap.Error(err))
		return failure(OpCompleteTask, domain.WrapError(domain.ErrCodeInternal, "database error while completing task", err))
	}

	// Completing an already-completed task is not an error.
	if task.IsCompleted() {
		out := success(OpCompleteTask, fmt.Sprintf("Task %d is already completed.", id))
		out.Task = task
		return out
	}

	updated, err := uc.tasks.Update(ctx, id, map[string]interface{}{"status": string(domain.StatusCompleted)})
	if err != nil {
		uc.logger.Error("complete_task failed", zap.Int64("task_id", id), zap.Error(err))
		return failure(OpCompleteTask, domain.WrapError(domain.ErrCodeInternal, "database error while completing task", err))
	}

	out := success(OpCompleteTask, fmt.Sprintf("Task %d marked as completed: '%s'", id, updated.Title))
	out.Task = updated
	return out
}

func (uc *UseCase) deleteTask(ctx context.Context, args Args) Outcome {
	id, err := args.Int64("task_id")
	if err != nil {
		return invalid(OpDeleteTask, err.Error())
	}

	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return failure(OpDeleteTask, domain.NewError(domain.ErrCodeNotFound, fmt.Sprintf("no task found with ID %d", id)))
		}
		uc.logger.Error("delete_task failed", zap.Int64("task_id", id), zap.Error(err))
		return failure(OpDeleteTask, domain.WrapError(domain.ErrCodeInternal, "database error while deleting task", err))
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return failure(OpDeleteTask, domain.NewError(domain.ErrCodeNotFound, fmt.Sprintf("no task found with ID %d", id)))
		}
		uc.logger.Error("delete_task failed", zap.Int64("task_id", id), zap.Error(err))
		return failure(OpDeleteTask, domain.WrapError(domain.ErrCodeInternal, "database error while deleting task", err))
	}

	return success(OpDeleteTask, fmt.Sprintf("Task %d deleted: '%s'", id, task.Title))
}
