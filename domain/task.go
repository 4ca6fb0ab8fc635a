package domain

import (
	"strings"
	"time"
)

// Priority is the urgency level assigned to a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status tracks a task through its lifecycle. Tasks only move from
// pending to completed; there is no way back.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

const (
	// DueDateLayout is the only accepted due-date format. Dates are kept
	// as plain calendar dates so they survive round-trips without
	// timezone drift.
	DueDateLayout = "2006-01-02"

	MaxTitleLength    = 200
	MaxCategoryLength = 50
)

// Task represents a single to-do item.
type Task struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"size:2000" json:"description,omitempty"`
	Priority    Priority  `gorm:"size:16;not null;default:medium" json:"priority"`
	Status      Status    `gorm:"size:16;not null;default:pending" json:"status"`
	DueDate     *string   `gorm:"size:10" json:"due_date,omitempty"`
	Category    string    `gorm:"size:50" json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue reports whether the task's due date lies strictly before the
// given day and the task is still open.
func (t *Task) IsOverdue(today string) bool {
	if t == nil || t.DueDate == nil || t.IsCompleted() {
		return false
	}
	return *t.DueDate < today
}

// ParsePriority validates a priority value. Empty input is allowed and
// maps to the default.
func ParsePriority(value string) (Priority, error) {
	switch Priority(value) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(value), nil
	default:
		return "", NewError(ErrCodeInvalidField, "invalid priority '"+value+"': must be one of low, medium, high, urgent")
	}
}

// ParseStatus validates a status value. Empty input maps to pending.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case "":
		return StatusPending, nil
	case StatusPending, StatusCompleted:
		return Status(value), nil
	default:
		return "", NewError(ErrCodeInvalidField, "invalid status '"+value+"': must be pending or completed")
	}
}

// ValidateDueDate checks the YYYY-MM-DD format. The language model is
// responsible for normalizing relative dates before they reach us; a
// malformed value here is rejected, never guessed at.
func ValidateDueDate(value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(DueDateLayout, value); err != nil {
		return WrapError(ErrCodeInvalidField, "invalid due date '"+value+"': expected YYYY-MM-DD", err)
	}
	return nil
}

// ValidateTitle rejects empty or oversized titles.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewError(ErrCodeInvalidField, "task title cannot be empty")
	}
	if len(title) > MaxTitleLength {
		return NewError(ErrCodeInvalidField, "task title is too long (max 200 characters)")
	}
	return nil
}

// NormalizeCategory lowercases and trims a category label.
func NormalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if len(category) > MaxCategoryLength {
		return "", NewError(ErrCodeInvalidField, "category name is too long (max 50 characters)")
	}
	return strings.ToLower(category), nil
}
