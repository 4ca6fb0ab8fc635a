package transport

import (
	"github.com/taskpilot/backend/usecase/agent"
	"github.com/taskpilot/backend/usecase/task"
)

// CommandResponse is returned by POST /api/command. Ok reflects
// conversational success only; individual operation failures are visible
// in Operations.
type CommandResponse struct {
	Ok         bool            `json:"ok"`
	Reply      string          `json:"reply"`
	Operations []agent.Outcome `json:"operations,omitempty"`
	Tasks      []task.TaskView `json:"tasks"`
	Categories []string        `json:"categories"`
}

// TasksResponse is returned by GET /api/tasks.
type TasksResponse struct {
	Tasks      []task.TaskView `json:"tasks"`
	Categories []string        `json:"categories"`
}

// ErrorResponse is the JSON shape of every error the API emits.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}
