package agent

import "github.com/taskpilot/backend/pkg/llm"

// Operation identifiers exposed to the model. This set is closed: the
// dispatcher maps exactly these names to handlers and nothing else.
const (
	OpAddTask      = "add_task"
	OpListTasks    = "list_tasks"
	OpUpdateTask   = "update_task"
	OpCompleteTask = "complete_task"
	OpDeleteTask   = "delete_task"
)

// toolSchema is the single contract boundary with the language model. The
// declared enums and formats are advisory for the model; handlers
// re-validate every argument regardless.
var toolSchema = []llm.ToolDef{
	{
		Name: OpAddTask,
		Description: "Add a new task to the task list. Use this when the user wants to create, " +
			"add, or remember a new task or to-do item.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Short title of the task",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional longer description",
				},
				"priority": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"low", "medium", "high", "urgent"},
					"description": "Priority level (defaults to 'medium')",
				},
				"due_date": map[string]interface{}{
					"type": "string",
					"description": "Due date in YYYY-MM-DD format. The assistant must convert " +
						"natural language dates (e.g. 'tomorrow', 'next Friday') to " +
						"this format before calling this tool.",
				},
				"category": map[string]interface{}{
					"type": "string",
					"description": "Optional category or tag for the task, as a short lowercase " +
						"label (e.g. 'shopping', 'work', 'personal', 'health'). " +
						"Omit if the user doesn't specify one.",
				},
			},
			"required": []string{"title"},
		},
	},
	{
		Name: OpListTasks,
		Description: "List tasks from the task list. Supports optional filtering by status, " +
			"priority, and/or category. Supports optional sorting by due_date or priority.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"pending", "completed"},
					"description": "Filter by status. Omit to show all.",
				},
				"priority": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"low", "medium", "high", "urgent"},
					"description": "Filter by priority. Omit to show all.",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Filter by category (e.g. 'shopping', 'work'). Omit to show all.",
				},
				"sort_by": map[string]interface{}{
					"type": "string",
					"enum": []string{"due_date", "priority", "created_at"},
					"description": "Sort results by this field. Defaults to 'id' if omitted. " +
						"'due_date' puts tasks with nearest due dates first (nulls last). " +
						"'priority' orders urgent > high > medium > low.",
				},
			},
			"required": []string{},
		},
	},
	{
		Name: OpUpdateTask,
		Description: "Update fields of an existing task. The user refers to the task by its " +
			"numeric ID. Only include fields that are being changed.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_id": map[string]interface{}{
					"type":        "integer",
					"description": "The numeric ID of the task to update",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "New title",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description",
				},
				"priority": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"low", "medium", "high", "urgent"},
					"description": "New priority level",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"completed"},
					"description": "New status. Completed tasks cannot be reopened.",
				},
				"due_date": map[string]interface{}{
					"type":        "string",
					"description": "New due date in YYYY-MM-DD format",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "New category label, or empty string to remove the category",
				},
			},
			"required": []string{"task_id"},
		},
	},
	{
		Name:        OpCompleteTask,
		Description: "Mark a task as completed. The user refers to the task by its numeric ID.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_id": map[string]interface{}{
					"type":        "integer",
					"description": "The numeric ID of the task to complete",
				},
			},
			"required": []string{"task_id"},
		},
	},
	{
		Name:        OpDeleteTask,
		Description: "Permanently delete a task. The user refers to the task by its numeric ID.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_id": map[string]interface{}{
					"type":        "integer",
					"description": "The numeric ID of the task to delete",
				},
			},
			"required": []string{"task_id"},
		},
	},
}

// ToolSchema returns the operation descriptors sent to the model.
func ToolSchema() []llm.ToolDef {
	return toolSchema
}
