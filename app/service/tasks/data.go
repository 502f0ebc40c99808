package tasks

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 1000
	defaultListLimit     = 50
)

// Error codes reported by the executor. Stable so the humanizer and the
// fallback model can match on them.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "TASK_NOT_FOUND"
	CodeDatabase    = "DATABASE_ERROR"
	CodeUnknownTool = "UNKNOWN_TOOL"
)

// Fixed tool names of the executor surface.
const (
	ToolAddTask      = "add_task"
	ToolListTasks    = "list_tasks"
	ToolUpdateTask   = "update_task"
	ToolCompleteTask = "complete_task"
	ToolDeleteTask   = "delete_task"
)

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Result is the structured outcome of a tool invocation.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ToolSpec describes one tool for the fallback model and the MCP surface.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func successResult(data any, message string) *Result {
	return &Result{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func errorResult(errMsg, code string) *Result {
	return &Result{
		Success: false,
		Error:   errMsg,
		Code:    code,
	}
}
