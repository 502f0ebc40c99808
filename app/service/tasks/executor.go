package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/do"
)

// Executor runs one named tool against the task store. Implementations
// never panic on bad arguments; failures come back as structured results.
type Executor interface {
	Execute(ctx context.Context, toolName string, args map[string]any) *Result
	Specs() []ToolSpec
}

var _ Executor = (*Service)(nil)

// Service is the default executor over the sqlite task store.
type Service struct {
	store *Store
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		store: do.MustInvoke[*Store](di),
	}, nil
}

func NewWithStore(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Execute(ctx context.Context, toolName string, args map[string]any) *Result {
	var result *Result

	switch toolName {
	case ToolAddTask:
		result = s.addTask(ctx, args)
	case ToolListTasks:
		result = s.listTasks(ctx, args)
	case ToolUpdateTask:
		result = s.updateTask(ctx, args)
	case ToolCompleteTask:
		result = s.completeTask(ctx, args)
	case ToolDeleteTask:
		result = s.deleteTask(ctx, args)
	default:
		result = errorResult(fmt.Sprintf("tool %q not found", toolName), CodeUnknownTool)
	}

	if !result.Success {
		slog.Warn("Tool execution failed",
			"tool", toolName,
			"code", result.Code,
			"error", result.Error,
		)
	}

	return result
}

func (s *Service) addTask(ctx context.Context, args map[string]any) *Result {
	title := strings.TrimSpace(stringArg(args, "title"))
	description := strings.TrimSpace(stringArg(args, "description"))

	if title == "" {
		return errorResult("title is required and must be between 1 and 255 characters", CodeValidation)
	}
	if len(title) > maxTitleLength {
		return errorResult("title must be between 1 and 255 characters", CodeValidation)
	}
	if len(description) > maxDescriptionLength {
		return errorResult("description must be 1000 characters or less", CodeValidation)
	}

	task, err := s.store.Create(ctx, title, description)
	if err != nil {
		return storeError(err)
	}

	return successResult(task, "Task created successfully")
}

func (s *Service) listTasks(ctx context.Context, args map[string]any) *Result {
	status := stringArg(args, "status")
	if status != "" && status != StatusPending && status != StatusCompleted {
		return errorResult("status must be 'pending' or 'completed'", CodeValidation)
	}

	limit := intArg(args, "limit")
	offset := intArg(args, "offset")

	list, err := s.store.List(ctx, status, limit, offset)
	if err != nil {
		return storeError(err)
	}

	return successResult(list, "Tasks listed successfully")
}

func (s *Service) updateTask(ctx context.Context, args map[string]any) *Result {
	id, ok := idArg(args)
	if !ok {
		return errorResult("task_id must be a positive integer", CodeValidation)
	}

	var title, description *string

	if v := strings.TrimSpace(stringArg(args, "title")); v != "" {
		if len(v) > maxTitleLength {
			return errorResult("title must be between 1 and 255 characters", CodeValidation)
		}
		title = &v
	}

	if v := strings.TrimSpace(stringArg(args, "description")); v != "" {
		if len(v) > maxDescriptionLength {
			return errorResult("description must be 1000 characters or less", CodeValidation)
		}
		description = &v
	}

	if title == nil && description == nil {
		return errorResult("nothing to update: provide a title or a description", CodeValidation)
	}

	task, err := s.store.Update(ctx, id, title, description)
	if err != nil {
		return storeError(err)
	}

	return successResult(task, "Task updated successfully")
}

func (s *Service) completeTask(ctx context.Context, args map[string]any) *Result {
	id, ok := idArg(args)
	if !ok {
		return errorResult("task_id must be a positive integer", CodeValidation)
	}

	task, err := s.store.Complete(ctx, id)
	if err != nil {
		return storeError(err)
	}

	return successResult(task, "Task completed successfully")
}

func (s *Service) deleteTask(ctx context.Context, args map[string]any) *Result {
	id, ok := idArg(args)
	if !ok {
		return errorResult("task_id must be a positive integer", CodeValidation)
	}

	task, err := s.store.Delete(ctx, id)
	if err != nil {
		return storeError(err)
	}

	return successResult(task, "Task deleted successfully")
}

func storeError(err error) *Result {
	if errors.Is(err, ErrNotFound) {
		return errorResult("task not found", CodeNotFound)
	}

	return errorResult(fmt.Sprintf("database error occurred: %v", err), CodeDatabase)
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

// intArg tolerates float64 because tool arguments can arrive via JSON.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func idArg(args map[string]any) (int64, bool) {
	switch v := args["task_id"].(type) {
	case int64:
		if v >= 1 {
			return v, true
		}
	case int:
		if v >= 1 {
			return int64(v), true
		}
	case float64:
		if v >= 1 {
			return int64(v), true
		}
	}

	return 0, false
}

func (s *Service) Specs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolAddTask,
			Description: "Create a new task with title and optional description",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       map[string]any{"type": "string", "description": "Task title"},
					"description": map[string]any{"type": "string", "description": "Optional task description"},
				},
				"required": []string{"title"},
			},
		},
		{
			Name:        ToolListTasks,
			Description: "List all tasks or filter by status",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"status": map[string]any{"type": "string", "enum": []string{StatusPending, StatusCompleted}, "description": "Filter by status"},
					"limit":  map[string]any{"type": "integer", "description": "Maximum number of tasks to return"},
					"offset": map[string]any{"type": "integer", "description": "Number of tasks to skip"},
				},
			},
		},
		{
			Name:        ToolUpdateTask,
			Description: "Update task title and/or description by ID",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id":     map[string]any{"type": "integer", "description": "Task ID"},
					"title":       map[string]any{"type": "string", "description": "New task title"},
					"description": map[string]any{"type": "string", "description": "New task description"},
				},
				"required": []string{"task_id"},
			},
		},
		{
			Name:        ToolCompleteTask,
			Description: "Mark a task as completed",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{"type": "integer", "description": "Task ID to complete"},
				},
				"required": []string{"task_id"},
			},
		},
		{
			Name:        ToolDeleteTask,
			Description: "Delete a task permanently",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{"type": "integer", "description": "Task ID to delete"},
				},
				"required": []string{"task_id"},
			},
		},
	}
}
