// Package orchestrator coordinates one conversation turn: load state,
// classify, select at most one tool, execute, format, persist.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskchat/app/client/llm"
	"taskchat/app/config"
	"taskchat/app/service/confirm"
	"taskchat/app/service/conversation"
	"taskchat/app/service/intent"
	"taskchat/app/service/reference"
	"taskchat/app/service/respond"
	"taskchat/app/service/selector"
	"taskchat/app/service/tasks"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/do"
)

const (
	listFirstGuidance = "I don't have any tasks in context. Could you please list your tasks first by saying 'show my tasks' or 'list tasks'?"
	whichTaskGuidance = "I'm not sure which task you're referring to. Could you please specify the task number? For example, 'complete task 1' or 'delete the second one'."
)

// Service is stateless per invocation; everything it needs between turns
// comes from the store.
type Service struct {
	store      conversation.Store
	executor   tasks.Executor
	fallback   Fallback
	classifier intent.Classifier
	selector   *selector.Selector
	formatter  *respond.Formatter
	humanizer  *respond.Humanizer
	validate   *validator.Validate
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWith(
		do.MustInvoke[*conversation.SQLiteStore](di),
		do.MustInvoke[*tasks.Service](di),
		do.MustInvoke[*llm.Client](di),
		time.Duration(cfg.Agent.StaleWindowSeconds)*time.Second,
		cfg.Agent.PersonalitySeed,
	), nil
}

// NewWith wires the service from explicit collaborators.
func NewWith(store conversation.Store, executor tasks.Executor, fallback Fallback, staleWindow time.Duration, personalitySeed int64) *Service {
	return &Service{
		store:      store,
		executor:   executor,
		fallback:   fallback,
		classifier: intent.NewPatternClassifier(),
		selector:   selector.New(reference.NewResolver(), staleWindow),
		formatter:  respond.NewFormatter(personalitySeed),
		humanizer:  respond.NewHumanizer(personalitySeed),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RunTurn processes one user message and returns the reply plus its
// diagnostic trace. Only unexpected internal faults (store failures,
// programming errors) come back as an error; everything else resolves to
// a user-facing response.
func (s *Service) RunTurn(ctx context.Context, req Request) (*Reply, error) {
	start := time.Now()

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	conversationID := req.ConversationID

	var (
		history []conversation.Turn
		meta    = &conversation.Metadata{}
		err     error
	)

	if conversationID != "" {
		if history, err = s.store.History(ctx, conversationID); err != nil {
			return nil, fmt.Errorf("store.History: %w", err)
		}

		if meta, err = s.store.LoadMetadata(ctx, conversationID); err != nil {
			return nil, fmt.Errorf("store.LoadMetadata: %w", err)
		}
	} else {
		conversationID = newConversationID()
	}

	// The inbound message is persisted before anything can fail, so a
	// crash mid-turn never loses user input.
	if err = s.store.AppendUserTurn(ctx, conversationID, req.UserID, req.Message); err != nil {
		return nil, fmt.Errorf("store.AppendUserTurn: %w", err)
	}

	if meta.PendingConfirmation != nil {
		return s.resolveConfirmation(ctx, conversationID, req, meta.PendingConfirmation, start)
	}

	result := s.classifier.Classify(req.Message)

	slog.Info("Intent recognized",
		"intent", result.Type,
		"confidence", result.Confidence,
		"user_id", req.UserID,
	)

	sel := s.selector.Select(result, meta, req.Message)
	if sel == nil {
		return s.replyWithoutTool(ctx, conversationID, req, history, result, start)
	}

	slog.Info("Tool selected",
		"tool", sel.ToolName,
		"requires_confirmation", sel.RequiresConfirmation,
		"user_id", req.UserID,
	)

	if sel.RequiresConfirmation {
		return s.requestConfirmation(ctx, conversationID, req, meta, result, sel, start)
	}

	return s.executeSelection(ctx, conversationID, req, result, sel, start)
}

func (s *Service) executeSelection(ctx context.Context, conversationID string, req Request, res intent.Result, sel *selector.Selection, start time.Time) (*Reply, error) {
	execResult := s.executor.Execute(ctx, sel.ToolName, sel.Parameters)

	if !execResult.Success {
		// The inbound message stays persisted; no assistant turn with a
		// successful tool record is written for a failed execution.
		return &Reply{
			ConversationID: conversationID,
			Response:       s.humanizer.HumanizeResult(execResult),
			ToolCalls:      []conversation.ToolCall{},
			Trace: Trace{
				Intent:         string(res.Type),
				Confidence:     res.Confidence,
				ToolSelected:   sel.ToolName,
				Error:          "Tool execution failed",
				ResponseTimeMS: elapsedMS(start),
			},
		}, nil
	}

	if sel.ToolName == tasks.ToolListTasks {
		if err := s.storeTaskReferences(ctx, conversationID, execResult); err != nil {
			return nil, fmt.Errorf("failed to store task references: %w", err)
		}
	}

	response := s.formatSuccess(res.Type, sel, execResult)

	toolCall := conversation.ToolCall{
		ToolName:   sel.ToolName,
		Parameters: sel.Parameters,
		Result:     execResult,
	}

	if err := s.store.AppendAssistantTurn(ctx, conversationID, req.UserID, response,
		[]conversation.ToolCall{toolCall}); err != nil {
		return nil, fmt.Errorf("store.AppendAssistantTurn: %w", err)
	}

	slog.Info("Turn completed",
		"user_id", req.UserID,
		"conversation_id", conversationID,
		"tool", sel.ToolName,
		"duration", time.Since(start),
	)

	return &Reply{
		ConversationID: conversationID,
		Response:       response,
		ToolCalls:      []conversation.ToolCall{toolCall},
		Trace: Trace{
			Intent:         string(res.Type),
			Confidence:     res.Confidence,
			ToolSelected:   sel.ToolName,
			ResponseTimeMS: elapsedMS(start),
		},
	}, nil
}

// requestConfirmation stores the pending tool call and asks for a yes/no
// instead of executing.
func (s *Service) requestConfirmation(ctx context.Context, conversationID string, req Request, meta *conversation.Metadata, res intent.Result, sel *selector.Selection, start time.Time) (*Reply, error) {
	taskID, _ := sel.Parameters["task_id"].(int64)

	title := meta.TitleFor(taskID)
	if title == "" {
		title = fmt.Sprintf("task %d", taskID)
	}

	pending := &conversation.PendingConfirmation{
		Action:     "delete",
		TaskID:     taskID,
		TaskTitle:  title,
		ToolName:   sel.ToolName,
		Parameters: sel.Parameters,
	}

	if err := s.store.MergeMetadata(ctx, conversationID, conversation.Patch{SetPending: pending}); err != nil {
		return nil, fmt.Errorf("store.MergeMetadata: %w", err)
	}

	response := confirm.Prompt(pending.Action, title)

	if err := s.store.AppendAssistantTurn(ctx, conversationID, req.UserID, response, nil); err != nil {
		return nil, fmt.Errorf("store.AppendAssistantTurn: %w", err)
	}

	return &Reply{
		ConversationID: conversationID,
		Response:       response,
		ToolCalls:      []conversation.ToolCall{},
		Trace: Trace{
			Intent:         string(res.Type),
			Confidence:     res.Confidence,
			ToolSelected:   sel.ToolName,
			Reason:         "Confirmation required",
			ResponseTimeMS: elapsedMS(start),
		},
	}, nil
}

// resolveConfirmation interprets the message as a yes/no reply to the
// pending destructive action. Anything unclear repeats the prompt and
// keeps the action pending.
func (s *Service) resolveConfirmation(ctx context.Context, conversationID string, req Request, pending *conversation.PendingConfirmation, start time.Time) (*Reply, error) {
	trace := Trace{
		Intent: "confirmation",
	}

	switch confirm.Interpret(req.Message) {
	case confirm.ReplyYes:
		execResult := s.executor.Execute(ctx, pending.ToolName, pending.Parameters)

		if err := s.store.MergeMetadata(ctx, conversationID, conversation.Patch{ClearPending: true}); err != nil {
			return nil, fmt.Errorf("store.MergeMetadata: %w", err)
		}

		if !execResult.Success {
			trace.ToolSelected = pending.ToolName
			trace.Error = "Tool execution failed"
			trace.ResponseTimeMS = elapsedMS(start)

			return &Reply{
				ConversationID: conversationID,
				Response:       s.humanizer.HumanizeResult(execResult),
				ToolCalls:      []conversation.ToolCall{},
				Trace:          trace,
			}, nil
		}

		response := confirm.Accepted(pending.Action, pending.TaskTitle)

		toolCall := conversation.ToolCall{
			ToolName:   pending.ToolName,
			Parameters: pending.Parameters,
			Result:     execResult,
		}

		if err := s.store.AppendAssistantTurn(ctx, conversationID, req.UserID, response,
			[]conversation.ToolCall{toolCall}); err != nil {
			return nil, fmt.Errorf("store.AppendAssistantTurn: %w", err)
		}

		trace.ToolSelected = pending.ToolName
		trace.Reason = "Confirmation accepted"
		trace.ResponseTimeMS = elapsedMS(start)

		return &Reply{
			ConversationID: conversationID,
			Response:       response,
			ToolCalls:      []conversation.ToolCall{toolCall},
			Trace:          trace,
		}, nil

	case confirm.ReplyNo:
		if err := s.store.MergeMetadata(ctx, conversationID, conversation.Patch{ClearPending: true}); err != nil {
			return nil, fmt.Errorf("store.MergeMetadata: %w", err)
		}

		response := confirm.Declined(pending.Action)

		if err := s.store.AppendAssistantTurn(ctx, conversationID, req.UserID, response, nil); err != nil {
			return nil, fmt.Errorf("store.AppendAssistantTurn: %w", err)
		}

		trace.Reason = "Confirmation declined"
		trace.ResponseTimeMS = elapsedMS(start)

		return &Reply{
			ConversationID: conversationID,
			Response:       response,
			ToolCalls:      []conversation.ToolCall{},
			Trace:          trace,
		}, nil

	default:
		response := confirm.Prompt(pending.Action, pending.TaskTitle)

		if err := s.store.AppendAssistantTurn(ctx, conversationID, req.UserID, response, nil); err != nil {
			return nil, fmt.Errorf("store.AppendAssistantTurn: %w", err)
		}

		trace.Reason = "Confirmation reply unclear"
		trace.ResponseTimeMS = elapsedMS(start)

		return &Reply{
			ConversationID: conversationID,
			Response:       response,
			ToolCalls:      []conversation.ToolCall{},
			Trace:          trace,
		}, nil
	}
}

// replyWithoutTool handles the no-selection outcomes: clarification
// prompts for unresolved targets, the fallback generator otherwise.
func (s *Service) replyWithoutTool(ctx context.Context, conversationID string, req Request, history []conversation.Turn, res intent.Result, start time.Time) (*Reply, error) {
	if selector.NeedsTarget(res.Type) {
		meta, err := s.store.LoadMetadata(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("store.LoadMetadata: %w", err)
		}

		response := whichTaskGuidance
		if !meta.HasReferences() {
			response = listFirstGuidance
		}

		if err = s.store.AppendAssistantTurn(ctx, conversationID, req.UserID, response, nil); err != nil {
			return nil, fmt.Errorf("store.AppendAssistantTurn: %w", err)
		}

		return &Reply{
			ConversationID: conversationID,
			Response:       response,
			ToolCalls:      []conversation.ToolCall{},
			Trace: Trace{
				Intent:         string(res.Type),
				Confidence:     res.Confidence,
				Reason:         "Missing task references",
				ResponseTimeMS: elapsedMS(start),
			},
		}, nil
	}

	fbReply, err := s.fallback.Generate(ctx, history, req.Message)
	if err != nil {
		slog.Error("Fallback generation failed", "error", err, "user_id", req.UserID)

		return &Reply{
			ConversationID: conversationID,
			Response:       s.humanizer.HumanizeError(err),
			ToolCalls:      []conversation.ToolCall{},
			Trace: Trace{
				Intent:         string(res.Type),
				Confidence:     res.Confidence,
				Error:          "Fallback generation failed",
				ResponseTimeMS: elapsedMS(start),
			},
		}, nil
	}

	if err = s.store.AppendAssistantTurn(ctx, conversationID, req.UserID, fbReply.Response, fbReply.ToolCalls); err != nil {
		return nil, fmt.Errorf("store.AppendAssistantTurn: %w", err)
	}

	return &Reply{
		ConversationID: conversationID,
		Response:       fbReply.Response,
		ToolCalls:      fbReply.ToolCalls,
		Trace: Trace{
			Intent:         string(res.Type),
			Confidence:     res.Confidence,
			Reason:         "Low confidence or unclear intent",
			ResponseTimeMS: elapsedMS(start),
		},
	}, nil
}

// storeTaskReferences overwrites the position table after a listing. The
// mapping, the cached titles and the timestamp are replaced together and
// merged into the rest of the metadata bag.
func (s *Service) storeTaskReferences(ctx context.Context, conversationID string, execResult *tasks.Result) error {
	list, ok := listFromData(execResult.Data)
	if !ok {
		return nil
	}

	references := make(map[string]int64, len(list))
	details := make([]conversation.TaskReference, 0, len(list))

	for i, task := range list {
		position := fmt.Sprint(i + 1)

		references[position] = task.ID
		details = append(details, conversation.TaskReference{
			Position: position,
			TaskID:   task.ID,
			Title:    task.Title,
		})
	}

	err := s.store.MergeMetadata(ctx, conversationID, conversation.Patch{
		References: &conversation.ReferenceSet{
			TaskReferences: references,
			TaskDetails:    details,
			ReferencedAt:   time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}

	slog.Info("Stored task references", "count", len(references))

	return nil
}

func (s *Service) formatSuccess(intentType intent.Type, sel *selector.Selection, execResult *tasks.Result) string {
	switch intentType {
	case intent.TypeCreate:
		title := paramString(sel.Parameters, "title")
		if task, ok := taskFromData(execResult.Data); ok {
			title = task.Title
		}

		return s.formatter.TaskCreated(title)

	case intent.TypeComplete:
		title := "unknown task"
		if task, ok := taskFromData(execResult.Data); ok {
			title = task.Title
		}

		return s.formatter.TaskCompleted(title)

	case intent.TypeList:
		filterName := paramString(sel.Parameters, "status")
		if filterName == "" {
			filterName = "all"
		}

		list, _ := listFromData(execResult.Data)

		return s.formatter.TaskListed(list, filterName)

	case intent.TypeDelete:
		taskID, _ := sel.Parameters["task_id"].(int64)

		title := "task"
		if task, ok := taskFromData(execResult.Data); ok {
			title = task.Title
		}

		return s.formatter.TaskDeleted(taskID, title)

	case intent.TypeUpdate:
		taskID, _ := sel.Parameters["task_id"].(int64)

		newTitle := paramString(sel.Parameters, "title")
		if task, ok := taskFromData(execResult.Data); ok {
			newTitle = task.Title
		}

		return s.formatter.TaskUpdated(taskID, newTitle)
	}

	return "Operation completed successfully"
}

func taskFromData(data any) (*tasks.Task, bool) {
	switch v := data.(type) {
	case *tasks.Task:
		return v, v != nil
	case tasks.Task:
		return &v, true
	default:
		return nil, false
	}
}

func listFromData(data any) ([]tasks.Task, bool) {
	list, ok := data.([]tasks.Task)
	return list, ok
}

func paramString(params map[string]any, key string) string {
	value, _ := params[key].(string)
	return value
}

func newConversationID() string {
	return "conv_" + uuid.NewString()[:8]
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
