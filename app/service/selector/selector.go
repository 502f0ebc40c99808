// Package selector turns a classified intent into at most one tool call.
package selector

import (
	"log/slog"
	"strings"
	"time"

	"taskchat/app/service/conversation"
	"taskchat/app/service/intent"
	"taskchat/app/service/reference"
	"taskchat/app/service/tasks"
)

const fallbackTitle = "New task"

// thresholds encode the policy that destructive and structural actions
// need more certainty than read-only ones. Confidence equal to the
// threshold passes.
var thresholds = map[intent.Type]float64{
	intent.TypeCreate:   0.80,
	intent.TypeList:     0.70,
	intent.TypeUpdate:   0.85,
	intent.TypeComplete: 0.80,
	intent.TypeDelete:   0.90,
}

var intentTools = map[intent.Type]string{
	intent.TypeCreate:   tasks.ToolAddTask,
	intent.TypeList:     tasks.ToolListTasks,
	intent.TypeUpdate:   tasks.ToolUpdateTask,
	intent.TypeComplete: tasks.ToolCompleteTask,
	intent.TypeDelete:   tasks.ToolDeleteTask,
}

// destructiveTools require an explicit confirmation round-trip before
// execution.
var destructiveTools = map[string]bool{
	tasks.ToolDeleteTask: true,
}

// targetIntents need a task reference resolved from the message.
var targetIntents = map[intent.Type]bool{
	intent.TypeUpdate:   true,
	intent.TypeComplete: true,
	intent.TypeDelete:   true,
}

// Selection is a chosen tool with its arguments. Execution is the
// orchestrator's job; the selector never runs anything.
type Selection struct {
	ToolName             string
	Confidence           float64
	Parameters           map[string]any
	RequiresConfirmation bool
}

type Selector struct {
	resolver    *reference.Resolver
	staleWindow time.Duration
}

func New(resolver *reference.Resolver, staleWindow time.Duration) *Selector {
	return &Selector{
		resolver:    resolver,
		staleWindow: staleWindow,
	}
}

// NeedsTarget reports whether the intent acts on a specific task.
func NeedsTarget(intentType intent.Type) bool {
	return targetIntents[intentType]
}

// Select picks the tool for an intent, or nothing when confidence is
// below the per-intent threshold or a required target cannot be resolved.
func (s *Selector) Select(res intent.Result, meta *conversation.Metadata, message string) *Selection {
	threshold, ok := thresholds[res.Type]
	if !ok {
		return nil
	}

	if res.Confidence < threshold {
		return nil
	}

	toolName := intentTools[res.Type]
	parameters := map[string]any{}

	if targetIntents[res.Type] {
		s.warnIfStale(meta)

		taskID, found := s.resolver.Resolve(meta.TaskReferences, message)
		if !found {
			slog.Warn("No task reference found",
				"intent", res.Type,
				"positions", s.resolver.Positions(message),
			)

			return nil
		}

		parameters["task_id"] = taskID
	}

	switch res.Type {
	case intent.TypeCreate:
		title := strings.TrimSpace(res.Entities.Title)
		if title == "" {
			title = fallbackTitle
		}

		parameters["title"] = title

	case intent.TypeList:
		if res.Entities.StatusFilter != "" {
			parameters["status"] = res.Entities.StatusFilter
		}

	case intent.TypeUpdate:
		if res.Entities.NewTitle != "" {
			parameters["title"] = res.Entities.NewTitle
		}
		if res.Entities.NewDescription != "" {
			parameters["description"] = res.Entities.NewDescription
		}
	}

	return &Selection{
		ToolName:             toolName,
		Confidence:           res.Confidence,
		Parameters:           parameters,
		RequiresConfirmation: destructiveTools[toolName],
	}
}

// warnIfStale flags reference tables older than the staleness window.
// Resolution still proceeds; operating on stale references is an explicit
// policy, not an error.
func (s *Selector) warnIfStale(meta *conversation.Metadata) {
	age, ok := meta.ReferenceAge(time.Now())
	if !ok {
		return
	}

	if age > s.staleWindow {
		slog.Warn("Task references are stale",
			"age", age,
			"window", s.staleWindow,
		)
	}
}
