package orchestrator

import (
	"context"

	"taskchat/app/client/llm"
	"taskchat/app/service/conversation"
)

// Request is one inbound user message. The transport layer validates
// bounds before calling the core; the orchestrator re-checks them so the
// core holds its own invariants regardless of caller.
type Request struct {
	UserID         string `validate:"required"`
	Message        string `validate:"required,min=1,max=10000"`
	ConversationID string `validate:"omitempty,max=100"`
}

// Trace is the diagnostic record attached to every reply.
type Trace struct {
	Intent         string  `json:"intent,omitempty"`
	Confidence     float64 `json:"confidence"`
	ToolSelected   string  `json:"tool_selected,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	Error          string  `json:"error,omitempty"`
	ResponseTimeMS float64 `json:"response_time_ms"`
}

// Reply is the outcome of one turn.
type Reply struct {
	ConversationID string
	Response       string
	ToolCalls      []conversation.ToolCall
	Trace          Trace
}

// Fallback generates a free-form reply when no deterministic tool action
// is available.
type Fallback interface {
	Generate(ctx context.Context, history []conversation.Turn, message string) (*llm.Reply, error)
}
