package conversation

import (
	"context"
)

// Store persists conversation turns and metadata between requests.
//
// MergeMetadata is read-merge-write; callers that run concurrent turns on
// the same conversation id need the implementation to serialize writes per
// conversation, otherwise one write can be lost. The sqlite implementation
// serializes through the database write lock.
type Store interface {
	History(ctx context.Context, conversationID string) ([]Turn, error)
	LoadMetadata(ctx context.Context, conversationID string) (*Metadata, error)
	MergeMetadata(ctx context.Context, conversationID string, patch Patch) error
	AppendUserTurn(ctx context.Context, conversationID, userID, text string) error
	AppendAssistantTurn(ctx context.Context, conversationID, userID, text string, toolCalls []ToolCall) error
}
