package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"taskchat/app/storage"

	"github.com/samber/do"
	"github.com/samber/oops"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps turns and metadata in the shared sqlite database.
type SQLiteStore struct {
	db *storage.DB
}

func NewStore(di *do.Injector) (*SQLiteStore, error) {
	db := do.MustInvoke[*storage.DB](di)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, oops.Errorf("failed to migrate conversation tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS conversation_turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_calls TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_turns_conversation
			ON conversation_turns(conversation_id, id);
		CREATE TABLE IF NOT EXISTS conversation_metadata (
			conversation_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (s *SQLiteStore) History(ctx context.Context, conversationID string) ([]Turn, error) {
	rows, err := s.db.Conn.QueryContext(ctx, `
		SELECT role, content, tool_calls, created_at
		FROM conversation_turns
		WHERE conversation_id = ?
		ORDER BY id ASC
	`, conversationID)
	if err != nil {
		return nil, oops.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var result []Turn

	for rows.Next() {
		var (
			turn      Turn
			toolCalls sql.NullString
			createdAt time.Time
		)

		if err = rows.Scan(&turn.Role, &turn.Content, &toolCalls, &createdAt); err != nil {
			return nil, oops.Errorf("failed to scan turn: %w", err)
		}

		if toolCalls.Valid && toolCalls.String != "" {
			if err = json.Unmarshal([]byte(toolCalls.String), &turn.ToolCalls); err != nil {
				return nil, oops.Errorf("failed to parse tool calls: %w", err)
			}
		}

		turn.Timestamp = createdAt
		result = append(result, turn)
	}

	if err = rows.Err(); err != nil {
		return nil, oops.Errorf("failed to read turns: %w", err)
	}

	return result, nil
}

func (s *SQLiteStore) LoadMetadata(ctx context.Context, conversationID string) (*Metadata, error) {
	var data string

	err := s.db.Conn.QueryRowContext(ctx, `
		SELECT data FROM conversation_metadata WHERE conversation_id = ?
	`, conversationID).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return DecodeMetadata(nil)
	}
	if err != nil {
		return nil, oops.Errorf("failed to query metadata: %w", err)
	}

	meta, err := DecodeMetadata([]byte(data))
	if err != nil {
		return nil, oops.Errorf("failed to parse metadata: %w", err)
	}

	return meta, nil
}

func (s *SQLiteStore) MergeMetadata(ctx context.Context, conversationID string, patch Patch) error {
	tx, err := s.db.Conn.BeginTx(ctx, nil)
	if err != nil {
		return oops.Errorf("failed to begin metadata tx: %w", err)
	}
	defer tx.Rollback()

	var stored string

	err = tx.QueryRowContext(ctx, `
		SELECT data FROM conversation_metadata WHERE conversation_id = ?
	`, conversationID).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return oops.Errorf("failed to read metadata: %w", err)
	}

	meta, err := DecodeMetadata([]byte(stored))
	if err != nil {
		return oops.Errorf("failed to parse metadata: %w", err)
	}

	meta.Apply(patch)

	data, err := json.Marshal(meta)
	if err != nil {
		return oops.Errorf("failed to encode metadata: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversation_metadata (conversation_id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(conversation_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, conversationID, string(data))
	if err != nil {
		return oops.Errorf("failed to write metadata: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return oops.Errorf("failed to commit metadata: %w", err)
	}

	return nil
}

func (s *SQLiteStore) AppendUserTurn(ctx context.Context, conversationID, userID, text string) error {
	return s.appendTurn(ctx, conversationID, userID, RoleUser, text, nil)
}

func (s *SQLiteStore) AppendAssistantTurn(ctx context.Context, conversationID, userID, text string, toolCalls []ToolCall) error {
	return s.appendTurn(ctx, conversationID, userID, RoleAssistant, text, toolCalls)
}

func (s *SQLiteStore) appendTurn(ctx context.Context, conversationID, userID string, role Role, text string, toolCalls []ToolCall) error {
	var encoded sql.NullString

	if len(toolCalls) > 0 {
		data, err := json.Marshal(toolCalls)
		if err != nil {
			return oops.Errorf("failed to encode tool calls: %w", err)
		}

		encoded = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.Conn.ExecContext(ctx, `
		INSERT INTO conversation_turns (conversation_id, user_id, role, content, tool_calls)
		VALUES (?, ?, ?, ?, ?)
	`, conversationID, userID, role, text, encoded)
	if err != nil {
		return oops.Errorf("failed to insert turn: %w", err)
	}

	return nil
}
