package conversation

import (
	"encoding/json"
	"time"
)

// currentMetadataVersion is bumped whenever the metadata shape changes.
// Records written before versioning (version 0) are upgraded on read.
const currentMetadataVersion = 1

// TaskReference keeps the human-readable title next to the position->id
// mapping so confirmations can display it without re-querying storage.
type TaskReference struct {
	Position string `json:"position"`
	TaskID   int64  `json:"id"`
	Title    string `json:"title"`
}

// PendingConfirmation is present only while a destructive action awaits
// an explicit yes/no reply.
type PendingConfirmation struct {
	Action     string         `json:"action"`
	TaskID     int64          `json:"task_id"`
	TaskTitle  string         `json:"task_title"`
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters"`
}

// Metadata is the typed conversation metadata bag.
type Metadata struct {
	Version             int                  `json:"version"`
	TaskReferences      map[string]int64     `json:"task_references,omitempty"`
	TaskDetails         []TaskReference      `json:"task_details,omitempty"`
	ReferencedAt        *time.Time           `json:"referenced_at,omitempty"`
	PendingConfirmation *PendingConfirmation `json:"pending_confirmation,omitempty"`
}

// ReferenceSet replaces the reference table, its details and its timestamp
// as one unit. The three fields are never written separately.
type ReferenceSet struct {
	TaskReferences map[string]int64
	TaskDetails    []TaskReference
	ReferencedAt   time.Time
}

// Patch is a partial metadata update. Unset fields leave the stored
// metadata untouched.
type Patch struct {
	References   *ReferenceSet
	SetPending   *PendingConfirmation
	ClearPending bool
}

// Apply merges the patch into the metadata in place.
func (m *Metadata) Apply(p Patch) {
	m.Version = currentMetadataVersion

	if p.References != nil {
		refs := p.References

		m.TaskReferences = refs.TaskReferences
		m.TaskDetails = refs.TaskDetails

		at := refs.ReferencedAt
		m.ReferencedAt = &at
	}

	if p.SetPending != nil {
		m.PendingConfirmation = p.SetPending
	} else if p.ClearPending {
		m.PendingConfirmation = nil
	}
}

// HasReferences reports whether a listing has populated the reference table.
func (m *Metadata) HasReferences() bool {
	return len(m.TaskReferences) > 0
}

// ReferenceAge returns how long ago the reference table was populated.
func (m *Metadata) ReferenceAge(now time.Time) (time.Duration, bool) {
	if m.ReferencedAt == nil {
		return 0, false
	}

	return now.Sub(*m.ReferencedAt), true
}

// TitleFor returns the cached title for a task id, if the listing that
// produced the reference table recorded one.
func (m *Metadata) TitleFor(taskID int64) string {
	for _, detail := range m.TaskDetails {
		if detail.TaskID == taskID {
			return detail.Title
		}
	}

	return ""
}

// DecodeMetadata parses a stored metadata record, defaulting older or
// empty records to the current shape.
func DecodeMetadata(data []byte) (*Metadata, error) {
	result := Metadata{
		Version: currentMetadataVersion,
	}

	if len(data) == 0 {
		return &result, nil
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	if result.Version == 0 {
		result.Version = currentMetadataVersion
	}

	return &result, nil
}
