package selector

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskchat/app/service/conversation"
	"taskchat/app/service/intent"
	"taskchat/app/service/reference"
	"taskchat/app/service/tasks"
)

func newSelector() *Selector {
	return New(reference.NewResolver(), time.Hour)
}

func emptyMeta() *conversation.Metadata {
	meta, _ := conversation.DecodeMetadata(nil)

	return meta
}

func metaWithRefs(refs map[string]int64) *conversation.Metadata {
	meta := emptyMeta()
	meta.TaskReferences = refs

	return meta
}

func TestSelect_CreateAtThreshold(t *testing.T) {
	s := newSelector()

	sel := s.Select(intent.Result{
		Type:       intent.TypeCreate,
		Confidence: 0.80,
		Entities:   intent.Entities{Title: "buy milk"},
	}, emptyMeta(), "add buy milk")

	require.NotNil(t, sel)
	assert.Equal(t, tasks.ToolAddTask, sel.ToolName)
	assert.Equal(t, "buy milk", sel.Parameters["title"])
	assert.False(t, sel.RequiresConfirmation)
}

func TestSelect_BelowThreshold(t *testing.T) {
	s := newSelector()

	sel := s.Select(intent.Result{
		Type:       intent.TypeCreate,
		Confidence: 0.79,
	}, emptyMeta(), "hmm")

	assert.Nil(t, sel)
}

func TestSelect_CreateFallbackTitle(t *testing.T) {
	s := newSelector()

	sel := s.Select(intent.Result{
		Type:       intent.TypeCreate,
		Confidence: 1.0,
	}, emptyMeta(), "add")

	require.NotNil(t, sel)
	assert.Equal(t, "New task", sel.Parameters["title"])
}

func TestSelect_ListWithFilter(t *testing.T) {
	s := newSelector()

	sel := s.Select(intent.Result{
		Type:       intent.TypeList,
		Confidence: 0.70,
		Entities:   intent.Entities{StatusFilter: "pending"},
	}, emptyMeta(), "show pending tasks")

	require.NotNil(t, sel)
	assert.Equal(t, tasks.ToolListTasks, sel.ToolName)
	assert.Equal(t, "pending", sel.Parameters["status"])
}

func TestSelect_ListWithoutFilter(t *testing.T) {
	s := newSelector()

	sel := s.Select(intent.Result{
		Type:       intent.TypeList,
		Confidence: 1.0,
	}, emptyMeta(), "show my tasks")

	require.NotNil(t, sel)
	_, hasStatus := sel.Parameters["status"]
	assert.False(t, hasStatus)
}

func TestSelect_DeleteResolvesTarget(t *testing.T) {
	s := newSelector()
	meta := metaWithRefs(map[string]int64{"1": 42, "2": 43})

	sel := s.Select(intent.Result{
		Type:       intent.TypeDelete,
		Confidence: 0.90,
	}, meta, "delete task 2")

	require.NotNil(t, sel)
	assert.Equal(t, tasks.ToolDeleteTask, sel.ToolName)
	assert.Equal(t, int64(43), sel.Parameters["task_id"])
	assert.True(t, sel.RequiresConfirmation)
}

func TestSelect_DeleteJustBelowThreshold(t *testing.T) {
	s := newSelector()
	meta := metaWithRefs(map[string]int64{"1": 42})

	sel := s.Select(intent.Result{
		Type:       intent.TypeDelete,
		Confidence: 0.89,
	}, meta, "delete task 1")

	assert.Nil(t, sel)
}

func TestSelect_UnresolvedTarget(t *testing.T) {
	s := newSelector()
	meta := metaWithRefs(map[string]int64{"1": 42, "2": 43})

	sel := s.Select(intent.Result{
		Type:       intent.TypeComplete,
		Confidence: 1.0,
	}, meta, "complete task 9")

	assert.Nil(t, sel)
}

func TestSelect_UnresolvedTargetLogsPositions(t *testing.T) {
	var buf bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	s := newSelector()
	meta := metaWithRefs(map[string]int64{"1": 42})

	sel := s.Select(intent.Result{
		Type:       intent.TypeComplete,
		Confidence: 1.0,
	}, meta, "complete task 9")

	require.Nil(t, sel)
	assert.Contains(t, buf.String(), "No task reference found")
	assert.Contains(t, buf.String(), "positions=[9]")
}

func TestSelect_TargetWithoutReferences(t *testing.T) {
	s := newSelector()

	sel := s.Select(intent.Result{
		Type:       intent.TypeComplete,
		Confidence: 1.0,
	}, emptyMeta(), "complete task 1")

	assert.Nil(t, sel)
}

func TestSelect_UpdateCarriesNewValues(t *testing.T) {
	s := newSelector()
	meta := metaWithRefs(map[string]int64{"1": 42})

	sel := s.Select(intent.Result{
		Type:       intent.TypeUpdate,
		Confidence: 0.85,
		Entities:   intent.Entities{NewTitle: "Call dentist"},
	}, meta, "change task 1 to Call dentist")

	require.NotNil(t, sel)
	assert.Equal(t, tasks.ToolUpdateTask, sel.ToolName)
	assert.Equal(t, int64(42), sel.Parameters["task_id"])
	assert.Equal(t, "Call dentist", sel.Parameters["title"])
	assert.False(t, sel.RequiresConfirmation)
}

func TestSelect_UnclearIntent(t *testing.T) {
	s := newSelector()

	sel := s.Select(intent.Result{Type: intent.TypeUnclear, Confidence: 1.0}, emptyMeta(), "hello")

	assert.Nil(t, sel)
}

func TestNeedsTarget(t *testing.T) {
	assert.True(t, NeedsTarget(intent.TypeUpdate))
	assert.True(t, NeedsTarget(intent.TypeComplete))
	assert.True(t, NeedsTarget(intent.TypeDelete))
	assert.False(t, NeedsTarget(intent.TypeCreate))
	assert.False(t, NeedsTarget(intent.TypeList))
}
