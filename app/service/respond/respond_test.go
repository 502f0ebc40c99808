package respond

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskchat/app/service/tasks"
)

func TestFormatter_Deterministic(t *testing.T) {
	a := NewFormatter(42)
	b := NewFormatter(42)

	for range 10 {
		assert.Equal(t, a.TaskCreated("buy milk"), b.TaskCreated("buy milk"))
		assert.Equal(t, a.TaskCompleted("buy milk"), b.TaskCompleted("buy milk"))
		assert.Equal(t, a.ClarificationNeeded(), b.ClarificationNeeded())
	}
}

func TestFormatter_TaskCreated(t *testing.T) {
	f := NewFormatter(1)

	reply := f.TaskCreated("buy milk")

	assert.Contains(t, reply, "I've added 'buy milk' to your tasks.")
	assert.Contains(t, encouragements, reply[len("I've added 'buy milk' to your tasks. "):])
}

func TestFormatter_TaskCompleted(t *testing.T) {
	f := NewFormatter(1)

	reply := f.TaskCompleted("Walk dog")

	assert.Contains(t, reply, "I've marked 'Walk dog' as completed ✓")
}

func TestFormatter_TaskDeleted(t *testing.T) {
	f := NewFormatter(1)

	assert.Equal(t, "✓ Deleted: 'Buy milk' (Task #42)", f.TaskDeleted(42, "Buy milk"))
}

func TestFormatter_TaskUpdated(t *testing.T) {
	f := NewFormatter(1)

	assert.Equal(t, "I've updated task 7 to 'Call dentist'", f.TaskUpdated(7, "Call dentist"))
}

func TestFormatter_TaskListed(t *testing.T) {
	f := NewFormatter(1)

	reply := f.TaskListed([]tasks.Task{
		{ID: 42, Title: "Buy milk"},
		{ID: 43, Title: "Walk dog"},
	}, "all")

	assert.Equal(t, "Here are your all tasks:\n1. Buy milk\n2. Walk dog", reply)
}

func TestFormatter_TaskListedEmpty(t *testing.T) {
	f := NewFormatter(1)

	assert.Equal(t, "You don't have any tasks yet. Would you like to create one?", f.TaskListed(nil, "all"))
}

func TestFill_BracesInValueSurviveIntact(t *testing.T) {
	f := NewFormatter(7)

	reply := f.TaskCreated("fix {parser} bug")

	assert.Contains(t, reply, "I've added 'fix {parser} bug' to your tasks.")
	assert.NotContains(t, reply, "{title}")
}

func TestFill_MissingPlaceholderDegrades(t *testing.T) {
	reply := fill("Hello {who} and {missing}", map[string]string{"who": "there"})

	assert.Equal(t, "Hello {who} and {missing} "+errorSuggestions[0], reply)
}

func TestHumanizer_ValidationError(t *testing.T) {
	h := NewHumanizer(1)

	reply := h.HumanizeResult(&tasks.Result{
		Success: false,
		Code:    tasks.CodeValidation,
		Error:   "title must be 255 characters or fewer",
	})

	assert.Equal(t, "That input is too long. Please keep it under 255 characters.", reply)
}

func TestHumanizer_NotFoundWithReference(t *testing.T) {
	h := NewHumanizer(1)

	reply := h.HumanizeResult(&tasks.Result{
		Success: false,
		Code:    tasks.CodeNotFound,
		Error:   "task 42 not found",
	})

	assert.Contains(t, reply, "I couldn't find task #42.")
}

func TestHumanizer_NotFoundWithoutReference(t *testing.T) {
	h := NewHumanizer(1)

	reply := h.HumanizeResult(&tasks.Result{
		Success: false,
		Code:    tasks.CodeNotFound,
		Error:   "no such row",
	})

	assert.Contains(t, reply, "I couldn't find task that task.")
}

func TestHumanizer_DatabaseError(t *testing.T) {
	h := NewHumanizer(1)

	reply := h.HumanizeResult(&tasks.Result{
		Success: false,
		Code:    tasks.CodeDatabase,
		Error:   "database error occurred",
	})

	assert.Equal(t, "I'm having trouble saving that right now. Let's try again in a moment.", reply)
}

func TestHumanizer_UnknownToolRoutesToBadRequest(t *testing.T) {
	h := NewHumanizer(1)

	reply := h.HumanizeResult(&tasks.Result{
		Success: false,
		Code:    tasks.CodeUnknownTool,
		Error:   "unknown tool: frobnicate",
	})

	assert.Equal(t, "I need more information: more information", reply)
}

func TestHumanizer_TextSubstringRouting(t *testing.T) {
	h := NewHumanizer(1)

	assert.Equal(t,
		"I couldn't connect to the service right now. Please try again in a moment.",
		h.HumanizeText("connection refused"),
	)
	assert.Equal(t,
		"Too many requests right now. Please wait a moment and try again.",
		h.HumanizeText("rate limit exceeded"),
	)
	assert.Equal(t,
		"The service is temporarily unavailable. Please try again in a moment.",
		h.HumanizeText("backend unavailable"),
	)
}

func TestHumanizer_UnknownTextFallsBackToSuggestion(t *testing.T) {
	h := NewHumanizer(1)

	reply := h.HumanizeText("completely mysterious failure")

	assert.Contains(t, errorSuggestions, reply)
}

func TestHumanizer_Deterministic(t *testing.T) {
	a := NewHumanizer(7)
	b := NewHumanizer(7)

	for range 10 {
		assert.Equal(t, a.HumanizeText("???"), b.HumanizeText("???"))
	}
}

func TestHumanizer_NilError(t *testing.T) {
	h := NewHumanizer(1)

	assert.Equal(t, "Something went wrong on my end. Please try again.", h.HumanizeError(nil))
}

func TestHumanizer_ErrorValue(t *testing.T) {
	h := NewHumanizer(1)

	reply := h.HumanizeError(errors.New("database is locked"))

	assert.Equal(t, "I'm having trouble saving that right now. Let's try again in a moment.", reply)
}
