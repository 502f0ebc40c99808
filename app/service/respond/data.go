package respond

// Response templates. Placeholders use {name} tokens filled by fill();
// a template whose placeholders cannot all be filled is emitted raw with
// a suggestion appended instead of failing the turn.
const (
	templateTaskCreated   = "I've added '{title}' to your tasks. {encouragement}"
	templateTaskCompleted = "{celebration} I've marked '{title}' as completed ✓"
	templateTaskDeleted   = "✓ Deleted: '{title}' (Task #{position})"
	templateTaskUpdated   = "I've updated task {position} to '{new_title}'"
	templateTaskListed    = "Here are your {filter_name} tasks:\n{task_list}"
	templateListedEmpty   = "You don't have any tasks yet. Would you like to create one?"
	templateClarification = "I'm not entirely sure what you want to do. Did you mean to {suggestions}?"
)

// Error templates keyed by normalized error code.
var errorTemplates = map[string]string{
	"validation_error":     "That {field} is too long. Please keep it under {limit} characters.",
	"not_found":            "I couldn't find task {reference}. {suggestion}",
	"rate_limit":           "Too many requests right now. Please wait a moment and try again.",
	"database_error":       "I'm having trouble saving that right now. Let's try again in a moment.",
	"internal_error":       "Something went wrong on my end. Please try again.",
	"connection_timeout":   "I couldn't connect to the service right now. Please try again in a moment.",
	"permission_denied":    "You don't have permission to do that.",
	"unprocessable_entity": "I couldn't process that request. Please check your input and try again.",
	"bad_request":          "I need more information: {details}",
	"service_unavailable":  "The service is temporarily unavailable. Please try again in a moment.",
}

// substringRoutes maps substrings of raw error text to template keys,
// checked in order.
var substringRoutes = []struct {
	pattern string
	key     string
}{
	{"not_found", "not_found"},
	{"not found", "not_found"},
	{"validation", "validation_error"},
	{"database", "database_error"},
	{"connection", "connection_timeout"},
	{"timeout", "connection_timeout"},
	{"rate limit", "rate_limit"},
	{"rate_limit", "rate_limit"},
	{"permission", "permission_denied"},
	{"bad_request", "bad_request"},
	{"unavailable", "service_unavailable"},
}

// Personality word sets. Randomness draws from these but never changes
// control flow.
var (
	encouragements = []string{"You got this!", "Let's make it happen!", "On it!", "Got it!"}
	celebrations   = []string{"Great!", "Awesome!", "Nice!", "Way to go!", "Excellent!"}
	suggestions    = []string{"add a task", "list your tasks", "update a task", "complete a task", "delete a task"}

	errorSuggestions = []string{
		"Try 'show my tasks' to see what's available.",
		"Would you like to see your current tasks?",
		"Maybe list tasks first to see what's available.",
		"Could you try rephrasing your request?",
		"Try 'show my tasks' to see what you can work with.",
		"Let me know if you'd like to create a new task instead.",
	}
)
