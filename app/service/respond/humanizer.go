package respond

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"taskchat/app/service/tasks"
)

var (
	fieldPattern   = regexp.MustCompile(`'([^']+)'`)
	limitPattern   = regexp.MustCompile(`\d+`)
	taskRefPattern = regexp.MustCompile(`(?i)task[:\s]*(\d+)`)
)

// Humanizer translates executor failures and internal errors into
// user-facing messages. Nothing technical leaks through; unmatched errors
// fall back to a generic suggestion.
type Humanizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewHumanizer(seed int64) *Humanizer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Humanizer{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// HumanizeResult translates a failed tool result using its error code
// first, then known substrings of the error text.
func (h *Humanizer) HumanizeResult(result *tasks.Result) string {
	code := strings.ToLower(result.Code)

	switch code {
	case "task_not_found":
		code = "not_found"
	case "unknown_tool":
		code = "bad_request"
	}

	if template, ok := errorTemplates[code]; ok {
		return h.renderTemplate(template, result.Error)
	}

	return h.HumanizeText(result.Error)
}

// HumanizeError translates an unexpected error value.
func (h *Humanizer) HumanizeError(err error) string {
	if err == nil {
		return errorTemplates["internal_error"]
	}

	return h.HumanizeText(err.Error())
}

// HumanizeText matches known substrings of raw error text against the
// template set, in a fixed order.
func (h *Humanizer) HumanizeText(errText string) string {
	lowered := strings.ToLower(errText)

	for _, route := range substringRoutes {
		if strings.Contains(lowered, route.pattern) {
			return h.renderTemplate(errorTemplates[route.key], errText)
		}
	}

	return h.suggestion()
}

// renderTemplate fills a template's placeholders from whatever the raw
// error text offers. Fill failures degrade to template + suggestion.
func (h *Humanizer) renderTemplate(template, errText string) string {
	values := map[string]string{
		"suggestion": h.suggestion(),
		"details":    "more information",
	}

	if strings.Contains(template, "{field}") || strings.Contains(template, "{limit}") {
		values["field"] = "input"
		values["limit"] = "1000"

		if match := fieldPattern.FindStringSubmatch(errText); match != nil {
			values["field"] = match[1]
		}
		if match := limitPattern.FindString(errText); match != "" {
			values["limit"] = match
		}
	}

	if strings.Contains(template, "{reference}") {
		values["reference"] = "that task"

		if match := taskRefPattern.FindStringSubmatch(errText); match != nil {
			values["reference"] = "#" + match[1]
		}
	}

	return fill(template, values)
}

func (h *Humanizer) suggestion() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return errorSuggestions[h.rng.Intn(len(errorSuggestions))]
}
