// Package respond turns structured tool outcomes and failures into
// user-facing prose.
package respond

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"taskchat/app/service/tasks"

	"github.com/elliotchance/pie/v2"
)

// Formatter renders success replies. Its randomness only varies the
// personality fillers, so a fixed seed makes output fully deterministic
// for tests.
type Formatter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFormatter creates a formatter with the given personality seed.
// A zero seed picks a time-based one.
func NewFormatter(seed int64) *Formatter {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Formatter{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (f *Formatter) TaskCreated(title string) string {
	return fill(templateTaskCreated, map[string]string{
		"title":         title,
		"encouragement": f.pick(encouragements),
	})
}

func (f *Formatter) TaskCompleted(title string) string {
	return fill(templateTaskCompleted, map[string]string{
		"title":       title,
		"celebration": f.pick(celebrations),
	})
}

func (f *Formatter) TaskDeleted(taskID int64, title string) string {
	return fill(templateTaskDeleted, map[string]string{
		"title":    title,
		"position": fmt.Sprint(taskID),
	})
}

func (f *Formatter) TaskUpdated(taskID int64, newTitle string) string {
	return fill(templateTaskUpdated, map[string]string{
		"position":  fmt.Sprint(taskID),
		"new_title": newTitle,
	})
}

func (f *Formatter) TaskListed(list []tasks.Task, filterName string) string {
	if len(list) == 0 {
		return templateListedEmpty
	}

	lines := pie.Map(list, func(task tasks.Task) string {
		return task.Title
	})

	var builder strings.Builder
	for i, line := range lines {
		if i > 0 {
			builder.WriteByte('\n')
		}

		fmt.Fprintf(&builder, "%d. %s", i+1, line)
	}

	return fill(templateTaskListed, map[string]string{
		"filter_name": filterName,
		"task_list":   builder.String(),
	})
}

func (f *Formatter) ClarificationNeeded() string {
	return fill(templateClarification, map[string]string{
		"suggestions": f.pick(suggestions),
	})
}

func (f *Formatter) pick(words []string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return words[f.rng.Intn(len(words))]
}

var tokenPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// fill replaces {name} tokens in a single pass over the template, so
// braces inside a substituted value are left alone. When a token has no
// value the raw template comes back with the suggestion text appended,
// never an error.
func fill(template string, values map[string]string) string {
	missing := false

	result := tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		value, ok := values[token[1:len(token)-1]]
		if !ok {
			missing = true
			return token
		}

		return value
	})

	if missing {
		suggestion, ok := values["suggestion"]
		if !ok {
			suggestion = errorSuggestions[0]
		}

		return strings.TrimSpace(template + " " + suggestion)
	}

	return result
}
