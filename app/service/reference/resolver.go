// Package reference maps positional task phrases ("task 2", "the first
// one", "#3") to durable task ids using the position table cached in
// conversation metadata.
package reference

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`\d+`)

// ordinals maps ordinal words to position keys in a fixed scan order, so
// a phrase containing two ordinal words always resolves the same way.
// "last" is handled separately because it depends on the table size.
var ordinals = []struct {
	word     string
	position string
}{
	{"first", "1"},
	{"second", "2"},
	{"third", "3"},
	{"fourth", "4"},
	{"fifth", "5"},
	{"sixth", "6"},
	{"seventh", "7"},
	{"eighth", "8"},
	{"ninth", "9"},
	{"tenth", "10"},
}

type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve maps a user phrase to a task id via the cached position table.
// It never queries the task store, so the returned id is best-effort: the
// task may have been deleted or renamed since the listing, and callers
// must surface the downstream not-found instead.
//
// Literal numbers win over ordinal words; "last" resolves to the current
// size of the table.
func (r *Resolver) Resolve(taskReferences map[string]int64, phrase string) (int64, bool) {
	if len(taskReferences) == 0 {
		return 0, false
	}

	if position := numberPattern.FindString(phrase); position != "" {
		id, ok := taskReferences[position]
		return id, ok
	}

	lowered := strings.ToLower(phrase)

	for _, ordinal := range ordinals {
		if strings.Contains(lowered, ordinal.word) {
			id, ok := taskReferences[ordinal.position]
			return id, ok
		}
	}

	if strings.Contains(lowered, "last") {
		position := strconv.Itoa(len(taskReferences))

		id, ok := taskReferences[position]
		return id, ok
	}

	return 0, false
}

// Positions lists every positional phrase found in a message, numeric
// first, in the order they appear.
func (r *Resolver) Positions(message string) []string {
	positions := numberPattern.FindAllString(message, -1)

	lowered := strings.ToLower(message)
	for _, word := range []string{"first", "second", "third", "fourth", "fifth", "last"} {
		if strings.Contains(lowered, word) {
			positions = append(positions, word)
		}
	}

	return positions
}
