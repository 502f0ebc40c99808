package intent

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 1000
	// Captured "to/with <value>" clauses longer than this are treated
	// as a new description instead of a new title.
	descriptionCutoff = 50
)

// patternGroups holds the ordered pattern groups per category. Every
// matching group contributes one score increment.
var patternGroups = map[Type][]*regexp.Regexp{
	TypeCreate: {
		regexp.MustCompile(`\b(add|create|make|remind me to|need to|have to|want to|should|must)\b`),
		regexp.MustCompile(`\b(todo|to-do|item|thing|action)\b`),
		regexp.MustCompile(`\b(grocer|shop|buy|purchase)\b`),
		regexp.MustCompile(`\b(call|contact|email|message)\b`),
		regexp.MustCompile(`\b(schedule|book|arrange|plan)\b`),
	},
	TypeList: {
		regexp.MustCompile(`\b(show|list|display|what|do i have|need to do|todo|task|tasks|todos|items)\b`),
		regexp.MustCompile(`\b(see|view|check|look at|my)\b`),
		regexp.MustCompile(`\b(pending|completed|done|finished|all)\b`),
	},
	TypeUpdate: {
		regexp.MustCompile(`\b(change|update|modify|edit|alter|fix|correct)\b`),
		regexp.MustCompile(`\b(task|the|it|that)\b`),
	},
	TypeComplete: {
		regexp.MustCompile(`\b(complete|finish|done|finished|did|completed|already)\b`),
		regexp.MustCompile(`\b(task|it|that|the|already)\b`),
	},
	TypeDelete: {
		regexp.MustCompile(`\b(delete|remove|get rid of|trash|discard|eliminate)\b`),
		regexp.MustCompile(`\b(task|it|that|the)\b`),
	},
}

var (
	// Lead-in phrases stripped off a create message before the rest is
	// used as the candidate title.
	leadInPattern = regexp.MustCompile(`\b(remind me to|i want to|i need to|need to|have to|add task:?|add|create|make)\b`)
	// Trailing list fillers like "... to my list" carry no title content.
	tailFillerPattern = regexp.MustCompile(`\s*\b(?:to|from|on)\s+(?:my|the)\s+(?:list|tasks?|todos?|todo list)\s*$`)

	pendingFilterPattern   = regexp.MustCompile(`\b(pending|not done|not completed|to do|todo)\b`)
	completedFilterPattern = regexp.MustCompile(`\b(completed|done|finished)\b`)

	newValuePattern = regexp.MustCompile(`(?i)\b(?:to|with)\s+['"]?([^'"]+)['"]?`)

	alreadyDonePattern = regexp.MustCompile(`\b(bought|finished|did)\b`)
)

func extractEntities(winner Type, message, lowered string) Entities {
	var entities Entities

	switch winner {
	case TypeCreate:
		title := leadInPattern.ReplaceAllString(lowered, "")
		title = tailFillerPattern.ReplaceAllString(title, "")
		title = strings.TrimSpace(title)

		entities.Title = truncate(title, maxTitleLength)

	case TypeList:
		switch {
		case pendingFilterPattern.MatchString(lowered):
			entities.StatusFilter = "pending"
		case completedFilterPattern.MatchString(lowered):
			entities.StatusFilter = "completed"
		}

	case TypeUpdate:
		if match := newValuePattern.FindStringSubmatch(message); match != nil {
			value := strings.TrimSpace(match[1])

			if len(value) > descriptionCutoff {
				entities.NewDescription = truncate(value, maxDescriptionLength)
			} else {
				entities.NewTitle = truncate(value, maxTitleLength)
			}
		}

	case TypeComplete:
		entities.AlreadyDone = alreadyDonePattern.MatchString(lowered)

	case TypeDelete:
		// Target resolution happens downstream in the selector.
	}

	return entities
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}

	return s[:limit]
}
