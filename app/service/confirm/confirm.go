// Package confirm implements the yes/no gate in front of destructive
// tool calls. The pending record itself lives in conversation metadata;
// this package interprets replies and builds the gate's messages.
package confirm

import (
	"fmt"
	"strings"
)

// Reply is the interpretation of a message while a confirmation is
// pending.
type Reply int

const (
	// ReplyUnclear keeps the confirmation pending and repeats the
	// prompt. Treating everything that is not an explicit yes or no
	// this way is deliberate: a destructive action only ever runs on
	// an unambiguous affirmative.
	ReplyUnclear Reply = iota
	ReplyYes
	ReplyNo
)

// Affirmative and negative word lists. Users of the original system reply
// in English or Urdu/Hindi, so both are recognized.
var (
	yesWords = []string{
		"yes", "yeah", "yep", "yup", "sure", "ok", "okay", "confirm",
		"do it", "go ahead", "proceed",
		"y", "ha", "han", "haan",
	}
	noWords = []string{
		"no", "nope", "nah", "cancel", "don't", "stop", "abort",
		"nahi", "na",
		"n",
	}
)

// Interpret decides whether a message is an affirmative or negative reply
// to a pending confirmation. Only whole-message matches count; "yes but
// wait" is unclear, not a yes.
func Interpret(message string) Reply {
	lowered := strings.ToLower(strings.TrimSpace(message))

	for _, word := range yesWords {
		if lowered == word {
			return ReplyYes
		}
	}

	for _, word := range noWords {
		if lowered == word {
			return ReplyNo
		}
	}

	return ReplyUnclear
}

// Prompt builds the confirmation question for a destructive action.
func Prompt(action, taskTitle string) string {
	if action == "delete" {
		return fmt.Sprintf("⚠️ Are you sure you want to delete '%s'? Reply 'yes' to confirm or 'no' to cancel.", taskTitle)
	}

	return fmt.Sprintf("⚠️ Confirm %s on '%s'? Reply 'yes' or 'no'.", action, taskTitle)
}

// Accepted builds the acknowledgement after an affirmative reply.
func Accepted(action, taskTitle string) string {
	if action == "delete" {
		return fmt.Sprintf("✓ Deleted: '%s'", taskTitle)
	}

	return fmt.Sprintf("✓ %s completed: '%s'", capitalize(action), taskTitle)
}

// Declined builds the acknowledgement after a negative reply.
func Declined(action string) string {
	return fmt.Sprintf("Cancelled. The %s has been cancelled.", action)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
