package intent

import (
	"strings"

	"github.com/elliotchance/pie/v2"
)

// scoreIncrement is added for every matching pattern group within a
// category. Scores accumulate unbounded before normalization.
const scoreIncrement = 0.2

// Classifier scores a message against the action categories. It is pure
// and never fails; the orchestrator only depends on this interface so a
// statistical implementation can replace the pattern one.
type Classifier interface {
	Classify(message string) Result
}

var _ Classifier = (*PatternClassifier)(nil)

// PatternClassifier is the default deterministic implementation built on
// keyword pattern groups.
type PatternClassifier struct{}

func NewPatternClassifier() *PatternClassifier {
	return &PatternClassifier{}
}

func (c *PatternClassifier) Classify(message string) Result {
	lowered := strings.ToLower(strings.TrimSpace(message))

	raw := make(map[Type]float64, len(priorityOrder))

	for _, category := range priorityOrder {
		var score float64

		for _, group := range patternGroups[category] {
			if group.MatchString(lowered) {
				score += scoreIncrement
			}
		}

		raw[category] = score
	}

	// Normalize so the winner reaches 1.0; an all-zero message is left
	// untouched and resolves to the first priority category.
	var maxScore float64
	for _, category := range priorityOrder {
		if raw[category] > maxScore {
			maxScore = raw[category]
		}
	}

	if maxScore > 0 {
		for category, score := range raw {
			raw[category] = score / maxScore
		}
	}

	winner := priorityOrder[0]
	for _, category := range priorityOrder[1:] {
		if raw[category] > raw[winner] {
			winner = category
		}
	}

	alternatives := make([]Score, 0, len(priorityOrder))
	for _, category := range priorityOrder {
		if raw[category] > 0 {
			alternatives = append(alternatives, Score{Type: category, Confidence: raw[category]})
		}
	}

	alternatives = pie.SortStableUsing(alternatives, func(a, b Score) bool {
		return a.Confidence > b.Confidence
	})

	return Result{
		Type:         winner,
		Confidence:   raw[winner],
		Entities:     extractEntities(winner, message, lowered),
		Alternatives: alternatives,
	}
}
