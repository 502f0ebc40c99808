package intent

// Type is the coarse action category inferred from a message.
type Type string

const (
	TypeCreate   Type = "create"
	TypeList     Type = "list"
	TypeUpdate   Type = "update"
	TypeComplete Type = "complete"
	TypeDelete   Type = "delete"
	TypeUnclear  Type = "unclear"
)

// priorityOrder is the declared tie-break order. When two categories end
// up with the same normalized score the one listed earlier wins, and an
// all-zero message resolves to the first entry at confidence 0. Iterating
// a map here would make the winner depend on map ordering.
var priorityOrder = []Type{TypeCreate, TypeList, TypeUpdate, TypeComplete, TypeDelete}

// Entities are the free-form values extracted during classification.
// Which fields are set depends on the winning category.
type Entities struct {
	// Candidate title for a new task (create)
	Title string
	// Status filter for a listing, empty means no filter (list)
	StatusFilter string
	// New title shorter than the description cutoff (update)
	NewTitle string
	// New description longer than the cutoff (update)
	NewDescription string
	// Whether the wording suggests the task already happened (complete)
	AlreadyDone bool
}

// Score is one category with its normalized confidence.
type Score struct {
	Type       Type
	Confidence float64
}

// Result of classifying a single message.
type Result struct {
	Type       Type
	Confidence float64
	Entities   Entities
	// All non-zero categories ranked descending, ties by priority order.
	Alternatives []Score
}
