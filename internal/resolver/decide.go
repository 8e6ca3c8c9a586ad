package resolver

import "fmt"

// Action is what the caller asks for.
type Action string

const (
	ActionCreate         Action = "insert"
	ActionSwitchOrCreate Action = "insert-or-edit"
	ActionDelete         Action = "delete"
)

// ParseAction accepts the wire names of the three actions.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionCreate, ActionSwitchOrCreate, ActionDelete:
		return a, nil
	default:
		return "", &RequestError{Kind: ErrUnknownAction, Field: "action", Message: MessageUnrecognizedURI, detail: fmt.Sprintf("unknown action %q", s)}
	}
}

// MatchResult is the matcher's answer.
type MatchResult struct {
	ProjectID string
	Found     bool
}

// Found builds a positive MatchResult.
func Found(id string) MatchResult { return MatchResult{ProjectID: id, Found: true} }

// NotFound is the negative MatchResult.
var NotFound = MatchResult{}

// Operation is what Decide selects.
type Operation int

const (
	OpInvalid Operation = iota
	OpCreate
	OpPromptChoice
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpPromptChoice:
		return "prompt_choice"
	case OpDelete:
		return "delete"
	default:
		return "invalid"
	}
}

// Decide maps (action, match) to an operation.
//
//	action          match      operation
//	insert-or-edit  found      prompt choice
//	insert          found      prompt choice
//	delete          found      delete
//	insert-or-edit  not found  create
//	insert          not found  create
//	delete          not found  invalid
func Decide(action Action, match MatchResult) Operation {
	switch action {
	case ActionCreate, ActionSwitchOrCreate:
		if match.Found {
			return OpPromptChoice
		}
		return OpCreate
	case ActionDelete:
		if match.Found {
			return OpDelete
		}
		return OpInvalid
	default:
		return OpInvalid
	}
}
