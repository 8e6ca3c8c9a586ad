package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest covers missing, blank or malformed parameters.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnknownAction is returned for an action outside the supported set.
	ErrUnknownAction = errors.New("unknown action")

	// ErrNoMatch is returned when an action needs an existing project and none matches.
	ErrNoMatch = errors.New("no matching project")
)

// User-facing messages.
const (
	MessageUnrecognizedURI   = "Unrecognized URI"
	MessageInvalidURL        = "Invalid URL"
	MessageMissingParameters = "Project URL, user name and password are required"
	MessageNoMatch           = "No project matches these server details"
	MessageInvalidChoice     = "Choose either switch or duplicate"
	MessageDuplicateTitle    = "Duplicate project"
	MessageDuplicateDetails  = "A project with these server details already exists. Switch to it, or add a duplicate project?"
)

// RequestError describes why a request was rejected before anything ran.
type RequestError struct {
	Kind    error
	Field   string
	Message string
	detail  string
}

func (e *RequestError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.detail)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Field)
}

func (e *RequestError) Unwrap() error { return e.Kind }

// UserMessage returns the message to show a caller for err.
func UserMessage(err error) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	if errors.Is(err, ErrNoMatch) {
		return MessageNoMatch
	}
	return MessageInvalidURL
}
