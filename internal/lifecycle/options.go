package lifecycle

import (
	"fmt"

	"github.com/fyrsmithlabs/projectd/internal/analytics"
)

// DeletePolicy decides the current project after the current one is deleted.
type DeletePolicy string

const (
	// DeletePolicyNext selects the first remaining project in registry order.
	DeletePolicyNext DeletePolicy = "next"
	// DeletePolicyClear leaves no project current.
	DeletePolicyClear DeletePolicy = "clear"
)

// ParseDeletePolicy accepts "next", "clear", or "" (next).
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(s) {
	case "", DeletePolicyNext:
		return DeletePolicyNext, nil
	case DeletePolicyClear:
		return DeletePolicyClear, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// ActionOption adjusts how a single action is reported.
type ActionOption func(*actionOptions)

type actionOptions struct {
	event   analytics.EventName
	surface string
}

// WithEvent overrides the analytics event emitted on success.
func WithEvent(name analytics.EventName) ActionOption {
	return func(o *actionOptions) { o.event = name }
}

// WithSurface records which entry point triggered the action.
func WithSurface(surface string) ActionOption {
	return func(o *actionOptions) { o.surface = surface }
}

func applyOptions(defaultEvent analytics.EventName, opts []ActionOption) actionOptions {
	o := actionOptions{event: defaultEvent}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
