package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/analytics"
	"github.com/fyrsmithlabs/projectd/internal/lifecycle"
	"github.com/fyrsmithlabs/projectd/internal/logging"
	"github.com/fyrsmithlabs/projectd/internal/settings"
	"github.com/fyrsmithlabs/projectd/internal/telemetry"
)

// Surface is the surface name recorded for resolver-driven actions.
const Surface = "uri"

// Choice resolves an ambiguous match.
type Choice string

const (
	ChoiceSwitch    Choice = "switch"
	ChoiceDuplicate Choice = "duplicate"
)

// ParseChoice accepts "switch" or "duplicate".
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case ChoiceSwitch, ChoiceDuplicate:
		return c, nil
	default:
		return "", &RequestError{Kind: ErrInvalidRequest, Field: "choice", Message: MessageInvalidChoice, detail: fmt.Sprintf("unknown choice %q", s)}
	}
}

// OutcomeKind is the terminal state of a request.
type OutcomeKind string

const (
	OutcomeCreated        OutcomeKind = "created"
	OutcomeSwitched       OutcomeKind = "switched"
	OutcomeDeleted        OutcomeKind = "deleted"
	OutcomeChoiceRequired OutcomeKind = "choice_required"
)

// Outcome is what a resolved request did.
type Outcome struct {
	Kind OutcomeKind
	// ProjectID is the created, switched-to, deleted or matched project.
	ProjectID string
	// Choices is set only for OutcomeChoiceRequired.
	Choices []Choice
	// Deletion is set only for OutcomeDeleted.
	Deletion lifecycle.DeletionResult
}

// Resolver executes requests against the lifecycle service.
type Resolver struct {
	svc       *lifecycle.Service
	generator *settings.Generator
	validator *Validator
	logger    *logging.Logger
	tracer    trace.Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option { return func(r *Resolver) { r.logger = l } }

// WithTracerProvider sets where spans go. Defaults to the otel global.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Resolver) { r.tracer = tp.Tracer(telemetry.InstrumentationName + "/resolver") }
}

// New returns a Resolver over svc.
func New(svc *lifecycle.Service, opts ...Option) *Resolver {
	r := &Resolver{
		svc:       svc,
		generator: settings.NewGenerator(),
		validator: NewValidator(),
		logger:    logging.NewNop(),
		tracer:    otel.Tracer(telemetry.InstrumentationName + "/resolver"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve validates req, matches it against the registry and applies the
// decision. An ambiguous match returns OutcomeChoiceRequired and changes nothing.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Outcome, error) {
	ctx = logging.WithSurface(ctx, Surface)
	ctx, span := r.tracer.Start(ctx, "resolver.resolve", trace.WithAttributes(attribute.String("action", req.Action)))
	defer span.End()

	action, err := r.validator.Validate(req)
	if err != nil {
		return Outcome{}, r.fail(ctx, span, err)
	}
	doc := r.document(req)

	var out Outcome
	err = r.svc.Atomically(ctx, func(ctx context.Context, a lifecycle.Actions) error {
		match := NotFound
		if id, ok := a.FindMatchingProject(ctx, doc); ok {
			match = Found(id)
		}
		op := Decide(action, match)
		span.SetAttributes(attribute.String("operation", op.String()))

		switch op {
		case OpCreate:
			p, _, err := a.CreateProject(ctx, doc, lifecycle.WithSurface(Surface))
			if err != nil {
				return err
			}
			out = Outcome{Kind: OutcomeCreated, ProjectID: p.ID}
		case OpPromptChoice:
			out = Outcome{Kind: OutcomeChoiceRequired, ProjectID: match.ProjectID, Choices: []Choice{ChoiceSwitch, ChoiceDuplicate}}
		case OpDelete:
			res, err := a.DeleteProject(ctx, match.ProjectID, lifecycle.WithSurface(Surface))
			if err != nil {
				return err
			}
			out = Outcome{Kind: OutcomeDeleted, ProjectID: match.ProjectID, Deletion: res}
		default:
			return ErrNoMatch
		}
		return nil
	})
	if err != nil {
		return Outcome{}, r.fail(ctx, span, err)
	}

	r.logger.Info(ctx, "request resolved",
		zap.String("action", string(action)), zap.String("outcome", string(out.Kind)), zap.String("project.id", out.ProjectID))
	return out, nil
}

// Choose applies the caller's answer to an earlier OutcomeChoiceRequired.
// The match is recomputed; ChoiceSwitch fails with ErrNoMatch if it vanished.
func (r *Resolver) Choose(ctx context.Context, req Request, choice Choice) (Outcome, error) {
	ctx = logging.WithSurface(ctx, Surface)
	ctx, span := r.tracer.Start(ctx, "resolver.choose", trace.WithAttributes(
		attribute.String("action", req.Action), attribute.String("choice", string(choice))))
	defer span.End()

	action, err := r.validator.Validate(req)
	if err != nil {
		return Outcome{}, r.fail(ctx, span, err)
	}
	if action == ActionDelete {
		return Outcome{}, r.fail(ctx, span, &RequestError{Kind: ErrInvalidRequest, Field: "action", Message: MessageUnrecognizedURI, detail: "delete takes no choice"})
	}
	if _, err := ParseChoice(string(choice)); err != nil {
		return Outcome{}, r.fail(ctx, span, err)
	}
	doc := r.document(req)

	var out Outcome
	err = r.svc.Atomically(ctx, func(ctx context.Context, a lifecycle.Actions) error {
		switch choice {
		case ChoiceSwitch:
			id, ok := a.FindMatchingProject(ctx, doc)
			if !ok {
				return ErrNoMatch
			}
			if err := a.SwitchProject(ctx, id,
				lifecycle.WithEvent(analytics.EventDuplicateProjectSwitch), lifecycle.WithSurface(Surface)); err != nil {
				return err
			}
			out = Outcome{Kind: OutcomeSwitched, ProjectID: id}
		case ChoiceDuplicate:
			p, _, err := a.CreateProject(ctx, doc, lifecycle.WithSurface(Surface))
			if err != nil {
				return err
			}
			out = Outcome{Kind: OutcomeCreated, ProjectID: p.ID}
		}
		return nil
	})
	if err != nil {
		return Outcome{}, r.fail(ctx, span, err)
	}

	r.logger.Info(ctx, "choice applied",
		zap.String("choice", string(choice)), zap.String("outcome", string(out.Kind)), zap.String("project.id", out.ProjectID))
	return out, nil
}

func (r *Resolver) document(req Request) settings.Document {
	return r.generator.WithServerDetails(req.ProjectURL, req.UserName, req.Password)
}

func (r *Resolver) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var re *RequestError
	if errors.As(err, &re) {
		r.logger.Info(ctx, "request rejected", zap.String("field", re.Field), zap.Error(err))
	} else {
		r.logger.Warn(ctx, "request failed", zap.Error(err))
	}
	return err
}
