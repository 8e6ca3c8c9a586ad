package resolver

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/fyrsmithlabs/projectd/internal/config"
)

// Request is an external request to act on a server account.
type Request struct {
	Action     string        `json:"action"`
	ProjectURL string        `json:"projectUrl" validate:"required,notblank,http_url"`
	UserName   string        `json:"userName" validate:"required,notblank"`
	Password   config.Secret `json:"password" validate:"required,notblank"`
}

// Validator checks requests.
type Validator struct {
	v *validator.Validate
}

// RegisterRules adds the custom tags used on Request to v, so other
// surfaces can validate connection details the same way.
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return fmt.Errorf("register notblank: %w", err)
	}
	return nil
}

// NewValidator returns a Validator with the custom rules registered.
// It panics if registration fails, since no request could then be validated.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterRules(v); err != nil {
		panic("resolver: " + err.Error())
	}
	return &Validator{v: v}
}

// Validate parses the action and checks every field.
// Missing or blank fields are reported before URL syntax.
func (val *Validator) Validate(req Request) (Action, error) {
	action, err := ParseAction(req.Action)
	if err != nil {
		return "", err
	}
	if err := val.v.Struct(req); err != nil {
		return "", toRequestError(err)
	}
	return action, nil
}

func toRequestError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &RequestError{Kind: ErrInvalidRequest, Message: MessageInvalidURL, detail: err.Error()}
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" || fe.Tag() == "notblank" {
			return &RequestError{Kind: ErrInvalidRequest, Field: fe.Field(), Message: MessageMissingParameters}
		}
	}
	fe := verrs[0]
	return &RequestError{Kind: ErrInvalidRequest, Field: fe.Field(), Message: MessageInvalidURL}
}
