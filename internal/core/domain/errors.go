package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrMovieNotFound      = errors.New("movie not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("access forbidden")
)

// Error kinds exposed to clients. Values are stable; clients branch on them.
const (
	KindAlreadyExists      = "already_exists"
	KindNotFound           = "not_found"
	KindInvalidCredentials = "invalid_credentials"
	KindInvalidToken       = "invalid_token"
	KindInvalidInput       = "invalid_input"
	KindForbidden          = "forbidden"
	KindInternal           = "internal"
)

// KindOf classifies err into one of the stable error kinds.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrUserExists):
		return KindAlreadyExists
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrMovieNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrInvalidToken):
		return KindInvalidToken
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}

// Violation describes one failed field constraint.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is an InvalidInput error carrying every violated constraint.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError builds a ValidationError for a single violation.
func NewValidationError(field, rule, message string) *ValidationError {
	return &ValidationError{Violations: []Violation{{Field: field, Rule: rule, Message: message}}}
}
