package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skillsync/skillsync/internal/api"
)

// Operation names carried by AuthError.
const (
	OpSignIn        = "signin"
	OpSignUpStudent = "signup_student"
	OpSignUpTeacher = "signup_teacher"
)

const (
	signInFailed = "Sign in failed"
	signUpFailed = "Sign up failed"
)

// AuthError is a failed sign-in or sign-up. Message is meant to be shown to
// the user as is. The session is never changed when one is returned.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// SessionInvalidError explains why an identity refresh logged the user out.
// It is informational; the session has already been reset.
type SessionInvalidError struct {
	Reason string
	Err    error
}

func (e *SessionInvalidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session invalid: %s: %v", e.Reason, e.Err)
	}
	return "session invalid: " + e.Reason
}

func (e *SessionInvalidError) Unwrap() error {
	return e.Err
}

func newAuthError(op, fallback string, err error) *AuthError {
	return &AuthError{Op: op, Message: authMessage(fallback, err), Err: err}
}

// authMessage prefers the backend's detail, then local validation fields,
// then the fallback text.
func authMessage(fallback string, err error) string {
	if d := api.DetailOf(err); d != "" {
		return d
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Sprintf("%s: invalid %s", fallback, strings.Join(fields, ", "))
	}

	if errors.Is(err, api.ErrMalformedResponse) {
		return fallback + ": malformed server response"
	}

	return fallback
}
