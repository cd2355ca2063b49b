// Package view holds the state behind forms and dashboards, independent of
// how they are rendered.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/skillsync/skillsync/internal/gateway"
)

// ErrSubmitPending is returned when a form is submitted while a previous
// submission is still running.
var ErrSubmitPending = errors.New("submission already in progress")

// Form guards a single gateway operation so only one submission is in flight.
type Form struct {
	mu      sync.Mutex
	pending bool
	message string
}

// Submit runs fn unless a submission is already pending. On failure the
// form message is set to the AuthError text, or the error text otherwise.
func (f *Form) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return ErrSubmitPending
	}
	f.pending = true
	f.message = ""
	f.mu.Unlock()

	err := fn(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = false
	if err != nil {
		f.message = messageOf(err)
	}
	return err
}

// Pending reports whether a submission is running. Submit controls should
// be disabled while it is true.
func (f *Form) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Message returns the error text of the last failed submission.
func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func messageOf(err error) string {
	var authErr *gateway.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return err.Error()
}
