package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Sentinel errors
var (
	// ErrMalformedResponse is returned when a 2xx body does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrInvalidRequest is returned when a request fails local validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// StatusError is a non-2xx response. Detail carries the backend's
// human-readable message when it sent one.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// DetailOf returns the backend message carried by err, if any.
func DetailOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Detail
	}
	return ""
}

func newStatusError(code int, body []byte) *StatusError {
	return &StatusError{StatusCode: code, Detail: detail(body)}
}

// detail extracts the "detail" field of an error body. Validation errors
// carry a list of objects, in which case the first message is used.
func detail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	d := gjson.GetBytes(body, "detail")
	switch {
	case d.Type == gjson.String:
		return d.String()
	case d.IsArray():
		return d.Get("0.msg").String()
	}
	return ""
}

func malformed(what string) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, what)
}
