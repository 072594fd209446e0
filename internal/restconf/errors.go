package restconf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrNotFound is returned by Get when the device has no data at the path.
	ErrNotFound = errors.New("restconf: resource not found")
)

// Error is a transport or protocol failure while talking to the device.
// Code is the HTTP status, or 0 when no response was received.
type Error struct {
	Code    int
	Message string
	Tag     string
	Method  Method
	Path    string
	// Index is the position of the failed request inside an Edit batch.
	Index int

	err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("restconf: ")
	if e.Method != "" {
		fmt.Fprintf(&b, "%s %s: ", strings.ToUpper(string(e.Method)), e.Path)
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, "status %d: ", e.Code)
	}
	b.WriteString(e.Message)
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// errorFromBody extracts the first ietf-restconf error from a response body.
func errorFromBody(code int, body []byte) *Error {
	out := &Error{Code: code}
	if gjson.ValidBytes(body) {
		first := gjson.GetBytes(body, `ietf-restconf:errors.error.0`)
		out.Message = first.Get("error-message").String()
		out.Tag = first.Get("error-tag").String()
	}
	if out.Message == "" {
		out.Message = strings.TrimSpace(string(body))
	}
	if out.Message == "" {
		out.Message = "request failed"
	}
	return out
}
