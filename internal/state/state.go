// Package state defines the reconciliation semantics a caller can request
// for a resource family.
package state

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownState   = errors.New("state: unknown state")
	ErrNotImplemented = errors.New("state: not implemented")
)

// State selects how want is reconciled against have.
type State string

const (
	Merged     State = "merged"
	Deleted    State = "deleted"
	Replaced   State = "replaced"
	Overridden State = "overridden"
)

// Default is applied when a document omits state.
const Default = Merged

// All returns every state accepted by the argument schema.
func All() []State {
	return []State{Merged, Deleted, Replaced, Overridden}
}

// Parse resolves a raw state value. An empty value yields Default.
func Parse(raw string) (State, error) {
	v := State(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return Default, nil
	}
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

// Validate reports whether s is one of the schema states.
func (s State) Validate() error {
	switch s {
	case Merged, Deleted, Replaced, Overridden:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownState, string(s))
	}
}

func (s State) String() string {
	return string(s)
}

// NotImplemented builds the dispatch failure for a state a family does not handle.
func NotImplemented(resource string, s State) error {
	return fmt.Errorf("%w: %s state %q", ErrNotImplemented, resource, string(s))
}
