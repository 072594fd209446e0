// Package module runs one reconciliation pass for a resource family:
// fetch have, normalize want, plan by state, submit the batch, report.
//
// Ownership boundary:
// - pass sequencing and the result envelope
// - check mode
//
// Families own diffing and request building. The transport owns retries.
package module

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/sonicctl/internal/observability"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/state"
)

var (
	ErrNilFamily     = errors.New("module: nil family")
	ErrInvalidConfig = errors.New("module: invalid config")
)

// Plan is what a family wants sent for one pass.
type Plan[T any] struct {
	Commands []T
	Requests []restconf.Request
	Warnings []string
}

// Family is one resource family (dhcp_relay, vlans, ...).
type Family[T any] interface {
	Name() string
	// Gather returns the device's current records, empty when absent.
	Gather(ctx context.Context, r restconf.Reader) ([]T, error)
	// Normalize returns a canonicalized copy of want.
	Normalize(want []T) ([]T, error)
	// Plan dispatches on st and must fail for states it does not handle.
	Plan(st state.State, want, have []T) (Plan[T], error)
}

// Params is the validated caller input for one pass.
type Params[T any] struct {
	State     state.State
	Config    []T
	CheckMode bool
}

// Result is the envelope reported back to the caller.
type Result[T any] struct {
	Resource string             `json:"-"`
	Changed  bool               `json:"changed"`
	Before   []T                `json:"before"`
	After    []T                `json:"after,omitempty"`
	Commands []T                `json:"commands"`
	Requests []restconf.Request `json:"requests,omitempty"`
	Warnings []string           `json:"warnings"`
}

// Summary is the type-erased view of a Result.
type Summary struct {
	Resource string
	Changed  bool
	Requests []restconf.Request
	Warnings []string
}

// Reporter is implemented by every Result.
type Reporter interface {
	Summary() Summary
}

func (r Result[T]) Summary() Summary {
	return Summary{
		Resource: r.Resource,
		Changed:  r.Changed,
		Requests: r.Requests,
		Warnings: r.Warnings,
	}
}

// Run executes one pass of fam against transport.
func Run[T any](ctx context.Context, fam Family[T], transport restconf.Transport, params Params[T]) (Result[T], error) {
	if fam == nil {
		return Result[T]{}, ErrNilFamily
	}
	start := time.Now()
	name := fam.Name()
	st := params.State
	if st == "" {
		st = state.Default
	}
	logger := log.With().Str("resource", name).Str("state", st.String()).Bool("check_mode", params.CheckMode).Logger()

	before, err := fam.Gather(ctx, transport)
	if err != nil {
		observability.RecordRun(name, st.String(), observability.OutcomeError, time.Since(start))
		return Result[T]{}, fmt.Errorf("%s: gather facts: %w", name, err)
	}

	want, err := fam.Normalize(params.Config)
	if err != nil {
		observability.RecordRun(name, st.String(), observability.OutcomeError, time.Since(start))
		return Result[T]{}, fmt.Errorf("%s: %w: %w", name, ErrInvalidConfig, err)
	}

	plan, err := fam.Plan(st, want, before)
	if err != nil {
		observability.RecordRun(name, st.String(), observability.OutcomeError, time.Since(start))
		return Result[T]{}, err
	}
	if len(plan.Requests) == 0 {
		plan.Commands = nil
	}

	result := Result[T]{
		Resource: name,
		Before:   nonNil(before),
		Commands: nonNil(plan.Commands),
		Requests: plan.Requests,
		Warnings: nonNil(plan.Warnings),
	}
	if len(plan.Requests) > 0 {
		observability.RecordRequests(name, plan.Requests)
		if !params.CheckMode {
			if err := transport.Edit(ctx, plan.Requests); err != nil {
				observability.RecordTransportFailure(name)
				observability.RecordRun(name, st.String(), observability.OutcomeError, time.Since(start))
				logger.Error().Err(err).Int("requests", len(plan.Requests)).Msg("module.Run edit failed")
				return Result[T]{}, fmt.Errorf("%s: apply: %w", name, err)
			}
		}
		result.Changed = true
	}

	if result.Changed && !params.CheckMode {
		after, err := fam.Gather(ctx, transport)
		if err != nil {
			observability.RecordRun(name, st.String(), observability.OutcomeError, time.Since(start))
			return Result[T]{}, fmt.Errorf("%s: gather facts after apply: %w", name, err)
		}
		result.After = nonNil(after)
	}

	outcome := observability.OutcomeUnchanged
	if result.Changed {
		outcome = observability.OutcomeChanged
	}
	observability.RecordRun(name, st.String(), outcome, time.Since(start))
	logger.Info().
		Bool("changed", result.Changed).
		Int("requests", len(result.Requests)).
		Int("warnings", len(result.Warnings)).
		Msg("module.Run complete")
	return result, nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
