package dhcprelay

import (
	"context"

	"github.com/danmuck/sonicctl/internal/intfname"
	"github.com/danmuck/sonicctl/internal/module"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/state"
)

// SetState plans want against have for st. replaced and overridden are
// accepted by the argument schema but not supported for this family.
func SetState(st state.State, want, have []Config) (module.Plan[Config], error) {
	switch st {
	case state.Merged:
		commands := Diff(want, have)
		requests := ModifyRequests(commands)
		return finish(st, commands, requests, nil), nil
	case state.Deleted:
		if len(want) == 0 {
			commands := cloneAll(have)
			return finish(st, commands, DeleteAllRequests(have), nil), nil
		}
		requests, warnings := DeleteRequests(want, have)
		return finish(st, cloneAll(want), requests, warnings), nil
	case state.Replaced, state.Overridden:
		return module.Plan[Config]{}, state.NotImplemented(ResourceName, st)
	default:
		if err := st.Validate(); err != nil {
			return module.Plan[Config]{}, err
		}
		return module.Plan[Config]{}, state.NotImplemented(ResourceName, st)
	}
}

func finish(st state.State, commands []Config, requests []restconf.Request, warnings []string) module.Plan[Config] {
	if len(requests) == 0 {
		commands = nil
	}
	for i := range commands {
		commands[i].State = st
	}
	return module.Plan[Config]{Commands: commands, Requests: requests, Warnings: warnings}
}

func cloneAll(in []Config) []Config {
	out := make([]Config, 0, len(in))
	for _, c := range in {
		out = append(out, c.clone())
	}
	return out
}

// Resource binds the family to an interface naming mode.
type Resource struct {
	naming intfname.Mode
}

var _ module.Family[Config] = (*Resource)(nil)

func New(naming intfname.Mode) *Resource {
	return &Resource{naming: naming}
}

func (r *Resource) Name() string { return ResourceName }

func (r *Resource) Gather(ctx context.Context, rd restconf.Reader) ([]Config, error) {
	return Gather(ctx, rd)
}

func (r *Resource) Normalize(want []Config) ([]Config, error) {
	return Normalize(want, r.naming)
}

func (r *Resource) Plan(st state.State, want, have []Config) (module.Plan[Config], error) {
	return SetState(st, want, have)
}
