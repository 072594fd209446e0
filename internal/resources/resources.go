// Package resources maps resource ids onto the families that reconcile
// them, turning raw desired-state documents into module runs.
package resources

import (
	"context"

	"github.com/danmuck/sonicctl/internal/argspec"
	"github.com/danmuck/sonicctl/internal/dhcprelay"
	"github.com/danmuck/sonicctl/internal/intfname"
	"github.com/danmuck/sonicctl/internal/module"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/state"
	"github.com/danmuck/sonicctl/internal/vlans"
)

// Metadata describes a registered resource family.
type Metadata struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	States      []state.State `json:"states"`
}

// Target is the device a resource runs against.
type Target struct {
	Device    string
	Transport restconf.Transport
	Naming    intfname.Mode
}

// Outcome is one executed document. Result holds the family's
// module.Result and is what gets serialized.
type Outcome struct {
	Device    string         `json:"device,omitempty"`
	Resource  string         `json:"resource"`
	State     state.State    `json:"state"`
	CheckMode bool           `json:"check_mode"`
	Result    any            `json:"result"`
	Summary   module.Summary `json:"-"`
}

// Resource executes desired-state documents for one family.
type Resource interface {
	Metadata() Metadata
	Execute(ctx context.Context, target Target, doc []byte, checkMode bool) (Outcome, error)
}

type family[T any] struct {
	meta  Metadata
	build func(intfname.Mode) module.Family[T]
}

func (f family[T]) Metadata() Metadata { return f.meta }

func (f family[T]) Execute(ctx context.Context, target Target, doc []byte, checkMode bool) (Outcome, error) {
	parsed, err := argspec.Parse(f.meta.ID, doc)
	if err != nil {
		return Outcome{}, err
	}
	cfg, err := argspec.Decode[T](parsed)
	if err != nil {
		return Outcome{}, err
	}
	res, err := module.Run(ctx, f.build(target.Naming), target.Transport, module.Params[T]{
		State:     parsed.State,
		Config:    cfg,
		CheckMode: checkMode,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Device:    target.Device,
		Resource:  f.meta.ID,
		State:     parsed.State,
		CheckMode: checkMode,
		Result:    res,
		Summary:   res.Summary(),
	}, nil
}

// DHCPRelay is the dhcp_relay family.
func DHCPRelay() Resource {
	return family[dhcprelay.Config]{
		meta: Metadata{
			ID:          dhcprelay.ResourceName,
			Name:        "DHCP relay",
			Description: "Per-interface DHCP and DHCPv6 relay helper addresses and options.",
			States:      []state.State{state.Merged, state.Deleted},
		},
		build: func(mode intfname.Mode) module.Family[dhcprelay.Config] { return dhcprelay.New(mode) },
	}
}

// VLANs is the vlans family.
func VLANs() Resource {
	return family[vlans.Config]{
		meta: Metadata{
			ID:          vlans.ResourceName,
			Name:        "VLANs",
			Description: "VLAN interfaces and their descriptions.",
			States:      state.All(),
		},
		build: func(intfname.Mode) module.Family[vlans.Config] { return vlans.Resource{} },
	}
}

// Default returns a registry holding every built-in family.
func Default() *Registry {
	reg := NewRegistry()
	for _, res := range []Resource{DHCPRelay(), VLANs()} {
		if err := reg.Register(res); err != nil {
			panic(err)
		}
	}
	return reg
}
