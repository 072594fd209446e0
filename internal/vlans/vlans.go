// Package vlans reconciles VLAN interfaces in the openconfig-interfaces
// tree. It follows the dhcprelay shape with a single keyed record and
// supports all four states.
package vlans

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/danmuck/sonicctl/internal/module"
	"github.com/danmuck/sonicctl/internal/restconf"
	"github.com/danmuck/sonicctl/internal/state"
)

const ResourceName = "vlans"

const (
	MinVlanID = 1
	MaxVlanID = 4094

	interfacesPath = "data/openconfig-interfaces:interfaces"
	interfacesKey  = "openconfig-interfaces:interfaces"
	vlanPrefix     = "Vlan"
)

var (
	vlanPath        = restconf.Template(interfacesPath + "/interface={name}")
	descriptionPath = vlanPath.Join("/config/description")

	ErrDuplicateVlan = errors.New("vlans: duplicate vlan_id")
	ErrVlanRange     = errors.New("vlans: vlan_id out of range")
)

// Config is one VLAN.
type Config struct {
	VlanID      int         `json:"vlan_id"`
	Description string      `json:"description,omitempty"`
	State       state.State `json:"state,omitempty"`
}

func (c Config) ifName() string {
	return vlanPrefix + strconv.Itoa(c.VlanID)
}

// Normalize validates ids and returns a trimmed copy of want.
func Normalize(want []Config) ([]Config, error) {
	if len(want) == 0 {
		return nil, nil
	}
	out := make([]Config, 0, len(want))
	seen := make(map[int]struct{}, len(want))
	for _, c := range want {
		if c.VlanID < MinVlanID || c.VlanID > MaxVlanID {
			return nil, fmt.Errorf("%w: %d", ErrVlanRange, c.VlanID)
		}
		if _, dup := seen[c.VlanID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateVlan, c.VlanID)
		}
		seen[c.VlanID] = struct{}{}
		c.Description = strings.TrimSpace(c.Description)
		out = append(out, c)
	}
	return out, nil
}

// Gather returns the VLAN interfaces configured on the device, sorted by id.
func Gather(ctx context.Context, r restconf.Reader) ([]Config, error) {
	body, err := r.Get(ctx, interfacesPath)
	if errors.Is(err, restconf.ErrNotFound) || (err == nil && len(body) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vlans: read interfaces: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("vlans: malformed interfaces tree")
	}
	var out []Config
	gjson.GetBytes(body, interfacesKey+".interface").ForEach(func(_, item gjson.Result) bool {
		name := item.Get("name").String()
		id, ok := parseVlanName(name)
		if !ok {
			return true
		}
		out = append(out, Config{VlanID: id, Description: item.Get("config.description").String()})
		return true
	})
	slices.SortFunc(out, func(a, b Config) int { return a.VlanID - b.VlanID })
	return out, nil
}

func parseVlanName(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, vlanPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id < MinVlanID || id > MaxVlanID {
		return 0, false
	}
	return id, true
}

func index(cfgs []Config) map[int]Config {
	out := make(map[int]Config, len(cfgs))
	for _, c := range cfgs {
		out[c.VlanID] = c
	}
	return out
}

// Diff returns VLANs missing from have and VLANs whose requested
// description differs.
func Diff(want, have []Config) []Config {
	byID := index(have)
	var out []Config
	for _, w := range want {
		h, ok := byID[w.VlanID]
		if !ok {
			out = append(out, w)
			continue
		}
		if w.Description != "" && w.Description != h.Description {
			out = append(out, Config{VlanID: w.VlanID, Description: w.Description})
		}
	}
	return out
}

// ModifyRequests batches every command into a single PATCH.
func ModifyRequests(commands []Config) []restconf.Request {
	if len(commands) == 0 {
		return nil
	}
	items := make([]map[string]any, 0, len(commands))
	for _, c := range commands {
		cfg := map[string]any{"name": c.ifName()}
		if c.Description != "" {
			cfg["description"] = c.Description
		}
		items = append(items, map[string]any{"name": c.ifName(), "config": cfg})
	}
	return []restconf.Request{
		restconf.Patch(interfacesPath, interfacesKey, map[string]any{"interface": items}),
	}
}

// DeleteRequests removes the requested VLANs, or only their description
// when the requested description matches. VLANs not in have are ignored.
func DeleteRequests(commands, have []Config) ([]Config, []restconf.Request) {
	byID := index(have)
	var (
		applied  []Config
		requests []restconf.Request
	)
	for _, c := range commands {
		h, ok := byID[c.VlanID]
		if !ok {
			continue
		}
		switch {
		case c.Description == "":
			requests = append(requests, restconf.Delete(vlanPath.Expand("name", c.ifName())))
		case c.Description == h.Description:
			requests = append(requests, restconf.Delete(descriptionPath.Expand("name", c.ifName())))
		default:
			continue
		}
		applied = append(applied, c)
	}
	return applied, requests
}

func deleteAll(have []Config) []restconf.Request {
	var requests []restconf.Request
	for _, h := range have {
		requests = append(requests, restconf.Delete(vlanPath.Expand("name", h.ifName())))
	}
	return requests
}

// SetState plans want against have for st. Deletes always precede the
// merge PATCH.
func SetState(st state.State, want, have []Config) (module.Plan[Config], error) {
	var (
		commands []Config
		requests []restconf.Request
	)
	switch st {
	case state.Merged:
		commands = Diff(want, have)
		requests = ModifyRequests(commands)
	case state.Deleted:
		if len(want) == 0 {
			commands = slices.Clone(have)
			requests = deleteAll(have)
		} else {
			commands, requests = DeleteRequests(want, have)
		}
	case state.Replaced:
		commands, requests = replace(want, have)
	case state.Overridden:
		keep := index(want)
		for _, h := range have {
			if _, ok := keep[h.VlanID]; !ok {
				commands = append(commands, Config{VlanID: h.VlanID})
				requests = append(requests, restconf.Delete(vlanPath.Expand("name", h.ifName())))
			}
		}
		c, r := replace(want, have)
		commands = append(commands, c...)
		requests = append(requests, r...)
	default:
		if err := st.Validate(); err != nil {
			return module.Plan[Config]{}, err
		}
		return module.Plan[Config]{}, state.NotImplemented(ResourceName, st)
	}
	if len(requests) == 0 {
		commands = nil
	}
	for i := range commands {
		commands[i].State = st
	}
	return module.Plan[Config]{Commands: commands, Requests: requests}, nil
}

func replace(want, have []Config) ([]Config, []restconf.Request) {
	byID := index(have)
	var (
		commands []Config
		requests []restconf.Request
	)
	for _, w := range want {
		h, ok := byID[w.VlanID]
		if ok && h.Description != "" && w.Description == "" {
			commands = append(commands, Config{VlanID: w.VlanID})
			requests = append(requests, restconf.Delete(descriptionPath.Expand("name", w.ifName())))
		}
	}
	merged := Diff(want, have)
	commands = append(commands, merged...)
	requests = append(requests, ModifyRequests(merged)...)
	return commands, requests
}

// Resource is the vlans family.
type Resource struct{}

var _ module.Family[Config] = Resource{}

func (Resource) Name() string { return ResourceName }

func (Resource) Gather(ctx context.Context, r restconf.Reader) ([]Config, error) {
	return Gather(ctx, r)
}

func (Resource) Normalize(want []Config) ([]Config, error) { return Normalize(want) }

func (Resource) Plan(st state.State, want, have []Config) (module.Plan[Config], error) {
	return SetState(st, want, have)
}
