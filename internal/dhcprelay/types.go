// Package dhcprelay reconciles per-interface DHCP and DHCPv6 relay
// configuration against the openconfig-relay-agent tree.
//
// Every exported planning function is pure over explicit (want, have)
// inputs; nothing here talks to a device except Gather.
package dhcprelay

import (
	"errors"
	"slices"

	"github.com/danmuck/sonicctl/internal/state"
)

// ResourceName is the registry id of this family.
const ResourceName = "dhcp_relay"

// Device defaults. A leaf holding its default was never set explicitly and
// the device rejects deleting it.
const (
	DefaultMaxHopCount  = 10
	DefaultPolicyAction = "discard"
	DefaultCircuitID    = "%p"
)

var ErrDuplicateName = errors.New("dhcprelay: duplicate interface name")

// ServerAddress is one relay helper address. An entry with an empty
// Address inside a deleted document means "remove the whole family".
type ServerAddress struct {
	Address string `json:"address,omitempty"`
}

// AddressFamily is the relay configuration of one interface for ipv4 or
// ipv6. LinkSelect, PolicyAction and CircuitID only exist for ipv4.
type AddressFamily struct {
	ServerAddresses []ServerAddress `json:"server_addresses,omitempty"`
	VRFName         string          `json:"vrf_name,omitempty"`
	SourceInterface string          `json:"source_interface,omitempty"`
	LinkSelect      *bool           `json:"link_select,omitempty"`
	MaxHopCount     int             `json:"max_hop_count,omitempty"`
	VRFSelect       *bool           `json:"vrf_select,omitempty"`
	PolicyAction    string          `json:"policy_action,omitempty"`
	CircuitID       string          `json:"circuit_id,omitempty"`
}

// Config is the relay configuration of one interface.
type Config struct {
	Name  string         `json:"name"`
	IPv4  *AddressFamily `json:"ipv4,omitempty"`
	IPv6  *AddressFamily `json:"ipv6,omitempty"`
	State state.State    `json:"state,omitempty"`
}

// IsZero reports whether no attribute is populated. A zero family is
// treated as absent.
func (af *AddressFamily) IsZero() bool {
	if af == nil {
		return true
	}
	return len(af.ServerAddresses) == 0 &&
		af.VRFName == "" &&
		af.SourceInterface == "" &&
		af.LinkSelect == nil &&
		af.MaxHopCount == 0 &&
		af.VRFSelect == nil &&
		af.PolicyAction == "" &&
		af.CircuitID == ""
}

// addresses returns the distinct non-empty addresses in input order.
func (af *AddressFamily) addresses() []string {
	if af == nil {
		return nil
	}
	out := make([]string, 0, len(af.ServerAddresses))
	for _, sa := range af.ServerAddresses {
		if sa.Address == "" || slices.Contains(out, sa.Address) {
			continue
		}
		out = append(out, sa.Address)
	}
	return out
}

// wipeAll reports the address-less sentinel entry.
func (af *AddressFamily) wipeAll() bool {
	return af != nil && len(af.ServerAddresses) > 0 && len(af.addresses()) == 0
}

func (af *AddressFamily) clone() *AddressFamily {
	if af == nil {
		return nil
	}
	out := *af
	out.ServerAddresses = slices.Clone(af.ServerAddresses)
	if af.LinkSelect != nil {
		v := *af.LinkSelect
		out.LinkSelect = &v
	}
	if af.VRFSelect != nil {
		v := *af.VRFSelect
		out.VRFSelect = &v
	}
	return &out
}

func (c Config) clone() Config {
	c.IPv4 = c.IPv4.clone()
	c.IPv6 = c.IPv6.clone()
	return c
}

func addressList(addrs []string) []ServerAddress {
	out := make([]ServerAddress, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, ServerAddress{Address: a})
	}
	return out
}

func boolPtr(v bool) *bool { return &v }
