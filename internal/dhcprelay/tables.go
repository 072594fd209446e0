package dhcprelay

import (
	"strings"

	"github.com/danmuck/sonicctl/internal/restconf"
)

const (
	relayRoot = "data/openconfig-relay-agent:relay-agent/"
	intfPath  = "/interfaces/interface={intf_name}"

	helperAddressKey = "openconfig-relay-agent:helper-address"
	circuitIDKey     = "openconfig-relay-agent:circuit-id"
	extPrefix        = "openconfig-relay-agent-ext:"
)

var selectValue = map[bool]string{
	true:  "ENABLE",
	false: "DISABLE",
}

// leaf describes one scalar attribute of an address family. get returns
// nil when the attribute is unset.
type leaf struct {
	attr   string
	path   restconf.Template
	key    string
	get    func(*AddressFamily) any
	set    func(*AddressFamily, any)
	encode func(any) any
	// flag leaves are deleted whenever requested and currently enabled.
	flag bool
	// def is the device default, nil when none applies.
	def any
}

// family describes one relay tree (dhcp or dhcpv6).
type family struct {
	name     string
	tree     string
	intf     restconf.Template
	patch    []leaf
	del      []leaf
	optsPath string
	pick     func(*Config) *AddressFamily
	put      func(*Config, *AddressFamily)
}

func (f family) helperAddresses() restconf.Template {
	return f.intf.Join("/config/helper-address")
}

func (f family) helperAddress() restconf.Template {
	return f.intf.Join("/config/helper-address={server_address}")
}

var (
	ipv4 = newFamily("ipv4", "dhcp", "agent-information-option")
	ipv6 = newFamily("ipv6", "dhcpv6", "options")

	families = []family{ipv4, ipv6}
)

func newFamily(name, tree, opts string) family {
	intf := restconf.Template(relayRoot + tree + intfPath)

	vrfName := stringLeaf("vrf_name", intf.Join("/config/"+extPrefix+"vrf"), extPrefix+"vrf", nil,
		func(af *AddressFamily) *string { return &af.VRFName })
	sourceInterface := stringLeaf("source_interface", intf.Join("/config/"+extPrefix+"src-intf"), extPrefix+"src-intf", nil,
		func(af *AddressFamily) *string { return &af.SourceInterface })
	maxHopCount := leaf{
		attr: "max_hop_count",
		path: intf.Join("/config/" + extPrefix + "max-hop-count"),
		key:  extPrefix + "max-hop-count",
		get: func(af *AddressFamily) any {
			if af.MaxHopCount == 0 {
				return nil
			}
			return af.MaxHopCount
		},
		set:    func(af *AddressFamily, v any) { af.MaxHopCount = v.(int) },
		encode: identity,
		def:    DefaultMaxHopCount,
	}
	vrfSelect := flagLeaf("vrf_select", intf.Join("/"+opts+"/config/"+extPrefix+"vrf-select"), extPrefix+"vrf-select",
		func(af *AddressFamily) **bool { return &af.VRFSelect })

	f := family{
		name:     name,
		tree:     tree,
		intf:     intf,
		optsPath: opts + ".config",
	}
	if name == "ipv6" {
		f.patch = []leaf{vrfName, sourceInterface, maxHopCount, vrfSelect}
		f.del = []leaf{sourceInterface, maxHopCount, vrfSelect}
		f.pick = func(c *Config) *AddressFamily { return c.IPv6 }
		f.put = func(c *Config, af *AddressFamily) { c.IPv6 = af }
		return f
	}

	linkSelect := flagLeaf("link_select", intf.Join("/"+opts+"/config/"+extPrefix+"link-select"), extPrefix+"link-select",
		func(af *AddressFamily) **bool { return &af.LinkSelect })
	policyAction := stringLeaf("policy_action", intf.Join("/config/"+extPrefix+"policy-action"), extPrefix+"policy-action", DefaultPolicyAction,
		func(af *AddressFamily) *string { return &af.PolicyAction })
	policyAction.encode = func(v any) any { return strings.ToUpper(v.(string)) }
	circuitID := stringLeaf("circuit_id", intf.Join("/"+opts+"/config/circuit-id"), circuitIDKey, DefaultCircuitID,
		func(af *AddressFamily) *string { return &af.CircuitID })

	f.patch = []leaf{vrfName, sourceInterface, linkSelect, maxHopCount, vrfSelect, policyAction, circuitID}
	f.del = []leaf{linkSelect, sourceInterface, maxHopCount, vrfSelect, policyAction, circuitID}
	f.pick = func(c *Config) *AddressFamily { return c.IPv4 }
	f.put = func(c *Config, af *AddressFamily) { c.IPv4 = af }
	return f
}

func stringLeaf(attr string, path restconf.Template, key string, def any, field func(*AddressFamily) *string) leaf {
	return leaf{
		attr: attr,
		path: path,
		key:  key,
		get: func(af *AddressFamily) any {
			if v := *field(af); v != "" {
				return v
			}
			return nil
		},
		set:    func(af *AddressFamily, v any) { *field(af) = v.(string) },
		encode: identity,
		def:    def,
	}
}

func flagLeaf(attr string, path restconf.Template, key string, field func(*AddressFamily) **bool) leaf {
	return leaf{
		attr: attr,
		path: path,
		key:  key,
		get: func(af *AddressFamily) any {
			if p := *field(af); p != nil {
				return *p
			}
			return nil
		},
		set:    func(af *AddressFamily, v any) { *field(af) = boolPtr(v.(bool)) },
		encode: func(v any) any { return selectValue[v.(bool)] },
		flag:   true,
	}
}

func identity(v any) any { return v }

// value reads l from af, tolerating a nil family.
func (l leaf) value(af *AddressFamily) any {
	if af == nil {
		return nil
	}
	return l.get(af)
}
