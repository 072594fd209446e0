// Package intfname canonicalizes user supplied interface names into the
// form a switch reports them in, so that want/have comparisons can use
// exact string equality.
package intfname

import (
	"fmt"
	"strings"
)

// Mode is the interface naming scheme configured on the device.
type Mode string

const (
	// Native names ports Ethernet0, Ethernet4, ...
	Native Mode = "native"
	// Standard names ports Eth1/1, Eth1/2, ...
	Standard Mode = "standard"
)

// ParseMode resolves a configured naming mode. Empty defaults to Native.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Native:
		return Native, nil
	case Standard:
		return Standard, nil
	default:
		return "", fmt.Errorf("intfname: unknown naming mode %q", raw)
	}
}

type prefixRule struct {
	native   string
	standard string
}

var (
	ethernetRule    = prefixRule{native: "Ethernet", standard: "Eth"}
	portChannelRule = prefixRule{native: "PortChannel", standard: "PortChannel"}
	vlanRule        = prefixRule{native: "Vlan", standard: "Vlan"}
	loopbackRule    = prefixRule{native: "Loopback", standard: "Loopback"}
	managementRule  = prefixRule{native: "Management", standard: "Management"}
	aliasesByPrefix = map[string]prefixRule{
		"e":            ethernetRule,
		"eth":          ethernetRule,
		"ethernet":     ethernetRule,
		"po":           portChannelRule,
		"portchannel":  portChannelRule,
		"port-channel": portChannelRule,
		"vl":           vlanRule,
		"vlan":         vlanRule,
		"lo":           loopbackRule,
		"loopback":     loopbackRule,
		"ma":           managementRule,
		"mgmt":         managementRule,
		"management":   managementRule,
	}
)

// Normalize returns the canonical spelling of name under mode. Names with an
// unrecognized prefix are returned trimmed but otherwise untouched.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string, mode Mode) string {
	compact := strings.Join(strings.Fields(name), "")
	if compact == "" {
		return ""
	}
	split := strings.IndexFunc(compact, func(r rune) bool {
		return (r >= '0' && r <= '9') || r == '/' || r == '.'
	})
	if split <= 0 {
		return compact
	}
	rule, ok := aliasesByPrefix[strings.ToLower(compact[:split])]
	if !ok {
		return compact
	}
	prefix := rule.native
	if mode == Standard {
		prefix = rule.standard
	}
	return prefix + compact[split:]
}
