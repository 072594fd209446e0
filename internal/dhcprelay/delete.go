package dhcprelay

import (
	"fmt"
	"slices"

	"github.com/danmuck/sonicctl/internal/restconf"
)

// DeleteAllRequests removes every family configured in have. Deleting the
// helper-address collection cascades to the rest of the family.
func DeleteAllRequests(have []Config) []restconf.Request {
	var requests []restconf.Request
	for i := range have {
		h := &have[i]
		for _, f := range families {
			if !f.pick(h).IsZero() {
				requests = append(requests, restconf.Delete(f.helperAddresses().Expand("intf_name", h.Name)))
			}
		}
	}
	return requests
}

// DeleteRequests builds the DELETE requests for commands matched against
// have. Anything requested but not configured is skipped; requested
// server addresses that are not configured are reported as warnings.
func DeleteRequests(commands, have []Config) ([]restconf.Request, []string) {
	byName := index(have)
	var (
		requests []restconf.Request
		warnings []string
	)
	for i := range commands {
		cmd := &commands[i]
		h, ok := byName[cmd.Name]
		if !ok {
			warnings = append(warnings, missingAddresses(cmd, nil)...)
			continue
		}
		if cmd.IPv4.IsZero() && cmd.IPv6.IsZero() {
			requests = append(requests, DeleteAllRequests([]Config{*h})...)
			continue
		}
		warnings = append(warnings, missingAddresses(cmd, h)...)
		for _, f := range families {
			want, cur := f.pick(cmd), f.pick(h)
			if want.IsZero() || cur.IsZero() {
				continue
			}
			requests = append(requests, deleteFamily(f, cmd.Name, want, cur)...)
		}
	}
	return requests, warnings
}

func deleteFamily(f family, name string, want, have *AddressFamily) []restconf.Request {
	all := restconf.Delete(f.helperAddresses().Expand("intf_name", name))
	if want.wipeAll() {
		return []restconf.Request{all}
	}

	var requests []restconf.Request
	haveAddrs := have.addresses()
	var common []string
	for _, a := range want.addresses() {
		if slices.Contains(haveAddrs, a) {
			common = append(common, a)
		}
	}
	if len(common) > 0 {
		if len(common) == len(haveAddrs) {
			return []restconf.Request{all}
		}
		for _, a := range common {
			requests = append(requests, restconf.Delete(f.helperAddress().Expand("intf_name", name, "server_address", a)))
		}
	}

	for _, l := range f.del {
		w, h := l.get(want), l.get(have)
		if w == nil || h == nil {
			continue
		}
		if l.flag {
			if h != true {
				continue
			}
		} else if w != h || h == l.def {
			continue
		}
		requests = append(requests, restconf.Delete(l.path.Expand("intf_name", name)))
	}
	return requests
}

func missingAddresses(cmd, have *Config) []string {
	var out []string
	for _, f := range families {
		want := f.pick(cmd)
		var cur *AddressFamily
		if have != nil {
			cur = f.pick(have)
		}
		haveAddrs := cur.addresses()
		for _, a := range want.addresses() {
			if !slices.Contains(haveAddrs, a) {
				out = append(out, fmt.Sprintf("dhcp relay %s server address %s not configured on %s", f.name, a, cmd.Name))
			}
		}
	}
	return out
}
