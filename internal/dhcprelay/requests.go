package dhcprelay

import "github.com/danmuck/sonicctl/internal/restconf"

// ModifyRequests builds the PATCH requests for commands. Per family the
// order is server addresses, then the leaves in device dependency order.
func ModifyRequests(commands []Config) []restconf.Request {
	var requests []restconf.Request
	for i := range commands {
		cmd := &commands[i]
		for _, f := range families {
			requests = append(requests, modifyFamily(f, cmd.Name, f.pick(cmd))...)
		}
	}
	return requests
}

func modifyFamily(f family, name string, af *AddressFamily) []restconf.Request {
	if af.IsZero() {
		return nil
	}
	var requests []restconf.Request
	if addrs := af.addresses(); len(addrs) > 0 {
		requests = append(requests, restconf.Patch(f.helperAddresses().Expand("intf_name", name), helperAddressKey, addrs))
	}
	for _, l := range f.patch {
		v := l.get(af)
		if v == nil {
			continue
		}
		requests = append(requests, restconf.Patch(l.path.Expand("intf_name", name), l.key, l.encode(v)))
	}
	return requests
}
