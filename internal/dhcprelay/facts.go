package dhcprelay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/danmuck/sonicctl/internal/restconf"
)

// Gather reads the dhcp and dhcpv6 relay trees and returns one record per
// interface, sorted by name. A tree the device does not have yields no
// records.
func Gather(ctx context.Context, r restconf.Reader) ([]Config, error) {
	byName := map[string]*Config{}
	for _, f := range families {
		body, err := r.Get(ctx, relayRoot+f.tree)
		if errors.Is(err, restconf.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("dhcprelay: read %s tree: %w", f.tree, err)
		}
		if len(body) == 0 {
			continue
		}
		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("dhcprelay: malformed %s tree", f.tree)
		}
		root := gjson.GetBytes(body, "openconfig-relay-agent:"+f.tree+".interfaces.interface")
		for _, item := range root.Array() {
			name := item.Get("id").String()
			if name == "" {
				name = item.Get("config.id").String()
			}
			if name == "" {
				continue
			}
			af := parseFamily(f, item)
			if af.IsZero() {
				continue
			}
			c, ok := byName[name]
			if !ok {
				c = &Config{Name: name}
				byName[name] = c
			}
			f.put(c, af)
		}
	}

	out := make([]Config, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sortByName(out)
	return out, nil
}

func parseFamily(f family, item gjson.Result) *AddressFamily {
	cfg := item.Get("config")
	opts := item.Get(f.optsPath)

	af := &AddressFamily{}
	for _, a := range cfg.Get(gjsonKey("helper-address")).Array() {
		if v := a.String(); v != "" {
			af.ServerAddresses = append(af.ServerAddresses, ServerAddress{Address: v})
		}
	}
	af.VRFName = cfg.Get(gjsonKey(extPrefix + "vrf")).String()
	af.SourceInterface = cfg.Get(gjsonKey(extPrefix + "src-intf")).String()
	af.MaxHopCount = int(cfg.Get(gjsonKey(extPrefix + "max-hop-count")).Int())
	af.VRFSelect = parseSelect(opts.Get(gjsonKey(extPrefix + "vrf-select")))
	if f.name == "ipv4" {
		af.PolicyAction = strings.ToLower(cfg.Get(gjsonKey(extPrefix + "policy-action")).String())
		af.LinkSelect = parseSelect(opts.Get(gjsonKey(extPrefix + "link-select")))
		af.CircuitID = opts.Get(gjsonKey("circuit-id")).String()
	}
	return af
}

func parseSelect(v gjson.Result) *bool {
	switch strings.ToUpper(v.String()) {
	case "ENABLE":
		return boolPtr(true)
	case "DISABLE":
		return boolPtr(false)
	}
	return nil
}

// gjsonKey escapes characters gjson treats as path syntax.
func gjsonKey(k string) string {
	return strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`).Replace(k)
}
