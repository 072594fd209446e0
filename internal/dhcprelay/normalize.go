package dhcprelay

import (
	"fmt"
	"slices"
	"strings"

	"github.com/danmuck/sonicctl/internal/intfname"
)

// Normalize returns a canonical copy of want: interface names rewritten
// for mode, duplicate server addresses dropped, empty families removed.
// want itself is not modified.
func Normalize(want []Config, mode intfname.Mode) ([]Config, error) {
	if len(want) == 0 {
		return nil, nil
	}
	out := make([]Config, 0, len(want))
	seen := make(map[string]struct{}, len(want))
	for _, cfg := range want {
		c := cfg.clone()
		c.Name = intfname.Normalize(c.Name, mode)
		if c.Name == "" {
			return nil, fmt.Errorf("dhcprelay: interface name required")
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, c.Name)
		}
		seen[c.Name] = struct{}{}
		for _, f := range families {
			f.put(&c, normalizeFamily(f.pick(&c), mode))
		}
		out = append(out, c)
	}
	return out, nil
}

func normalizeFamily(af *AddressFamily, mode intfname.Mode) *AddressFamily {
	if af.IsZero() {
		return nil
	}
	if af.SourceInterface != "" {
		af.SourceInterface = intfname.Normalize(af.SourceInterface, mode)
	}
	af.PolicyAction = strings.ToLower(strings.TrimSpace(af.PolicyAction))
	if !af.wipeAll() {
		af.ServerAddresses = addressList(af.addresses())
	} else {
		af.ServerAddresses = af.ServerAddresses[:1]
	}
	return af
}

// index maps records by name.
func index(cfgs []Config) map[string]*Config {
	out := make(map[string]*Config, len(cfgs))
	for i := range cfgs {
		out[cfgs[i].Name] = &cfgs[i]
	}
	return out
}

func sortByName(cfgs []Config) {
	slices.SortFunc(cfgs, func(a, b Config) int { return strings.Compare(a.Name, b.Name) })
}
