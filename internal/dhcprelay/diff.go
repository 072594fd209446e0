package dhcprelay

import "slices"

// Diff returns the parts of want that are absent from or differ in have,
// in want order. Records missing from have are returned whole; records
// present in have keep only changed attributes and new server addresses.
func Diff(want, have []Config) []Config {
	byName := index(have)
	var out []Config
	for _, w := range want {
		h, ok := byName[w.Name]
		if !ok {
			if !w.IPv4.IsZero() || !w.IPv6.IsZero() {
				out = append(out, w.clone())
			}
			continue
		}
		d := Config{Name: w.Name}
		changed := false
		for _, f := range families {
			if af := diffFamily(f, f.pick(&w), f.pick(h)); af != nil {
				f.put(&d, af)
				changed = true
			}
		}
		if changed {
			out = append(out, d)
		}
	}
	return out
}

func diffFamily(f family, want, have *AddressFamily) *AddressFamily {
	if want.IsZero() {
		return nil
	}
	if have.IsZero() {
		return want.clone()
	}
	out := &AddressFamily{}
	haveAddrs := have.addresses()
	for _, a := range want.addresses() {
		if !slices.Contains(haveAddrs, a) {
			out.ServerAddresses = append(out.ServerAddresses, ServerAddress{Address: a})
		}
	}
	for _, l := range f.patch {
		w := l.get(want)
		if w != nil && w != l.get(have) {
			l.set(out, w)
		}
	}
	if out.IsZero() {
		return nil
	}
	return out
}
