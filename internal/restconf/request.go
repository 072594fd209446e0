package restconf

import (
	"net/url"
	"strings"
)

// Method is the edit operation carried by a Request.
type Method string

const (
	MethodPatch  Method = "patch"
	MethodDelete Method = "delete"
)

// Request is one edit against the device configuration tree. Data is only
// present for PATCH and holds a single key naming the target leaf or
// collection.
type Request struct {
	Path   string         `json:"path"`
	Method Method         `json:"method"`
	Data   map[string]any `json:"data,omitempty"`
}

// Patch builds a PATCH request setting key to value under path.
func Patch(path, key string, value any) Request {
	return Request{
		Path:   path,
		Method: MethodPatch,
		Data:   map[string]any{key: value},
	}
}

// Delete builds a DELETE request for path.
func Delete(path string) Request {
	return Request{Path: path, Method: MethodDelete}
}

// Template is a resource path with {placeholder} segments.
type Template string

// Expand substitutes placeholders with path-escaped values. Pairs are
// given as placeholder, value, placeholder, value, ...
func (t Template) Expand(pairs ...string) string {
	if len(pairs)%2 != 0 {
		panic("restconf: Template.Expand requires placeholder/value pairs")
	}
	args := make([]string, 0, len(pairs))
	for i := 0; i < len(pairs); i += 2 {
		args = append(args, "{"+pairs[i]+"}", url.PathEscape(pairs[i+1]))
	}
	return strings.NewReplacer(args...).Replace(string(t))
}

// Join appends a suffix to a template.
func (t Template) Join(suffix string) Template {
	return Template(string(t) + suffix)
}
