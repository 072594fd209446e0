package resources

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrResourceExists  = errors.New("resource already exists")
	ErrResourceNil     = errors.New("resource is nil")
	ErrInvalidMetadata = errors.New("invalid resource metadata")
	ErrUnknownResource = errors.New("unknown resource")
)

// Registry stores resource families by stable identifier.
type Registry struct {
	items map[string]Resource
}

// NewRegistry creates an empty resource registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Resource)}
}

// ValidateMetadata checks required metadata fields and id format.
func ValidateMetadata(meta Metadata) error {
	id := strings.TrimSpace(meta.ID)
	name := strings.TrimSpace(meta.Name)
	desc := strings.TrimSpace(meta.Description)
	if id == "" || name == "" || desc == "" {
		return fmt.Errorf("%w: id, name, and description are required", ErrInvalidMetadata)
	}
	if !isValidID(id) {
		return fmt.Errorf("%w: invalid id format %q", ErrInvalidMetadata, id)
	}
	if len(meta.States) == 0 {
		return fmt.Errorf("%w: %s supports no states", ErrInvalidMetadata, id)
	}
	return nil
}

// Register adds a resource to the registry.
func (r *Registry) Register(res Resource) error {
	if res == nil {
		return ErrResourceNil
	}

	meta := res.Metadata()
	if err := ValidateMetadata(meta); err != nil {
		return err
	}

	if _, ok := r.items[meta.ID]; ok {
		return ErrResourceExists
	}
	r.items[meta.ID] = res
	return nil
}

// Resolve returns a resource by id.
func (r *Registry) Resolve(id string) (Resource, bool) {
	res, ok := r.items[id]
	return res, ok
}

// Lookup is Resolve with an ErrUnknownResource failure.
func (r *Registry) Lookup(id string) (Resource, error) {
	res, ok := r.Resolve(strings.TrimSpace(id))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, id)
	}
	return res, nil
}

// ListMetadata returns deterministic metadata ordering by id.
func (r *Registry) ListMetadata() []Metadata {
	list := make([]Metadata, 0, len(r.items))
	for _, res := range r.items {
		list = append(list, res.Metadata())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func isValidID(id string) bool {
	if id == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(id); i++ {
		c := id[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if i == 0 || i == len(id)-1 {
			if isSep {
				return false
			}
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
