// Package argspec validates desired-state documents against the embedded
// per-resource JSON Schemas. Documents may be YAML or JSON.
package argspec

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"sigs.k8s.io/yaml"

	"github.com/danmuck/sonicctl/internal/state"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	ErrInvalidDocument = errors.New("argspec: invalid document")
	ErrUnknownSchema   = errors.New("argspec: unknown schema")
)

var (
	compileMu sync.Mutex
	compiled  = map[string]*jsonschema.Schema{}
)

// Document is a validated desired-state document.
type Document struct {
	State  state.State
	Config json.RawMessage
}

// Names lists the embedded schemas.
func Names() []string {
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Schema returns the raw schema for name.
func Schema(name string) ([]byte, error) {
	raw, err := schemaFS.ReadFile(path.Join("schemas", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return raw, nil
}

func compile(name string) (*jsonschema.Schema, error) {
	compileMu.Lock()
	defer compileMu.Unlock()
	if sch, ok := compiled[name]; ok {
		return sch, nil
	}
	raw, err := Schema(name)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("argspec: unmarshal %s schema: %w", name, err)
	}
	id := name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(id, doc); err != nil {
		return nil, fmt.Errorf("argspec: add %s schema: %w", name, err)
	}
	sch, err := compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("argspec: compile %s schema: %w", name, err)
	}
	compiled[name] = sch
	return sch, nil
}

// Parse converts raw to JSON, validates it against the schema for name and
// resolves the state, defaulting to merged.
func Parse(name string, raw []byte) (Document, error) {
	sch, err := compile(name)
	if err != nil {
		return Document{}, err
	}
	data, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		data = []byte("{}")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := sch.Validate(inst); err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}

	var envelope struct {
		State  string          `json:"state"`
		Config json.RawMessage `json:"config"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	st, err := state.Parse(envelope.State)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return Document{State: st, Config: envelope.Config}, nil
}

// Decode unmarshals the document's config list into T records.
func Decode[T any](doc Document) ([]T, error) {
	raw := bytes.TrimSpace(doc.Config)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", ErrInvalidDocument, err)
	}
	return out, nil
}
