// Package export renders the types bound in a registry as YAML, JSON or
// msgpack documents.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"class-composer/internal/typesys"
)

// SchemaVersion is written into every document.
const SchemaVersion = "1"

// Format is an output encoding.
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts yaml, yml, json, msgpack and mp, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml", "":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Document is the exported form of a registry.
type Document struct {
	Version string     `yaml:"version" json:"version" msgpack:"version"`
	Types   []TypeView `yaml:"types" json:"types" msgpack:"types"`
}

// TypeView is a flattened, encoder-friendly view of a type.
type TypeView struct {
	// Binding is the name the type is bound under, which differs from
	// Name when a decorator renamed it.
	Binding string     `yaml:"binding" json:"binding" msgpack:"binding"`
	ID      string     `yaml:"id" json:"id" msgpack:"id"`
	Name    string     `yaml:"name" json:"name" msgpack:"name"`
	Meta    string     `yaml:"meta" json:"meta" msgpack:"meta"`
	Bases   []string   `yaml:"bases,omitempty" json:"bases,omitempty" msgpack:"bases,omitempty"`
	MRO     []string   `yaml:"mro" json:"mro" msgpack:"mro"`
	Attrs   []AttrView `yaml:"attrs,omitempty" json:"attrs,omitempty" msgpack:"attrs,omitempty"`
}

// AttrView is one own attribute of a type.
type AttrView struct {
	Key   string `yaml:"key" json:"key" msgpack:"key"`
	Value any    `yaml:"value" json:"value" msgpack:"value"`
}

// Snapshot views every type bound in reg, in bind order. The universal
// root is left out.
func Snapshot(reg *typesys.Registry) *Document {
	doc := &Document{Version: SchemaVersion, Types: []TypeView{}}

	for _, binding := range reg.Names() {
		t, ok := reg.Lookup(binding)
		if !ok || t == typesys.Object {
			continue
		}

		doc.Types = append(doc.Types, View(binding, t))
	}

	return doc
}

// View flattens t bound under binding.
func View(binding string, t *typesys.Type) TypeView {
	v := TypeView{
		Binding: binding,
		ID:      t.ID().String(),
		Name:    t.Name(),
		Meta:    t.Meta().Name(),
		Bases:   names(t.Bases()),
		MRO:     names(t.MRO()),
	}

	t.OwnAttrs().Range(func(k string, val any) bool {
		v.Attrs = append(v.Attrs, AttrView{Key: k, Value: val})
		return true
	})

	return v
}

func names(types []*typesys.Type) []string {
	if len(types) == 0 {
		return nil
	}

	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.Name())
	}

	return out
}

// Encode writes doc to w in format f.
func Encode(w io.Writer, doc *Document, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}

		return nil
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)

		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode msgpack: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Marshal encodes doc in format f.
func Marshal(doc *Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, f); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a document written by Marshal. Attribute values come
// back as the decoder's generic types.
func Unmarshal(data []byte, f Format) (*Document, error) {
	var (
		doc Document
		err error
	)

	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f, err)
	}

	return &doc, nil
}
