package decl

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"class-composer/internal/common"
	"class-composer/internal/directive"
	"class-composer/internal/typesys"
)

// File represents the root of a YAML declaration file.
type File struct {
	// Version of the declaration schema.
	Version string `yaml:"version,omitempty"`

	// Imports lists Go package patterns whose exported structs are loaded
	// into the registry before any declaration is resolved.
	Imports []string `yaml:"imports,omitempty"`

	// Metaclasses are defined before types, in order.
	Metaclasses []MetaDef `yaml:"metaclasses,omitempty"`

	// Types are resolved in order. A declaration may only refer to types
	// declared above it.
	Types []TypeDecl `yaml:"types"`
}

// MetaDef declares a metaclass.
type MetaDef struct {
	Name string `yaml:"name"`
	// Parent defaults to "type".
	Parent string `yaml:"parent,omitempty"`
}

// TypeDecl is a single type declaration.
type TypeDecl struct {
	Name string `yaml:"name"`

	// Items is the base list: base names and directives, in order.
	Items []Item `yaml:"items,omitempty"`

	// Meta selects a metaclass outside the base list.
	Meta string `yaml:"meta,omitempty"`

	// Attrs is the declared attribute map. Key order is preserved.
	Attrs AttrList `yaml:"attrs,omitempty"`
}

// StringOrArray represents a value that can be either a single string or an array of strings.
type StringOrArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// IsSingle returns true if the array has exactly one element.
func (s StringOrArray) IsSingle() bool {
	return common.IsSingle(s)
}

// DecoratorSpec names a registered decorator and its optional argument.
// In YAML it is either a bare name (seal) or a single-key map ({wraps: Foo}).
type DecoratorSpec struct {
	Name string
	Arg  string
}

// String renders the decorator the way it is written.
func (d DecoratorSpec) String() string {
	if d.Arg == "" {
		return d.Name
	}

	return d.Name + " " + d.Arg
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DecoratorSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&d.Name)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return errors.New("expected single key-value map like {wraps: Foo}")
		}

		if err := node.Content[0].Decode(&d.Name); err != nil {
			return fmt.Errorf("invalid decorator name: %w", err)
		}

		if err := node.Content[1].Decode(&d.Arg); err != nil {
			return fmt.Errorf("invalid argument for decorator %q: %w", d.Name, err)
		}

		return nil
	default:
		return fmt.Errorf("expected decorator name or map, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (d DecoratorSpec) MarshalYAML() (any, error) {
	if d.Arg == "" {
		return d.Name, nil
	}

	return map[string]string{d.Name: d.Arg}, nil
}

// DecoratorList is one decorator or a list of them.
type DecoratorList []DecoratorSpec

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *DecoratorList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		var single DecoratorSpec
		if err := node.Decode(&single); err != nil {
			return err
		}

		*l = DecoratorList{single}

		return nil
	}

	out := make(DecoratorList, 0, len(node.Content))
	for _, item := range node.Content {
		var spec DecoratorSpec
		if err := item.Decode(&spec); err != nil {
			return err
		}

		out = append(out, spec)
	}

	*l = out

	return nil
}

// ComposeSpec is the operand of a compose directive.
type ComposeSpec struct {
	Bases     StringOrArray `yaml:"bases,omitempty"`
	Metaclass string        `yaml:"metaclass,omitempty"`
	Includes  StringOrArray `yaml:"includes,omitempty"`
}

// IsEmpty reports whether nothing is bundled.
func (c *ComposeSpec) IsEmpty() bool {
	return c == nil || (c.Bases.IsEmpty() && c.Metaclass == "" && c.Includes.IsEmpty())
}

// Item is one entry of a declaration's base list. Exactly one of Base and
// Key is set: a bare scalar is a genuine base, a single-key map is a
// directive keyed by its kind.
type Item struct {
	Base string

	// Key is the directive key as written; unknown keys are kept so that
	// validation can report them.
	Key string
	// Names holds the operands of patch, include, inherits and metaclass.
	Names StringOrArray
	// Decorators holds the operands of decorate.
	Decorators DecoratorList
	// Compose holds the operand of compose.
	Compose *ComposeSpec
}

// IsDirective reports whether the item is a directive.
func (it *Item) IsDirective() bool {
	return it.Key != ""
}

// Kind parses the directive key.
func (it *Item) Kind() (directive.Kind, error) {
	return directive.ParseKind(it.Key)
}

// String renders the item for diagnostics.
func (it *Item) String() string {
	if !it.IsDirective() {
		return it.Base
	}

	return it.Key
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (it *Item) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&it.Base)
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: expected base name or directive map, got %v", node.Line, node.Kind)
	}

	if len(node.Content) != 2 {
		return fmt.Errorf("line %d: directive must be a single-key map, got %d keys", node.Line, len(node.Content)/2)
	}

	if err := node.Content[0].Decode(&it.Key); err != nil {
		return fmt.Errorf("line %d: invalid directive key: %w", node.Line, err)
	}

	value := node.Content[1]

	kind, err := it.Kind()
	if err != nil {
		// Left for Validate.
		return nil
	}

	switch kind {
	case directive.KindDecorate:
		err = value.Decode(&it.Decorators)
	case directive.KindComposite:
		it.Compose = &ComposeSpec{}
		err = value.Decode(it.Compose)
	default:
		err = value.Decode(&it.Names)
	}

	if err != nil {
		return fmt.Errorf("line %d: %s: %w", value.Line, it.Key, err)
	}

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (it Item) MarshalYAML() (any, error) {
	if !it.IsDirective() {
		return it.Base, nil
	}

	var value any

	switch {
	case it.Compose != nil:
		value = it.Compose
	case it.Decorators != nil:
		value = it.Decorators
	default:
		value = it.Names
	}

	return map[string]any{it.Key: value}, nil
}

// Attr is one declared attribute.
type Attr struct {
	Key   string
	Value any
}

// AttrList is an ordered attribute map.
type AttrList []Attr

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *AttrList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attrs must be a map, got %v", node.Line, node.Kind)
	}

	out := make(AttrList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var attr Attr
		if err := node.Content[i].Decode(&attr.Key); err != nil {
			return fmt.Errorf("line %d: invalid attr key: %w", node.Content[i].Line, err)
		}

		if err := node.Content[i+1].Decode(&attr.Value); err != nil {
			return fmt.Errorf("line %d: attr %q: %w", node.Content[i+1].Line, attr.Key, err)
		}

		out = append(out, attr)
	}

	*l = out

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l AttrList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, attr := range l {
		var value yaml.Node
		if err := value.Encode(attr.Value); err != nil {
			return nil, fmt.Errorf("attr %q: %w", attr.Key, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.Key},
			&value,
		)
	}

	return node, nil
}

// ToAttrs copies the list into a fresh attribute map.
func (l AttrList) ToAttrs() *typesys.Attrs {
	attrs := typesys.NewAttrs()
	for _, attr := range l {
		attrs.Set(attr.Key, attr.Value)
	}

	return attrs
}
