package directive

import (
	"class-composer/internal/typesys"
)

type composeOptions struct {
	meta     *typesys.Meta
	includes any
}

// ComposeOption configures Compose.
type ComposeOption func(*composeOptions)

// WithMetaclass selects the constructing meta.
func WithMetaclass(m *typesys.Meta) ComposeOption {
	return func(o *composeOptions) { o.meta = m }
}

// WithIncludes adds types whose attributes are copied in. A single type and
// a sequence of types are both accepted.
func WithIncludes(valueOrSeq any) ComposeOption {
	return func(o *composeOptions) { o.includes = valueOrSeq }
}

// Compose bundles bases, a metaclass and includes into one solo directive.
// Its operands are, in order and only when given: Inherits(bases),
// Metaclass(meta), Include(includes).
func Compose(bases []*typesys.Type, opts ...ComposeOption) *Directive {
	var o composeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var nested []any
	if len(bases) > 0 {
		nested = append(nested, Inherits(bases))
	}

	if o.meta != nil {
		nested = append(nested, Metaclass(o.meta))
	}

	if o.includes != nil {
		nested = append(nested, Include(o.includes))
	}

	return &Directive{kind: KindComposite, args: nested}
}
