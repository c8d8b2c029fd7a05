package directive

import (
	"errors"
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind tags what a directive does to the type under construction.
type Kind int

const (
	_ Kind = iota // zero value is not a valid kind

	KindPatch     // patch
	KindInclude   // include
	KindInherits  // inherits
	KindMetaclass // metaclass
	KindDecorate  // decorate
	KindComposite // compose

	// KindTotal is the number of defined kinds plus the invalid zero value.
	KindTotal = int(iota)
)

// ErrUnrecognizedDirectiveKind is returned for a kind outside the known set.
var ErrUnrecognizedDirectiveKind = errors.New("unrecognized directive kind")

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

// IsSolo reports whether directives of this kind must appear alone.
func (k Kind) IsSolo() bool {
	return k == KindPatch || k == KindComposite
}

// ParseKind maps a textual kind ("patch", "include", ...) to a Kind.
// "includes" and "py3" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patch", "patches":
		return KindPatch, nil
	case "include", "includes":
		return KindInclude, nil
	case "inherits":
		return KindInherits, nil
	case "metaclass":
		return KindMetaclass, nil
	case "decorate":
		return KindDecorate, nil
	case "compose", "py3":
		return KindComposite, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedDirectiveKind, s)
	}
}
