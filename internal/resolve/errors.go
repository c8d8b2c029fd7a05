package resolve

import (
	"errors"
	"fmt"

	"class-composer/internal/directive"
	"class-composer/internal/typesys"
)

var (
	// ErrSoloConflict: a solo directive shares the declaration with another directive.
	ErrSoloConflict = errors.New("solo directive combined with other directives")
	// ErrNameMismatch: a patch is declared under a name other than its target's.
	ErrNameMismatch = errors.New("inconsistent naming")
	// ErrIllegalAncestryChange: a patch is declared with genuine bases.
	ErrIllegalAncestryChange = errors.New("cannot alter inheritance of pre-existing class")
	// ErrDuplicateBaseDeclaration: inherits is combined with another base list.
	ErrDuplicateBaseDeclaration = errors.New("inconsistent base class layouts")
	// ErrDuplicateMetaclassDeclaration: more than one metaclass is selected.
	ErrDuplicateMetaclassDeclaration = errors.New("metaclass declared more than once")
	// ErrInvalidOperand: a directive operand has the wrong type or arity.
	ErrInvalidOperand = errors.New("invalid directive operand")
	// ErrInvalidDeclaration: the declaration itself is malformed.
	ErrInvalidDeclaration = errors.New("invalid declaration")
)

// Error codes, shared with diagnostics.
const (
	CodeSoloConflict                  = "solo_conflict"
	CodeNameMismatch                  = "name_mismatch"
	CodeIllegalAncestryChange         = "illegal_ancestry_change"
	CodeDuplicateBaseDeclaration      = "duplicate_base_declaration"
	CodeDuplicateMetaclassDeclaration = "duplicate_metaclass_declaration"
	CodeUnrecognizedDirectiveKind     = "unrecognized_directive_kind"
	CodeInvalidOperand                = "invalid_operand"
	CodeInvalidDeclaration            = "invalid_declaration"
	CodeInconsistentHierarchy         = "inconsistent_hierarchy"
	CodeMetaclassConflict             = "metaclass_conflict"
	CodeConstructionFailed            = "construction_failed"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrSoloConflict, CodeSoloConflict},
	{ErrNameMismatch, CodeNameMismatch},
	{ErrIllegalAncestryChange, CodeIllegalAncestryChange},
	{ErrDuplicateBaseDeclaration, CodeDuplicateBaseDeclaration},
	{ErrDuplicateMetaclassDeclaration, CodeDuplicateMetaclassDeclaration},
	{directive.ErrUnrecognizedDirectiveKind, CodeUnrecognizedDirectiveKind},
	{ErrInvalidOperand, CodeInvalidOperand},
	{ErrInvalidDeclaration, CodeInvalidDeclaration},
	{typesys.ErrInconsistentHierarchy, CodeInconsistentHierarchy},
	{typesys.ErrMetaclassConflict, CodeMetaclassConflict},
}

// CodeOf returns the diagnostic code for err, or CodeConstructionFailed
// when err matches no known failure.
func CodeOf(err error) string {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}

	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeConstructionFailed
}

// Error is a failed declaration.
type Error struct {
	Code      string // stable identifier, e.g. "name_mismatch"
	Decl      string // declared name
	Directive string // offending directive, empty for construction failures
	Err       error
}

func newError(decl string, d *directive.Directive, err error) *Error {
	e := &Error{Code: CodeOf(err), Decl: decl, Err: err}
	if d != nil {
		e.Directive = d.String()
	}

	return e
}

func (e *Error) Error() string {
	if e.Directive != "" {
		return fmt.Sprintf("declaring %s: %s: %v", e.Decl, e.Directive, e.Err)
	}

	return fmt.Sprintf("declaring %s: %v", e.Decl, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
