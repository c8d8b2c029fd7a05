package decl

import (
	"fmt"
	"maps"
	"slices"

	"class-composer/internal/diagnostic"
	"class-composer/internal/directive"
	"class-composer/internal/match"
	"class-composer/internal/resolve"
	"class-composer/internal/typesys"
)

// Validation codes not shared with the resolver.
const (
	CodeFileIsNil          = "file_is_nil"
	CodeRegistryIsNil      = "registry_is_nil"
	CodeEmptyName          = "empty_name"
	CodeUnknownType        = "unknown_type"
	CodeUnknownMetaclass   = "unknown_metaclass"
	CodeUnknownDecorator   = "unknown_decorator"
	CodeForwardReference   = "forward_reference"
	CodeDuplicateMetaclass = "duplicate_metaclass"
	CodeRedeclared         = "redeclared"
)

const maxSuggestions = 3

// Validate checks f against the types and metaclasses bound in reg and
// the decorators in decorators (nil means the built-in set). It never
// mutates reg.
func Validate(f *File, reg *typesys.Registry, decorators *DecoratorRegistry) *diagnostic.Diagnostics {
	res, _ := validate(f, reg, decorators)
	return res
}

// validate also reports which declarations carry errors.
func validate(f *File, reg *typesys.Registry, decorators *DecoratorRegistry) (*diagnostic.Diagnostics, map[int]bool) {
	res := &diagnostic.Diagnostics{}
	failed := map[int]bool{}

	if f == nil {
		res.AddError(CodeFileIsNil, "declaration file is nil", "", "")
		return res, failed
	}

	if reg == nil {
		res.AddError(CodeRegistryIsNil, "type registry is nil", "", "")
		return res, failed
	}

	if decorators == nil {
		decorators = NewDecoratorRegistry()
	}

	v := &validator{
		res:        res,
		decorators: decorators,
		metas:      map[string]bool{},
		types:      map[string]bool{},
		later:      map[string]bool{},
	}

	for _, name := range reg.MetaNames() {
		v.metas[name] = true
	}

	for _, name := range reg.Names() {
		v.types[name] = true
	}

	v.validateMetaclasses(f.Metaclasses)

	for i := range f.Types {
		v.later[f.Types[i].Name] = true
	}

	for i := range f.Types {
		td := &f.Types[i]
		before := len(res.Errors)

		v.validateDecl(td)

		if len(res.Errors) > before {
			failed[i] = true
		}

		if td.Name != "" {
			v.types[td.Name] = true
		}
	}

	return res, failed
}

type validator struct {
	res        *diagnostic.Diagnostics
	decorators *DecoratorRegistry

	metas map[string]bool // known metaclass names
	types map[string]bool // names bound so far, in file order
	later map[string]bool // every name declared anywhere in the file
}

func (v *validator) validateMetaclasses(defs []MetaDef) {
	for i := range defs {
		md := &defs[i]
		item := fmt.Sprintf("metaclasses[%d]", i)

		if md.Name == "" {
			v.res.AddError(CodeEmptyName, "metaclass name is empty", "", item)
			continue
		}

		if v.metas[md.Name] {
			v.res.AddError(CodeDuplicateMetaclass, fmt.Sprintf("metaclass %q already defined", md.Name), md.Name, item)
			continue
		}

		parent := md.Parent
		if parent == "" {
			parent = typesys.TypeMeta.Name()
		}

		if !v.metas[parent] {
			v.res.AddError(CodeUnknownMetaclass, fmt.Sprintf("parent metaclass %q not found", parent), md.Name, item,
				match.Suggest(parent, keys(v.metas), maxSuggestions)...)
		}

		v.metas[md.Name] = true
	}
}

func (v *validator) validateDecl(td *TypeDecl) {
	if td.Name == "" {
		v.res.AddError(CodeEmptyName, "type name is empty", "", "")
		return
	}

	if v.types[td.Name] && !isPatch(td) {
		v.res.AddWarning(CodeRedeclared, fmt.Sprintf("%q is already bound and will be rebound to a new type", td.Name), td.Name, "")
	}

	if td.Meta != "" {
		v.checkMeta(td.Name, "meta", td.Meta)
	}

	directives := 0
	solo := ""

	for i := range td.Items {
		it := &td.Items[i]
		loc := fmt.Sprintf("items[%d]", i)

		if !it.IsDirective() {
			v.checkType(td.Name, loc, it.Base)
			continue
		}

		directives++

		kind, err := it.Kind()
		if err != nil {
			v.res.AddError(resolve.CodeUnrecognizedDirectiveKind, fmt.Sprintf("unrecognized directive %q", it.Key), td.Name, loc,
				match.Suggest(it.Key, kindNames(), maxSuggestions)...)

			continue
		}

		if kind.IsSolo() && solo == "" {
			solo = it.Key
		}

		v.validateDirective(td, loc+" "+it.Key, kind, it)
	}

	if solo != "" && directives > 1 {
		v.res.AddError(resolve.CodeSoloConflict,
			fmt.Sprintf("%s must be the only directive, found %d", solo, directives), td.Name, "items")
	}
}

func (v *validator) validateDirective(td *TypeDecl, loc string, kind directive.Kind, it *Item) {
	switch kind {
	case directive.KindInclude, directive.KindInherits:
		if it.Names.IsEmpty() {
			v.res.AddError(resolve.CodeInvalidOperand, it.Key+" needs at least one type", td.Name, loc)
		}

		for _, name := range it.Names {
			v.checkType(td.Name, loc, name)
		}

		if kind == directive.KindInherits && hasBase(td) {
			v.res.AddError(resolve.CodeDuplicateBaseDeclaration,
				"inherits cannot be combined with genuine bases", td.Name, loc)
		}

	case directive.KindMetaclass:
		if !it.Names.IsSingle() {
			v.res.AddError(resolve.CodeInvalidOperand,
				fmt.Sprintf("metaclass takes exactly one metaclass, got %d", len(it.Names)), td.Name, loc)

			return
		}

		v.checkMeta(td.Name, loc, it.Names.First())

		if td.Meta != "" {
			v.res.AddError(resolve.CodeDuplicateMetaclassDeclaration,
				"metaclass directive conflicts with meta "+td.Meta, td.Name, loc)
		}

	case directive.KindPatch:
		if !it.Names.IsSingle() {
			v.res.AddError(resolve.CodeInvalidOperand,
				fmt.Sprintf("patch takes exactly one type, got %d", len(it.Names)), td.Name, loc)

			return
		}

		target := it.Names.First()
		if target != td.Name {
			v.res.AddError(resolve.CodeNameMismatch,
				fmt.Sprintf("patch target %q does not match declared name %q", target, td.Name), td.Name, loc)
		}

		v.checkType(td.Name, loc, target)

		if hasBase(td) {
			v.res.AddError(resolve.CodeIllegalAncestryChange,
				"patch cannot be combined with genuine bases", td.Name, loc)
		}

		if td.Meta != "" {
			v.res.AddError(resolve.CodeDuplicateMetaclassDeclaration,
				"patch target keeps its metaclass, meta "+td.Meta+" cannot be applied", td.Name, loc)
		}

	case directive.KindDecorate:
		if len(it.Decorators) == 0 {
			v.res.AddError(resolve.CodeInvalidOperand, "decorate needs at least one decorator", td.Name, loc)
		}

		for _, spec := range it.Decorators {
			v.checkDecorator(td.Name, loc, spec)
		}

	case directive.KindComposite:
		if it.Compose.IsEmpty() {
			v.res.AddError(resolve.CodeInvalidOperand, "compose needs bases, a metaclass or includes", td.Name, loc)
			return
		}

		for _, name := range it.Compose.Bases {
			v.checkType(td.Name, loc, name)
		}

		for _, name := range it.Compose.Includes {
			v.checkType(td.Name, loc, name)
		}

		if it.Compose.Metaclass != "" {
			v.checkMeta(td.Name, loc, it.Compose.Metaclass)
		}
	}
}

func (v *validator) checkType(decl, loc, name string) {
	switch {
	case name == "":
		v.res.AddError(CodeEmptyName, "type reference is empty", decl, loc)
	case v.types[name]:
	case v.later[name] && name != decl:
		v.res.AddError(CodeForwardReference, fmt.Sprintf("type %q is declared further down", name), decl, loc)
	default:
		v.res.AddError(CodeUnknownType, fmt.Sprintf("type %q not found", name), decl, loc,
			match.Suggest(name, keys(v.types), maxSuggestions)...)
	}
}

func (v *validator) checkMeta(decl, loc, name string) {
	if v.metas[name] {
		return
	}

	v.res.AddError(CodeUnknownMetaclass, fmt.Sprintf("metaclass %q not found", name), decl, loc,
		match.Suggest(name, keys(v.metas), maxSuggestions)...)
}

func (v *validator) checkDecorator(decl, loc string, spec DecoratorSpec) {
	def := v.decorators.Get(spec.Name)
	if def == nil {
		v.res.AddError(CodeUnknownDecorator, fmt.Sprintf("decorator %q not found", spec.Name), decl, loc,
			match.Suggest(spec.Name, v.decorators.Names(), maxSuggestions)...)

		return
	}

	if err := checkArg(def, spec); err != nil {
		v.res.AddError(resolve.CodeInvalidOperand, err.Error(), decl, loc)
		return
	}

	if def.ArgKind == "type" {
		v.checkType(decl, loc, spec.Arg)
	}
}

func hasBase(td *TypeDecl) bool {
	for i := range td.Items {
		if !td.Items[i].IsDirective() {
			return true
		}
	}

	return false
}

func isPatch(td *TypeDecl) bool {
	for i := range td.Items {
		if k, err := td.Items[i].Kind(); err == nil && k == directive.KindPatch {
			return true
		}
	}

	return false
}

func kindNames() []string {
	names := make([]string, 0, directive.KindTotal-1)
	for k := directive.Kind(1); k.IsValid(); k++ {
		names = append(names, k.String())
	}

	return names
}

func keys(m map[string]bool) []string {
	return slices.Sorted(maps.Keys(m))
}
