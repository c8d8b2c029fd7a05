// Package directive provides the immutable composition directives a type
// declaration lists next to its genuine bases.
//
// A Directive is built once by New (or one of the kind helpers), carries a
// normalized argument sequence, and is consumed once by the resolver:
//
//	items, _ := directive.Items(Base, directive.Include([]*typesys.Type{Foo, Bar}))
//
// Patch and Composite are solo: they refuse to share a declaration with any
// other directive.
package directive
