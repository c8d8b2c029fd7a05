// Package typesys is the runtime type system the composition resolver builds on.
//
// Go cannot construct types reflectively, so declared types live here as
// values: a Type has a name, ordered bases, a constructing Meta and a set of
// locally defined attributes. Ancestry is C3-linearized and always ends at
// the universal root Object.
//
// Key types:
//   - Attrs: insertion-ordered attribute map
//   - Type: a constructed type with identity (uuid) and in-place attribute assignment
//   - Meta: a meta-type that constructs Types (TypeMeta is the default)
//   - Surface / Shim: the get/set/enumerate capability decorators mutate
//   - Registry: name bindings for types and metas
//   - Importer: builds Types from Go struct declarations via go/packages
package typesys
