// Package decl reads declaration files: YAML documents listing metaclasses
// and type declarations whose base lists mix genuine bases and directives.
//
// A file is validated against a type registry with Validate and then
// applied with Apply, which resolves every declaration in file order and
// binds the results back into the registry.
package decl
