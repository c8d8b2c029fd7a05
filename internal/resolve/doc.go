// Package resolve turns a type declaration (name, base list items and
// attributes) into exactly one final type.
//
// Resolution pipeline:
//  1. Partition the items into genuine bases and directives, keeping order.
//  2. Reject a solo directive (patch, compose) that shares the declaration.
//  3. Apply directives right to left over a shared Context, so the
//     left-most directive is applied last and wins.
//  4. Return the patched type, or construct a new one with the selected meta.
//
// Every failure aborts the declaration with a *Error carrying a stable code.
package resolve
