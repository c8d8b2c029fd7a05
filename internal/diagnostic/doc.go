// Package diagnostic provides structured errors, warnings and notes for
// declaration files.
//
// Key capabilities:
//   - Unknown type, metaclass and decorator references with suggestions
//   - Resolution failures carrying the resolver's error code
//   - Per-declaration location (declaration name and item)
package diagnostic
