// Package match ranks known names against a misspelled reference so
// diagnostics can suggest what the author probably meant.
//
// Key functions:
//   - NormalizeIdent: folds case and separators for fuzzy comparison
//   - Levenshtein: computes edit distance between strings
//   - Suggest: returns the closest known names above a score threshold
package match
