// Package intent classifies free-text queries by keyword pattern. No model
// call, no scoring: the first pattern that matches wins.
package intent

// #region imports
import (
	"regexp"
	"strings"
)

// #endregion

// #region patterns

// Pattern binds a keyword expression to the intent it selects.
type Pattern struct {
	Intent Intent
	Expr   *regexp.Regexp
}

// patterns is evaluated in order. "run the mining extraction" is Run, not
// Mine, because the run pattern comes first and matches "run".
var patterns = []Pattern{
	{Read, regexp.MustCompile(`\b(read|show|display|cat|view)\b`)},
	{Write, regexp.MustCompile(`\b(write|create|make|generate|new)\b`)},
	{Fix, regexp.MustCompile(`\b(fix|debug|repair|solve)\b`)},
	{Scan, regexp.MustCompile(`\b(scan|list|find files|directory)\b`)},
	{Grep, regexp.MustCompile(`\b(grep|search|find pattern)\b`)},
	{Mesh, regexp.MustCompile(`\b(mesh|sync|network)\b`)},
	{Run, regexp.MustCompile(`\b(run|execute|command)\b`)},
	{Mine, regexp.MustCompile(`\b(mine|mining|qbyte)\b`)},
	{Quantum, regexp.MustCompile(`\b(quantum|consciousness|phi)\b`)},
}

// Patterns returns the ordered pattern table.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// #endregion

// #region classify

// Classify returns the intent of the first pattern matching the lowercased
// query, or Analyze when none does.
func Classify(query string) Intent {
	lower := strings.ToLower(query)
	for _, p := range patterns {
		if p.Expr.MatchString(lower) {
			return p.Intent
		}
	}
	return Analyze
}

// #endregion
