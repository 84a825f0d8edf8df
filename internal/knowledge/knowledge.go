// Package knowledge holds the pattern -> response table the planner scores
// queries against.
package knowledge

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region types

// Entry maps a short whitespace-separated pattern to a canned response.
type Entry struct {
	Pattern  string `yaml:"pattern" json:"pattern"`
	Response string `yaml:"response" json:"response"`
}

// Table is an ordered list of entries with unique patterns. Order is the
// iteration order used when scoring, so ties resolve to the earlier entry.
type Table struct {
	entries []Entry
}

// #endregion types

// #region defaults

var defaultEntries = []Entry{
	// File operations
	{"read file", "To read a file, use: /read path/to/file"},
	{"write file", "To write a file, use: /write path/to/file with content"},
	{"scan directory", "To scan files, use: /scan"},
	{"search code", "To search, use: /grep pattern"},

	// Code tasks
	{"fix bug", "1. Identify error location\n2. Read relevant files\n3. Apply fix\n4. Test"},
	{"refactor", "1. Analyze current code\n2. Plan improvements\n3. Apply incrementally"},
	{"add feature", "1. Design interface\n2. Implement logic\n3. Write tests"},

	// Analysis
	{"analyze", "Scanning for patterns...\nUse /scan and /grep for detailed analysis"},
	{"explain", "Breaking down the concept:\n- Key components\n- Relationships\n- Implications"},

	// Framework vocabulary
	{"quantum", "Quantum consciousness framework:\n- Φ (consciousness)\n- Λ (coherence)\n- Γ (decoherence)"},
	{"manifold", "6D-CRSM manifold with coordinates (x,y,z,θ,φ,ψ)"},
	{"consciousness", "Integrated Information Theory proxy: Φ = mean(correlations)"},

	// Platform
	{"qbyte", "QByte mining uses CCCE correlation analysis"},
	{"mining", "Mining extracts coherence patterns from quantum workloads"},
	{"wallet", "Quantum wallet secured with post-quantum cryptography"},
}

// Default returns the built-in table.
func Default() Table {
	return New(defaultEntries)
}

// #endregion defaults

// #region table

// New builds a table from entries. A later entry with the same pattern
// replaces the earlier one in place.
func New(entries []Entry) Table {
	t := Table{entries: make([]Entry, 0, len(entries))}
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Pattern]; ok {
			t.entries[i].Response = e.Response
			continue
		}
		index[e.Pattern] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t
}

// Merge returns a new table where overrides win on pattern collision.
// Colliding patterns keep their position; new patterns are appended in
// sorted order so iteration stays deterministic.
func (t Table) Merge(overrides map[string]string) Table {
	merged := make([]Entry, len(t.entries), len(t.entries)+len(overrides))
	copy(merged, t.entries)

	index := make(map[string]int, len(merged))
	for i, e := range merged {
		index[e.Pattern] = i
	}

	added := make([]string, 0, len(overrides))
	for pattern, response := range overrides {
		if i, ok := index[pattern]; ok {
			merged[i].Response = response
			continue
		}
		added = append(added, pattern)
	}
	sort.Strings(added)
	for _, pattern := range added {
		merged = append(merged, Entry{Pattern: pattern, Response: overrides[pattern]})
	}

	return Table{entries: merged}
}

// Entries returns a copy of the entries in iteration order.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t Table) Len() int {
	return len(t.entries)
}

// Lookup returns the response stored for pattern.
func (t Table) Lookup(pattern string) (string, bool) {
	for _, e := range t.entries {
		if e.Pattern == pattern {
			return e.Response, true
		}
	}
	return "", false
}

// #endregion table

// #region load

// LoadFile reads a YAML (or JSON) mapping of pattern -> response.
func LoadFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("knowledge file path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file %s: %w", path, err)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse knowledge file %s: %w", path, err)
	}
	if overrides == nil {
		overrides = map[string]string{}
	}
	return overrides, nil
}

// #endregion load
