package weights

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Table maps gift category names to integer weights.
//
// Lookups are case-sensitive exact matches. The table is immutable after
// Load returns; callers must not mutate the returned map.
type Table struct {
	entries map[string]int
}

// Load reads a weight table from a YAML file.
//
// The file is a flat mapping of category name to positive integer weight.
// Any parse failure, empty table, or non-positive weight is an error; the
// caller treats these as fatal startup conditions.
//
// Parameters:
//   - path: Path to the YAML weight file
//
// Returns:
//   - Table: Loaded table ready for lookups
//   - error: If the file cannot be read, parsed, or validated
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("reading weight file: %w", err)
	}

	entries := make(map[string]int)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return Table{}, fmt.Errorf("parsing weight file: %w", err)
	}

	if len(entries) == 0 {
		return Table{}, ErrEmptyTable
	}

	for category, weight := range entries {
		if weight <= 0 {
			return Table{}, fmt.Errorf("%w: category %q has weight %d", ErrInvalidWeight, category, weight)
		}
	}

	return Table{entries: entries}, nil
}

// NewTable builds a table from an in-memory mapping.
//
// Used by tests and callers that already hold a validated mapping; Load
// is the production path. The map is copied.
func NewTable(entries map[string]int) Table {
	cpy := make(map[string]int, len(entries))
	for category, weight := range entries {
		cpy[category] = weight
	}
	return Table{entries: cpy}
}

// Weight returns the weight for a category.
//
// The lookup is case-sensitive. The second return value reports whether
// the category is present; absent categories are a valid runtime state,
// not an error.
func (t Table) Weight(category string) (int, bool) {
	w, ok := t.entries[category]
	return w, ok
}

// Len returns the number of categories in the table.
func (t Table) Len() int {
	return len(t.entries)
}

// Categories returns all category names in sorted order.
//
// Used for diagnostics and the status API; the returned slice is a copy.
func (t Table) Categories() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
