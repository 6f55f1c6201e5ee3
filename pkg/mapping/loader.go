package mapping

import "sort"

// CategorySource resolves the enabled categories of a built-in chain,
// ordered by descending category priority. ok is false for unknown chains.
type CategorySource interface {
	EnabledCategoryNames(chainID string) (names []string, ok bool)
}

// CustomSource resolves the mappings registered for a custom chain.
type CustomSource interface {
	CustomMappings(chainID string) (mappings []ErrorMapping, ok bool)
}

// Loader assembles the candidate mapping list for a chain
type Loader struct {
	catalog *Catalog
	builtin CategorySource
	custom  CustomSource
}

// NewLoader creates a new mapping loader. builtin and custom may be nil.
func NewLoader(catalog *Catalog, builtin CategorySource, custom CustomSource) *Loader {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Loader{
		catalog: catalog,
		builtin: builtin,
		custom:  custom,
	}
}

// LoadErrorMappings returns every mapping that applies to chainID, sorted by
// descending priority. Custom-chain mappings come first, then the enabled
// categories of a built-in chain; a chain that is not built-in gets every
// catalog category.
func (l *Loader) LoadErrorMappings(chainID string) []ErrorMapping {
	var mappings []ErrorMapping

	if l.custom != nil {
		if custom, ok := l.custom.CustomMappings(chainID); ok {
			mappings = append(mappings, custom...)
		}
	}

	var categories []string
	builtin := false
	if l.builtin != nil {
		categories, builtin = l.builtin.EnabledCategoryNames(chainID)
	}

	if builtin {
		for _, name := range categories {
			if category, ok := l.catalog.Category(name); ok {
				mappings = append(mappings, category...)
			}
		}
	} else {
		mappings = append(mappings, l.catalog.All()...)
	}

	SortByPriority(mappings)
	return mappings
}

// AddCustomMappings prepends request-scoped pattern -> message overrides with
// CustomMappingPriority. Empty patterns or messages are skipped. The input
// slice is not modified.
func AddCustomMappings(mappings []ErrorMapping, custom map[string]string) []ErrorMapping {
	if len(custom) == 0 {
		return mappings
	}

	patterns := make([]string, 0, len(custom))
	for pattern := range custom {
		patterns = append(patterns, pattern)
	}
	// map order is random; keep the output deterministic
	sort.Strings(patterns)

	out := make([]ErrorMapping, 0, len(custom)+len(mappings))
	for _, pattern := range patterns {
		m := ErrorMapping{
			Pattern:  pattern,
			Message:  custom[pattern],
			Priority: CustomMappingPriority,
		}
		if m.Validate() != nil {
			continue
		}
		out = append(out, m)
	}
	return append(out, mappings...)
}
