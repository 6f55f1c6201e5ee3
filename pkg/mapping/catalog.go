package mapping

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/categories.yaml
var categoriesYAML []byte

// Category is a named table of mappings.
type Category struct {
	Name     string         `yaml:"name"`
	Mappings []ErrorMapping `yaml:"mappings"`
}

// Catalog holds every built-in category table in declaration order.
type Catalog struct {
	Categories []Category `yaml:"categories"`

	byName map[string]int
}

// LoadCatalog parses a YAML category catalog
func LoadCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse category catalog: %w", err)
	}

	catalog.byName = make(map[string]int, len(catalog.Categories))
	for i := range catalog.Categories {
		catalog.byName[catalog.Categories[i].Name] = i
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// Validate validates the catalog
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category must be defined")
	}

	seen := make(map[string]bool)
	for _, category := range c.Categories {
		if category.Name == "" {
			return fmt.Errorf("category name is required")
		}
		if seen[category.Name] {
			return fmt.Errorf("duplicate category %s", category.Name)
		}
		seen[category.Name] = true

		for i, m := range category.Mappings {
			if err := m.Validate(); err != nil {
				return fmt.Errorf("category %s mapping %d: %w", category.Name, i, err)
			}
		}
	}

	return nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded built-in catalog. It is parsed once;
// the embedded file is covered by tests, so a parse failure is a build defect.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		catalog, err := LoadCatalog(categoriesYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = catalog
	})
	return defaultCatalog
}

// Category returns a copy of the mappings of a category
func (c *Catalog) Category(name string) ([]ErrorMapping, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return Clone(c.Categories[idx].Mappings), true
}

// Has checks if a category exists
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns all category names in declaration order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Categories))
	for _, category := range c.Categories {
		names = append(names, category.Name)
	}
	return names
}

// All concatenates every category's mappings in declaration order
func (c *Catalog) All() []ErrorMapping {
	var all []ErrorMapping
	for _, category := range c.Categories {
		all = append(all, category.Mappings...)
	}
	return all
}

// Patterns flattens the given categories into a pattern -> message map.
// Earlier categories win when two share a pattern.
func (c *Catalog) Patterns(categories ...string) map[string]string {
	patterns := make(map[string]string)
	for _, name := range categories {
		idx, ok := c.byName[name]
		if !ok {
			continue
		}
		for _, m := range c.Categories[idx].Mappings {
			if _, exists := patterns[m.Pattern]; !exists {
				patterns[m.Pattern] = m.Message
			}
		}
	}
	return patterns
}
