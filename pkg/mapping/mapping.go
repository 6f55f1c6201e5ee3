// Package mapping holds the pattern -> message tables and the logic that
// assembles and searches them for a single translation request.
package mapping

import (
	"errors"
	"sort"
	"strings"
)

// CustomMappingPriority is assigned to request-scoped custom mappings so
// they are tried before every built-in and custom-chain mapping.
const CustomMappingPriority = 100

var (
	ErrEmptyPattern = errors.New("mapping pattern cannot be empty")
	ErrEmptyMessage = errors.New("mapping message cannot be empty")
)

// ErrorMapping describes one recognized error signature and its
// human-readable translation.
type ErrorMapping struct {
	Pattern  string `yaml:"pattern" json:"pattern"`
	Message  string `yaml:"message" json:"message"`
	IsRegex  bool   `yaml:"is_regex,omitempty" json:"isRegex,omitempty"`
	Priority int    `yaml:"priority,omitempty" json:"priority,omitempty"`
	// Key is an optional i18n key used to localize Message.
	Key string `yaml:"key,omitempty" json:"key,omitempty"`
}

// Validate checks the mapping invariants.
func (m ErrorMapping) Validate() error {
	if strings.TrimSpace(m.Pattern) == "" {
		return ErrEmptyPattern
	}
	if strings.TrimSpace(m.Message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// SortByPriority orders mappings by descending priority. The sort is stable,
// so mappings with equal priority keep their relative order.
func SortByPriority(mappings []ErrorMapping) {
	sort.SliceStable(mappings, func(i, j int) bool {
		return mappings[i].Priority > mappings[j].Priority
	})
}

// Clone returns a copy of the slice that shares no backing array with it.
func Clone(mappings []ErrorMapping) []ErrorMapping {
	if mappings == nil {
		return nil
	}
	out := make([]ErrorMapping, len(mappings))
	copy(out, mappings)
	return out
}
