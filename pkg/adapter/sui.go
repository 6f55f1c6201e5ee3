package adapter

import (
	"strings"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

var suiStatusPaths = [][]string{
	{"effects", "status", "error"},
	{"result", "effects", "status", "error"},
	{"effects", "V1", "status", "error"},
}

// SuiAdapter handles Sui errors
type SuiAdapter struct {
	base
}

func NewSuiAdapter(catalog *mapping.Catalog) *SuiAdapter {
	return &SuiAdapter{base: newBase(EcosystemSui, catalog)}
}

func (a *SuiAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		m, ok := toMap(err)
		if !ok {
			return extractBase(err)
		}
		for _, path := range suiStatusPaths {
			if s := str(m, path...); s != "" {
				return s
			}
		}
		return extractBase(err)
	})
}

func (a *SuiAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if msg, ok := messageOf(err); ok {
			return containsAny(msg, "MoveAbort", "InsufficientGas", "ObjectNotFound")
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		if hasAnyKey(m, "effects", "digest") {
			return true
		}
		return strings.Contains(messageFromMap(m), "MoveAbort")
	})
}
