package adapter

import (
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

var nearErrorPaths = [][]string{
	{"ActionError", "kind"},
	{"InvalidTxError"},
	{"status", "Failure", "ActionError", "kind"},
	{"status", "Failure", "InvalidTxError"},
	{"Failure", "ActionError", "kind"},
	{"Failure", "InvalidTxError"},
	{"kind"},
	{"cause", "name"},
}

// NearAdapter handles NEAR Protocol errors
type NearAdapter struct {
	base
}

func NewNearAdapter(catalog *mapping.Catalog) *NearAdapter {
	return &NearAdapter{base: newBase(EcosystemNear, catalog)}
}

func (a *NearAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		m, ok := toMap(err)
		if !ok {
			return extractBase(err)
		}
		for _, path := range nearErrorPaths {
			if v, ok := lookup(m, path...); ok {
				if kind := nearKind(v); kind != "" {
					return kind
				}
			}
		}
		return extractBase(err)
	})
}

// nearKind returns the variant name of an error kind. Function call
// failures report their execution error text instead.
func nearKind(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	fields, err := cast.ToStringMapE(v)
	if err != nil || len(fields) == 0 {
		return ""
	}

	if call, ok := fields["FunctionCallError"]; ok {
		if inner, err := cast.ToStringMapE(call); err == nil {
			if s := str(inner, "ExecutionError"); s != "" {
				return s
			}
		}
		return "FunctionCallError"
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

func (a *NearAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if msg, ok := messageOf(err); ok {
			return containsAny(msg, "NotEnoughBalance", "LackBalanceForState", "Exceeded the prepaid gas")
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		if hasAnyKey(m, "ActionError", "InvalidTxError") {
			return true
		}
		if has(m, "status", "Failure") || has(m, "Failure") {
			return true
		}
		_, isMap := m["kind"].(map[string]any)
		return isMap
	})
}
