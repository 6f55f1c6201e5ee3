package adapter

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

const invalidTransactionPrefix = "Invalid Transaction: "

// PolkadotAdapter handles Substrate dispatch errors
type PolkadotAdapter struct {
	base
}

func NewPolkadotAdapter(catalog *mapping.Catalog) *PolkadotAdapter {
	return &PolkadotAdapter{base: newBase(EcosystemPolkadot, catalog)}
}

func (a *PolkadotAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		if msg, ok := messageOf(err); ok {
			return stripInvalidTransaction(msg)
		}

		m, ok := toMap(err)
		if !ok {
			return extractBase(err)
		}
		for _, path := range [][]string{
			{"dispatchError", "module"},
			{"dispatchError"},
			{},
		} {
			if v, ok := lookup(m, path...); ok {
				if msg := moduleError(v); msg != "" {
					return msg
				}
			}
		}
		return stripInvalidTransaction(extractBase(err))
	})
}

// moduleError renders {section, name, docs} as "section.name: docs"
func moduleError(v any) string {
	fields, err := cast.ToStringMapE(v)
	if err != nil {
		return ""
	}
	section := str(fields, "section")
	name := str(fields, "name")
	if section == "" || name == "" {
		return ""
	}

	msg := section + "." + name
	var docs string
	if list, err := cast.ToStringSliceE(fields["docs"]); err == nil {
		docs = strings.TrimSpace(strings.Join(list, " "))
	}
	if docs != "" {
		msg += ": " + docs
	}
	return msg
}

// stripInvalidTransaction turns "1010: Invalid Transaction: X" into "X"
func stripInvalidTransaction(msg string) string {
	if i := strings.Index(msg, invalidTransactionPrefix); i >= 0 {
		if rest := strings.TrimSpace(msg[i+len(invalidTransactionPrefix):]); rest != "" {
			return rest
		}
	}
	return msg
}

func (a *PolkadotAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if msg, ok := messageOf(err); ok {
			return containsAny(msg, "ExtrinsicFailed", "Invalid Transaction", "Inability to pay some fees")
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		return hasAnyKey(m, "dispatchError", "isModule", "section")
	})
}
