package adapter

import (
	"strings"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// error codes too generic to identify a failure
var genericAptosCodes = map[string]bool{
	"vm_error":       true,
	"internal_error": true,
	"invalid_input":  true,
}

// AptosAdapter handles Aptos node and SDK errors
type AptosAdapter struct {
	base
}

func NewAptosAdapter(catalog *mapping.Catalog) *AptosAdapter {
	return &AptosAdapter{base: newBase(EcosystemAptos, catalog)}
}

func (a *AptosAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		m, ok := toMap(err)
		if !ok {
			return extractBase(err)
		}
		if s := str(m, "vm_status"); s != "" && s != "Executed successfully" {
			return s
		}
		if s := str(m, "transaction", "vm_status"); s != "" && s != "Executed successfully" {
			return s
		}
		if code := str(m, "error_code"); code != "" && !genericAptosCodes[strings.ToLower(code)] {
			return code
		}
		return extractBase(err)
	})
}

func (a *AptosAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if msg, ok := messageOf(err); ok {
			return containsAny(msg, "Move abort", "INSUFFICIENT_BALANCE", "SEQUENCE_NUMBER_TOO_OLD")
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		return hasAnyKey(m, "vm_status", "error_code", "vm_error_code")
	})
}
