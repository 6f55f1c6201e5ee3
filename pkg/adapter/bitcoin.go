package adapter

import (
	"regexp"
	"strings"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// bitcoind RPC error codes
var bitcoinRPCCodes = map[int64]string{
	-4:  "wallet error",
	-5:  "invalid address or key",
	-6:  "insufficient funds",
	-8:  "invalid parameter",
	-13: "wallet is locked",
	-25: "missing inputs",
	-26: "transaction rejected by network rules",
	-27: "transaction already in block chain",
}

var dustPattern = regexp.MustCompile(`\bdust\b`)

// BitcoinAdapter handles bitcoind JSON-RPC errors
type BitcoinAdapter struct {
	base
}

func NewBitcoinAdapter(catalog *mapping.Catalog) *BitcoinAdapter {
	return &BitcoinAdapter{base: newBase(EcosystemBitcoin, catalog)}
}

func (a *BitcoinAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		m, ok := toMap(err)
		if !ok {
			return extractBase(err)
		}
		if msg := str(m, "error", "message"); msg != "" {
			return msg
		}
		if code, ok := num(m, "error", "code"); ok {
			if desc, ok := bitcoinRPCCodes[code]; ok {
				return desc
			}
		}
		return extractBase(err)
	})
}

func (a *BitcoinAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if msg, ok := messageOf(err); ok {
			lower := strings.ToLower(msg)
			return containsAny(lower, "bad-txns", "insufficient fee", "min relay fee not met", "mandatory-script-verify-flag") ||
				dustPattern.MatchString(lower)
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		code, ok := num(m, "error", "code")
		return ok && code < 0 && code > -32000
	})
}
