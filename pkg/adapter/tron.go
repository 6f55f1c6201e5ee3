package adapter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// broadcast result codes returned by TRON full nodes
var tronResultCodes = map[string]bool{
	"SIGERROR":                        true,
	"BANDWITH_ERROR":                  true,
	"DUP_TRANSACTION_ERROR":           true,
	"TAPOS_ERROR":                     true,
	"TOO_BIG_TRANSACTION_ERROR":       true,
	"TRANSACTION_EXPIRATION_ERROR":    true,
	"SERVER_BUSY":                     true,
	"NO_CONNECTION":                   true,
	"NOT_ENOUGH_EFFECTIVE_CONNECTION": true,
	"CONTRACT_VALIDATE_ERROR":         true,
	"CONTRACT_EXE_ERROR":              true,
	"OTHER_ERROR":                     true,
}

// TronAdapter handles TRON broadcast and contract errors
type TronAdapter struct {
	base
}

func NewTronAdapter(catalog *mapping.Catalog) *TronAdapter {
	return &TronAdapter{base: newBase(EcosystemTron, catalog)}
}

func (a *TronAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		m, ok := toMap(err)
		if !ok {
			return extractBase(err)
		}

		// broadcast responses hex-encode the message
		if msg := str(m, "message"); msg != "" {
			if text, ok := decodeTronText(msg); ok {
				return text
			}
			return msg
		}
		if code := tronCode(m); code != "" {
			return code
		}
		return extractBase(err)
	})
}

// decodeTronText decodes a hex message into printable text
func decodeTronText(s string) (string, bool) {
	raw, ok := decodeBareHex(s)
	if !ok || len(raw) == 0 || !utf8.Valid(raw) {
		return "", false
	}
	text := string(raw)
	for _, r := range text {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return "", false
		}
	}
	return strings.TrimSpace(text), true
}

// tronCode returns code when it is a symbolic string such as
// CONTRACT_VALIDATE_ERROR
func tronCode(m map[string]any) string {
	code, ok := m["code"].(string)
	if !ok {
		return ""
	}
	if _, err := cast.ToInt64E(code); err == nil {
		return ""
	}
	return strings.TrimSpace(code)
}

func (a *TronAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if msg, ok := messageOf(err); ok {
			return containsAny(msg, "REVERT opcode executed", "BANDWITH_ERROR", "balance is not sufficient")
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		return hasAnyKey(m, "txid") || tronResultCodes[tronCode(m)]
	})
}
