package adapter

import (
	"errors"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// sdkCodes describes the registered codes of the Cosmos SDK "sdk" codespace
var sdkCodes = map[uint32]string{
	2:  "tx parse error",
	3:  "invalid sequence",
	4:  "unauthorized",
	5:  "insufficient funds",
	6:  "unknown request",
	7:  "invalid address",
	8:  "invalid pubkey",
	9:  "unknown address",
	10: "invalid coins",
	11: "out of gas",
	12: "memo too large",
	13: "insufficient fee",
	14: "maximum number of signatures exceeded",
	15: "no signatures supplied",
	18: "invalid request",
	19: "tx already exists in cache",
	21: "tx too large",
	22: "key not found",
	30: "tx timeout height",
	32: "account sequence mismatch",
	38: "not found",
}

var cosmosLogPaths = [][]string{
	{"raw_log"},
	{"rawLog"},
	{"log"},
	{"tx_response", "raw_log"},
	{"txResponse", "rawLog"},
}

// CosmosAdapter handles Cosmos SDK errors
type CosmosAdapter struct {
	base
}

func NewCosmosAdapter(catalog *mapping.Catalog) *CosmosAdapter {
	return &CosmosAdapter{base: newBase(EcosystemCosmos, catalog)}
}

func (a *CosmosAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		if e, ok := err.(error); ok && e != nil {
			if msg := e.Error(); msg != "" {
				return msg
			}
			if codespace, code, ok := ABCIInfo(e); ok {
				if desc, ok := CodeDescription(codespace, code); ok {
					return desc
				}
			}
			return UnknownErrorMessage
		}

		m, ok := toMap(err)
		if !ok {
			return extractBase(err)
		}
		for _, path := range cosmosLogPaths {
			if s := str(m, path...); s != "" {
				return s
			}
		}
		if msg := messageFromMap(m); msg != "" {
			return msg
		}
		if desc := describeCode(str(m, "codespace"), m); desc != "" {
			return desc
		}
		return UnknownErrorMessage
	})
}

// describeCode maps a known codespace and code to its description
func describeCode(codespace string, m map[string]any) string {
	if codespace != "sdk" {
		return ""
	}
	code, ok := num(m, "code")
	if !ok || code <= 0 {
		return ""
	}
	return sdkCodes[uint32(code)]
}

// ABCIInfo returns the codespace and code of a registered Cosmos error.
// ok is false for errors that were not registered with a codespace.
func ABCIInfo(err error) (codespace string, code uint32, ok bool) {
	if err == nil {
		return "", 0, false
	}
	codespace, code, _ = errorsmod.ABCIInfo(err, false)
	if codespace == "" || codespace == errorsmod.UndefinedCodespace {
		return "", 0, false
	}
	return codespace, code, true
}

// CodeDescription describes a registered code, e.g. sdk/5
func CodeDescription(codespace string, code uint32) (string, bool) {
	if codespace != "sdk" {
		return "", false
	}
	desc, ok := sdkCodes[code]
	return desc, ok
}

func (a *CosmosAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if e, ok := err.(error); ok && e != nil {
			if _, _, registered := ABCIInfo(e); registered {
				return true
			}
			var coder interface{ Codespace() string }
			if errors.As(e, &coder) {
				return true
			}
		}

		if msg, ok := messageOf(err); ok {
			return containsAny(strings.ToLower(msg),
				"codespace", "out of gas in location", "account sequence mismatch", "insufficient fees")
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		return hasAnyKey(m, "codespace", "raw_log", "rawLog", "tx_response", "txResponse")
	})
}
