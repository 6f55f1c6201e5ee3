package adapter

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// revert wrappers added by nodes and dev chains around the actual reason
var revertWrappers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)reverted with reason string '(.+)'`),
	regexp.MustCompile(`(?i)reverted with custom error '(.+)'`),
	regexp.MustCompile(`(?i)VM Exception while processing transaction: revert (.+)`),
	regexp.MustCompile(`(?i)execution reverted: (.+)`),
}

// paths that may hold ABI-encoded revert data
var revertDataPaths = [][]string{
	{"data"},
	{"error", "data"},
	{"error", "data", "data"},
	{"error", "error", "data"},
	{"info", "error", "data"},
}

var evmHints = []string{
	"execution reverted", "revert", "gas", "nonce", "insufficient funds", "user rejected", "erc20", "erc721",
}

// EVMAdapter handles Ethereum-compatible chains
type EVMAdapter struct {
	base
	chainID int64
}

// NewEVMAdapter creates an EVM adapter. chainID is informational and may be 0.
func NewEVMAdapter(catalog *mapping.Catalog, chainID int64) *EVMAdapter {
	return &EVMAdapter{
		base:    newBase(EcosystemEVM, catalog),
		chainID: chainID,
	}
}

// ChainID returns the numeric chain id the adapter was created for
func (a *EVMAdapter) ChainID() int64 {
	return a.chainID
}

func (a *EVMAdapter) ExtractErrorMessage(err any) string {
	return safeExtract(func() string {
		return unwrapRevert(a.extract(err))
	})
}

func (a *EVMAdapter) extract(err any) string {
	if e, ok := err.(error); ok && e != nil {
		var dataErr rpc.DataError
		if errors.As(e, &dataErr) {
			if reason, ok := decodeRevertValue(dataErr.ErrorData()); ok {
				return reason
			}
		}
		return extractBase(err)
	}

	m, ok := toMap(err)
	if !ok {
		return extractBase(err)
	}

	for _, path := range revertDataPaths {
		if v, ok := lookup(m, path...); ok {
			if reason, ok := decodeRevertValue(v); ok {
				return reason
			}
		}
	}
	if s := str(m, "reason"); s != "" {
		return s
	}
	if s := str(m, "shortMessage"); s != "" {
		return s
	}
	if s := messageFromMap(m); s != "" {
		return s
	}
	return UnknownErrorMessage
}

// unwrapRevert strips node wrappers such as "execution reverted: X"
func unwrapRevert(msg string) string {
	for _, re := range revertWrappers {
		if match := re.FindStringSubmatch(msg); len(match) == 2 {
			if reason := strings.Trim(strings.TrimSpace(match[1]), `'"`); reason != "" {
				return reason
			}
		}
	}
	return msg
}

func (a *EVMAdapter) MatchesErrorFormat(err any) bool {
	return safeMatch(func() bool {
		if e, ok := err.(error); ok && e != nil {
			var rpcErr rpc.Error
			if errors.As(e, &rpcErr) {
				return true
			}
		}

		if msg, ok := messageOf(err); ok {
			return containsAny(strings.ToLower(msg), evmHints...)
		}

		m, ok := toMap(err)
		if !ok {
			return false
		}
		if hasAnyKey(m, "reason", "shortMessage", "transaction", "receipt") {
			return true
		}
		if code, ok := num(m, "code"); ok && isEVMErrorCode(code) {
			return true
		}
		if code, ok := num(m, "error", "code"); ok && isEVMErrorCode(code) {
			return true
		}
		return containsAny(strings.ToLower(messageFromMap(m)), evmHints...)
	})
}

// isEVMErrorCode recognizes EIP-1193 provider codes, the execution
// reverted code and the JSON-RPC 2.0 error range
func isEVMErrorCode(code int64) bool {
	switch code {
	case 3, 4001, 4100, 4200, 4900, 4901:
		return true
	}
	return code <= -32000 && code >= -32700
}
