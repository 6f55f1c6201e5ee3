package adapter

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// customErrorSignatures are Solidity custom errors commonly thrown by
// OpenZeppelin contracts. Reverts carrying one of their selectors decode to
// the error name.
var customErrorSignatures = []string{
	"ERC20InsufficientBalance(address,uint256,uint256)",
	"ERC20InsufficientAllowance(address,uint256,uint256)",
	"ERC20InvalidSender(address)",
	"ERC20InvalidReceiver(address)",
	"ERC20InvalidApprover(address)",
	"ERC20InvalidSpender(address)",
	"ERC721NonexistentToken(uint256)",
	"ERC721IncorrectOwner(address,uint256,address)",
	"ERC721InsufficientApproval(address,uint256)",
	"ERC721InvalidReceiver(address)",
	"ERC1155InsufficientBalance(address,uint256,uint256,uint256)",
	"ERC1155MissingApprovalForAll(address,address)",
	"OwnableUnauthorizedAccount(address)",
	"OwnableInvalidOwner(address)",
	"EnforcedPause()",
	"ExpectedPause()",
	"ReentrancyGuardReentrantCall()",
	"SafeERC20FailedOperation(address)",
}

var customErrorSelectors = buildSelectorTable(customErrorSignatures)

// selector returns the first four bytes of the Keccak-256 hash of a signature
func selector(signature string) [4]byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	var sel [4]byte
	copy(sel[:], hash.Sum(nil)[:4])
	return sel
}

func buildSelectorTable(signatures []string) map[[4]byte]string {
	table := make(map[[4]byte]string, len(signatures))
	for _, sig := range signatures {
		name := sig
		if i := strings.IndexByte(sig, '('); i > 0 {
			name = sig[:i]
		}
		table[selector(sig)] = name
	}
	return table
}

// decodeRevert decodes ABI revert data: Error(string), Panic(uint256) or a
// known custom error selector
func decodeRevert(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	if reason, err := abi.UnpackRevert(data); err == nil && reason != "" {
		return reason, true
	}

	var sel [4]byte
	copy(sel[:], data[:4])
	if name, ok := customErrorSelectors[sel]; ok {
		return name, true
	}
	return "", false
}

// decodeRevertValue accepts revert data as raw bytes or a hex string
func decodeRevertValue(v any) (string, bool) {
	switch data := v.(type) {
	case []byte:
		return decodeRevert(data)
	case string:
		raw, ok := decodeHex(data)
		if !ok {
			return "", false
		}
		return decodeRevert(raw)
	default:
		return "", false
	}
}

// decodeHex decodes 0x-prefixed hex
func decodeHex(s string) ([]byte, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, false
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// decodeBareHex decodes hex with or without a 0x prefix
func decodeBareHex(s string) ([]byte, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return decodeHex(s)
}
