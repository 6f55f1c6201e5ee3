// Package fallback classifies unmatched errors into coarse types and picks
// the message returned when no mapping matches.
package fallback

import "strings"

// ErrorType is the coarse classification of an error message
type ErrorType string

const (
	TypeUnknown     ErrorType = ""
	TypeWallet      ErrorType = "WALLET"
	TypeContract    ErrorType = "CONTRACT"
	TypeGas         ErrorType = "GAS"
	TypeTransaction ErrorType = "TRANSACTION"
	TypeNetwork     ErrorType = "NETWORK"
)

// Fallback keys
const (
	KeyGeneric  = "generic"
	KeyNetwork  = "network"
	KeyWallet   = "wallet"
	KeyContract = "contract"
)

// Resolution sources
const (
	SourceExplicit = "explicit"
	SourceCustom   = "custom"
	SourceDefault  = "default"
)

// GenericMessage is the default fallback when nothing more specific applies
const GenericMessage = "An error occurred while processing your request. Please try again."

var defaults = map[string]string{
	KeyGeneric:  GenericMessage,
	KeyNetwork:  "Network error. Please check your connection and try again.",
	KeyWallet:   "Wallet error. Please check your wallet and try again.",
	KeyContract: "Smart contract error. The transaction could not be executed.",
}

// classification order; the first type with a matching keyword wins
var order = []ErrorType{TypeWallet, TypeContract, TypeGas, TypeTransaction, TypeNetwork}

// keywords are lower case. Non-English entries cover messages that were
// already localized by a wallet or node.
var keywords = map[ErrorType][]string{
	TypeWallet: {
		"wallet", "user rejected", "user denied", "rejected by user", "user cancelled", "user canceled",
		"signature", "metamask", "not connected",
		"billetera", "cartera", "rechazad",
		"portefeuille", "refusé",
		"geldbörse", "abgelehnt",
		"carteira", "rejeitad",
		"кошел", "отклон",
		"钱包", "拒绝",
		"ウォレット", "拒否",
		"지갑", "거부",
	},
	TypeContract: {
		"contract", "revert", "require(", "assert", "panic",
		"contrato", "contrat", "vertrag", "контракт",
		"合约", "合約", "コントラクト", "契約", "컨트랙트", "계약",
	},
	TypeGas: {
		"gas", "fee", "underpriced",
		"gás", "tarifa", "comisión", "gaz", "frais", "gebühr", "газ", "комисси",
		"手续费", "燃料", "ガス", "手数料", "가스", "수수료",
	},
	TypeTransaction: {
		"transaction", "nonce", "replacement", "already known", "sequence",
		"transacción", "transação", "transaktion", "транзакц",
		"交易", "トランザクション", "트랜잭션",
	},
	TypeNetwork: {
		"network", "timeout", "timed out", "connection", "econnrefused", "econnreset", "rpc", "fetch", "socket",
		"unreachable", "rate limit", "too many requests",
		"error de red", "conexión", "réseau", "connexion", "netzwerk", "verbindung", "conexão",
		"сеть", "сети", "соединени",
		"网络", "網絡", "连接", "ネットワーク", "接続", "네트워크", "연결",
	},
}

// Classify returns the first error type whose keywords occur in message
func Classify(message string) ErrorType {
	lower := strings.ToLower(message)
	if strings.TrimSpace(lower) == "" {
		return TypeUnknown
	}
	for _, t := range order {
		for _, kw := range keywords[t] {
			if strings.Contains(lower, kw) {
				return t
			}
		}
	}
	return TypeUnknown
}

// Key returns the fallback key for an error type
func Key(t ErrorType) string {
	switch t {
	case TypeWallet:
		return KeyWallet
	case TypeContract:
		return KeyContract
	case TypeNetwork:
		return KeyNetwork
	default:
		return KeyGeneric
	}
}

// Defaults returns a copy of the built-in fallback messages keyed by fallback key
func Defaults() map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}

// Default returns the built-in fallback for a key, generic for unknown keys
func Default(key string) string {
	if msg, ok := defaults[key]; ok {
		return msg
	}
	return GenericMessage
}

// Request carries what Resolve needs to pick a fallback
type Request struct {
	Message          string
	ExplicitFallback string
	// CustomFallbacks are the fallbacks of a custom chain keyed by fallback key
	CustomFallbacks map[string]string
}

// Resolution is the chosen fallback
type Resolution struct {
	Message string
	Type    ErrorType
	Key     string
	Source  string
}

// Resolve picks the fallback message: an explicit fallback first, then the
// custom chain's fallback for the classified type or its generic fallback,
// then the built-in default. It always returns a non-empty message.
func Resolve(req Request) Resolution {
	t := Classify(req.Message)
	key := Key(t)
	res := Resolution{Type: t, Key: key}

	if req.ExplicitFallback != "" {
		res.Message = req.ExplicitFallback
		res.Source = SourceExplicit
		return res
	}

	if msg := req.CustomFallbacks[key]; msg != "" {
		res.Message = msg
		res.Source = SourceCustom
		return res
	}
	if msg := req.CustomFallbacks[KeyGeneric]; msg != "" {
		res.Message = msg
		res.Source = SourceCustom
		return res
	}

	res.Message = Default(key)
	res.Source = SourceDefault
	return res
}

// TypeSpecific returns the custom fallback registered for the type of
// message. Only wallet, contract and network fallbacks qualify; the generic
// fallback never does.
func TypeSpecific(message string, custom map[string]string) (Resolution, bool) {
	if len(custom) == 0 {
		return Resolution{}, false
	}
	t := Classify(message)
	key := Key(t)
	if t == TypeUnknown || key == KeyGeneric {
		return Resolution{}, false
	}
	msg := custom[key]
	if msg == "" {
		return Resolution{}, false
	}
	return Resolution{Message: msg, Type: t, Key: key, Source: SourceCustom}, true
}
