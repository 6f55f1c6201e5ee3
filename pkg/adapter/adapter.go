// Package adapter extracts plain-text messages from the error shapes of
// each blockchain ecosystem and detects which ecosystem an error belongs to.
package adapter

import (
	"github.com/kislikjeka/chainerr/pkg/fallback"
	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// UnknownErrorMessage is returned when no message can be extracted
const UnknownErrorMessage = "Unknown error occurred"

// Ecosystem identifies a family of chains sharing an error convention
type Ecosystem string

const (
	EcosystemEVM      Ecosystem = "evm"
	EcosystemSolana   Ecosystem = "solana"
	EcosystemCosmos   Ecosystem = "cosmos"
	EcosystemPolkadot Ecosystem = "polkadot"
	EcosystemNear     Ecosystem = "near"
	EcosystemAptos    Ecosystem = "aptos"
	EcosystemSui      Ecosystem = "sui"
	EcosystemTron     Ecosystem = "tron"
	EcosystemBitcoin  Ecosystem = "bitcoin"
)

// Adapter is implemented by every ecosystem adapter
type Adapter interface {
	// Ecosystem returns the ecosystem handled by the adapter
	Ecosystem() Ecosystem

	// ExtractErrorMessage returns the plain-text message of err. It never
	// panics and returns UnknownErrorMessage for unrecognized shapes.
	ExtractErrorMessage(err any) string

	// MatchesErrorFormat is a cheap heuristic check. False positives are allowed.
	MatchesErrorFormat(err any) bool

	// ErrorPatterns returns the pattern -> message table of the ecosystem
	ErrorPatterns() map[string]string

	// FallbackMessages returns the fallback key -> message table
	FallbackMessages() map[string]string
}

// categories bound to each ecosystem in the shared mapping catalog
var ecosystemCategories = map[Ecosystem][]string{
	EcosystemEVM:      {"erc20", "nft", "defi", "contract", "gas", "transaction", "wallet", "network"},
	EcosystemSolana:   {"solana", "defi", "wallet", "network"},
	EcosystemCosmos:   {"cosmos", "wallet", "network"},
	EcosystemPolkadot: {"polkadot", "wallet", "network"},
	EcosystemNear:     {"near", "wallet", "network"},
	EcosystemAptos:    {"aptos", "wallet", "network"},
	EcosystemSui:      {"sui", "wallet", "network"},
	EcosystemTron:     {"tron", "wallet", "network"},
	EcosystemBitcoin:  {"bitcoin", "wallet", "network"},
}

// Categories returns the catalog categories bound to an ecosystem.
// Unknown ecosystems get the shared wallet and network categories.
func Categories(eco Ecosystem) []string {
	if categories, ok := ecosystemCategories[eco]; ok {
		return append([]string(nil), categories...)
	}
	return []string{"wallet", "network"}
}

// base carries the parts shared by every built-in adapter. Pattern and
// fallback tables are read from the shared catalog and fallback defaults so
// adapters never hold a dictionary of their own.
type base struct {
	ecosystem Ecosystem
	catalog   *mapping.Catalog
}

func newBase(eco Ecosystem, catalog *mapping.Catalog) base {
	if catalog == nil {
		catalog = mapping.DefaultCatalog()
	}
	return base{ecosystem: eco, catalog: catalog}
}

func (b base) Ecosystem() Ecosystem {
	return b.ecosystem
}

func (b base) ErrorPatterns() map[string]string {
	return b.catalog.Patterns(Categories(b.ecosystem)...)
}

func (b base) FallbackMessages() map[string]string {
	return fallback.Defaults()
}
