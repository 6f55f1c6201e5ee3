// Package chain holds the built-in chain table and the registry of custom
// chains registered at runtime.
package chain

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultChain is used when a request names no chain.
const DefaultChain = "ethereum"

//go:embed data/chains.yaml
var chainsYAML []byte

// NativeCurrency describes a chain's native asset
type NativeCurrency struct {
	Name     string `yaml:"name" json:"name"`
	Symbol   string `yaml:"symbol" json:"symbol"`
	Decimals int    `yaml:"decimals" json:"decimals"`
}

// Metadata holds descriptive chain information
type Metadata struct {
	Name           string         `yaml:"name" json:"name"`
	Symbol         string         `yaml:"symbol" json:"symbol"`
	ChainID        int64          `yaml:"chain_id,omitempty" json:"chainId,omitempty"`
	NetworkID      string         `yaml:"network_id,omitempty" json:"networkId,omitempty"`
	RPCURLs        []string       `yaml:"rpc_urls" json:"rpcUrls"`
	ExplorerURLs   []string       `yaml:"explorer_urls" json:"explorerUrls"`
	NativeCurrency NativeCurrency `yaml:"native_currency" json:"nativeCurrency"`
	IsTestnet      bool           `yaml:"is_testnet" json:"isTestnet"`
}

// CategoryConfig enables a mapping category for a chain
type CategoryConfig struct {
	Category string `yaml:"category" json:"category"`
	Priority int    `yaml:"priority" json:"priority"`
	Enabled  bool   `yaml:"enabled" json:"enabled"`
}

// ChainConfig represents a built-in chain
type ChainConfig struct {
	ID              string           `yaml:"id" json:"id"`
	Ecosystem       string           `yaml:"ecosystem" json:"ecosystem"`
	Metadata        Metadata         `yaml:"metadata" json:"metadata"`
	ErrorCategories []CategoryConfig `yaml:"error_categories" json:"errorCategories"`
}

// Builtin is the read-only table of built-in chains
type Builtin struct {
	Chains []ChainConfig `yaml:"chains"`

	// Lookup maps for fast access
	byID      map[string]*ChainConfig
	byChainID map[int64]*ChainConfig
}

// LoadBuiltin parses a YAML chain table
func LoadBuiltin(data []byte) (*Builtin, error) {
	var builtin Builtin
	if err := yaml.Unmarshal(data, &builtin); err != nil {
		return nil, fmt.Errorf("failed to parse chains table: %w", err)
	}

	if err := builtin.Validate(); err != nil {
		return nil, err
	}

	builtin.byID = make(map[string]*ChainConfig, len(builtin.Chains))
	builtin.byChainID = make(map[int64]*ChainConfig)
	for i := range builtin.Chains {
		chain := &builtin.Chains[i]
		builtin.byID[chain.ID] = chain
		if chain.Metadata.ChainID > 0 {
			builtin.byChainID[chain.Metadata.ChainID] = chain
		}
	}

	return &builtin, nil
}

// Validate validates the chain table
func (b *Builtin) Validate() error {
	if len(b.Chains) == 0 {
		return fmt.Errorf("at least one chain must be configured")
	}

	seen := make(map[string]bool)
	seenChainID := make(map[int64]bool)
	for _, chain := range b.Chains {
		if chain.ID == "" {
			return fmt.Errorf("chain id is required for chain %s", chain.Metadata.Name)
		}
		if chain.ID != normalizeID(chain.ID) {
			return fmt.Errorf("chain id %q must be lower case without surrounding spaces", chain.ID)
		}
		if chain.Ecosystem == "" {
			return fmt.Errorf("ecosystem is required for chain %s", chain.ID)
		}
		if chain.Metadata.Name == "" {
			return fmt.Errorf("metadata name is required for chain %s", chain.ID)
		}
		if seen[chain.ID] {
			return fmt.Errorf("duplicate chain id %s", chain.ID)
		}
		seen[chain.ID] = true

		if id := chain.Metadata.ChainID; id > 0 {
			if seenChainID[id] {
				return fmt.Errorf("duplicate chain_id %d", id)
			}
			seenChainID[id] = true
		}
	}

	return nil
}

var (
	defaultBuiltin     *Builtin
	defaultBuiltinOnce sync.Once
)

// DefaultBuiltin returns the embedded built-in chain table
func DefaultBuiltin() *Builtin {
	defaultBuiltinOnce.Do(func() {
		builtin, err := LoadBuiltin(chainsYAML)
		if err != nil {
			panic(err)
		}
		defaultBuiltin = builtin
	})
	return defaultBuiltin
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ChainConfig returns a copy of the configuration for a chain id
func (b *Builtin) ChainConfig(id string) (*ChainConfig, bool) {
	chain, ok := b.byID[normalizeID(id)]
	if !ok {
		return nil, false
	}
	return chain.clone(), true
}

// ByChainID returns the built-in EVM chain with the given numeric chain id
func (b *Builtin) ByChainID(chainID int64) (*ChainConfig, bool) {
	chain, ok := b.byChainID[chainID]
	if !ok {
		return nil, false
	}
	return chain.clone(), true
}

// IsSupported checks if id is a built-in chain
func (b *Builtin) IsSupported(id string) bool {
	_, ok := b.byID[normalizeID(id)]
	return ok
}

// IDs returns all built-in chain ids in table order
func (b *Builtin) IDs() []string {
	ids := make([]string, 0, len(b.Chains))
	for _, chain := range b.Chains {
		ids = append(ids, chain.ID)
	}
	return ids
}

// All returns copies of every built-in chain in table order
func (b *Builtin) All() []ChainConfig {
	chains := make([]ChainConfig, 0, len(b.Chains))
	for i := range b.Chains {
		chains = append(chains, *b.Chains[i].clone())
	}
	return chains
}

// EnabledErrorCategories returns the enabled categories of a chain sorted by
// descending priority. Unknown chains yield nil.
func (b *Builtin) EnabledErrorCategories(id string) []CategoryConfig {
	chain, ok := b.byID[normalizeID(id)]
	if !ok {
		return nil
	}

	enabled := make([]CategoryConfig, 0, len(chain.ErrorCategories))
	for _, category := range chain.ErrorCategories {
		if category.Enabled {
			enabled = append(enabled, category)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority > enabled[j].Priority
	})
	return enabled
}

// EnabledCategoryNames implements mapping.CategorySource
func (b *Builtin) EnabledCategoryNames(id string) ([]string, bool) {
	if !b.IsSupported(id) {
		return nil, false
	}
	categories := b.EnabledErrorCategories(id)
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Category)
	}
	return names, true
}

func (c *ChainConfig) clone() *ChainConfig {
	out := *c
	out.Metadata.RPCURLs = append([]string(nil), c.Metadata.RPCURLs...)
	out.Metadata.ExplorerURLs = append([]string(nil), c.Metadata.ExplorerURLs...)
	out.ErrorCategories = append([]CategoryConfig(nil), c.ErrorCategories...)
	return &out
}
