package chain

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	apperrors "github.com/kislikjeka/chainerr/pkg/errors"
	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// Fallback keys understood by Fallbacks.ForKey
const (
	FallbackGeneric  = "generic"
	FallbackNetwork  = "network"
	FallbackWallet   = "wallet"
	FallbackContract = "contract"
)

// Fallbacks are the per-type fallback messages of a custom chain
type Fallbacks struct {
	Generic  string `yaml:"generic,omitempty" json:"generic,omitempty"`
	Network  string `yaml:"network,omitempty" json:"network,omitempty"`
	Wallet   string `yaml:"wallet,omitempty" json:"wallet,omitempty"`
	Contract string `yaml:"contract,omitempty" json:"contract,omitempty"`
}

// ForKey returns the fallback for a key, or "" when none is set
func (f *Fallbacks) ForKey(key string) string {
	if f == nil {
		return ""
	}
	switch key {
	case FallbackGeneric:
		return f.Generic
	case FallbackNetwork:
		return f.Network
	case FallbackWallet:
		return f.Wallet
	case FallbackContract:
		return f.Contract
	default:
		return ""
	}
}

// Map returns the non-empty fallbacks keyed by fallback key
func (f *Fallbacks) Map() map[string]string {
	out := make(map[string]string)
	if f == nil {
		return out
	}
	for _, key := range []string{FallbackGeneric, FallbackNetwork, FallbackWallet, FallbackContract} {
		if msg := f.ForKey(key); msg != "" {
			out[key] = msg
		}
	}
	return out
}

// CustomChainConfig is a chain registered at runtime
type CustomChainConfig struct {
	ChainID         string                 `yaml:"chain_id" json:"chainId"`
	Name            string                 `yaml:"name" json:"name"`
	ErrorMappings   []mapping.ErrorMapping `yaml:"error_mappings" json:"errorMappings"`
	CustomFallbacks *Fallbacks             `yaml:"custom_fallbacks,omitempty" json:"customFallbacks,omitempty"`
	IsEVMCompatible bool                   `yaml:"is_evm_compatible,omitempty" json:"isEVMCompatible,omitempty"`
	Metadata        map[string]any         `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

func (c *CustomChainConfig) clone() *CustomChainConfig {
	out := *c
	out.ErrorMappings = mapping.Clone(c.ErrorMappings)
	if c.CustomFallbacks != nil {
		fallbacks := *c.CustomFallbacks
		out.CustomFallbacks = &fallbacks
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// Validate checks the registration invariants. Regex syntax is not checked:
// invalid expressions degrade to substring matching at match time.
func (c *CustomChainConfig) Validate() error {
	if strings.TrimSpace(c.ChainID) == "" {
		return apperrors.Validation("chainId must be a non-empty string")
	}
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.Validationf("name must be a non-empty string for chain '%s'", c.ChainID)
	}
	for i, m := range c.ErrorMappings {
		if strings.TrimSpace(m.Pattern) == "" {
			return apperrors.Validationf("errorMappings[%d].pattern must be a non-empty string for chain '%s'", i, c.ChainID)
		}
		if strings.TrimSpace(m.Message) == "" {
			return apperrors.Validationf("errorMappings[%d].message must be a non-empty string for chain '%s'", i, c.ChainID)
		}
	}
	return nil
}

// CustomRegistry manages custom chains. It is safe for concurrent use.
type CustomRegistry struct {
	chains  map[string]*CustomChainConfig
	mu      sync.RWMutex
	version atomic.Uint64
}

// NewCustomRegistry creates an empty custom chain registry
func NewCustomRegistry() *CustomRegistry {
	return &CustomRegistry{
		chains: make(map[string]*CustomChainConfig),
	}
}

// chainKey is the stored form of a chain id. Surrounding whitespace is
// dropped on both registration and lookup.
func chainKey(id string) string {
	return strings.TrimSpace(id)
}

// Register adds a custom chain. It returns a validation AppError for an
// invalid config and a conflict AppError for a duplicate chain id; nothing
// is stored when it fails.
func (r *CustomRegistry) Register(cfg CustomChainConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	stored := cfg.clone()
	stored.ChainID = chainKey(cfg.ChainID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chains[stored.ChainID]; exists {
		return apperrors.Conflict(fmt.Sprintf("Chain '%s' is already registered", stored.ChainID))
	}

	r.chains[stored.ChainID] = stored
	r.version.Add(1)
	return nil
}

// Unregister removes a custom chain. It reports whether the chain existed.
func (r *CustomRegistry) Unregister(chainID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.chains[chainKey(chainID)]; !exists {
		return false
	}
	delete(r.chains, chainKey(chainID))
	r.version.Add(1)
	return true
}

// Get returns a copy of a registered chain
func (r *CustomRegistry) Get(chainID string) (*CustomChainConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.chains[chainKey(chainID)]
	if !ok {
		return nil, false
	}
	return cfg.clone(), true
}

// All returns copies of every registered chain sorted by chain id
func (r *CustomRegistry) All() []CustomChainConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CustomChainConfig, 0, len(r.chains))
	for _, cfg := range r.chains {
		out = append(out, *cfg.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ChainID < out[j].ChainID
	})
	return out
}

// Has checks if a chain is registered
func (r *CustomRegistry) Has(chainID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.chains[chainKey(chainID)]
	return ok
}

// Clear removes every custom chain
func (r *CustomRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.chains) == 0 {
		return
	}
	r.chains = make(map[string]*CustomChainConfig)
	r.version.Add(1)
}

// Len returns the number of registered chains
func (r *CustomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chains)
}

// ErrorMappings returns the mappings of a chain, empty for unknown chains
func (r *CustomRegistry) ErrorMappings(chainID string) []mapping.ErrorMapping {
	mappings, _ := r.CustomMappings(chainID)
	if mappings == nil {
		return []mapping.ErrorMapping{}
	}
	return mappings
}

// CustomMappings implements mapping.CustomSource
func (r *CustomRegistry) CustomMappings(chainID string) ([]mapping.ErrorMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.chains[chainKey(chainID)]
	if !ok {
		return nil, false
	}
	return mapping.Clone(cfg.ErrorMappings), true
}

// CustomFallbacks returns a copy of the chain's fallbacks, nil when unset or unknown
func (r *CustomRegistry) CustomFallbacks(chainID string) *Fallbacks {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.chains[chainKey(chainID)]
	if !ok || cfg.CustomFallbacks == nil {
		return nil
	}
	fallbacks := *cfg.CustomFallbacks
	return &fallbacks
}

// Version changes every time the registry is mutated
func (r *CustomRegistry) Version() uint64 {
	return r.version.Load()
}
