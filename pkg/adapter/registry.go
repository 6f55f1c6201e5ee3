package adapter

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	apperrors "github.com/kislikjeka/chainerr/pkg/errors"
	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// Registry holds the ecosystem adapters. Non-EVM adapters are tried in
// registration order; EVM is held separately as the last resort.
type Registry struct {
	catalog  *mapping.Catalog
	adapters []Adapter
	evm      map[int64]*EVMAdapter
	mu       sync.RWMutex
	version  atomic.Uint64
}

// NewRegistry creates a registry holding the built-in adapters
func NewRegistry(catalog *mapping.Catalog) *Registry {
	if catalog == nil {
		catalog = mapping.DefaultCatalog()
	}
	return &Registry{
		catalog: catalog,
		adapters: []Adapter{
			NewSolanaAdapter(catalog),
			NewCosmosAdapter(catalog),
			NewPolkadotAdapter(catalog),
			NewNearAdapter(catalog),
			NewAptosAdapter(catalog),
			NewSuiAdapter(catalog),
			NewTronAdapter(catalog),
			NewBitcoinAdapter(catalog),
		},
		evm: map[int64]*EVMAdapter{
			0: NewEVMAdapter(catalog, 0),
		},
	}
}

// Register adds an adapter for a new ecosystem
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return apperrors.Validation("adapter cannot be nil")
	}
	eco := a.Ecosystem()
	if strings.TrimSpace(string(eco)) == "" {
		return apperrors.Validation("adapter ecosystem must be a non-empty string")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if eco == EcosystemEVM || r.indexOf(eco) >= 0 {
		return apperrors.Conflict(fmt.Sprintf("Adapter for ecosystem '%s' is already registered", eco))
	}

	r.adapters = append(r.adapters, a)
	r.version.Add(1)
	return nil
}

// Unregister removes an adapter. The EVM adapter cannot be removed.
func (r *Registry) Unregister(eco Ecosystem) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(eco)
	if i < 0 {
		return false
	}
	r.adapters = append(r.adapters[:i:i], r.adapters[i+1:]...)
	r.version.Add(1)
	return true
}

func (r *Registry) indexOf(eco Ecosystem) int {
	for i, a := range r.adapters {
		if a.Ecosystem() == eco {
			return i
		}
	}
	return -1
}

// Adapter returns the adapter for an ecosystem
func (r *Registry) Adapter(eco Ecosystem) (Adapter, bool) {
	if eco == EcosystemEVM {
		return r.EVMAdapter(0), true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(eco); i >= 0 {
		return r.adapters[i], true
	}
	return nil, false
}

// EVMAdapter returns the EVM adapter for a chain id, creating it on first use
func (r *Registry) EVMAdapter(chainID int64) *EVMAdapter {
	r.mu.RLock()
	a, ok := r.evm[chainID]
	r.mu.RUnlock()
	if ok {
		return a
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.evm[chainID]; ok {
		return a
	}
	a = NewEVMAdapter(r.catalog, chainID)
	r.evm[chainID] = a
	return a
}

// DetectAdapter tries the non-EVM adapters in registration order, then
// EVM. It returns nil when nothing matches; callers treat nil as EVM.
func (r *Registry) DetectAdapter(err any) Adapter {
	r.mu.RLock()
	adapters := append([]Adapter(nil), r.adapters...)
	r.mu.RUnlock()

	for _, a := range adapters {
		if matches(a, err) {
			return a
		}
	}

	if evm := r.EVMAdapter(0); evm.MatchesErrorFormat(err) {
		return evm
	}
	return nil
}

// matches guards format checks of adapters registered from outside the package
func matches(a Adapter, err any) bool {
	return safeMatch(func() bool {
		return a.MatchesErrorFormat(err)
	})
}

// Ecosystems lists the registered ecosystems, EVM last
func (r *Registry) Ecosystems() []Ecosystem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Ecosystem, 0, len(r.adapters)+1)
	for _, a := range r.adapters {
		out = append(out, a.Ecosystem())
	}
	return append(out, EcosystemEVM)
}

// Version changes every time an adapter is registered or removed
func (r *Registry) Version() uint64 {
	return r.version.Load()
}

// Extract runs a.ExtractErrorMessage, returning UnknownErrorMessage if the
// adapter panics or yields an empty message
func Extract(a Adapter, err any) string {
	return safeExtract(func() string {
		return a.ExtractErrorMessage(err)
	})
}
