// Package translator turns raw blockchain errors into stable, human-readable
// messages. A Translator bundles the chain, adapter and locale registries a
// translation reads from; nothing is kept in package-level state.
package translator

import (
	"strings"
	"time"

	"github.com/kislikjeka/chainerr/pkg/adapter"
	"github.com/kislikjeka/chainerr/pkg/chain"
	"github.com/kislikjeka/chainerr/pkg/i18n"
	"github.com/kislikjeka/chainerr/pkg/logger"
	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// Recorder receives translation metrics
type Recorder interface {
	ObserveTranslation(ecosystem, source string, d time.Duration)
	ObserveCache(hit bool)
	IncRecovered()
}

type nopRecorder struct{}

func (nopRecorder) ObserveTranslation(string, string, time.Duration) {}
func (nopRecorder) ObserveCache(bool)                                {}
func (nopRecorder) IncRecovered()                                    {}

// Translator runs the resolution pipeline. It is safe for concurrent use.
type Translator struct {
	catalog      *mapping.Catalog
	builtin      *chain.Builtin
	custom       *chain.CustomRegistry
	adapters     *adapter.Registry
	loader       *mapping.Loader
	i18n         *i18n.Manager
	cache        Cache
	metrics      Recorder
	logger       *logger.Logger
	defaultChain string
	now          func() time.Time
	// tables fingerprints the catalog and built-in chains for cache keys
	tables string
}

// Option configures a Translator
type Option func(*Translator)

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(t *Translator) {
		if log != nil {
			t.logger = log
		}
	}
}

// WithCache enables result caching
func WithCache(c Cache) Option {
	return func(t *Translator) {
		t.cache = c
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(r Recorder) Option {
	return func(t *Translator) {
		if r != nil {
			t.metrics = r
		}
	}
}

// WithCatalog replaces the embedded mapping catalog
func WithCatalog(c *mapping.Catalog) Option {
	return func(t *Translator) {
		if c != nil {
			t.catalog = c
		}
	}
}

// WithBuiltinChains replaces the embedded chain table
func WithBuiltinChains(b *chain.Builtin) Option {
	return func(t *Translator) {
		if b != nil {
			t.builtin = b
		}
	}
}

// WithCustomRegistry shares a custom chain registry
func WithCustomRegistry(r *chain.CustomRegistry) Option {
	return func(t *Translator) {
		if r != nil {
			t.custom = r
		}
	}
}

// WithAdapterRegistry shares an adapter registry
func WithAdapterRegistry(r *adapter.Registry) Option {
	return func(t *Translator) {
		if r != nil {
			t.adapters = r
		}
	}
}

// WithI18n shares an i18n manager
func WithI18n(m *i18n.Manager) Option {
	return func(t *Translator) {
		if m != nil {
			t.i18n = m
		}
	}
}

// WithDefaultChain sets the chain used when Options.Chain is empty
func WithDefaultChain(id string) Option {
	return func(t *Translator) {
		if id = strings.TrimSpace(id); id != "" {
			t.defaultChain = id
		}
	}
}

// New creates a Translator. Registries that are not supplied are created
// from the embedded tables.
func New(opts ...Option) *Translator {
	t := &Translator{
		custom:       chain.NewCustomRegistry(),
		metrics:      nopRecorder{},
		logger:       logger.Discard(),
		defaultChain: chain.DefaultChain,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.catalog == nil {
		t.catalog = mapping.DefaultCatalog()
	}
	if t.builtin == nil {
		t.builtin = chain.DefaultBuiltin()
	}
	if t.adapters == nil {
		t.adapters = adapter.NewRegistry(t.catalog)
	}
	if t.i18n == nil {
		t.i18n = i18n.NewManager(i18n.WithLogger(t.logger))
	}
	t.loader = mapping.NewLoader(t.catalog, t.builtin, t.custom)
	t.logger = t.logger.WithField("component", "translator")
	if t.cache != nil {
		t.tables = tablesDigest(t.catalog, t.builtin)
	}
	return t
}

// RegisterCustomChain adds a custom chain
func (t *Translator) RegisterCustomChain(cfg chain.CustomChainConfig) error {
	if err := t.custom.Register(cfg); err != nil {
		return err
	}
	t.logger.Info("custom chain registered", "chain_id", cfg.ChainID, "mappings", len(cfg.ErrorMappings))
	return nil
}

// UnregisterCustomChain removes a custom chain
func (t *Translator) UnregisterCustomChain(chainID string) bool {
	return t.custom.Unregister(chainID)
}

// GetCustomChain returns a copy of a custom chain
func (t *Translator) GetCustomChain(chainID string) (*chain.CustomChainConfig, bool) {
	return t.custom.Get(chainID)
}

// GetAllCustomChains returns every custom chain sorted by id
func (t *Translator) GetAllCustomChains() []chain.CustomChainConfig {
	return t.custom.All()
}

// HasCustomChain reports whether a custom chain is registered
func (t *Translator) HasCustomChain(chainID string) bool {
	return t.custom.Has(chainID)
}

// ClearCustomChains removes every custom chain
func (t *Translator) ClearCustomChains() {
	t.custom.Clear()
}

// RegisterAdapter adds an adapter for a new ecosystem
func (t *Translator) RegisterAdapter(a adapter.Adapter) error {
	return t.adapters.Register(a)
}

// UnregisterAdapter removes an ecosystem adapter
func (t *Translator) UnregisterAdapter(eco adapter.Ecosystem) bool {
	return t.adapters.Unregister(eco)
}

// Adapters exposes the adapter registry
func (t *Translator) Adapters() *adapter.Registry {
	return t.adapters
}

// Chains exposes the built-in chain table
func (t *Translator) Chains() *chain.Builtin {
	return t.builtin
}

// I18n exposes the i18n manager
func (t *Translator) I18n() *i18n.Manager {
	return t.i18n
}
