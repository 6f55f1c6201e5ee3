package translator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/kislikjeka/chainerr/pkg/adapter"
	"github.com/kislikjeka/chainerr/pkg/chain"
	"github.com/kislikjeka/chainerr/pkg/i18n"
	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// Cache stores encoded results. Implementations decide eviction and expiry.
// A cache may be shared by several translators, so keys only carry content.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// cacheScope is the registry state a result depends on
type cacheScope struct {
	Tables   string                   `json:"tables"`
	Chain    *chain.CustomChainConfig `json:"chain,omitempty"`
	Adapters []string                 `json:"adapters"`
	Locale   *i18n.LocaleState        `json:"locale,omitempty"`
}

func tablesDigest(catalog *mapping.Catalog, builtin *chain.Builtin) string {
	data, err := json.Marshal(struct {
		Categories []mapping.Category
		Chains     []chain.ChainConfig
	}{catalog.Categories, builtin.All()})
	if err != nil {
		return ""
	}
	return digest(data)
}

func digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (t *Translator) adapterNames() []string {
	ecosystems := t.adapters.Ecosystems()
	out := make([]string, 0, len(ecosystems))
	for _, eco := range ecosystems {
		a, ok := t.adapters.Adapter(eco)
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("%s=%T", eco, a))
	}
	sort.Strings(out)
	return out
}

// cacheKey identifies a translation by the content it depends on: the
// request, the custom chain it names, the registered adapters and the
// locale state of the chosen language. It returns "" when caching is off or
// the scope cannot be encoded.
func (t *Translator) cacheKey(eco adapter.Ecosystem, message, chainID string, custom *chain.CustomChainConfig, lang string, opts Options) string {
	if t.cache == nil || t.tables == "" {
		return ""
	}

	opts.IncludeOriginalError = false
	encoded, err := json.Marshal(opts)
	if err != nil {
		t.logger.Warn("failed to encode options for cache key", "error", err)
		return ""
	}

	scope := cacheScope{
		Tables:   t.tables,
		Chain:    custom,
		Adapters: t.adapterNames(),
	}
	if lang != "" {
		state := t.i18n.State(lang)
		scope.Locale = &state
	}
	scoped, err := json.Marshal(scope)
	if err != nil {
		t.logger.Warn("failed to encode registry state for cache key", "error", err)
		return ""
	}

	return strings.Join([]string{string(eco), chainID, lang, digest(scoped), string(encoded), message}, "|")
}

func (t *Translator) lookup(ctx context.Context, key string) (DetailedResult, bool) {
	if key == "" {
		return DetailedResult{}, false
	}

	data, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		t.logger.WithContext(ctx).Warn("result cache read failed", "error", err)
		return DetailedResult{}, false
	}
	if !ok {
		t.metrics.ObserveCache(false)
		return DetailedResult{}, false
	}

	var res DetailedResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.logger.WithContext(ctx).Warn("discarding undecodable cached result", "error", err)
		return DetailedResult{}, false
	}
	t.metrics.ObserveCache(true)
	return res, true
}

func (t *Translator) store(ctx context.Context, key string, res DetailedResult) {
	if key == "" {
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.logger.WithContext(ctx).Warn("failed to encode result for cache", "error", err)
		return
	}
	if err := t.cache.Set(ctx, key, data); err != nil {
		t.logger.WithContext(ctx).Warn("result cache write failed", "error", err)
	}
}
