package translator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/chainerr/pkg/adapter"
	"github.com/kislikjeka/chainerr/pkg/chain"
	apperrors "github.com/kislikjeka/chainerr/pkg/errors"
	"github.com/kislikjeka/chainerr/pkg/fallback"
	"github.com/kislikjeka/chainerr/pkg/mapping"
	"github.com/kislikjeka/chainerr/pkg/translator"
)

const erc20Balance = "ERC20: transfer amount exceeds balance"

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	c.sets++
	return nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

type panickyCache struct{}

func (panickyCache) Get(context.Context, string) ([]byte, bool, error) { panic("cache exploded") }
func (panickyCache) Set(context.Context, string, []byte) error         { return nil }

type countingRecorder struct {
	mu           sync.Mutex
	translations int
	hits, misses int
	recovered    int
}

func (r *countingRecorder) ObserveTranslation(string, string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translations++
}

func (r *countingRecorder) ObserveCache(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func (r *countingRecorder) IncRecovered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recovered++
}

func priorityTestChain() chain.CustomChainConfig {
	return chain.CustomChainConfig{
		ChainID: "priority-test",
		Name:    "Priority Test",
		ErrorMappings: []mapping.ErrorMapping{
			{Pattern: erc20Balance, Message: "Custom ERC20 error message", Priority: 20},
		},
	}
}

func TestTranslateError_Scenarios(t *testing.T) {
	ctx := context.Background()
	tr := translator.New()

	res := tr.TranslateError(ctx, errors.New(erc20Balance), translator.Options{})
	assert.Equal(t, translator.Result{
		Message:    "Insufficient token balance. You don't have enough tokens to complete this transfer.",
		Translated: true,
		Chain:      "ethereum",
	}, res)

	res = tr.TranslateError(ctx, "completely unknown error", translator.Options{})
	assert.Equal(t, translator.Result{
		Message:    "An error occurred while processing your request. Please try again.",
		Translated: false,
		Chain:      "ethereum",
	}, res)

	require.NoError(t, tr.RegisterCustomChain(priorityTestChain()))
	res = tr.TranslateError(ctx, errors.New(erc20Balance), translator.Options{Chain: "priority-test"})
	assert.True(t, res.Translated)
	assert.Equal(t, "Custom ERC20 error message", res.Message)
	assert.Equal(t, "priority-test", res.Chain)
}

func TestTranslateError_PriorityOrdering(t *testing.T) {
	tr := translator.New()
	require.NoError(t, tr.RegisterCustomChain(chain.CustomChainConfig{
		ChainID: "ordering",
		Name:    "Ordering",
		ErrorMappings: []mapping.ErrorMapping{
			{Pattern: "insufficient funds", Message: "Low", IsRegex: true, Priority: 1},
			{Pattern: "insufficient funds for transfer", Message: "High", Priority: 50},
		},
	}))

	res := tr.TranslateError(context.Background(), "insufficient funds for transfer", translator.Options{Chain: "ordering"})
	assert.Equal(t, "High", res.Message)
}

func TestTranslateError_CustomMappingsWin(t *testing.T) {
	tr := translator.New()
	require.NoError(t, tr.RegisterCustomChain(priorityTestChain()))

	for _, chainID := range []string{"ethereum", "priority-test", "unknown-chain"} {
		t.Run(chainID, func(t *testing.T) {
			res := tr.TranslateErrorDetailed(context.Background(), errors.New(erc20Balance), translator.Options{
				Chain:          chainID,
				CustomMappings: map[string]string{erc20Balance: "Request override"},
			})
			assert.True(t, res.Translated)
			assert.Equal(t, "Request override", res.Message)
			assert.Equal(t, erc20Balance, res.MatchedPattern)
			assert.Equal(t, translator.SourceMapping, res.Source)
		})
	}
}

func TestTranslateError_Fallbacks(t *testing.T) {
	tr := translator.New()
	require.NoError(t, tr.RegisterCustomChain(chain.CustomChainConfig{
		ChainID: "fallback-chain",
		Name:    "Fallback Chain",
		CustomFallbacks: &chain.Fallbacks{
			Generic: "Custom generic",
			Network: "Custom network",
		},
	}))

	tests := []struct {
		name       string
		err        any
		opts       translator.Options
		wantMsg    string
		wantSource string
	}{
		{
			name:       "explicit fallback",
			err:        "completely unknown error",
			opts:       translator.Options{FallbackMessage: "Try later"},
			wantMsg:    "Try later",
			wantSource: fallback.SourceExplicit,
		},
		{
			name:       "explicit beats custom chain",
			err:        "socket hang up",
			opts:       translator.Options{Chain: "fallback-chain", FallbackMessage: "Try later"},
			wantMsg:    "Try later",
			wantSource: fallback.SourceExplicit,
		},
		{
			name:       "custom type-specific",
			err:        "socket hang up",
			opts:       translator.Options{Chain: "fallback-chain"},
			wantMsg:    "Custom network",
			wantSource: fallback.SourceCustom,
		},
		{
			name:       "custom type with request mappings",
			err:        "socket hang up",
			opts:       translator.Options{Chain: "fallback-chain", CustomMappings: map[string]string{"unrelated": "x"}},
			wantMsg:    "Custom network",
			wantSource: fallback.SourceCustom,
		},
		{
			name:       "custom generic",
			err:        "completely unknown error",
			opts:       translator.Options{Chain: "fallback-chain"},
			wantMsg:    "Custom generic",
			wantSource: fallback.SourceCustom,
		},
		{
			name:       "custom generic for unset type",
			err:        "wallet exploded",
			opts:       translator.Options{Chain: "fallback-chain"},
			wantMsg:    "Custom generic",
			wantSource: fallback.SourceCustom,
		},
		{
			name:       "built-in default",
			err:        "socket hang up",
			opts:       translator.Options{},
			wantMsg:    fallback.Default(fallback.KeyNetwork),
			wantSource: fallback.SourceDefault,
		},
		{
			name:       "whitespace explicit fallback is verbatim",
			err:        "completely unknown error",
			opts:       translator.Options{FallbackMessage: "   "},
			wantMsg:    "   ",
			wantSource: fallback.SourceExplicit,
		},
		{
			name:       "empty explicit fallback is ignored",
			err:        "completely unknown error",
			opts:       translator.Options{FallbackMessage: ""},
			wantMsg:    fallback.GenericMessage,
			wantSource: fallback.SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tr.TranslateErrorDetailed(context.Background(), tt.err, tt.opts)
			assert.False(t, res.Translated)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.Equal(t, tt.wantSource, res.Source)
		})
	}
}

func TestTranslateError_Totality(t *testing.T) {
	tr := translator.New()
	var nilErr *apperrors.AppError

	inputs := map[string]any{
		"nil":             nil,
		"empty string":    "",
		"whitespace":      "   ",
		"number":          42,
		"bool":            true,
		"slice":           []any{nil, 1, "x"},
		"nested nils":     map[string]any{"error": map[string]any{"message": nil, "data": nil}},
		"struct":          struct{ Code int }{Code: 7},
		"typed nil error": nilErr,
		"channel":         make(chan int),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				res := tr.TranslateError(context.Background(), input, translator.Options{Chain: "not-a-chain"})
				assert.NotEmpty(t, res.Message)
				assert.Equal(t, "not-a-chain", res.Chain)
			})
		})
	}
}

func TestTranslateError_Idempotent(t *testing.T) {
	tr := translator.New()
	opts := translator.Options{CustomMappings: map[string]string{"b": "B", "a": "A"}}
	err := map[string]any{"code": 4001, "message": "User rejected the request."}

	first := tr.TranslateError(context.Background(), err, opts)
	second := tr.TranslateError(context.Background(), err, opts)
	assert.Equal(t, first, second)
	assert.Equal(t, "Transaction was rejected in your wallet.", first.Message)
}

func TestTranslateError_IncludeOriginalError(t *testing.T) {
	tr := translator.New()
	original := errors.New("socket hang up")

	res := tr.TranslateError(context.Background(), original, translator.Options{})
	assert.Nil(t, res.OriginalError)

	res = tr.TranslateError(context.Background(), original, translator.Options{IncludeOriginalError: true})
	assert.Equal(t, original, res.OriginalError)
}

func TestTranslateErrorDetailed(t *testing.T) {
	tr := translator.New()

	res := tr.TranslateErrorDetailed(context.Background(), "execution reverted: "+erc20Balance, translator.Options{})
	_, err := uuid.Parse(res.ID)
	require.NoError(t, err)
	assert.False(t, res.Timestamp.IsZero())
	assert.True(t, res.Translated)
	assert.Equal(t, string(adapter.EcosystemEVM), res.Ecosystem)
	// the unwrapped message carries no type keyword
	assert.Empty(t, res.ErrorType)
	assert.Equal(t, fallback.SeverityMedium, res.Severity)
	assert.False(t, res.Retryable)
	assert.Equal(t, erc20Balance, res.MatchedPattern)

	res = tr.TranslateErrorDetailed(context.Background(), "socket hang up", translator.Options{})
	assert.Equal(t, string(fallback.TypeNetwork), res.ErrorType)
	assert.True(t, res.Retryable)
	assert.Equal(t, fallback.SourceDefault, res.Source)
}

func TestTranslateError_AdapterSelection(t *testing.T) {
	tr := translator.New()
	ctx := context.Background()

	solanaErr := map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 1}}}
	res := tr.TranslateErrorDetailed(ctx, solanaErr, translator.Options{Chain: "solana"})
	assert.Equal(t, string(adapter.EcosystemSolana), res.Ecosystem)
	assert.True(t, res.Translated)
	assert.Equal(t, "Insufficient funds for the token program operation.", res.Message)

	res = tr.TranslateErrorDetailed(ctx, "boom", translator.Options{Ecosystem: "Bitcoin"})
	assert.Equal(t, string(adapter.EcosystemBitcoin), res.Ecosystem)

	res = tr.TranslateErrorDetailed(ctx, "boom", translator.Options{Ecosystem: "starknet"})
	assert.Equal(t, string(adapter.EcosystemEVM), res.Ecosystem)

	// nothing detected on a non-EVM built-in chain uses the chain's ecosystem
	res = tr.TranslateErrorDetailed(ctx, "boom", translator.Options{Chain: "solana"})
	assert.Equal(t, string(adapter.EcosystemSolana), res.Ecosystem)

	require.NoError(t, tr.RegisterCustomChain(chain.CustomChainConfig{
		ChainID:         "my-l2",
		Name:            "My L2",
		IsEVMCompatible: true,
		Metadata:        map[string]any{"chainId": 1337},
	}))
	res = tr.TranslateErrorDetailed(ctx, map[string]any{"codespace": "sdk", "code": 5}, translator.Options{Chain: "my-l2"})
	assert.Equal(t, string(adapter.EcosystemEVM), res.Ecosystem)
	assert.Equal(t, int64(1337), tr.Adapters().EVMAdapter(1337).ChainID())
}

func TestTranslateError_LoadsEmbeddedLanguageOnDemand(t *testing.T) {
	tr := translator.New()
	ctx := context.Background()
	require.False(t, tr.I18n().IsSupported("es"))

	res := tr.TranslateErrorDetailed(ctx, errors.New(erc20Balance), translator.Options{Language: "es"})
	assert.True(t, res.Translated)
	assert.Equal(t, "es", res.Language)
	assert.Equal(t, "Saldo de tokens insuficiente. No tienes suficientes tokens para completar esta transferencia.", res.Message)
	assert.True(t, tr.I18n().IsLoaded("es"))

	// regional variants resolve to the embedded base language
	res = tr.TranslateErrorDetailed(ctx, errors.New(erc20Balance), translator.Options{Language: "fr-CA"})
	assert.Equal(t, "fr", res.Language)
	assert.Equal(t, tr.I18n().Translate("mappings.erc20.insufficient_balance", "fr", nil), res.Message)

	// no bundle, no suggestion
	res = tr.TranslateErrorDetailed(ctx, errors.New(erc20Balance), translator.Options{Language: "it"})
	assert.Equal(t, "en", res.Language)
	assert.False(t, tr.I18n().IsSupported("it"))
}

func TestTranslateError_Localization(t *testing.T) {
	tr := translator.New()
	ctx := context.Background()
	require.NoError(t, tr.I18n().LoadLanguage("es"))
	require.NoError(t, tr.I18n().LoadLanguage("zh"))

	res := tr.TranslateError(ctx, "User rejected the request.", translator.Options{Language: "es"})
	assert.True(t, res.Translated)
	assert.Equal(t, "La transacción fue rechazada en tu billetera.", res.Message)

	res = tr.TranslateError(ctx, "User rejected the request.", translator.Options{Language: "es-MX"})
	assert.Equal(t, "La transacción fue rechazada en tu billetera.", res.Message)

	res = tr.TranslateError(ctx, "completely unknown error", translator.Options{Language: "es"})
	assert.Equal(t, tr.I18n().Translate("errors.generic", "es", nil), res.Message)

	// explicit and custom fallbacks are not localized
	res = tr.TranslateError(ctx, "completely unknown error", translator.Options{Language: "es", FallbackMessage: "Try later"})
	assert.Equal(t, "Try later", res.Message)

	res = tr.TranslateError(ctx, "completely unknown error", translator.Options{
		Language:      "es",
		CustomLocales: map[string]map[string]string{"es": {"errors.generic": "Algo salió mal"}},
	})
	assert.Equal(t, "Algo salió mal", res.Message)

	res = tr.TranslateError(ctx, "completely unknown error", translator.Options{
		Language:      "it",
		CustomLocales: map[string]map[string]string{"it": {"errors.generic": "Qualcosa è andato storto"}},
	})
	assert.Equal(t, "Qualcosa è andato storto", res.Message)

	detailed := tr.TranslateErrorDetailed(ctx, "completely unknown error", translator.Options{Language: "it", FallbackLanguage: "es"})
	assert.Equal(t, "es", detailed.Language)

	detailed = tr.TranslateErrorDetailed(ctx, "用户拒绝了请求", translator.Options{AutoDetectLanguage: true})
	assert.Equal(t, "zh", detailed.Language)
	assert.Equal(t, string(fallback.TypeWallet), detailed.ErrorType)
	assert.Equal(t, tr.I18n().Translate("errors.wallet", "zh", nil), detailed.Message)

	// without a language the catalog wording is returned
	res = tr.TranslateError(ctx, "User rejected the request.", translator.Options{})
	assert.Equal(t, "Transaction was rejected in your wallet.", res.Message)
}

func TestTranslateError_Cache(t *testing.T) {
	cache := newMapCache()
	recorder := &countingRecorder{}
	tr := translator.New(translator.WithCache(cache), translator.WithMetrics(recorder))
	ctx := context.Background()

	first := tr.TranslateErrorDetailed(ctx, errors.New(erc20Balance), translator.Options{})
	second := tr.TranslateErrorDetailed(ctx, errors.New(erc20Balance), translator.Options{})

	assert.Equal(t, first.Result, second.Result)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, recorder.hits)
	assert.Equal(t, 1, recorder.misses)
	assert.Equal(t, 2, recorder.translations)

	// an unrelated registration leaves ethereum results cached
	require.NoError(t, tr.RegisterCustomChain(priorityTestChain()))
	tr.TranslateErrorDetailed(ctx, errors.New(erc20Balance), translator.Options{})
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, recorder.hits)

	res := tr.TranslateError(ctx, errors.New(erc20Balance), translator.Options{Chain: "priority-test"})
	assert.Equal(t, "Custom ERC20 error message", res.Message)
	assert.Equal(t, 2, cache.sets)

	// re-registering the chain with other content changes its key
	require.True(t, tr.UnregisterCustomChain("priority-test"))
	changed := priorityTestChain()
	changed.ErrorMappings[0].Message = "Changed ERC20 message"
	require.NoError(t, tr.RegisterCustomChain(changed))

	res = tr.TranslateError(ctx, errors.New(erc20Balance), translator.Options{Chain: "priority-test"})
	assert.Equal(t, "Changed ERC20 message", res.Message)
	assert.Equal(t, 3, cache.sets)

	// so do locale overrides of the chosen language
	opts := translator.Options{Language: "es"}
	tr.TranslateError(ctx, errors.New(erc20Balance), opts)
	require.NoError(t, tr.I18n().AddOverrides("es", map[string]string{
		"mappings.erc20.insufficient_balance": "Saldo insuficiente",
	}))
	res = tr.TranslateError(ctx, errors.New(erc20Balance), opts)
	assert.Equal(t, "Saldo insuficiente", res.Message)
}

func TestTranslateError_SharedCacheAcrossTranslators(t *testing.T) {
	cache := newMapCache()
	ctx := context.Background()

	first := translator.New(translator.WithCache(cache))
	require.NoError(t, first.RegisterCustomChain(chain.CustomChainConfig{ChainID: "other", Name: "Other"}))

	second := translator.New(translator.WithCache(cache))
	require.NoError(t, second.RegisterCustomChain(chain.CustomChainConfig{
		ChainID: "acme",
		Name:    "Acme",
		ErrorMappings: []mapping.ErrorMapping{
			{Pattern: "boom", Message: "Acme boom"},
		},
	}))

	res := first.TranslateError(ctx, "boom", translator.Options{Chain: "acme"})
	assert.False(t, res.Translated)
	assert.Equal(t, fallback.GenericMessage, res.Message)

	res = second.TranslateError(ctx, "boom", translator.Options{Chain: "acme"})
	assert.True(t, res.Translated)
	assert.Equal(t, "Acme boom", res.Message)

	// identical registrations share entries
	third := translator.New(translator.WithCache(cache))
	require.NoError(t, third.RegisterCustomChain(chain.CustomChainConfig{
		ChainID: "acme",
		Name:    "Acme",
		ErrorMappings: []mapping.ErrorMapping{
			{Pattern: "boom", Message: "Acme boom"},
		},
	}))
	sets := cache.sets
	res = third.TranslateError(ctx, "boom", translator.Options{Chain: "acme"})
	assert.Equal(t, "Acme boom", res.Message)
	assert.Equal(t, sets, cache.sets)
}

func TestTranslateError_CacheFailuresAreIgnored(t *testing.T) {
	tr := translator.New(translator.WithCache(failingCache{}))

	res := tr.TranslateError(context.Background(), errors.New(erc20Balance), translator.Options{})
	assert.True(t, res.Translated)
}

func TestTranslateError_RecoversFromPanics(t *testing.T) {
	recorder := &countingRecorder{}
	tr := translator.New(translator.WithCache(panickyCache{}), translator.WithMetrics(recorder))

	res := tr.TranslateErrorDetailed(context.Background(), errors.New(erc20Balance), translator.Options{Chain: "polygon"})
	assert.Equal(t, fallback.GenericMessage, res.Message)
	assert.False(t, res.Translated)
	assert.True(t, res.Retryable)
	assert.Equal(t, translator.SourceRecovered, res.Source)
	assert.Equal(t, "polygon", res.Chain)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 1, recorder.recovered)
}

func TestTranslator_CustomChainRoundTrip(t *testing.T) {
	tr := translator.New()
	cfg := priorityTestChain()

	require.NoError(t, tr.RegisterCustomChain(cfg))
	got, ok := tr.GetCustomChain(cfg.ChainID)
	require.True(t, ok)
	assert.Equal(t, cfg, *got)
	assert.True(t, tr.HasCustomChain(cfg.ChainID))
	assert.Len(t, tr.GetAllCustomChains(), 1)

	err := tr.RegisterCustomChain(cfg)
	require.Error(t, err)
	assert.Equal(t, "Chain 'priority-test' is already registered", apperrors.GetAppError(err).Message)

	assert.True(t, tr.UnregisterCustomChain(cfg.ChainID))
	assert.False(t, tr.HasCustomChain(cfg.ChainID))
	assert.False(t, tr.UnregisterCustomChain(cfg.ChainID))

	require.NoError(t, tr.RegisterCustomChain(cfg))
	tr.ClearCustomChains()
	assert.Empty(t, tr.GetAllCustomChains())
}

func TestTranslator_PaddedCustomChainID(t *testing.T) {
	tr := translator.New()
	cfg := priorityTestChain()
	cfg.ChainID = " priority-test "
	require.NoError(t, tr.RegisterCustomChain(cfg))

	res := tr.TranslateError(context.Background(), errors.New(erc20Balance), translator.Options{Chain: "priority-test"})
	assert.Equal(t, "Custom ERC20 error message", res.Message)
	assert.True(t, tr.HasCustomChain("priority-test"))
}

type starknetAdapter struct{}

func (starknetAdapter) Ecosystem() adapter.Ecosystem { return "starknet" }
func (starknetAdapter) ExtractErrorMessage(err any) string {
	return "felt overflow"
}
func (starknetAdapter) MatchesErrorFormat(err any) bool {
	s, ok := err.(string)
	return ok && s == "starknet failure"
}
func (starknetAdapter) ErrorPatterns() map[string]string    { return nil }
func (starknetAdapter) FallbackMessages() map[string]string { return fallback.Defaults() }

func TestTranslator_RegisterAdapter(t *testing.T) {
	tr := translator.New()
	require.NoError(t, tr.RegisterAdapter(starknetAdapter{}))

	res := tr.TranslateErrorDetailed(context.Background(), "starknet failure", translator.Options{
		CustomMappings: map[string]string{"felt overflow": "Value is too large for a felt."},
	})
	assert.Equal(t, "starknet", res.Ecosystem)
	assert.Equal(t, "Value is too large for a felt.", res.Message)

	assert.True(t, tr.UnregisterAdapter("starknet"))
	res = tr.TranslateErrorDetailed(context.Background(), "starknet failure", translator.Options{})
	assert.Equal(t, string(adapter.EcosystemEVM), res.Ecosystem)
}
