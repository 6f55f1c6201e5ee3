package translator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/kislikjeka/chainerr/pkg/adapter"
	"github.com/kislikjeka/chainerr/pkg/chain"
	"github.com/kislikjeka/chainerr/pkg/fallback"
	"github.com/kislikjeka/chainerr/pkg/i18n"
	"github.com/kislikjeka/chainerr/pkg/mapping"
)

// TranslateError translates err into a human-readable message. It never
// panics.
func (t *Translator) TranslateError(ctx context.Context, err any, opts Options) Result {
	return t.TranslateErrorDetailed(ctx, err, opts).Result
}

// TranslateErrorDetailed is TranslateError with diagnostics attached
func (t *Translator) TranslateErrorDetailed(ctx context.Context, err any, opts Options) (res DetailedResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := t.now()
	chainID := t.chainOf(opts)

	defer func() {
		if r := recover(); r != nil {
			t.logger.WithContext(ctx).Error("translation panicked",
				"chain", chainID,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			t.metrics.IncRecovered()
			res = recovered(chainID)
		}

		res.ID = uuid.NewString()
		res.Timestamp = start.UTC()
		if opts.IncludeOriginalError {
			res.OriginalError = err
		}
		t.metrics.ObserveTranslation(res.Ecosystem, res.Source, t.now().Sub(start))
	}()

	return t.translate(ctx, err, chainID, opts)
}

func recovered(chainID string) DetailedResult {
	return DetailedResult{
		Result: Result{
			Message: fallback.GenericMessage,
			Chain:   chainID,
		},
		Severity:  fallback.Severity(fallback.TypeUnknown),
		Retryable: true,
		Source:    SourceRecovered,
	}
}

func (t *Translator) chainOf(opts Options) string {
	if id := strings.TrimSpace(opts.Chain); id != "" {
		return id
	}
	return t.defaultChain
}

func (t *Translator) translate(ctx context.Context, err any, chainID string, opts Options) DetailedResult {
	custom, _ := t.custom.Get(chainID)
	a := t.selectAdapter(err, chainID, custom, opts.Ecosystem)
	message := adapter.Extract(a, err)
	lang := t.resolveLanguage(err, opts)

	key := t.cacheKey(a.Ecosystem(), message, chainID, custom, lang, opts)
	if cached, ok := t.lookup(ctx, key); ok {
		return cached
	}

	res := t.resolve(message, chainID, custom, lang, opts)
	res.Ecosystem = string(a.Ecosystem())

	t.store(ctx, key, res)
	return res
}

// resolve runs matching and fallback for an extracted message
func (t *Translator) resolve(message, chainID string, custom *chain.CustomChainConfig, lang string, opts Options) DetailedResult {
	errType := fallback.Classify(message)
	res := DetailedResult{
		Result:    Result{Chain: chainID},
		ErrorType: string(errType),
		Severity:  fallback.Severity(errType),
		Retryable: fallback.Retryable(errType),
		Language:  lang,
	}

	var customFallbacks map[string]string
	if custom != nil {
		customFallbacks = custom.CustomFallbacks.Map()
	}

	explicit := opts.FallbackMessage != ""
	if !explicit && len(opts.CustomMappings) == 0 {
		if fb, ok := fallback.TypeSpecific(message, customFallbacks); ok {
			res.Message = fb.Message
			res.Source = fb.Source
			return res
		}
	}

	mappings := mapping.AddCustomMappings(t.loader.LoadErrorMappings(chainID), opts.CustomMappings)
	if m, ok := mapping.FindBestMatch(message, mappings); ok {
		res.Message = m.Message
		if msg, ok := t.localize(m.Key, lang, opts.CustomLocales); ok {
			res.Message = msg
		}
		res.Translated = true
		res.MatchedPattern = m.Pattern
		res.Source = SourceMapping
		return res
	}

	fb := fallback.Resolve(fallback.Request{
		Message:          message,
		ExplicitFallback: opts.FallbackMessage,
		CustomFallbacks:  customFallbacks,
	})
	res.Message = fb.Message
	res.Source = fb.Source
	// explicit and custom-chain fallbacks are returned verbatim
	if fb.Source == fallback.SourceDefault {
		if msg, ok := t.localize("errors."+fb.Key, lang, opts.CustomLocales); ok {
			res.Message = msg
		}
	}
	return res
}

// selectAdapter picks the adapter for err: an explicit ecosystem hint, then
// an EVM-compatible custom chain, then detection. When detection finds
// nothing, a non-EVM built-in chain uses its own ecosystem; everything else
// falls back to EVM.
func (t *Translator) selectAdapter(err any, chainID string, custom *chain.CustomChainConfig, hint string) adapter.Adapter {
	builtin, isBuiltin := t.builtin.ChainConfig(chainID)

	var evmChainID int64
	if isBuiltin {
		evmChainID = builtin.Metadata.ChainID
	}
	if id, ok := customChainID(custom); ok {
		evmChainID = id
	}

	if eco := adapter.Ecosystem(strings.ToLower(strings.TrimSpace(hint))); eco != "" {
		if eco == adapter.EcosystemEVM {
			return t.adapters.EVMAdapter(evmChainID)
		}
		if a, ok := t.adapters.Adapter(eco); ok {
			return a
		}
		t.logger.Warn("unknown ecosystem hint, detecting adapter", "ecosystem", hint)
	}

	if custom != nil && custom.IsEVMCompatible {
		return t.adapters.EVMAdapter(evmChainID)
	}

	detected := t.adapters.DetectAdapter(err)
	if detected != nil && detected.Ecosystem() != adapter.EcosystemEVM {
		return detected
	}
	if detected == nil && isBuiltin && builtin.Ecosystem != string(adapter.EcosystemEVM) {
		if a, ok := t.adapters.Adapter(adapter.Ecosystem(builtin.Ecosystem)); ok {
			return a
		}
	}
	return t.adapters.EVMAdapter(evmChainID)
}

func customChainID(custom *chain.CustomChainConfig) (int64, bool) {
	if custom == nil {
		return 0, false
	}
	for _, key := range []string{"chainId", "chain_id"} {
		v, ok := custom.Metadata[key]
		if !ok {
			continue
		}
		if id, err := cast.ToInt64E(v); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// resolveLanguage returns the language to localize into, or "" when no
// language is in play for this call
func (t *Translator) resolveLanguage(err any, opts Options) string {
	lang := i18n.NormalizeLanguage(opts.Language)
	if lang == "" && opts.AutoDetectLanguage {
		lang = i18n.DetectLanguage(err)
	}

	if lang == "" {
		current := t.i18n.CurrentLanguage()
		if current != i18n.BaseLanguage || len(opts.CustomLocales) > 0 {
			return current
		}
		return ""
	}

	if t.hasLanguage(lang, opts.CustomLocales) {
		return lang
	}
	if suggested, ok := t.i18n.SuggestLanguage(lang); ok && t.hasLanguage(suggested, opts.CustomLocales) {
		return suggested
	}
	if fb := i18n.NormalizeLanguage(opts.FallbackLanguage); fb != "" && t.hasLanguage(fb, opts.CustomLocales) {
		return fb
	}
	return i18n.BaseLanguage
}

// hasLanguage reports whether lang can be localized into. Embedded bundles
// are loaded on first use.
func (t *Translator) hasLanguage(lang string, custom map[string]map[string]string) bool {
	if t.i18n.IsSupported(lang) {
		return true
	}
	for code := range custom {
		if i18n.NormalizeLanguage(code) == lang {
			return true
		}
	}
	if !isAvailable(lang) {
		return false
	}
	if err := t.i18n.LoadLanguage(lang); err != nil {
		t.logger.Warn("failed to load language bundle", "language", lang, "error", err)
		return false
	}
	t.logger.Debug("language bundle loaded on demand", "language", lang)
	return true
}

func isAvailable(lang string) bool {
	for _, code := range i18n.AvailableLanguages() {
		if code == lang {
			return true
		}
	}
	return false
}

// localize looks key up in the per-call locales, then the i18n manager
func (t *Translator) localize(key, lang string, custom map[string]map[string]string) (string, bool) {
	if key == "" || lang == "" {
		return "", false
	}

	codes := make([]string, 0, len(custom))
	for code := range custom {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if i18n.NormalizeLanguage(code) != lang {
			continue
		}
		if msg := custom[code][key]; msg != "" {
			return msg, true
		}
	}

	return t.i18n.Lookup(key, lang)
}
