// Package i18n translates resolved messages and fallback keys. Lookups go
// override -> developer locale -> bundled locale -> base (English) -> key.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	apperrors "github.com/kislikjeka/chainerr/pkg/errors"
	"github.com/kislikjeka/chainerr/pkg/logger"
)

// BaseLanguage is the language of the built-in dictionary
const BaseLanguage = "en"

//go:embed locales/*.yaml
var bundles embed.FS

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Dictionary is a nested key -> message tree, e.g. {"errors": {"network": "..."}}
type Dictionary map[string]any

// Manager holds locale state. It is safe for concurrent use.
type Manager struct {
	base      Dictionary
	locales   map[string]Dictionary
	bundled   map[string]Dictionary
	overrides map[string]map[string]string
	current   string
	supported map[string]bool

	logger  *logger.Logger
	mu      sync.RWMutex
	version atomic.Uint64
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for warnings
func WithLogger(log *logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.logger = log.WithField("component", "i18n")
		}
	}
}

// NewManager creates a manager with the embedded base dictionary
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		base:      mustLoadBundle(BaseLanguage),
		locales:   make(map[string]Dictionary),
		bundled:   make(map[string]Dictionary),
		overrides: make(map[string]map[string]string),
		current:   BaseLanguage,
		supported: map[string]bool{BaseLanguage: true},
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func mustLoadBundle(lang string) Dictionary {
	dict, err := loadBundle(lang)
	if err != nil {
		panic(err)
	}
	return dict
}

func loadBundle(lang string) (Dictionary, error) {
	data, err := bundles.ReadFile(path.Join("locales", lang+".yaml"))
	if err != nil {
		return nil, err
	}
	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
	}
	return dict, nil
}

// NormalizeLanguage canonicalizes a BCP 47 tag ("ES" -> "es", "pt_br" ->
// "pt-BR"). Unparseable input is lower-cased and trimmed.
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return strings.ToLower(lang)
	}
	return tag.String()
}

func parseLanguage(lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "", apperrors.Validation("language must be a non-empty string")
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return "", apperrors.Validationf("invalid language tag '%s'", lang)
	}
	return tag.String(), nil
}

// Translate resolves key for lang (current language when empty) and
// interpolates {{name}} placeholders. It returns the key itself when no
// dictionary has it.
func (m *Manager) Translate(key, lang string, params map[string]any) string {
	msg, ok := m.Lookup(key, lang)
	if !ok {
		msg = key
	}
	return Interpolate(msg, params)
}

// Lookup resolves key without falling back to the literal key
func (m *Manager) Lookup(key, lang string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lang = NormalizeLanguage(lang)
	if lang == "" {
		lang = m.current
	}

	if msg := m.overrides[lang][key]; msg != "" {
		return msg, true
	}
	if msg, ok := lookupPath(m.locales[lang], key); ok {
		return msg, true
	}
	if msg, ok := lookupPath(m.bundled[lang], key); ok {
		return msg, true
	}
	return lookupPath(m.base, key)
}

// lookupPath finds a flat key first, then walks the dotted path. Empty
// strings count as missing.
func lookupPath(dict Dictionary, key string) (string, bool) {
	if dict == nil || key == "" {
		return "", false
	}
	if s, ok := dict[key].(string); ok && s != "" {
		return s, true
	}

	var cur any = dict
	for _, part := range strings.Split(key, ".") {
		node, ok := asMap(cur)
		if !ok {
			return "", false
		}
		if cur, ok = node[part]; !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func asMap(v any) (map[string]any, bool) {
	switch node := v.(type) {
	case Dictionary:
		return node, true
	case map[string]any:
		return node, true
	case map[string]string:
		out := make(map[string]any, len(node))
		for k, s := range node {
			out[k] = s
		}
		return out, true
	case string:
		return nil, false
	}
	node, err := cast.ToStringMapE(v)
	return node, err == nil
}

// Interpolate replaces {{name}} with params[name]. Unknown placeholders are
// left as they are.
func Interpolate(msg string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	return placeholder.ReplaceAllStringFunc(msg, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		v, ok := params[name]
		if !ok {
			return match
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return match
		}
		return s
	})
}

// RegisterLocale sets the developer dictionary of a language, replacing a
// previous one, and merges overrides on top
func (m *Manager) RegisterLocale(lang string, dict Dictionary, overrides map[string]string) error {
	code, err := parseLanguage(lang)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.locales[code] = cloneDictionary(dict)
	m.mergeOverrides(code, overrides)
	m.supported[code] = true
	m.version.Add(1)
	return nil
}

// UnregisterLocale drops the developer dictionary and overrides of a language
func (m *Manager) UnregisterLocale(lang string) bool {
	code := NormalizeLanguage(lang)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, hadLocale := m.locales[code]
	_, hadOverrides := m.overrides[code]
	if !hadLocale && !hadOverrides {
		return false
	}
	delete(m.locales, code)
	delete(m.overrides, code)
	m.dropIfUnused(code)
	m.version.Add(1)
	return true
}

// AddOverrides merges key -> message overrides for a language
func (m *Manager) AddOverrides(lang string, overrides map[string]string) error {
	code, err := parseLanguage(lang)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.mergeOverrides(code, overrides)
	m.supported[code] = true
	m.version.Add(1)
	return nil
}

func (m *Manager) mergeOverrides(code string, overrides map[string]string) {
	if len(overrides) == 0 {
		return
	}
	target, ok := m.overrides[code]
	if !ok {
		target = make(map[string]string, len(overrides))
		m.overrides[code] = target
	}
	for key, msg := range overrides {
		if key == "" {
			continue
		}
		target[key] = msg
	}
}

// RemoveOverrides deletes override keys of a language and returns how many
// were removed
func (m *Manager) RemoveOverrides(lang string, keys []string) int {
	code := NormalizeLanguage(lang)

	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.overrides[code]
	if !ok {
		return 0
	}
	removed := 0
	for _, key := range keys {
		if _, ok := target[key]; ok {
			delete(target, key)
			removed++
		}
	}
	if len(target) == 0 {
		delete(m.overrides, code)
		m.dropIfUnused(code)
	}
	if removed > 0 {
		m.version.Add(1)
	}
	return removed
}

// Overrides returns a copy of the overrides of a language
func (m *Manager) Overrides(lang string) map[string]string {
	code := NormalizeLanguage(lang)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.overrides[code]))
	for k, v := range m.overrides[code] {
		out[k] = v
	}
	return out
}

// SetCurrentLanguage switches the default language. Unsupported languages
// are ignored with a warning.
func (m *Manager) SetCurrentLanguage(lang string) bool {
	code := NormalizeLanguage(lang)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.supported[code] {
		m.logger.Warn("language not supported, keeping current language",
			"language", lang,
			"current", m.current,
		)
		return false
	}
	if m.current != code {
		m.current = code
		m.version.Add(1)
	}
	return true
}

// CurrentLanguage returns the default language
func (m *Manager) CurrentLanguage() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SupportedLanguages returns the sorted supported language codes
func (m *Manager) SupportedLanguages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.supported))
	for code := range m.supported {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// IsSupported reports whether a language can be selected
func (m *Manager) IsSupported(lang string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.supported[NormalizeLanguage(lang)]
}

// LocaleState is what Lookup consults for one language besides the base
// dictionary
type LocaleState struct {
	Language  string            `json:"language"`
	Overrides map[string]string `json:"overrides,omitempty"`
	Locale    Dictionary        `json:"locale,omitempty"`
	Bundled   bool              `json:"bundled"`
}

// State returns a copy of the locale state of a language
func (m *Manager) State(lang string) LocaleState {
	code := NormalizeLanguage(lang)

	m.mu.RLock()
	defer m.mu.RUnlock()

	state := LocaleState{Language: code}
	if overrides, ok := m.overrides[code]; ok {
		state.Overrides = make(map[string]string, len(overrides))
		for k, v := range overrides {
			state.Overrides[k] = v
		}
	}
	if dict, ok := m.locales[code]; ok {
		state.Locale = cloneDictionary(dict)
	}
	_, state.Bundled = m.bundled[code]
	return state
}

// Version changes every time locale state is mutated
func (m *Manager) Version() uint64 {
	return m.version.Load()
}

// dropIfUnused removes a language from the supported set once nothing
// provides it. Callers hold the write lock.
func (m *Manager) dropIfUnused(code string) {
	if code == BaseLanguage {
		return
	}
	_, hasLocale := m.locales[code]
	_, hasBundle := m.bundled[code]
	_, hasOverrides := m.overrides[code]
	if hasLocale || hasBundle || hasOverrides {
		return
	}
	delete(m.supported, code)
	if m.current == code {
		m.current = BaseLanguage
	}
}

func cloneDictionary(dict Dictionary) Dictionary {
	out := make(Dictionary, len(dict))
	for k, v := range dict {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch node := v.(type) {
	case Dictionary:
		return cloneDictionary(node)
	case map[string]any:
		return map[string]any(cloneDictionary(node))
	default:
		return v
	}
}
