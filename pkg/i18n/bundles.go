package i18n

import (
	"io/fs"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/language"

	apperrors "github.com/kislikjeka/chainerr/pkg/errors"
)

// AvailableLanguages lists the embedded language bundles, base included
func AvailableLanguages() []string {
	entries, err := fs.ReadDir(bundles, "locales")
	if err != nil {
		return []string{BaseLanguage}
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(out)
	return out
}

// LoadLanguage loads an embedded bundle and marks the language supported.
// Developer locales registered for the same language still take precedence.
func (m *Manager) LoadLanguage(lang string) error {
	code, err := parseLanguage(lang)
	if err != nil {
		return err
	}
	if code == BaseLanguage {
		return nil
	}

	dict, err := loadBundle(code)
	if err != nil {
		return apperrors.NotFound("language bundle '" + code + "'")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.bundled[code] = dict
	m.supported[code] = true
	m.version.Add(1)
	return nil
}

// UnloadLanguage drops an embedded bundle. The base language cannot be
// unloaded.
func (m *Manager) UnloadLanguage(lang string) bool {
	code := NormalizeLanguage(lang)
	if code == BaseLanguage {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bundled[code]; !ok {
		return false
	}
	delete(m.bundled, code)
	m.dropIfUnused(code)
	m.version.Add(1)
	return true
}

// IsLoaded reports whether a bundle is loaded for a language
func (m *Manager) IsLoaded(lang string) bool {
	code := NormalizeLanguage(lang)
	if code == BaseLanguage {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.bundled[code]
	return ok
}

// DetectLanguage guesses the language of an error. An explicit language,
// locale or lang field wins; otherwise the script and letters of the
// message decide. It returns "" when nothing can be inferred.
func DetectLanguage(err any) string {
	var text string
	switch v := err.(type) {
	case nil:
		return ""
	case string:
		text = v
	case error:
		text = v.Error()
	default:
		fields, e := cast.ToStringMapE(err)
		if e != nil {
			return ""
		}
		for _, key := range []string{"language", "locale", "lang"} {
			if code := baseLanguage(cast.ToString(fields[key])); code != "" {
				return code
			}
		}
		text = cast.ToString(fields["message"])
	}
	return detectScript(text)
}

func baseLanguage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

var latinHints = []struct {
	lang  string
	runes string
}{
	{"es", "ñ¿¡"},
	{"pt", "ãõ"},
	{"de", "ßäöü"},
	{"fr", "èêàùœëî"},
}

func detectScript(text string) string {
	var han, kana, hangul, cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			kana++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	switch {
	case kana > 0:
		return "ja"
	case hangul > 0:
		return "ko"
	case han > 0:
		return "zh"
	case cyrillic > 0:
		return "ru"
	case latin == 0:
		return ""
	}

	lower := strings.ToLower(text)
	for _, hint := range latinHints {
		if strings.ContainsAny(lower, hint.runes) {
			return hint.lang
		}
	}
	return BaseLanguage
}

// SuggestLanguage returns the closest supported or embedded language for a
// code, e.g. "es-MX" -> "es"
func (m *Manager) SuggestLanguage(lang string) (string, bool) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
	if err != nil {
		return "", false
	}

	candidates := m.SupportedLanguages()
	seen := make(map[string]bool, len(candidates))
	for _, code := range candidates {
		seen[code] = true
	}
	for _, code := range AvailableLanguages() {
		if !seen[code] {
			candidates = append(candidates, code)
		}
	}

	tags := make([]language.Tag, 0, len(candidates))
	codes := make([]string, 0, len(candidates))
	for _, code := range candidates {
		t, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, t)
		codes = append(codes, code)
	}
	if len(tags) == 0 {
		return "", false
	}

	_, index, confidence := language.NewMatcher(tags).Match(tag)
	if confidence == language.No {
		return "", false
	}
	return codes[index], true
}
