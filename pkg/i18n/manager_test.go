package i18n_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kislikjeka/chainerr/pkg/errors"
	"github.com/kislikjeka/chainerr/pkg/fallback"
	"github.com/kislikjeka/chainerr/pkg/i18n"
	"github.com/kislikjeka/chainerr/pkg/logger"
	"github.com/kislikjeka/chainerr/pkg/mapping"
)

func TestTranslate_FallbackChain(t *testing.T) {
	m := i18n.NewManager()

	require.NoError(t, m.RegisterLocale("es", i18n.Dictionary{
		"errors": map[string]any{"network": "Error de red"},
	}, nil))

	// es lacks errors.wallet, so the base message is used
	assert.Equal(t, fallback.Default(fallback.KeyWallet), m.Translate("errors.wallet", "es", nil))
	assert.Equal(t, "Error de red", m.Translate("errors.network", "es", nil))
	assert.Equal(t, "no.such.key", m.Translate("no.such.key", "es", nil))

	require.NoError(t, m.AddOverrides("es", map[string]string{"errors.network": "Red caída"}))
	assert.Equal(t, "Red caída", m.Translate("errors.network", "es", nil))

	assert.Equal(t, 1, m.RemoveOverrides("es", []string{"errors.network", "missing"}))
	assert.Equal(t, "Error de red", m.Translate("errors.network", "es", nil))
}

func TestRemoveOverrides_DropsUnusedLanguage(t *testing.T) {
	m := i18n.NewManager()

	require.NoError(t, m.AddOverrides("it", map[string]string{"errors.generic": "Riprova"}))
	require.True(t, m.SetCurrentLanguage("it"))
	assert.True(t, m.IsSupported("it"))

	assert.Equal(t, 1, m.RemoveOverrides("it", []string{"errors.generic"}))
	assert.False(t, m.IsSupported("it"))
	assert.Equal(t, i18n.BaseLanguage, m.CurrentLanguage())

	// a registered locale keeps the language alive
	require.NoError(t, m.RegisterLocale("it", i18n.Dictionary{"errors.generic": "Errore"}, map[string]string{"errors.generic": "Riprova"}))
	assert.Equal(t, 1, m.RemoveOverrides("it", []string{"errors.generic"}))
	assert.True(t, m.IsSupported("it"))
	assert.Equal(t, "Errore", m.Translate("errors.generic", "it", nil))
}

func TestManager_State(t *testing.T) {
	m := i18n.NewManager()

	assert.Equal(t, i18n.LocaleState{Language: "es"}, m.State("ES"))

	require.NoError(t, m.LoadLanguage("es"))
	require.NoError(t, m.AddOverrides("es", map[string]string{"errors.network": "Red caída"}))
	state := m.State("es")
	assert.True(t, state.Bundled)
	assert.Equal(t, map[string]string{"errors.network": "Red caída"}, state.Overrides)
	assert.Nil(t, state.Locale)

	// the copy is detached
	state.Overrides["errors.network"] = "changed"
	assert.Equal(t, "Red caída", m.Translate("errors.network", "es", nil))
}

func TestTranslate_EmptyValuesAreMissing(t *testing.T) {
	m := i18n.NewManager()
	require.NoError(t, m.RegisterLocale("fr", i18n.Dictionary{
		"errors": map[string]any{"generic": ""},
	}, map[string]string{"errors.network": ""}))

	assert.Equal(t, fallback.GenericMessage, m.Translate("errors.generic", "fr", nil))
	assert.Equal(t, fallback.Default(fallback.KeyNetwork), m.Translate("errors.network", "fr", nil))
}

func TestTranslate_FlatAndNestedDictionaries(t *testing.T) {
	m := i18n.NewManager()
	require.NoError(t, m.RegisterLocale("de", i18n.Dictionary{
		"errors.wallet": "Wallet-Fehler",
		"errors":        i18n.Dictionary{"contract": "Vertragsfehler"},
	}, nil))

	assert.Equal(t, "Wallet-Fehler", m.Translate("errors.wallet", "de", nil))
	assert.Equal(t, "Vertragsfehler", m.Translate("errors.contract", "de", nil))
}

func TestTranslate_Interpolation(t *testing.T) {
	m := i18n.NewManager()
	require.NoError(t, m.RegisterLocale("en", i18n.Dictionary{
		"greeting": "Chain {{chain}} failed after {{ attempts }} attempts: {{missing}}",
	}, nil))

	got := m.Translate("greeting", "", map[string]any{"chain": "polygon", "attempts": 3})
	assert.Equal(t, "Chain polygon failed after 3 attempts: {{missing}}", got)

	assert.Equal(t, "plain", i18n.Interpolate("plain", map[string]any{"x": 1}))
	assert.Equal(t, "{{x}}", i18n.Interpolate("{{x}}", nil))
}

func TestTranslate_BaseCoversCatalogKeys(t *testing.T) {
	m := i18n.NewManager()

	for _, em := range mapping.DefaultCatalog().All() {
		if em.Key == "" {
			continue
		}
		msg, ok := m.Lookup(em.Key, i18n.BaseLanguage)
		assert.True(t, ok, em.Key)
		assert.Equal(t, em.Message, msg, em.Key)
	}

	for key, msg := range fallback.Defaults() {
		got, ok := m.Lookup("errors."+key, "")
		assert.True(t, ok)
		assert.Equal(t, msg, got)
	}
}

func TestRegisterLocale_Validation(t *testing.T) {
	m := i18n.NewManager()

	err := m.RegisterLocale("", nil, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	err = m.RegisterLocale("not a language!", nil, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	err = m.AddOverrides("", map[string]string{"a": "b"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	// tags are canonicalized
	require.NoError(t, m.RegisterLocale("PT_br", i18n.Dictionary{"errors": map[string]any{"network": "Erro de rede"}}, nil))
	assert.Contains(t, m.SupportedLanguages(), "pt-BR")
	assert.Equal(t, "Erro de rede", m.Translate("errors.network", "pt-br", nil))
}

func TestRegisterLocale_CopiesInput(t *testing.T) {
	m := i18n.NewManager()
	nested := map[string]any{"network": "Error de red"}
	require.NoError(t, m.RegisterLocale("es", i18n.Dictionary{"errors": nested}, nil))

	nested["network"] = "changed"
	assert.Equal(t, "Error de red", m.Translate("errors.network", "es", nil))
}

func TestSetCurrentLanguage(t *testing.T) {
	var buf bytes.Buffer
	m := i18n.NewManager(i18n.WithLogger(logger.NewWithFormat("production", "json", &buf)))

	assert.Equal(t, i18n.BaseLanguage, m.CurrentLanguage())
	assert.False(t, m.SetCurrentLanguage("es"))
	assert.Equal(t, i18n.BaseLanguage, m.CurrentLanguage())
	assert.Contains(t, buf.String(), "language not supported")

	require.NoError(t, m.RegisterLocale("es", i18n.Dictionary{"errors": map[string]any{"network": "Error de red"}}, nil))
	before := m.Version()
	assert.True(t, m.SetCurrentLanguage("es"))
	assert.Equal(t, "es", m.CurrentLanguage())
	assert.Greater(t, m.Version(), before)
	assert.Equal(t, "Error de red", m.Translate("errors.network", "", nil))

	// dropping the only source resets the current language
	assert.True(t, m.UnregisterLocale("es"))
	assert.Equal(t, i18n.BaseLanguage, m.CurrentLanguage())
	assert.False(t, m.IsSupported("es"))
	assert.False(t, m.UnregisterLocale("es"))
}

func TestBundles(t *testing.T) {
	m := i18n.NewManager()

	available := i18n.AvailableLanguages()
	assert.Equal(t, []string{"de", "en", "es", "fr", "ja", "ko", "pt", "ru", "zh"}, available)

	require.NoError(t, m.LoadLanguage("es"))
	assert.True(t, m.IsLoaded("es"))
	assert.True(t, m.IsSupported("es"))
	assert.Equal(t, "Error de red. Comprueba tu conexión e inténtalo de nuevo.", m.Translate("errors.network", "es", nil))
	// missing in the es bundle
	assert.Equal(t, "Your wallet is locked. Please unlock it and try again.", m.Translate("mappings.wallet.locked", "es", nil))

	// a developer locale wins over the bundle
	require.NoError(t, m.RegisterLocale("es", i18n.Dictionary{"errors": map[string]any{"network": "Error de red"}}, nil))
	assert.Equal(t, "Error de red", m.Translate("errors.network", "es", nil))
	assert.True(t, m.UnregisterLocale("es"))
	assert.True(t, m.IsSupported("es"), "bundle still provides es")

	assert.True(t, m.UnloadLanguage("es"))
	assert.False(t, m.IsSupported("es"))
	assert.False(t, m.UnloadLanguage("es"))
	assert.False(t, m.UnloadLanguage("en"))

	err := m.LoadLanguage("it")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	assert.NoError(t, m.LoadLanguage("en"))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		err  any
		want string
	}{
		{"explicit field", map[string]any{"language": "es-MX", "message": "user rejected"}, "es"},
		{"locale field", map[string]any{"locale": "fr_FR"}, "fr"},
		{"chinese", "用户拒绝了请求", "zh"},
		{"japanese", "ユーザーがリクエストを拒否しました", "ja"},
		{"korean", errors.New("사용자가 요청을 거부했습니다"), "ko"},
		{"russian", "Ошибка сети", "ru"},
		{"spanish", "¿Qué pasó? Conexión rechazada", "es"},
		{"german", "Verbindung fehlgeschlagen: Überprüfen", "de"},
		{"english", "user rejected the request", "en"},
		{"digits only", "0x1234", "en"},
		{"nil", nil, ""},
		{"symbols", "!!!", ""},
		{"message field", map[string]any{"message": "Ошибка"}, "ru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, i18n.DetectLanguage(tt.err))
		})
	}
}

func TestSuggestLanguage(t *testing.T) {
	m := i18n.NewManager()

	got, ok := m.SuggestLanguage("es-MX")
	require.True(t, ok)
	assert.Equal(t, "es", got)

	got, ok = m.SuggestLanguage("pt_BR")
	require.True(t, ok)
	assert.Equal(t, "pt", got)

	_, ok = m.SuggestLanguage("!!")
	assert.False(t, ok)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := i18n.NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.AddOverrides("es", map[string]string{"errors.network": "Red"})
		}()
		go func() {
			defer wg.Done()
			_ = m.Translate("errors.network", "es", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, "Red", m.Translate("errors.network", "es", nil))
}
