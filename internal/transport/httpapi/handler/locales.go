package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kislikjeka/chainerr/pkg/i18n"
	"github.com/kislikjeka/chainerr/pkg/logger"
)

// LocaleHandler handles language and locale HTTP requests
type LocaleHandler struct {
	i18n   *i18n.Manager
	logger *logger.Logger
}

// NewLocaleHandler creates a new locale handler
func NewLocaleHandler(manager *i18n.Manager, log *logger.Logger) *LocaleHandler {
	return &LocaleHandler{
		i18n:   manager,
		logger: log,
	}
}

// LanguagesResponse lists the language state of the service
type LanguagesResponse struct {
	Current   string   `json:"current"`
	Supported []string `json:"supported"`
	Available []string `json:"available"`
}

// ListLanguages handles GET /languages
func (h *LocaleHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, LanguagesResponse{
		Current:   h.i18n.CurrentLanguage(),
		Supported: h.i18n.SupportedLanguages(),
		Available: i18n.AvailableLanguages(),
	}, http.StatusOK)
}

// TranslateKey handles GET /i18n/translate?key=&lang=. Remaining query
// parameters are interpolated into the message.
func (h *LocaleHandler) TranslateKey(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	key := strings.TrimSpace(query.Get("key"))
	if key == "" {
		respondError(w, "key is required", http.StatusBadRequest)
		return
	}

	lang := query.Get("lang")
	if lang == "" {
		lang = h.i18n.CurrentLanguage()
	}
	lang = i18n.NormalizeLanguage(lang)

	params := make(map[string]any)
	for name, values := range query {
		if name == "key" || name == "lang" || len(values) == 0 {
			continue
		}
		params[name] = values[0]
	}

	respondJSON(w, map[string]string{
		"key":      key,
		"language": lang,
		"message":  h.i18n.Translate(key, lang, params),
	}, http.StatusOK)
}

// PutLocaleRequest represents the request body for registering a locale
type PutLocaleRequest struct {
	Translations i18n.Dictionary   `json:"translations"`
	Overrides    map[string]string `json:"overrides,omitempty"`
}

// PutLocale handles PUT /locales/{lang}
func (h *LocaleHandler) PutLocale(w http.ResponseWriter, r *http.Request) {
	var req PutLocaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lang := chi.URLParam(r, "lang")
	if err := h.i18n.RegisterLocale(lang, req.Translations, req.Overrides); err != nil {
		respondAppError(w, err)
		return
	}

	code := i18n.NormalizeLanguage(lang)
	h.logger.WithContext(r.Context()).Info("locale registered", "language", code)
	respondJSON(w, map[string]any{
		"language":  code,
		"supported": h.i18n.IsSupported(code),
	}, http.StatusOK)
}

// PatchOverrides handles PATCH /locales/{lang}/overrides. The body is a
// flat key -> message object.
func (h *LocaleHandler) PatchOverrides(w http.ResponseWriter, r *http.Request) {
	var overrides map[string]string
	if err := decodeJSON(w, r, &overrides); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lang := chi.URLParam(r, "lang")
	if err := h.i18n.AddOverrides(lang, overrides); err != nil {
		respondAppError(w, err)
		return
	}

	code := i18n.NormalizeLanguage(lang)
	respondJSON(w, map[string]any{
		"language":  code,
		"overrides": h.i18n.Overrides(code),
	}, http.StatusOK)
}

// DeleteOverrides handles DELETE /locales/{lang}/overrides?key=a&key=b
func (h *LocaleHandler) DeleteOverrides(w http.ResponseWriter, r *http.Request) {
	keys := r.URL.Query()["key"]
	if len(keys) == 0 {
		respondError(w, "at least one key is required", http.StatusBadRequest)
		return
	}

	code := i18n.NormalizeLanguage(chi.URLParam(r, "lang"))
	removed := h.i18n.RemoveOverrides(code, keys)

	respondJSON(w, map[string]any{
		"language": code,
		"removed":  removed,
	}, http.StatusOK)
}
