package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kislikjeka/chainerr/pkg/logger"
	"github.com/kislikjeka/chainerr/pkg/translator"
)

// TranslateService defines the interface for error translation
type TranslateService interface {
	TranslateError(ctx context.Context, err any, opts translator.Options) translator.Result
	TranslateErrorDetailed(ctx context.Context, err any, opts translator.Options) translator.DetailedResult
}

// TranslateHandler handles translation HTTP requests
type TranslateHandler struct {
	service TranslateService
	logger  *logger.Logger
}

// NewTranslateHandler creates a new translate handler
func NewTranslateHandler(service TranslateService, log *logger.Logger) *TranslateHandler {
	return &TranslateHandler{
		service: service,
		logger:  log,
	}
}

// TranslateRequest represents the request body for translation. Error may
// be any JSON value, null included.
type TranslateRequest struct {
	Error   json.RawMessage    `json:"error"`
	Options translator.Options `json:"options"`
}

// Translate handles POST /translate. Pass ?detailed=false for the short
// result shape.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Error) == 0 {
		respondError(w, "error is required", http.StatusBadRequest)
		return
	}

	var value any
	if err := json.Unmarshal(req.Error, &value); err != nil {
		respondError(w, "error must be valid JSON", http.StatusBadRequest)
		return
	}

	detailed := true
	if raw := r.URL.Query().Get("detailed"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, "detailed must be a boolean", http.StatusBadRequest)
			return
		}
		detailed = parsed
	}

	if !detailed {
		respondJSON(w, h.service.TranslateError(r.Context(), value, req.Options), http.StatusOK)
		return
	}

	result := h.service.TranslateErrorDetailed(r.Context(), value, req.Options)
	h.logger.WithContext(r.Context()).Debug("error translated",
		"chain", result.Chain,
		"ecosystem", result.Ecosystem,
		"source", result.Source,
		"translated", result.Translated,
	)
	respondJSON(w, result, http.StatusOK)
}
