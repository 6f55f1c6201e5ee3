package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kislikjeka/chainerr/pkg/chain"
	apperrors "github.com/kislikjeka/chainerr/pkg/errors"
	"github.com/kislikjeka/chainerr/pkg/logger"
)

// CustomChainService defines the interface for custom chain operations
type CustomChainService interface {
	RegisterCustomChain(cfg chain.CustomChainConfig) error
	UnregisterCustomChain(chainID string) bool
	GetCustomChain(chainID string) (*chain.CustomChainConfig, bool)
	GetAllCustomChains() []chain.CustomChainConfig
	ClearCustomChains()
}

// CustomChainHandler handles custom chain HTTP requests
type CustomChainHandler struct {
	service CustomChainService
	logger  *logger.Logger
}

// NewCustomChainHandler creates a new custom chain handler
func NewCustomChainHandler(service CustomChainService, log *logger.Logger) *CustomChainHandler {
	return &CustomChainHandler{
		service: service,
		logger:  log,
	}
}

// ListCustomChains handles GET /custom-chains
func (h *CustomChainHandler) ListCustomChains(w http.ResponseWriter, r *http.Request) {
	chains := h.service.GetAllCustomChains()
	respondJSON(w, map[string]any{
		"chains": chains,
		"total":  len(chains),
	}, http.StatusOK)
}

// GetCustomChain handles GET /custom-chains/{id}
func (h *CustomChainHandler) GetCustomChain(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.service.GetCustomChain(chi.URLParam(r, "id"))
	if !ok {
		respondAppError(w, apperrors.NotFound("custom chain"))
		return
	}
	respondJSON(w, cfg, http.StatusOK)
}

// CreateCustomChain handles POST /custom-chains
func (h *CustomChainHandler) CreateCustomChain(w http.ResponseWriter, r *http.Request) {
	var cfg chain.CustomChainConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.RegisterCustomChain(cfg); err != nil {
		h.logger.WithContext(r.Context()).Warn("custom chain rejected",
			"chain_id", cfg.ChainID,
			"error", err.Error(),
		)
		respondAppError(w, err)
		return
	}

	stored, ok := h.service.GetCustomChain(cfg.ChainID)
	if !ok {
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, stored, http.StatusCreated)
}

// DeleteCustomChain handles DELETE /custom-chains/{id}
func (h *CustomChainHandler) DeleteCustomChain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.service.UnregisterCustomChain(id) {
		respondAppError(w, apperrors.NotFound("custom chain"))
		return
	}

	h.logger.WithContext(r.Context()).Info("custom chain unregistered", "chain_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ClearCustomChains handles DELETE /custom-chains
func (h *CustomChainHandler) ClearCustomChains(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCustomChains()

	h.logger.WithContext(r.Context()).Info("custom chains cleared")
	w.WriteHeader(http.StatusNoContent)
}
