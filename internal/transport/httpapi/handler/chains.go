package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kislikjeka/chainerr/pkg/adapter"
	"github.com/kislikjeka/chainerr/pkg/chain"
	apperrors "github.com/kislikjeka/chainerr/pkg/errors"
)

// ChainHandler serves the built-in chain table and registered ecosystems
type ChainHandler struct {
	chains   *chain.Builtin
	adapters *adapter.Registry
}

// NewChainHandler creates a new chain handler
func NewChainHandler(chains *chain.Builtin, adapters *adapter.Registry) *ChainHandler {
	return &ChainHandler{
		chains:   chains,
		adapters: adapters,
	}
}

// ChainListResponse represents the chain list response
type ChainListResponse struct {
	Chains []chain.ChainConfig `json:"chains"`
	Total  int                 `json:"total"`
}

// ListChains handles GET /chains, optionally filtered by ?ecosystem=
func (h *ChainHandler) ListChains(w http.ResponseWriter, r *http.Request) {
	ecosystem := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("ecosystem")))

	chains := make([]chain.ChainConfig, 0)
	for _, c := range h.chains.All() {
		if ecosystem != "" && c.Ecosystem != ecosystem {
			continue
		}
		chains = append(chains, c)
	}

	respondJSON(w, ChainListResponse{Chains: chains, Total: len(chains)}, http.StatusOK)
}

// GetChain handles GET /chains/{id}
func (h *ChainHandler) GetChain(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.chains.ChainConfig(chi.URLParam(r, "id"))
	if !ok {
		respondAppError(w, apperrors.NotFound("chain"))
		return
	}
	respondJSON(w, cfg, http.StatusOK)
}

// ListEcosystems handles GET /ecosystems
func (h *ChainHandler) ListEcosystems(w http.ResponseWriter, r *http.Request) {
	ecosystems := h.adapters.Ecosystems()
	respondJSON(w, map[string]any{
		"ecosystems": ecosystems,
		"total":      len(ecosystems),
	}, http.StatusOK)
}
