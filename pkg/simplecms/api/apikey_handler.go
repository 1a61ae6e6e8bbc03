package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// APIKeyHandler manages the authenticated user's API keys.
type APIKeyHandler struct {
	service simplecms.Service
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(service simplecms.Service) *APIKeyHandler {
	return &APIKeyHandler{service: service}
}

// Routes returns the routes for API keys
func (h *APIKeyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.GenerateKey)
	r.Get("/", h.ListKeys)
	r.Delete("/{id}", h.RevokeKey)

	return r
}

// GenerateKeyBody is the request body for generating an API key.
type GenerateKeyBody struct {
	Description string `json:"description,omitempty"`
}

func (h *APIKeyHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var body GenerateKeyBody
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	key, err := h.service.GenerateAPIKey(r.Context(), userID, body.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, key)
}

func (h *APIKeyHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	keys, err := h.service.ListAPIKeys(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, keys)
}

func (h *APIKeyHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid key id", http.StatusBadRequest)
		return
	}

	if err := h.service.RevokeAPIKey(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
