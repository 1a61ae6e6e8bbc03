package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// PublicHandler serves the unauthenticated read surface. Callers identify
// themselves with an X-Api-Key header; the listing tolerates a missing or
// unknown key, the by-slug lookup requires a valid one.
type PublicHandler struct {
	service simplecms.Service
	logger  zerolog.Logger
}

// NewPublicHandler creates a new public content handler
func NewPublicHandler(service simplecms.Service, logger zerolog.Logger) *PublicHandler {
	return &PublicHandler{service: service, logger: logger}
}

// Routes returns the routes for public content
func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListContents)
	r.Get("/by-slug", h.GetBySlug)

	return r
}

// ListContents lists published content, optionally scoped by API key.
func (h *PublicHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	req := simplecms.PublicContentsRequest{
		Query:    r.URL.Query().Get("query"),
		Tag:      r.URL.Query().Get("tag"),
		Category: r.URL.Query().Get("category"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
		APIKey:   r.Header.Get("X-Api-Key"),
	}
	var err error
	if req.FromDate, err = queryTime(r, "from"); err != nil {
		http.Error(w, "invalid from date", http.StatusBadRequest)
		return
	}
	if req.ToDate, err = queryTime(r, "to"); err != nil {
		http.Error(w, "invalid to date", http.StatusBadRequest)
		return
	}

	contents, err := h.service.PublicContents(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("public listing failed")
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, contents)
}

// GetBySlug returns one published record by slug. The slug is passed as a
// query parameter because slugs start with a slash.
func (h *PublicHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		http.Error(w, "missing slug", http.StatusBadRequest)
		return
	}

	content, err := h.service.PublicContentBySlug(r.Context(), slug, r.Header.Get("X-Api-Key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, content)
}
