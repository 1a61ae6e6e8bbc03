package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ContentHandler handles HTTP requests for owner-scoped content operations.
// All routes expect an authenticated user on the request context.
type ContentHandler struct {
	service simplecms.Service
	logger  zerolog.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(service simplecms.Service, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{service: service, logger: logger}
}

// Routes returns the routes for owner-scoped content
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/draft", h.EnsureDraft)
	r.Get("/", h.FilterContents)
	r.Get("/{id}", h.GetContent)
	r.Put("/{id}", h.SaveContent)
	r.Post("/{id}/unpublish", h.UnpublishContent)
	r.Put("/{id}/asset-url", h.SetAssetURL)
	r.Delete("/{id}", h.DeleteContent)

	return r
}

// SaveContentBody is the request body for saving content.
type SaveContentBody struct {
	Title        string      `json:"title"`
	RichContent  string      `json:"rich_content"`
	AssetURL     string      `json:"asset_url"`
	CategoryID   *uuid.UUID  `json:"category_id,omitempty"`
	CategoryName string      `json:"category_name,omitempty"`
	TagIDs       []uuid.UUID `json:"tag_ids,omitempty"`
	TagNames     []string    `json:"tag_names,omitempty"`
}

// DraftResponse is the response body for draft creation.
type DraftResponse struct {
	ID uuid.UUID `json:"id"`
}

// EnsureDraft returns the user's open draft record, creating one if needed.
func (h *ContentHandler) EnsureDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id, err := h.service.EnsureDraft(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("ensure draft failed")
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, DraftResponse{ID: id})
}

// GetContent returns one content record owned by the caller.
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid content id", http.StatusBadRequest)
		return
	}

	content, err := h.service.GetContent(r.Context(), userID, contentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, content)
}

// SaveContent applies a full save to a content record.
func (h *ContentHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid content id", http.StatusBadRequest)
		return
	}

	var body SaveContentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	content, err := h.service.SaveContent(r.Context(), userID, contentID, simplecms.SaveContentRequest{
		Title:        body.Title,
		RichContent:  body.RichContent,
		AssetURL:     body.AssetURL,
		CategoryID:   body.CategoryID,
		CategoryName: body.CategoryName,
		TagIDs:       body.TagIDs,
		TagNames:     body.TagNames,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("content_id", contentID.String()).Msg("save content failed")
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, content)
}

// UnpublishContent withdraws a published record from public view.
func (h *ContentHandler) UnpublishContent(w http.ResponseWriter, r *http.Request) {
	h.contentAction(w, r, h.service.UnpublishContent)
}

// DeleteContent tombstones a content record.
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	h.contentAction(w, r, h.service.DeleteContent)
}

func (h *ContentHandler) contentAction(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, userID, contentID uuid.UUID) error) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid content id", http.StatusBadRequest)
		return
	}

	if err := action(r.Context(), userID, contentID); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// SetAssetURLBody is the request body for setting an asset URL directly.
type SetAssetURLBody struct {
	AssetURL string `json:"asset_url"`
}

// SetAssetURL sets the asset URL on a record owned by the caller.
func (h *ContentHandler) SetAssetURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid content id", http.StatusBadRequest)
		return
	}

	var body SetAssetURLBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SetAssetURL(r.Context(), userID, contentID, body.AssetURL); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// FilterContents lists the caller's content with filters from query params.
func (h *ContentHandler) FilterContents(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	req := simplecms.FilterContentsRequest{
		Query:    r.URL.Query().Get("query"),
		Tag:      r.URL.Query().Get("tag"),
		Category: r.URL.Query().Get("category"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := simplecms.ContentStatus(s)
		if !status.IsValid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		req.Status = &status
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

	contents, err := h.service.FilterContents(r.Context(), userID, req)
	if err != nil {
		h.logger.Error().Err(err).Msg("filter contents failed")
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, contents)
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
