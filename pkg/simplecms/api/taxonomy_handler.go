package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// TaxonomyHandler handles category and tag management for the authenticated
// user.
type TaxonomyHandler struct {
	service simplecms.Service
}

// NewTaxonomyHandler creates a new taxonomy handler
func NewTaxonomyHandler(service simplecms.Service) *TaxonomyHandler {
	return &TaxonomyHandler{service: service}
}

// Routes returns the routes for categories and tags
func (h *TaxonomyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/categories", func(r chi.Router) {
		r.Post("/", h.CreateCategory)
		r.Get("/", h.ListCategories)
		r.Get("/{id}", h.GetCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})
	r.Route("/tags", func(r chi.Router) {
		r.Post("/", h.CreateTag)
		r.Get("/", h.ListTags)
		r.Get("/{id}", h.GetTag)
		r.Put("/{id}", h.UpdateTag)
		r.Delete("/{id}", h.DeleteTag)
	})

	return r
}

// CategoryBody is the request body for creating or updating a category.
type CategoryBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TagBody is the request body for creating or updating a tag.
type TagBody struct {
	Name string `json:"name"`
}

func (h *TaxonomyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var body CategoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), simplecms.CreateCategoryRequest{
		UserID:      userID,
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, category)
}

func (h *TaxonomyHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}
	category, err := h.service.GetCategory(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, category)
}

func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	categories, err := h.service.ListCategories(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, categories)
}

func (h *TaxonomyHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}

	var body CategoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.service.UpdateCategory(r.Context(), simplecms.UpdateCategoryRequest{
		UserID:      userID,
		CategoryID:  id,
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *TaxonomyHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *TaxonomyHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var body TagBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tag, err := h.service.CreateTag(r.Context(), simplecms.CreateTagRequest{
		UserID: userID,
		Name:   body.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, tag)
}

func (h *TaxonomyHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}
	tag, err := h.service.GetTag(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, tag)
}

func (h *TaxonomyHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	tags, err := h.service.ListTags(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, tags)
}

func (h *TaxonomyHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}

	var body TagBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.service.UpdateTag(r.Context(), simplecms.UpdateTagRequest{
		UserID: userID,
		TagID:  id,
		Name:   body.Name,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *TaxonomyHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.scopedID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTag(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (h *TaxonomyHandler) scopedID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := UserID(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
