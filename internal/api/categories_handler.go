package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	sel   *pressroom.Selector
	admin []func(http.Handler) http.Handler
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(sel *pressroom.Selector, admin []func(http.Handler) http.Handler) *CategoryHandler {
	return &CategoryHandler{sel: sel, admin: admin}
}

// Routes returns the routes for categories.
func (h *CategoryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListCategories)
	r.Get("/{id}", h.GetCategory)
	r.Get("/slug/{slug}", h.GetCategoryBySlug)

	r.Group(func(r chi.Router) {
		r.Use(h.admin...)
		r.Post("/", h.CreateCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})

	return r
}

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// CreateCategory creates a new category.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := &pressroom.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
	}
	if err := h.sel.Active().CreateCategory(r.Context(), category); err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, category)
}

// GetCategory retrieves a category by ID.
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid category ID", http.StatusBadRequest)
		return
	}

	category, err := h.sel.Active().GetCategory(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, category)
}

// GetCategoryBySlug retrieves a category by its URL slug.
func (h *CategoryHandler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.sel.Active().GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, category)
}

// UpdateCategoryRequest is the request body for a partial category
// update.
type UpdateCategoryRequest struct {
	Name     *string    `json:"name"`
	Slug     *string    `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// UpdateCategory applies a partial update to a category. Reparenting
// that would close a cycle is rejected.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid category ID", http.StatusBadRequest)
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := h.sel.Active().UpdateCategory(r.Context(), id, pressroom.CategoryUpdate{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, category)
}

// DeleteCategory deletes a category. Categories with attached posts or
// child categories cannot be deleted.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid category ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.sel.Active().DeleteCategory(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !deleted {
		respondError(w, r, pressroom.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories lists all categories.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	req := parsePageRequest(r)
	page, err := h.sel.Active().ListCategories(r.Context(), req)
	renderPage(w, r, page, req, err)
}
