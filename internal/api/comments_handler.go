package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// CommentHandler handles the moderation side of comments. Public
// comment creation and listing live under the posts routes.
type CommentHandler struct {
	sel   *pressroom.Selector
	admin []func(http.Handler) http.Handler
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(sel *pressroom.Selector, admin []func(http.Handler) http.Handler) *CommentHandler {
	return &CommentHandler{sel: sel, admin: admin}
}

// Routes returns the moderation routes for comments.
func (h *CommentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.admin...)
		r.Get("/", h.ListComments)
		r.Get("/{id}", h.GetComment)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.DeleteComment)
	})

	return r
}

// GetComment retrieves a comment by ID regardless of moderation state.
func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid comment ID", http.StatusBadRequest)
		return
	}

	comment, err := h.sel.Active().GetComment(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, comment)
}

// UpdateStatusRequest is the request body for moderating a comment.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a comment between moderation states.
func (h *CommentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid comment ID", http.StatusBadRequest)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := h.sel.Active().UpdateCommentStatus(r.Context(), id, pressroom.CommentStatus(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, comment)
}

// DeleteComment removes a comment permanently.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid comment ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.sel.Active().DeleteComment(r.Context(), id)
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

// ListComments lists comments across all posts for the moderation
// queue, filterable by post and status.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := pressroom.CommentFilter{}

	if v := q.Get("post_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid post ID", http.StatusBadRequest)
			return
		}
		filter.PostID = &id
	}
	if v := q.Get("status"); v != "" {
		status := pressroom.CommentStatus(v)
		filter.Status = &status
	}

	req := parsePageRequest(r)
	page, err := h.sel.Active().ListComments(r.Context(), filter, req)
	renderPage(w, r, page, req, err)
}
