package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// PostHandler handles HTTP requests for posts, their comments and
// their SEO metadata.
type PostHandler struct {
	sel   *pressroom.Selector
	admin []func(http.Handler) http.Handler
}

// NewPostHandler creates a new post handler.
func NewPostHandler(sel *pressroom.Selector, admin []func(http.Handler) http.Handler) *PostHandler {
	return &PostHandler{sel: sel, admin: admin}
}

// Routes returns the routes for posts.
func (h *PostHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPosts)
	r.Get("/search", h.SearchPosts)
	r.Get("/{id}", h.GetPost)
	r.Get("/slug/{slug}", h.GetPostBySlug)
	r.Post("/{id}/views", h.IncrementViews)
	r.Get("/{id}/seo", h.GetSeoMeta)
	r.Get("/{id}/comments", h.ListComments)
	r.Post("/{id}/comments", h.CreateComment)

	r.Group(func(r chi.Router) {
		r.Use(h.admin...)
		r.Post("/", h.CreatePost)
		r.Put("/{id}", h.UpdatePost)
		r.Delete("/{id}", h.DeletePost)
		r.Put("/{id}/seo", h.SetSeoMeta)
	})

	return r
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	CategoryID *uuid.UUID `json:"category_id"`
	AuthorID   uuid.UUID  `json:"author_id"`
	Tags       []string   `json:"tags"`
}

// CreatePost creates a new post.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	post := &pressroom.Post{
		Title:      req.Title,
		Slug:       req.Slug,
		Body:       req.Body,
		Status:     pressroom.PostStatus(req.Status),
		CategoryID: req.CategoryID,
		AuthorID:   req.AuthorID,
		Tags:       req.Tags,
	}
	if err := h.sel.Active().CreatePost(r.Context(), post); err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// GetPost retrieves a post by ID.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := h.sel.Active().GetPost(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// GetPostBySlug retrieves a post by its URL slug.
func (h *PostHandler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.sel.Active().GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// UpdatePostRequest is the request body for a partial post update.
// Absent fields are left untouched.
type UpdatePostRequest struct {
	Title      *string    `json:"title"`
	Slug       *string    `json:"slug"`
	Body       *string    `json:"body"`
	Status     *string    `json:"status"`
	CategoryID *uuid.UUID `json:"category_id"`
	Tags       *[]string  `json:"tags"`
}

// UpdatePost applies a partial update to a post.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	upd := pressroom.PostUpdate{
		Title:      req.Title,
		Slug:       req.Slug,
		Body:       req.Body,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	}
	if req.Status != nil {
		status := pressroom.PostStatus(*req.Status)
		upd.Status = &status
	}

	post, err := h.sel.Active().UpdatePost(r.Context(), id, upd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// DeletePost soft-deletes a post.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.sel.Active().DeletePost(r.Context(), id)
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

// ListPosts lists posts. Public callers see published posts unless a
// status filter says otherwise.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := pressroom.PostFilter{}

	status := pressroom.PostStatusPublished
	if v := q.Get("status"); v != "" {
		status = pressroom.PostStatus(v)
	}
	filter.Status = &status

	if v := q.Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid category ID", http.StatusBadRequest)
			return
		}
		filter.CategoryID = &id
	}
	if v := q.Get("author_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid author ID", http.StatusBadRequest)
			return
		}
		filter.AuthorID = &id
	}
	if v := q.Get("tag"); v != "" {
		filter.Tag = &v
	}

	req := parsePageRequest(r)
	page, err := h.sel.Active().ListPosts(r.Context(), filter, req)
	renderPage(w, r, page, req, err)
}

// SearchPosts searches post titles and bodies, case-insensitively.
// Like ListPosts, the public view covers published posts unless a
// status filter says otherwise.
func (h *PostHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}

	status := pressroom.PostStatusPublished
	if v := q.Get("status"); v != "" {
		status = pressroom.PostStatus(v)
	}
	filter := pressroom.PostFilter{Status: &status}

	req := parsePageRequest(r)
	page, err := h.sel.Active().SearchPosts(r.Context(), query, filter, req)
	renderPage(w, r, page, req, err)
}

// IncrementViews bumps the view counter for a post.
func (h *PostHandler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.sel.Active().IncrementPostViews(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSeoMetaRequest is the request body for post SEO metadata.
type SetSeoMetaRequest struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	CanonicalURL    string `json:"canonical_url"`
}

// SetSeoMeta upserts the SEO metadata attached to a post.
func (h *PostHandler) SetSeoMeta(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	var req SetSeoMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	meta := &pressroom.SeoMeta{
		PostID:          id,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		CanonicalURL:    req.CanonicalURL,
	}
	if err := h.sel.Active().SetSeoMeta(r.Context(), meta); err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, meta)
}

// GetSeoMeta retrieves the SEO metadata attached to a post.
func (h *PostHandler) GetSeoMeta(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	meta, err := h.sel.Active().GetSeoMeta(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, meta)
}

// CreateCommentRequest is the request body for leaving a comment.
// Anonymous commenters supply a name and email; registered users pass
// their user ID instead.
type CreateCommentRequest struct {
	UserID      *uuid.UUID `json:"user_id"`
	AuthorName  string     `json:"author_name"`
	AuthorEmail string     `json:"author_email"`
	Body        string     `json:"body"`
}

// CreateComment leaves a comment on a post. New comments start in the
// pending state and only appear publicly after moderation.
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment := &pressroom.Comment{
		PostID:      postID,
		UserID:      req.UserID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Body:        req.Body,
	}
	if err := h.sel.Active().CreateComment(r.Context(), comment); err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}

// ListComments lists the approved comments on a post.
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	approved := pressroom.CommentStatusApproved
	filter := pressroom.CommentFilter{PostID: &postID, Status: &approved}

	req := parsePageRequest(r)
	page, err := h.sel.Active().ListComments(r.Context(), filter, req)
	renderPage(w, r, page, req, err)
}
