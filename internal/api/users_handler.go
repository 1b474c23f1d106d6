package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	sel   *pressroom.Selector
	admin []func(http.Handler) http.Handler
}

// NewUserHandler creates a new user handler.
func NewUserHandler(sel *pressroom.Selector, admin []func(http.Handler) http.Handler) *UserHandler {
	return &UserHandler{sel: sel, admin: admin}
}

// Routes returns the routes for users. Registration is public; account
// management requires admin access.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(h.admin...)
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})

	return r
}

// RegisterRequest is the request body for registering an account.
type RegisterRequest struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Newsletter   bool   `json:"newsletter"`
}

// Register creates a viewer account. Elevated roles are only assigned
// through the admin update route.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := &pressroom.User{
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Role:         pressroom.RoleViewer,
		Newsletter:   req.Newsletter,
	}
	if err := h.sel.Active().CreateUser(r.Context(), user); err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

// GetUser retrieves a user by ID.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.sel.Active().GetUser(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

// UpdateUserRequest is the request body for a partial user update.
type UpdateUserRequest struct {
	Email        *string `json:"email"`
	PasswordHash *string `json:"password_hash"`
	Role         *string `json:"role"`
	Newsletter   *bool   `json:"newsletter"`
}

// UpdateUser applies a partial update to a user account.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	upd := pressroom.UserUpdate{
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Newsletter:   req.Newsletter,
	}
	if req.Role != nil {
		role := pressroom.Role(*req.Role)
		upd.Role = &role
	}

	user, err := h.sel.Active().UpdateUser(r.Context(), id, upd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

// DeleteUser soft-deletes a user account.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.sel.Active().DeleteUser(r.Context(), id)
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

// ListUsers lists accounts, optionally filtered by role.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := pressroom.UserFilter{}
	if v := r.URL.Query().Get("role"); v != "" {
		role := pressroom.Role(v)
		filter.Role = &role
	}

	req := parsePageRequest(r)
	page, err := h.sel.Active().ListUsers(r.Context(), filter, req)
	renderPage(w, r, page, req, err)
}
