// Package api exposes the content marketplace over HTTP. Handlers are
// thin: they decode requests, call the active store through the
// selector, and translate domain errors to status codes.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// Options configures the HTTP server.
type Options struct {
	Selector *pressroom.Selector
	Blobs    pressroom.BlobStore
	Logger   *slog.Logger

	// JWTSecret signs admin tokens (HS256). BypassAuth disables the
	// check entirely; callers only set it outside production.
	JWTSecret  string
	BypassAuth bool
}

// Server wires the route handlers together.
type Server struct {
	sel       *pressroom.Selector
	blobs     pressroom.BlobStore
	logger    *slog.Logger
	tokenAuth *jwtauth.JWTAuth
	bypass    bool
}

// NewServer creates the HTTP server wrapper.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		sel:    opts.Selector,
		blobs:  opts.Blobs,
		logger: logger,
		bypass: opts.BypassAuth,
	}
	if opts.JWTSecret != "" {
		s.tokenAuth = jwtauth.New("HS256", []byte(opts.JWTSecret), nil)
	}
	if s.tokenAuth == nil && !s.bypass {
		logger.Warn("no JWT secret configured and auth bypass not enabled; admin routes are unprotected")
	}
	return s
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(StorageRefresh(s.sel, s.logger))

	r.Get("/healthz", s.handleHealth)

	admin := s.adminMiddlewares()
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/posts", NewPostHandler(s.sel, admin).Routes())
		r.Mount("/assets", NewAssetHandler(s.sel, s.blobs, s.logger, admin).Routes())
		r.Mount("/categories", NewCategoryHandler(s.sel, admin).Routes())
		r.Mount("/comments", NewCommentHandler(s.sel, admin).Routes())
		r.Mount("/users", NewUserHandler(s.sel, admin).Routes())
	})

	return r
}

// adminMiddlewares returns the middleware chain guarding admin routes.
// With auth bypassed (development) the chain is empty.
func (s *Server) adminMiddlewares() []func(http.Handler) http.Handler {
	if s.bypass || s.tokenAuth == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{
		jwtauth.Verifier(s.tokenAuth),
		jwtauth.Authenticator,
		requireRole(pressroom.RoleAdmin, pressroom.RoleEditor),
	}
}

// handleHealth reports which storage mode is active. Operators watch
// canPersist: false means writes land in the volatile store only.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.sel.Status())
}
