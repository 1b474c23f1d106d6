package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// StorageRefresh nudges the selector before each request so the first
// request after a connectivity change runs against the right adapter.
// The call is best-effort and rate-limited inside the selector; a
// failed probe never fails the request.
func StorageRefresh(sel *pressroom.Selector, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sel.Reconcile(r.Context()); err != nil {
				logger.Debug("storage refresh", "err", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireRole authorizes a verified token whose role claim matches one
// of the allowed roles. It runs after jwtauth's Verifier/Authenticator
// pair, which already rejected missing and invalid tokens.
func requireRole(roles ...pressroom.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			role, _ := claims["role"].(string)
			for _, allowed := range roles {
				if role == string(allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
