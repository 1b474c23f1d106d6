package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

type errResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondError maps domain errors to HTTP status codes.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *pressroom.ValidationError
	switch {
	case errors.As(err, &ve):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: ve.Reason, Field: ve.Field})
	case errors.Is(err, pressroom.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errResponse{Error: "not found"})
	case errors.Is(err, pressroom.ErrStoreUnavailable):
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errResponse{Error: "storage temporarily unavailable"})
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errResponse{Error: err.Error()})
	}
}

type pagedResponse[T any] struct {
	Data       []T  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	Degraded   bool `json:"degraded,omitempty"`
}

// renderPage writes a listing result. A store-unavailable failure
// degrades to an empty page with the degraded marker set, so read
// surfaces stay up while the durable store flaps mid-request.
func renderPage[T any](w http.ResponseWriter, r *http.Request, page *pressroom.Page[T], req pressroom.PageRequest, err error) {
	if err != nil {
		if errors.Is(err, pressroom.ErrStoreUnavailable) {
			render.JSON(w, r, pagedResponse[T]{
				Data:     []T{},
				Page:     req.Normalize().Page,
				Degraded: true,
			})
			return
		}
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, pagedResponse[T]{
		Data:       page.Data,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

// parsePageRequest reads pagination query parameters. Unknown sort
// columns are rejected by the adapters, which fall back to creation
// time.
func parsePageRequest(r *http.Request) pressroom.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return pressroom.PageRequest{
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sort_by"),
		SortOrder: pressroom.SortOrder(q.Get("order")),
	}
}
