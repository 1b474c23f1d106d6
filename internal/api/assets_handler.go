package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// AssetHandler handles HTTP requests for downloadable assets, their
// files and their reviews.
type AssetHandler struct {
	sel    *pressroom.Selector
	blobs  pressroom.BlobStore
	logger *slog.Logger
	admin  []func(http.Handler) http.Handler
}

// NewAssetHandler creates a new asset handler.
func NewAssetHandler(sel *pressroom.Selector, blobs pressroom.BlobStore, logger *slog.Logger, admin []func(http.Handler) http.Handler) *AssetHandler {
	return &AssetHandler{sel: sel, blobs: blobs, logger: logger, admin: admin}
}

// Routes returns the routes for assets.
func (h *AssetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListAssets)
	r.Get("/search", h.SearchAssets)
	r.Get("/{id}", h.GetAsset)
	r.Get("/{id}/download", h.Download)
	r.Get("/{id}/reviews", h.ListReviews)
	r.Post("/{id}/reviews", h.CreateReview)

	r.Group(func(r chi.Router) {
		r.Use(h.admin...)
		r.Post("/", h.CreateAsset)
		r.Put("/{id}", h.UpdateAsset)
		r.Delete("/{id}", h.DeleteAsset)
		r.Post("/{id}/file", h.UploadFile)
	})

	return r
}

// CreateAssetRequest is the request body for creating an asset.
type CreateAssetRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
}

// CreateAsset creates an asset listing. The file itself is attached
// separately via UploadFile.
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	asset := &pressroom.Asset{
		Title:       req.Title,
		Description: req.Description,
		Platform:    req.Platform,
	}
	if err := h.sel.Active().CreateAsset(r.Context(), asset); err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, asset)
}

// GetAsset retrieves an asset by ID.
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	asset, err := h.sel.Active().GetAsset(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, asset)
}

// UpdateAssetRequest is the request body for a partial asset update.
type UpdateAssetRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Platform    *string `json:"platform"`
}

// UpdateAsset applies a partial update to an asset.
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	var req UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := h.sel.Active().UpdateAsset(r.Context(), id, pressroom.AssetUpdate{
		Title:       req.Title,
		Description: req.Description,
		Platform:    req.Platform,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, asset)
}

// DeleteAsset soft-deletes an asset and removes its file.
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	asset, err := h.sel.Active().GetAsset(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	deleted, err := h.sel.Active().DeleteAsset(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !deleted {
		respondError(w, r, pressroom.ErrNotFound)
		return
	}

	// Blob cleanup is best-effort; the listing is already gone.
	if asset.FileKey != "" {
		if err := h.blobs.Delete(r.Context(), asset.FileKey); err != nil {
			h.logger.Warn("delete asset blob", "key", asset.FileKey, "err", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAssets lists assets, optionally filtered by platform.
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	filter := pressroom.AssetFilter{}
	if v := r.URL.Query().Get("platform"); v != "" {
		filter.Platform = &v
	}

	req := parsePageRequest(r)
	page, err := h.sel.Active().ListAssets(r.Context(), filter, req)
	renderPage(w, r, page, req, err)
}

// SearchAssets searches asset titles and descriptions.
func (h *AssetHandler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}

	req := parsePageRequest(r)
	page, err := h.sel.Active().SearchAssets(r.Context(), query, req)
	renderPage(w, r, page, req, err)
}

// UploadFile stores the asset's binary payload and records its key and
// size on the listing.
func (h *AssetHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	if _, err := h.sel.Active().GetAsset(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	key := fmt.Sprintf("assets/%s/%s", id, path.Base(sanitizeFilename(fileNameFromRequest(r))))
	contentType := r.Header.Get("Content-Type")

	// Count the bytes as they stream through to the blob store.
	counter := &countingReader{r: r.Body}
	if err := h.blobs.Upload(r.Context(), key, counter, contentType); err != nil {
		respondError(w, r, err)
		return
	}

	asset, err := h.sel.Active().UpdateAsset(r.Context(), id, pressroom.AssetUpdate{
		FileKey:  &key,
		FileSize: &counter.n,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, asset)
}

// Download hands out the asset file and bumps the download counter.
// S3-backed deployments redirect to a presigned URL; other backends
// stream the blob through the server.
func (h *AssetHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	asset, err := h.sel.Active().GetAsset(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if asset.FileKey == "" {
		respondError(w, r, pressroom.ErrNotFound)
		return
	}

	filename := path.Base(asset.FileKey)
	if url, err := h.blobs.PresignDownload(r.Context(), asset.FileKey, filename); err == nil {
		h.countDownload(r, id)
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	body, err := h.blobs.Download(r.Context(), asset.FileKey)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer body.Close()

	contentType := "application/octet-stream"
	if meta, err := h.blobs.Meta(r.Context(), asset.FileKey); err == nil && meta.ContentType != "" {
		contentType = meta.ContentType
	}

	h.countDownload(r, id)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("stream asset download", "asset_id", id, "err", err)
	}
}

// countDownload increments the download counter. Counting must not
// break the download itself, so failures are only logged.
func (h *AssetHandler) countDownload(r *http.Request, id uuid.UUID) {
	if err := h.sel.Active().IncrementAssetDownloads(r.Context(), id); err != nil {
		h.logger.Warn("count asset download", "asset_id", id, "err", err)
	}
}

// CreateReviewRequest is the request body for reviewing an asset.
type CreateReviewRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Score  int       `json:"score"`
	Body   string    `json:"body"`
}

// CreateReview adds a review and recomputes the asset's rating
// aggregate.
func (h *AssetHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	review := &pressroom.Review{
		AssetID: assetID,
		UserID:  req.UserID,
		Score:   req.Score,
		Body:    req.Body,
	}
	if err := h.sel.Active().AddReview(r.Context(), review); err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, review)
}

// ListReviews lists the reviews attached to an asset.
func (h *AssetHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	assetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	req := parsePageRequest(r)
	page, err := h.sel.Active().ListReviews(r.Context(), assetID, req)
	renderPage(w, r, page, req, err)
}

// fileNameFromRequest picks the upload filename from the query, falling
// back to a generic name.
func fileNameFromRequest(r *http.Request) string {
	if name := r.URL.Query().Get("filename"); name != "" {
		return name
	}
	return "file.bin"
}

var diacritics = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "ö", "o", "õ", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
	"Á", "A", "À", "A", "Â", "A", "Ä", "A", "Ã", "A", "Å", "A",
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"Í", "I", "Ì", "I", "Î", "I", "Ï", "I",
	"Ó", "O", "Ò", "O", "Ô", "O", "Ö", "O", "Õ", "O",
	"Ú", "U", "Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C", "Ñ", "N",
)

// sanitizeFilename reduces an upload filename to printable ASCII so the
// blob key survives every backend. Common Latin diacritics map to their
// base letter; anything else non-ASCII becomes a dash.
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range diacritics.Replace(name) {
		if r < 128 && unicode.IsPrint(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return b.String()
}

// countingReader counts bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
