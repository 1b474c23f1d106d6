package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

func (s *Store) CreateAsset(ctx context.Context, asset *pressroom.Asset) error {
	if err := pressroom.ValidateNewAsset(asset); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.CreatedAt = now
	asset.UpdatedAt = now
	asset.DownloadCount = 0
	asset.RatingAvg = 0
	asset.RatingCount = 0

	s.assets[asset.ID] = cloneAsset(asset)
	return nil
}

func (s *Store) GetAsset(ctx context.Context, id uuid.UUID) (*pressroom.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asset, ok := s.assets[id]
	if !ok || asset.DeletedAt != nil {
		return nil, pressroom.ErrNotFound
	}
	return cloneAsset(asset), nil
}

func (s *Store) UpdateAsset(ctx context.Context, id uuid.UUID, upd pressroom.AssetUpdate) (*pressroom.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[id]
	if !ok || asset.DeletedAt != nil {
		return nil, pressroom.ErrNotFound
	}

	if upd.FileSize != nil && *upd.FileSize < 0 {
		return nil, &pressroom.ValidationError{Field: "file_size", Reason: "must not be negative"}
	}
	if upd.Title != nil {
		if strings.TrimSpace(*upd.Title) == "" {
			return nil, &pressroom.ValidationError{Field: "title", Reason: "required"}
		}
		asset.Title = *upd.Title
	}
	if upd.Description != nil {
		asset.Description = *upd.Description
	}
	if upd.FileKey != nil {
		asset.FileKey = *upd.FileKey
	}
	if upd.FileSize != nil {
		asset.FileSize = *upd.FileSize
	}
	if upd.Platform != nil {
		asset.Platform = *upd.Platform
	}
	asset.UpdatedAt = time.Now()

	return cloneAsset(asset), nil
}

func (s *Store) DeleteAsset(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[id]
	if !ok || asset.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	asset.DeletedAt = &now
	asset.UpdatedAt = now
	return true, nil
}

func (s *Store) ListAssets(ctx context.Context, filter pressroom.AssetFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.Asset], error) {
	page = page.Normalize()

	s.mu.RLock()
	var result []pressroom.Asset
	for _, asset := range s.assets {
		if asset.DeletedAt != nil {
			continue
		}
		if filter.Platform != nil && asset.Platform != *filter.Platform {
			continue
		}
		result = append(result, *cloneAsset(asset))
	}
	s.mu.RUnlock()

	sortAssets(result, page)
	return paginate(result, page), nil
}

func (s *Store) SearchAssets(ctx context.Context, query string, page pressroom.PageRequest) (*pressroom.Page[pressroom.Asset], error) {
	page = page.Normalize()
	folded := pressroom.FoldForSearch(strings.TrimSpace(query))

	s.mu.RLock()
	var result []pressroom.Asset
	for _, asset := range s.assets {
		if asset.DeletedAt != nil {
			continue
		}
		if folded != "" && !matches(folded, asset.Title, asset.Description) {
			continue
		}
		result = append(result, *cloneAsset(asset))
	}
	s.mu.RUnlock()

	sortAssets(result, page)
	return paginate(result, page), nil
}

// IncrementAssetDownloads is guarded by the store mutex so concurrent
// downloads never lose an increment.
func (s *Store) IncrementAssetDownloads(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[id]
	if !ok || asset.DeletedAt != nil {
		return pressroom.ErrNotFound
	}
	asset.DownloadCount++
	return nil
}

// AddReview records a review and recomputes the asset's rating
// aggregate as the mean of all its reviews, in one critical section.
func (s *Store) AddReview(ctx context.Context, review *pressroom.Review) error {
	if err := pressroom.ValidateNewReview(review); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[review.AssetID]
	if !ok || asset.DeletedAt != nil {
		return pressroom.ErrNotFound
	}

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()

	stored := *review
	s.reviews[review.AssetID] = append(s.reviews[review.AssetID], &stored)

	var sum int
	for _, r := range s.reviews[review.AssetID] {
		sum += r.Score
	}
	asset.RatingCount = len(s.reviews[review.AssetID])
	asset.RatingAvg = float64(sum) / float64(asset.RatingCount)
	asset.UpdatedAt = review.CreatedAt
	return nil
}

func (s *Store) ListReviews(ctx context.Context, assetID uuid.UUID, page pressroom.PageRequest) (*pressroom.Page[pressroom.Review], error) {
	page = page.Normalize()

	s.mu.RLock()
	result := make([]pressroom.Review, 0, len(s.reviews[assetID]))
	for _, r := range s.reviews[assetID] {
		result = append(result, *r)
	}
	s.mu.RUnlock()

	orderBy(result,
		func(a, b pressroom.Review) int { return a.CreatedAt.Compare(b.CreatedAt) },
		func(r pressroom.Review) uuid.UUID { return r.ID },
		page.SortOrder)
	return paginate(result, page), nil
}

func sortAssets(assets []pressroom.Asset, page pressroom.PageRequest) {
	var primary func(a, b pressroom.Asset) int
	switch page.SortBy {
	case "title":
		primary = func(a, b pressroom.Asset) int { return strings.Compare(a.Title, b.Title) }
	case "download_count":
		primary = func(a, b pressroom.Asset) int {
			switch {
			case a.DownloadCount < b.DownloadCount:
				return -1
			case a.DownloadCount > b.DownloadCount:
				return 1
			}
			return 0
		}
	case "rating":
		primary = func(a, b pressroom.Asset) int {
			switch {
			case a.RatingAvg < b.RatingAvg:
				return -1
			case a.RatingAvg > b.RatingAvg:
				return 1
			}
			return 0
		}
	default: // created_at
		primary = func(a, b pressroom.Asset) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	orderBy(assets, primary, func(a pressroom.Asset) uuid.UUID { return a.ID }, page.SortOrder)
}

func cloneAsset(a *pressroom.Asset) *pressroom.Asset {
	out := *a
	if a.DeletedAt != nil {
		t := *a.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}
