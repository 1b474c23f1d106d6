package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

func (s *Store) CreateCategory(ctx context.Context, category *pressroom.Category) error {
	if err := pressroom.ValidateNewCategory(category); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == category.Name {
			return &pressroom.ValidationError{Field: "name", Reason: "already exists"}
		}
		if existing.Slug == category.Slug {
			return &pressroom.ValidationError{Field: "slug", Reason: "already exists"}
		}
	}
	if category.ParentID != nil {
		if _, ok := s.categories[*category.ParentID]; !ok {
			return &pressroom.ValidationError{Field: "parent_id", Reason: "parent does not exist"}
		}
	}

	now := time.Now()
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = now
	category.UpdatedAt = now

	s.categories[category.ID] = cloneCategory(category)
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*pressroom.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, pressroom.ErrNotFound
	}
	return cloneCategory(category), nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*pressroom.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, category := range s.categories {
		if category.Slug == slug {
			return cloneCategory(category), nil
		}
	}
	return nil, pressroom.ErrNotFound
}

func (s *Store) UpdateCategory(ctx context.Context, id uuid.UUID, upd pressroom.CategoryUpdate) (*pressroom.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, pressroom.ErrNotFound
	}

	if upd.Name != nil && *upd.Name != category.Name {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, &pressroom.ValidationError{Field: "name", Reason: "required"}
		}
		for _, existing := range s.categories {
			if existing.ID != id && existing.Name == *upd.Name {
				return nil, &pressroom.ValidationError{Field: "name", Reason: "already exists"}
			}
		}
	}
	if upd.Slug != nil && *upd.Slug != category.Slug {
		if !pressroom.ValidSlug(*upd.Slug) {
			return nil, &pressroom.ValidationError{Field: "slug", Reason: "must be a URL-safe slug"}
		}
		for _, existing := range s.categories {
			if existing.ID != id && existing.Slug == *upd.Slug {
				return nil, &pressroom.ValidationError{Field: "slug", Reason: "already exists"}
			}
		}
	}
	if upd.ParentID != nil && *upd.ParentID != uuid.Nil {
		parent, ok := s.categories[*upd.ParentID]
		if !ok {
			return nil, &pressroom.ValidationError{Field: "parent_id", Reason: "parent does not exist"}
		}
		if s.wouldCycle(id, parent) {
			return nil, &pressroom.ValidationError{Field: "parent_id", Reason: "would create a cycle"}
		}
	}

	if upd.Name != nil {
		category.Name = *upd.Name
	}
	if upd.Slug != nil {
		category.Slug = *upd.Slug
	}
	if upd.ParentID != nil {
		if *upd.ParentID == uuid.Nil {
			category.ParentID = nil
		} else {
			pid := *upd.ParentID
			category.ParentID = &pid
		}
	}
	category.UpdatedAt = time.Now()

	return cloneCategory(category), nil
}

// wouldCycle walks the parent chain from candidate and reports whether
// it passes through id.
func (s *Store) wouldCycle(id uuid.UUID, candidate *pressroom.Category) bool {
	for cur := candidate; cur != nil; {
		if cur.ID == id {
			return true
		}
		if cur.ParentID == nil {
			return false
		}
		next, ok := s.categories[*cur.ParentID]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// DeleteCategory removes a category. Deletion is rejected while posts
// are attached or child categories point at it; callers must reassign
// first.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return false, nil
	}
	for _, post := range s.posts {
		if post.DeletedAt == nil && post.CategoryID != nil && *post.CategoryID == id {
			return false, &pressroom.ValidationError{Field: "id", Reason: "category has attached posts"}
		}
	}
	for _, child := range s.categories {
		if child.ParentID != nil && *child.ParentID == id {
			return false, &pressroom.ValidationError{Field: "id", Reason: "category has child categories"}
		}
	}
	delete(s.categories, id)
	return true, nil
}

func (s *Store) ListCategories(ctx context.Context, page pressroom.PageRequest) (*pressroom.Page[pressroom.Category], error) {
	page = page.Normalize()

	s.mu.RLock()
	result := make([]pressroom.Category, 0, len(s.categories))
	for _, category := range s.categories {
		result = append(result, *cloneCategory(category))
	}
	s.mu.RUnlock()

	var primary func(a, b pressroom.Category) int
	switch page.SortBy {
	case "name":
		primary = func(a, b pressroom.Category) int { return strings.Compare(a.Name, b.Name) }
	default: // created_at
		primary = func(a, b pressroom.Category) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	orderBy(result, primary, func(c pressroom.Category) uuid.UUID { return c.ID }, page.SortOrder)
	return paginate(result, page), nil
}

func cloneCategory(c *pressroom.Category) *pressroom.Category {
	out := *c
	if c.ParentID != nil {
		pid := *c.ParentID
		out.ParentID = &pid
	}
	return &out
}
