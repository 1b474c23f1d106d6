package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

func (s *Store) CreatePost(ctx context.Context, post *pressroom.Post) error {
	if err := pressroom.ValidateNewPost(post); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.postSlugs[post.Slug]; taken {
		return &pressroom.ValidationError{Field: "slug", Reason: "already exists"}
	}
	if post.CategoryID != nil {
		if _, ok := s.categories[*post.CategoryID]; !ok {
			return &pressroom.ValidationError{Field: "category_id", Reason: "category does not exist"}
		}
	}

	now := time.Now()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.Status == "" {
		post.Status = pressroom.PostStatusDraft
	}
	post.CreatedAt = now
	post.UpdatedAt = now
	post.ViewCount = 0

	stored := clonePost(post)
	s.posts[post.ID] = stored
	s.postSlugs[post.Slug] = post.ID
	return nil
}

func (s *Store) GetPost(ctx context.Context, id uuid.UUID) (*pressroom.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok || post.DeletedAt != nil {
		return nil, pressroom.ErrNotFound
	}
	return clonePost(post), nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*pressroom.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.postSlugs[slug]
	if !ok {
		return nil, pressroom.ErrNotFound
	}
	post, ok := s.posts[id]
	if !ok || post.DeletedAt != nil {
		return nil, pressroom.ErrNotFound
	}
	return clonePost(post), nil
}

func (s *Store) UpdatePost(ctx context.Context, id uuid.UUID, upd pressroom.PostUpdate) (*pressroom.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok || post.DeletedAt != nil {
		return nil, pressroom.ErrNotFound
	}

	if upd.Slug != nil && *upd.Slug != post.Slug {
		if !pressroom.ValidSlug(*upd.Slug) {
			return nil, &pressroom.ValidationError{Field: "slug", Reason: "must be a URL-safe slug"}
		}
		if _, taken := s.postSlugs[*upd.Slug]; taken {
			return nil, &pressroom.ValidationError{Field: "slug", Reason: "already exists"}
		}
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, &pressroom.ValidationError{Field: "status", Reason: "unknown status"}
		}
		if !post.Status.CanTransition(*upd.Status) {
			return nil, &pressroom.ValidationError{
				Field:  "status",
				Reason: string(post.Status) + " cannot transition to " + string(*upd.Status),
			}
		}
	}
	if upd.CategoryID != nil && *upd.CategoryID != uuid.Nil {
		if _, ok := s.categories[*upd.CategoryID]; !ok {
			return nil, &pressroom.ValidationError{Field: "category_id", Reason: "category does not exist"}
		}
	}

	if upd.Title != nil {
		post.Title = *upd.Title
	}
	if upd.Slug != nil && *upd.Slug != post.Slug {
		delete(s.postSlugs, post.Slug)
		post.Slug = *upd.Slug
		s.postSlugs[post.Slug] = post.ID
	}
	if upd.Body != nil {
		post.Body = *upd.Body
	}
	if upd.Status != nil {
		post.Status = *upd.Status
	}
	if upd.CategoryID != nil {
		if *upd.CategoryID == uuid.Nil {
			post.CategoryID = nil
		} else {
			cid := *upd.CategoryID
			post.CategoryID = &cid
		}
	}
	if upd.Tags != nil {
		post.Tags = slices.Clone(*upd.Tags)
	}
	post.UpdatedAt = time.Now()

	return clonePost(post), nil
}

func (s *Store) DeletePost(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok || post.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	post.DeletedAt = &now
	post.UpdatedAt = now
	delete(s.postSlugs, post.Slug)
	return true, nil
}

func (s *Store) ListPosts(ctx context.Context, filter pressroom.PostFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.Post], error) {
	page = page.Normalize()

	s.mu.RLock()
	var result []pressroom.Post
	for _, post := range s.posts {
		if post.DeletedAt != nil {
			continue
		}
		if filter.Status != nil && post.Status != *filter.Status {
			continue
		}
		if filter.CategoryID != nil && (post.CategoryID == nil || *post.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.AuthorID != nil && post.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Tag != nil && !slices.Contains(post.Tags, *filter.Tag) {
			continue
		}
		result = append(result, *clonePost(post))
	}
	s.mu.RUnlock()

	sortPosts(result, page)
	return paginate(result, page), nil
}

func (s *Store) SearchPosts(ctx context.Context, query string, filter pressroom.PostFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.Post], error) {
	page = page.Normalize()
	folded := pressroom.FoldForSearch(strings.TrimSpace(query))

	s.mu.RLock()
	var result []pressroom.Post
	for _, post := range s.posts {
		if post.DeletedAt != nil {
			continue
		}
		if folded != "" && !matches(folded, post.Title, post.Body) {
			continue
		}
		if filter.Status != nil && post.Status != *filter.Status {
			continue
		}
		if filter.CategoryID != nil && (post.CategoryID == nil || *post.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.AuthorID != nil && post.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Tag != nil && !slices.Contains(post.Tags, *filter.Tag) {
			continue
		}
		result = append(result, *clonePost(post))
	}
	s.mu.RUnlock()

	sortPosts(result, page)
	return paginate(result, page), nil
}

func (s *Store) IncrementPostViews(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok || post.DeletedAt != nil {
		return pressroom.ErrNotFound
	}
	post.ViewCount++
	return nil
}

func sortPosts(posts []pressroom.Post, page pressroom.PageRequest) {
	var primary func(a, b pressroom.Post) int
	switch page.SortBy {
	case "title":
		primary = func(a, b pressroom.Post) int { return strings.Compare(a.Title, b.Title) }
	case "updated_at":
		primary = func(a, b pressroom.Post) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case "view_count":
		primary = func(a, b pressroom.Post) int {
			switch {
			case a.ViewCount < b.ViewCount:
				return -1
			case a.ViewCount > b.ViewCount:
				return 1
			}
			return 0
		}
	default: // created_at
		primary = func(a, b pressroom.Post) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	orderBy(posts, primary, func(p pressroom.Post) uuid.UUID { return p.ID }, page.SortOrder)
}

func clonePost(p *pressroom.Post) *pressroom.Post {
	out := *p
	out.Tags = slices.Clone(p.Tags)
	if p.CategoryID != nil {
		cid := *p.CategoryID
		out.CategoryID = &cid
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}
