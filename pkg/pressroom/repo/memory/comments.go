package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

func (s *Store) CreateComment(ctx context.Context, comment *pressroom.Comment) error {
	if err := pressroom.ValidateNewComment(comment); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[comment.PostID]
	if !ok || post.DeletedAt != nil {
		return &pressroom.ValidationError{Field: "post_id", Reason: "post does not exist"}
	}
	if comment.UserID != nil {
		if _, ok := s.users[*comment.UserID]; !ok {
			return &pressroom.ValidationError{Field: "user_id", Reason: "user does not exist"}
		}
	}

	now := time.Now()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.Status == "" {
		comment.Status = pressroom.CommentStatusPending
	}
	comment.CreatedAt = now
	comment.UpdatedAt = now

	s.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*pressroom.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, pressroom.ErrNotFound
	}
	return cloneComment(comment), nil
}

func (s *Store) UpdateCommentStatus(ctx context.Context, id uuid.UUID, status pressroom.CommentStatus) (*pressroom.Comment, error) {
	if !status.Valid() {
		return nil, &pressroom.ValidationError{Field: "status", Reason: "unknown status"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, pressroom.ErrNotFound
	}
	comment.Status = status
	comment.UpdatedAt = time.Now()
	return cloneComment(comment), nil
}

func (s *Store) DeleteComment(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return false, nil
	}
	delete(s.comments, id)
	return true, nil
}

func (s *Store) ListComments(ctx context.Context, filter pressroom.CommentFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.Comment], error) {
	page = page.Normalize()

	s.mu.RLock()
	var result []pressroom.Comment
	for _, comment := range s.comments {
		if filter.PostID != nil && comment.PostID != *filter.PostID {
			continue
		}
		if filter.Status != nil && comment.Status != *filter.Status {
			continue
		}
		result = append(result, *cloneComment(comment))
	}
	s.mu.RUnlock()

	orderBy(result,
		func(a, b pressroom.Comment) int { return a.CreatedAt.Compare(b.CreatedAt) },
		func(c pressroom.Comment) uuid.UUID { return c.ID },
		page.SortOrder)
	return paginate(result, page), nil
}

func cloneComment(c *pressroom.Comment) *pressroom.Comment {
	out := *c
	if c.UserID != nil {
		uid := *c.UserID
		out.UserID = &uid
	}
	return &out
}
