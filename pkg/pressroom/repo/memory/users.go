package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

func (s *Store) CreateUser(ctx context.Context, user *pressroom.User) error {
	if err := pressroom.ValidateNewUser(user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// One email namespace for admins and regular users alike.
	key := strings.ToLower(user.Email)
	if _, taken := s.userEmails[key]; taken {
		return &pressroom.ValidationError{Field: "email", Reason: "already exists"}
	}

	now := time.Now()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = pressroom.RoleViewer
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	s.users[user.ID] = cloneUser(user)
	s.userEmails[key] = user.ID
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*pressroom.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, pressroom.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*pressroom.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userEmails[strings.ToLower(email)]
	if !ok {
		return nil, pressroom.ErrNotFound
	}
	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, pressroom.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, upd pressroom.UserUpdate) (*pressroom.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, pressroom.ErrNotFound
	}

	if upd.Email != nil && !strings.EqualFold(*upd.Email, user.Email) {
		if !pressroom.ValidEmail(*upd.Email) {
			return nil, &pressroom.ValidationError{Field: "email", Reason: "invalid email format"}
		}
		key := strings.ToLower(*upd.Email)
		if _, taken := s.userEmails[key]; taken {
			return nil, &pressroom.ValidationError{Field: "email", Reason: "already exists"}
		}
		delete(s.userEmails, strings.ToLower(user.Email))
		user.Email = *upd.Email
		s.userEmails[key] = user.ID
	}
	if upd.PasswordHash != nil {
		user.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, &pressroom.ValidationError{Field: "role", Reason: "unknown role"}
		}
		user.Role = *upd.Role
	}
	if upd.Newsletter != nil {
		user.Newsletter = *upd.Newsletter
	}
	user.UpdatedAt = time.Now()

	return cloneUser(user), nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	user.DeletedAt = &now
	user.UpdatedAt = now
	delete(s.userEmails, strings.ToLower(user.Email))
	return true, nil
}

func (s *Store) ListUsers(ctx context.Context, filter pressroom.UserFilter, page pressroom.PageRequest) (*pressroom.Page[pressroom.User], error) {
	page = page.Normalize()

	s.mu.RLock()
	var result []pressroom.User
	for _, user := range s.users {
		if user.DeletedAt != nil {
			continue
		}
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		result = append(result, *cloneUser(user))
	}
	s.mu.RUnlock()

	var primary func(a, b pressroom.User) int
	switch page.SortBy {
	case "email":
		primary = func(a, b pressroom.User) int { return strings.Compare(a.Email, b.Email) }
	default: // created_at
		primary = func(a, b pressroom.User) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	orderBy(result, primary, func(u pressroom.User) uuid.UUID { return u.ID }, page.SortOrder)
	return paginate(result, page), nil
}

func cloneUser(u *pressroom.User) *pressroom.User {
	out := *u
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}
