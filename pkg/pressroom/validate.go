package pressroom

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidSlug reports whether s is a URL-safe slug: lowercase
// alphanumerics separated by single hyphens.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= 200 && slugPattern.MatchString(s)
}

// ValidEmail reports whether s looks like an email address. The check
// is deliberately loose; deliverability is not this layer's problem.
func ValidEmail(s string) bool {
	return s != "" && len(s) <= 254 && emailPattern.MatchString(s)
}

// ValidateNewPost checks contract-level requirements for post
// creation. Uniqueness of the slug is the adapter's responsibility.
func ValidateNewPost(p *Post) error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if !ValidSlug(p.Slug) {
		return &ValidationError{Field: "slug", Reason: "must be a URL-safe slug"}
	}
	if p.Status != "" && !p.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	return nil
}

// ValidateNewAsset checks contract-level requirements for asset
// creation.
func ValidateNewAsset(a *Asset) error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if a.FileSize < 0 {
		return &ValidationError{Field: "file_size", Reason: "must not be negative"}
	}
	return nil
}

// ValidateNewCategory checks contract-level requirements for category
// creation. Name and slug uniqueness belong to the adapter.
func ValidateNewCategory(c *Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if !ValidSlug(c.Slug) {
		return &ValidationError{Field: "slug", Reason: "must be a URL-safe slug"}
	}
	return nil
}

// ValidateNewComment checks contract-level requirements for comment
// creation. Anonymous comments must carry a name and a well-formed
// email.
func ValidateNewComment(c *Comment) error {
	if strings.TrimSpace(c.Body) == "" {
		return &ValidationError{Field: "body", Reason: "required"}
	}
	if c.UserID == nil {
		if strings.TrimSpace(c.AuthorName) == "" {
			return &ValidationError{Field: "author_name", Reason: "required for anonymous comments"}
		}
		if !ValidEmail(c.AuthorEmail) {
			return &ValidationError{Field: "author_email", Reason: "invalid email format"}
		}
	}
	if c.Status != "" && !c.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	return nil
}

// ValidateNewUser checks contract-level requirements for user
// creation. Email uniqueness spans all roles and is the adapter's
// responsibility.
func ValidateNewUser(u *User) error {
	if !ValidEmail(u.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email format"}
	}
	if u.PasswordHash == "" {
		return &ValidationError{Field: "password_hash", Reason: "required"}
	}
	if u.Role != "" && !u.Role.Valid() {
		return &ValidationError{Field: "role", Reason: "unknown role"}
	}
	return nil
}

// ValidateNewReview checks contract-level requirements for review
// creation.
func ValidateNewReview(r *Review) error {
	if r.AssetID == uuid.Nil {
		return &ValidationError{Field: "asset_id", Reason: "required"}
	}
	if r.Score < 1 || r.Score > 5 {
		return &ValidationError{Field: "score", Reason: "must be between 1 and 5"}
	}
	return nil
}

// FoldForSearch lowercases text the same way on both adapters so
// substring search never drifts between modes. The postgres adapter
// applies LOWER() in SQL; this is the in-process equivalent used by
// the memory adapter and by callers preparing query strings.
func FoldForSearch(s string) string {
	return strings.ToLower(s)
}
