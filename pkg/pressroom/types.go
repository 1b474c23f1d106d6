package pressroom

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus is the domain type for post lifecycle states.
type PostStatus string

// Post status constants (typed).
const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// CommentStatus is the domain type for comment moderation states.
type CommentStatus string

// Comment status constants (typed).
const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusSpam     CommentStatus = "spam"
)

// Role is the domain type for user roles.
type Role string

// Role constants (typed).
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Post represents a blog/content entry.
//
// Slug is unique among non-deleted posts. A zero CategoryID means the
// post is uncategorized.
type Post struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Body       string     `json:"body"`
	Status     PostStatus `json:"status"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	AuthorID   uuid.UUID  `json:"author_id"`
	Tags       []string   `json:"tags,omitempty"`
	ViewCount  int64      `json:"view_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Asset represents a downloadable file listing (signal/EA package).
//
// FileKey references the blob in the configured BlobStore. The download
// counter is monotonically non-decreasing; RatingAvg is the mean of all
// reviews attached to the asset.
type Asset struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	FileKey       string     `json:"file_key,omitempty"`
	FileSize      int64      `json:"file_size,omitempty"`
	Platform      string     `json:"platform,omitempty"`
	DownloadCount int64      `json:"download_count"`
	RatingAvg     float64    `json:"rating_avg"`
	RatingCount   int        `json:"rating_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Category groups posts into an optional tree. The parent chain never
// forms a cycle; a category with attached posts cannot be deleted.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Comment is attached to a post. UserID is set for comments left by
// registered users; anonymous comments carry AuthorName/AuthorEmail.
// Only approved comments are visible to public readers.
type Comment struct {
	ID          uuid.UUID     `json:"id"`
	PostID      uuid.UUID     `json:"post_id"`
	UserID      *uuid.UUID    `json:"user_id,omitempty"`
	AuthorName  string        `json:"author_name,omitempty"`
	AuthorEmail string        `json:"author_email,omitempty"`
	Body        string        `json:"body"`
	Status      CommentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// User represents both administrative and regular accounts; the Role
// field distinguishes them. Email is unique across all roles.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Newsletter   bool       `json:"newsletter"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Review is a rating left on an asset by a user. Score is 1..5.
type Review struct {
	ID        uuid.UUID `json:"id"`
	AssetID   uuid.UUID `json:"asset_id"`
	UserID    uuid.UUID `json:"user_id"`
	Score     int       `json:"score"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SeoMeta is a one-to-one override set attached to a post.
type SeoMeta struct {
	PostID          uuid.UUID `json:"post_id"`
	MetaTitle       string    `json:"meta_title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	MetaKeywords    string    `json:"meta_keywords,omitempty"`
	CanonicalURL    string    `json:"canonical_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PostUpdate carries partial-update fields for a post. Nil fields are
// left untouched. Setting CategoryID to a pointer at uuid.Nil clears
// the category.
type PostUpdate struct {
	Title      *string
	Slug       *string
	Body       *string
	Status     *PostStatus
	CategoryID *uuid.UUID
	Tags       *[]string
}

// AssetUpdate carries partial-update fields for an asset.
type AssetUpdate struct {
	Title       *string
	Description *string
	FileKey     *string
	FileSize    *int64
	Platform    *string
}

// CategoryUpdate carries partial-update fields for a category. Setting
// ParentID to a pointer at uuid.Nil detaches the category from its
// parent.
type CategoryUpdate struct {
	Name     *string
	Slug     *string
	ParentID *uuid.UUID
}

// UserUpdate carries partial-update fields for a user.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	Role         *Role
	Newsletter   *bool
}

// PostFilter narrows post listings.
type PostFilter struct {
	Status     *PostStatus
	CategoryID *uuid.UUID
	AuthorID   *uuid.UUID
	Tag        *string
}

// AssetFilter narrows asset listings.
type AssetFilter struct {
	Platform *string
}

// CommentFilter narrows comment listings. Handlers serving public
// readers set Status to CommentStatusApproved; admin listings leave it
// nil to see every moderation state.
type CommentFilter struct {
	PostID *uuid.UUID
	Status *CommentStatus
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role *Role
}

// CanTransition reports whether a post may move from one status to
// another. Draft and published flip freely between each other and both
// may be archived; archived is terminal.
func (s PostStatus) CanTransition(to PostStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case PostStatusDraft:
		return to == PostStatusPublished || to == PostStatusArchived
	case PostStatusPublished:
		return to == PostStatusDraft || to == PostStatusArchived
	case PostStatusArchived:
		return false
	default:
		return false
	}
}

// Valid reports whether the status is a known post status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Valid reports whether the status is a known comment status.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusSpam:
		return true
	}
	return false
}

// Valid reports whether the role is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}
