package pressroom

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Store is the uniform persistence contract consumed by route handlers.
// Both the durable (postgres) and volatile (memory) adapters implement
// the full surface with identical pagination, search and validation
// semantics, so callers behave the same regardless of which adapter is
// active.
//
// All methods honor ctx cancellation. The durable adapter reports
// connectivity failures as ErrStoreUnavailable; the volatile adapter
// only fails on logical grounds (not-found, validation).
type Store interface {
	// Posts
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, upd PostUpdate) (*Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) (bool, error)
	ListPosts(ctx context.Context, filter PostFilter, page PageRequest) (*Page[Post], error)
	SearchPosts(ctx context.Context, query string, filter PostFilter, page PageRequest) (*Page[Post], error)
	IncrementPostViews(ctx context.Context, id uuid.UUID) error

	// Downloadable assets
	CreateAsset(ctx context.Context, asset *Asset) error
	GetAsset(ctx context.Context, id uuid.UUID) (*Asset, error)
	UpdateAsset(ctx context.Context, id uuid.UUID, upd AssetUpdate) (*Asset, error)
	DeleteAsset(ctx context.Context, id uuid.UUID) (bool, error)
	ListAssets(ctx context.Context, filter AssetFilter, page PageRequest) (*Page[Asset], error)
	SearchAssets(ctx context.Context, query string, page PageRequest) (*Page[Asset], error)
	IncrementAssetDownloads(ctx context.Context, id uuid.UUID) error
	AddReview(ctx context.Context, review *Review) error
	ListReviews(ctx context.Context, assetID uuid.UUID, page PageRequest) (*Page[Review], error)

	// Categories
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, upd CategoryUpdate) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error)
	ListCategories(ctx context.Context, page PageRequest) (*Page[Category], error)

	// Comments
	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)
	UpdateCommentStatus(ctx context.Context, id uuid.UUID, status CommentStatus) (*Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) (bool, error)
	ListComments(ctx context.Context, filter CommentFilter, page PageRequest) (*Page[Comment], error)

	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)
	ListUsers(ctx context.Context, filter UserFilter, page PageRequest) (*Page[User], error)

	// SEO metadata (upsert semantics, one row per post)
	SetSeoMeta(ctx context.Context, meta *SeoMeta) error
	GetSeoMeta(ctx context.Context, postID uuid.UUID) (*SeoMeta, error)
}

// TxStore is an optional capability of the durable adapter: callers
// needing atomicity across several writes run them inside fn against
// the transactional store it receives. The volatile adapter does not
// implement it; the base contract makes no cross-call atomicity
// promise.
type TxStore interface {
	WithTx(ctx context.Context, fn func(Store) error) error
}

// Prober answers whether the durable backing store is currently
// reachable. Implementations never return an error: any failure
// (timeout, refused connection, bad credentials) reads as false. The
// selector bounds each call with a hard timeout.
type Prober interface {
	CheckConnectivity(ctx context.Context) bool
}

// BlobStore stores the binary payloads behind downloadable assets.
type BlobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// PresignDownload returns a direct URL when the backend supports
	// it; backends without URL support return an error and callers
	// fall back to streaming via Download.
	PresignDownload(ctx context.Context, key, filename string) (string, error)
	Meta(ctx context.Context, key string) (*BlobMeta, error)
}

// BlobMeta describes a stored blob.
type BlobMeta struct {
	Key         string
	Size        int64
	ContentType string
	ETag        string
	UpdatedAt   time.Time
}
