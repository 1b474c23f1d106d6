// Package memory implements the pressroom storage contract against
// in-process maps. It exists as an availability fallback: entities
// live only in process memory and are lost on restart. Pagination,
// search and validation semantics match the postgres adapter exactly
// so callers cannot tell the two apart within a single process run.
package memory

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// Store implements pressroom.Store using in-memory structures. A
// single coarse RWMutex serializes mutations across all collections;
// reads copy values out so callers can never mutate shared state.
type Store struct {
	mu sync.RWMutex

	posts      map[uuid.UUID]*pressroom.Post
	postSlugs  map[string]uuid.UUID // slug -> post id (non-deleted only)
	assets     map[uuid.UUID]*pressroom.Asset
	categories map[uuid.UUID]*pressroom.Category
	comments   map[uuid.UUID]*pressroom.Comment
	users      map[uuid.UUID]*pressroom.User
	userEmails map[string]uuid.UUID // lowercased email -> user id
	reviews    map[uuid.UUID][]*pressroom.Review // asset id -> reviews
	seoMeta    map[uuid.UUID]*pressroom.SeoMeta  // post id -> meta
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		posts:      make(map[uuid.UUID]*pressroom.Post),
		postSlugs:  make(map[string]uuid.UUID),
		assets:     make(map[uuid.UUID]*pressroom.Asset),
		categories: make(map[uuid.UUID]*pressroom.Category),
		comments:   make(map[uuid.UUID]*pressroom.Comment),
		users:      make(map[uuid.UUID]*pressroom.User),
		userEmails: make(map[string]uuid.UUID),
		reviews:    make(map[uuid.UUID][]*pressroom.Review),
		seoMeta:    make(map[uuid.UUID]*pressroom.SeoMeta),
	}
}

var _ pressroom.Store = (*Store)(nil)

// orderBy sorts items by a primary comparator in the requested
// direction, breaking ties by id ascending (byte order, matching
// postgres uuid comparison) so pagination boundaries are stable.
func orderBy[T any](items []T, primary func(a, b T) int, id func(T) uuid.UUID, ord pressroom.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		c := primary(items[i], items[j])
		if c != 0 {
			if ord == pressroom.SortDesc {
				return c > 0
			}
			return c < 0
		}
		a, b := id(items[i]), id(items[j])
		return bytes.Compare(a[:], b[:]) < 0
	})
}

// paginate slices an already-sorted result set into one page.
func paginate[T any](items []T, req pressroom.PageRequest) *pressroom.Page[T] {
	total := len(items)
	start := req.Offset()
	if start > total {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}
	return pressroom.NewPage(items[start:end], total, req)
}

// matches reports whether any of the fields contains the folded query.
func matches(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(pressroom.FoldForSearch(f), query) {
			return true
		}
	}
	return false
}
