// Package postgres implements the pressroom storage contract against
// PostgreSQL using pgx. Connectivity failures surface as the
// distinguished store-unavailable error kind so the selector can react
// on its next reconcile; constraint violations map to validation
// errors.
package postgres

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressroom/pressroom/pkg/pressroom"
)

// DBTX abstracts over a connection pool and a transaction so every
// query method works inside WithTx unchanged.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store implements pressroom.Store using PostgreSQL.
type Store struct {
	db DBTX
}

// New creates a postgres store over an existing pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewWithPool creates a postgres store bound to a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

var (
	_ pressroom.Store   = (*Store)(nil)
	_ pressroom.TxStore = (*Store)(nil)
)

// WithTx runs fn against a transactional view of the store. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(pressroom.Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return wrapError("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(New(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapError("commit tx", err)
	}
	return nil
}

// Prober checks reachability of the database behind a pool. It is the
// connectivity probe the selector runs on reconcile; the selector
// bounds it with a hard timeout.
type Prober struct {
	pool *pgxpool.Pool
}

// NewProber creates a prober bound to pool.
func NewProber(pool *pgxpool.Pool) *Prober {
	return &Prober{pool: pool}
}

// CheckConnectivity reports whether the database answers a ping. Any
// error, including a context timeout, reads as unreachable.
func (p *Prober) CheckConnectivity(ctx context.Context) bool {
	return p.pool.Ping(ctx) == nil
}

// wrapError translates driver errors into the contract's taxonomy.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return pressroom.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &pressroom.ValidationError{
				Field:  fieldFromConstraint(pgErr.ConstraintName),
				Reason: "already exists",
			}
		case "23503": // foreign_key_violation
			return &pressroom.ValidationError{
				Field:  fieldFromConstraint(pgErr.ConstraintName),
				Reason: "referenced record not found",
			}
		case "23502": // not_null_violation
			return &pressroom.ValidationError{Field: pgErr.ColumnName, Reason: "required"}
		}
		return errors.New("database error in " + op + ": " + pgErr.Message)
	}

	if isConnectivity(err) {
		return &pressroom.StoreUnavailableError{Op: op, Err: err}
	}
	return errors.New("database error in " + op + ": " + err.Error())
}

// isConnectivity reports whether err is a transport-level failure
// rather than a logical one.
func isConnectivity(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// The pool reports this as a plain error after shutdown.
	return strings.Contains(err.Error(), "closed pool")
}

// fieldFromConstraint maps index/constraint names from the schema to
// the request field they guard.
func fieldFromConstraint(name string) string {
	switch {
	case strings.Contains(name, "slug"):
		return "slug"
	case strings.Contains(name, "email"):
		return "email"
	case strings.Contains(name, "name"):
		return "name"
	case strings.Contains(name, "category"):
		return "category_id"
	case strings.Contains(name, "post"):
		return "post_id"
	case strings.Contains(name, "asset"):
		return "asset_id"
	case strings.Contains(name, "user"):
		return "user_id"
	default:
		return name
	}
}

// sortColumn whitelists sort fields per entity and returns the ORDER BY
// column, defaulting to created_at. Ties always break by id ascending,
// and text columns are pinned to COLLATE "C" so their order is byte-wise
// regardless of the database locale; both keep pagination boundaries
// identical to the memory adapter.
func sortColumn(sortBy string, allowed map[string]string) string {
	if col, ok := allowed[sortBy]; ok {
		return col
	}
	return "created_at"
}

func direction(ord pressroom.SortOrder) string {
	if ord == pressroom.SortAsc {
		return "ASC"
	}
	return "DESC"
}

// likePattern folds and escapes a search query for LIKE matching.
func likePattern(query string) string {
	folded := pressroom.FoldForSearch(strings.TrimSpace(query))
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(folded) + "%"
}
