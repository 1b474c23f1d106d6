package pressroom

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Mode identifies which adapter the selector currently serves.
type Mode string

// Selector modes.
const (
	ModeDurable  Mode = "durable"
	ModeVolatile Mode = "volatile"
)

// Status is the health snapshot exposed to operational tooling. It is
// the only externally observable signal of which mode is active.
type Status struct {
	Connected   bool `json:"connected"`
	StorageType Mode `json:"storageType"`
	CanPersist  bool `json:"canPersist"`
}

// OpenDurableFunc establishes the durable adapter: typically it builds
// a pgx pool, pings it, and returns the postgres store together with a
// prober bound to the same pool. It is invoked at most once per
// process, under single-flight, and only when a switch to durable is
// proposed.
type OpenDurableFunc func(ctx context.Context) (Store, Prober, error)

// SelectorOptions configures a Selector.
type SelectorOptions struct {
	// Volatile is the always-available fallback store. Required.
	Volatile Store

	// OpenDurable lazily establishes the durable adapter. Nil means
	// the process runs volatile-only (no connection configured).
	OpenDurable OpenDurableFunc

	// ProbeTimeout bounds every connectivity check so request-path
	// reconciles cannot stall the pipeline. Default 2s.
	ProbeTimeout time.Duration

	// MinProbeInterval rate-limits request-path reconciles: calls
	// arriving sooner than this after the previous probe are no-ops.
	// Zero disables rate limiting.
	MinProbeInterval time.Duration

	// ReconcileInterval is the background timer period used by Run.
	// Default 30s.
	ReconcileInterval time.Duration

	Logger *slog.Logger
}

type activeRef struct {
	mode  Mode
	store Store
}

type durableConn struct {
	store  Store
	prober Prober
}

// Selector owns the single active adapter reference and mediates
// transitions between durable and volatile operation. The reference is
// swapped atomically: a request that loads the active store keeps a
// consistent adapter for its whole lifetime, and no caller can observe
// a nil or half-initialized adapter.
type Selector struct {
	opts    SelectorOptions
	logger  *slog.Logger
	active  atomic.Pointer[activeRef]
	durable atomic.Pointer[durableConn]

	sf        singleflight.Group
	lastProbe atomic.Int64 // unix nanos of the last completed probe
}

// NewSelector builds a Selector and runs one synchronous connectivity
// check to pick the initial adapter. If the durable store cannot be
// opened or reached, the selector starts volatile; it never fails
// construction on connectivity grounds.
func NewSelector(ctx context.Context, opts SelectorOptions) (*Selector, error) {
	if opts.Volatile == nil {
		return nil, errors.New("selector requires a volatile store")
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 2 * time.Second
	}
	if opts.ReconcileInterval <= 0 {
		opts.ReconcileInterval = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Selector{opts: opts, logger: logger}
	s.active.Store(&activeRef{mode: ModeVolatile, store: opts.Volatile})

	if opts.OpenDurable != nil {
		if err := s.tryPromote(ctx); err != nil {
			logger.Warn("starting on volatile store", "reason", err)
		}
	} else {
		logger.Info("no durable store configured; running volatile-only")
	}
	return s, nil
}

// Active returns the currently active store. It never blocks on I/O
// and never triggers a probe; probing is driven by Reconcile via the
// request hook and the background timer.
func (s *Selector) Active() Store {
	return s.active.Load().store
}

// Mode returns the current selector mode.
func (s *Selector) Mode() Mode {
	return s.active.Load().mode
}

// Durable returns the durable store if it has been initialized,
// regardless of which adapter is active. Callers wanting transactions
// assert TxStore on the result.
func (s *Selector) Durable() (Store, bool) {
	conn := s.durable.Load()
	if conn == nil {
		return nil, false
	}
	return conn.store, true
}

// Status reports the health snapshot for the current mode.
func (s *Selector) Status() Status {
	ref := s.active.Load()
	durable := ref.mode == ModeDurable
	return Status{
		Connected:   durable,
		StorageType: ref.mode,
		CanPersist:  durable,
	}
}

// Reconcile runs one connectivity check and performs a transition if
// warranted. It is idempotent and safe to call concurrently from the
// request hook and the background timer: concurrent calls collapse
// into a single probe, and at most one durable initialization is in
// flight at a time. Calls arriving within MinProbeInterval of the
// previous probe are no-ops.
func (s *Selector) Reconcile(ctx context.Context) error {
	if s.opts.OpenDurable == nil {
		return nil
	}
	if min := s.opts.MinProbeInterval; min > 0 {
		last := s.lastProbe.Load()
		if last != 0 && time.Since(time.Unix(0, last)) < min {
			return nil
		}
	}
	_, err, _ := s.sf.Do("reconcile", func() (any, error) {
		return nil, s.reconcile(ctx)
	})
	return err
}

func (s *Selector) reconcile(ctx context.Context) error {
	defer s.lastProbe.Store(time.Now().UnixNano())

	switch s.active.Load().mode {
	case ModeDurable:
		if !s.probe(ctx) {
			s.demote()
		}
		return nil
	default:
		return s.tryPromote(ctx)
	}
}

// probe runs one bounded connectivity check against the established
// durable connection.
func (s *Selector) probe(ctx context.Context) bool {
	conn := s.durable.Load()
	if conn == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
	defer cancel()
	return conn.prober.CheckConnectivity(ctx)
}

// tryPromote switches to the durable adapter if it is reachable. The
// durable adapter must be fully initialized before the swap; on any
// failure the selector stays volatile and the active reference is
// untouched - there is no partial switch.
func (s *Selector) tryPromote(ctx context.Context) error {
	conn, err := s.ensureDurable(ctx)
	if err != nil {
		return err
	}
	if !s.probe(ctx) {
		return &StoreUnavailableError{Op: "probe", Err: errors.New("connectivity check failed")}
	}
	prev := s.active.Swap(&activeRef{mode: ModeDurable, store: conn.store})
	if prev.mode != ModeDurable {
		s.logger.Info("storage selector switched to durable store")
	}
	return nil
}

// demote fails open to the volatile adapter, trading durability for
// availability.
func (s *Selector) demote() {
	prev := s.active.Swap(&activeRef{mode: ModeVolatile, store: s.opts.Volatile})
	if prev.mode != ModeVolatile {
		s.logger.Warn("durable store unreachable; storage selector switched to volatile store",
			"can_persist", false)
	}
}

// ensureDurable opens the durable adapter exactly once. Concurrent
// reconciles share a single initialization attempt; later calls reuse
// the established connection.
func (s *Selector) ensureDurable(ctx context.Context) (*durableConn, error) {
	if conn := s.durable.Load(); conn != nil {
		return conn, nil
	}
	v, err, _ := s.sf.Do("init", func() (any, error) {
		if conn := s.durable.Load(); conn != nil {
			return conn, nil
		}
		ctx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
		defer cancel()
		store, prober, err := s.opts.OpenDurable(ctx)
		if err != nil {
			return nil, &InitializationError{Err: err}
		}
		conn := &durableConn{store: store, prober: prober}
		s.durable.Store(conn)
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*durableConn), nil
}

// Run drives background reconciliation for the lifetime of ctx. Each
// tick probes only while volatile, so a healthy durable store is not
// hammered; failover away from a dead durable store still happens
// promptly via the request hook.
func (s *Selector) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.ReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Mode() == ModeVolatile {
				if err := s.Reconcile(ctx); err != nil {
					s.logger.Debug("background reconcile", "err", err)
				}
			}
		}
	}
}
