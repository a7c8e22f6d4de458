package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/scribe/internal/models"
)

// Lockout policy. Fixed, not configurable.
const (
	MaxLoginAttempts = 5
	LoginLockWindow  = 10 * time.Minute
)

// LoginGuard decides per client address whether a login may proceed and
// records outcomes.
type LoginGuard interface {
	// CheckLocked reports whether address is locked at now. An expired
	// lockout is reset as a side effect.
	CheckLocked(ctx context.Context, address string, now time.Time) (bool, error)
	// RecordFailure counts one failed login at now.
	RecordFailure(ctx context.Context, address string, now time.Time) error
	// RecordSuccess forgets every failure recorded for address.
	RecordSuccess(ctx context.Context, address string) error
}

type lockDecision int

const (
	decisionOpen lockDecision = iota
	decisionLocked
	decisionExpired // was locked, window has passed: reset and allow
)

// decide: locked iff count >= MaxLoginAttempts and now-last < LoginLockWindow.
func decide(rec *models.LoginLockout, now time.Time) lockDecision {
	if rec == nil || rec.FailureCount < MaxLoginAttempts {
		return decisionOpen
	}
	if now.Sub(rec.LastFailureAt) < LoginLockWindow {
		return decisionLocked
	}
	return decisionExpired
}

// MemoryLoginGuard keeps lockout records in process memory. Records are never
// evicted and are lost on restart.
type MemoryLoginGuard struct {
	mu      sync.Mutex
	records map[string]*models.LoginLockout
}

func NewMemoryLoginGuard() *MemoryLoginGuard {
	return &MemoryLoginGuard{records: make(map[string]*models.LoginLockout)}
}

func (g *MemoryLoginGuard) CheckLocked(_ context.Context, address string, now time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := g.records[address]
	switch decide(rec, now) {
	case decisionLocked:
		return true, nil
	case decisionExpired:
		rec.FailureCount = 0
		rec.LastFailureAt = time.Time{}
	}
	return false, nil
}

func (g *MemoryLoginGuard) RecordFailure(_ context.Context, address string, now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[address]
	if !ok {
		rec = &models.LoginLockout{Address: address}
		g.records[address] = rec
	}
	rec.FailureCount++
	rec.LastFailureAt = now
	return nil
}

func (g *MemoryLoginGuard) RecordSuccess(_ context.Context, address string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.records, address)
	return nil
}

// snapshot returns a copy of the record for address, if any.
func (g *MemoryLoginGuard) snapshot(address string) (models.LoginLockout, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[address]
	if !ok {
		return models.LoginLockout{}, false
	}
	return *rec, true
}

// LockoutRepository is the persistence the RepositoryLoginGuard needs.
type LockoutRepository interface {
	Get(ctx context.Context, address string) (*models.LoginLockout, error)
	RecordFailure(ctx context.Context, address string, at time.Time) (*models.LoginLockout, error)
	Reset(ctx context.Context, address string) error
	Delete(ctx context.Context, address string) error
}

// RepositoryLoginGuard applies the same policy over a shared store, so
// lockouts survive restarts and hold across instances.
type RepositoryLoginGuard struct {
	repo       LockoutRepository
	logger     *slog.Logger
	failClosed bool
}

// NewRepositoryLoginGuard creates a guard that fails open: store errors are
// logged and the attempt is treated as not locked.
func NewRepositoryLoginGuard(repo LockoutRepository, logger *slog.Logger) *RepositoryLoginGuard {
	return &RepositoryLoginGuard{repo: repo, logger: logger}
}

// FailClosed makes store errors propagate to the caller instead.
func (g *RepositoryLoginGuard) FailClosed() *RepositoryLoginGuard {
	g.failClosed = true
	return g
}

func (g *RepositoryLoginGuard) storeError(op, address string, err error) error {
	g.logger.Error("login lockout store error",
		slog.String("op", op),
		slog.String("address", address),
		slog.Any("error", err))
	if g.failClosed {
		return err
	}
	return nil
}

func (g *RepositoryLoginGuard) CheckLocked(ctx context.Context, address string, now time.Time) (bool, error) {
	rec, err := g.repo.Get(ctx, address)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, g.storeError("check", address, err)
	}

	switch decide(rec, now) {
	case decisionLocked:
		return true, nil
	case decisionExpired:
		if err := g.repo.Reset(ctx, address); err != nil {
			return false, g.storeError("reset", address, err)
		}
	}
	return false, nil
}

func (g *RepositoryLoginGuard) RecordFailure(ctx context.Context, address string, now time.Time) error {
	rec, err := g.repo.RecordFailure(ctx, address, now)
	if err != nil {
		return g.storeError("record_failure", address, err)
	}
	if rec.FailureCount == MaxLoginAttempts {
		g.logger.Warn("login address locked",
			slog.String("address", address),
			slog.Duration("window", LoginLockWindow))
	}
	return nil
}

func (g *RepositoryLoginGuard) RecordSuccess(ctx context.Context, address string) error {
	if err := g.repo.Delete(ctx, address); err != nil {
		return g.storeError("record_success", address, err)
	}
	return nil
}
