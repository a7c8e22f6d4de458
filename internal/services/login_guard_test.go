package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/scribe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var guardEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func minutes(n float64) time.Time {
	return guardEpoch.Add(time.Duration(n * float64(time.Minute)))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		rec  *models.LoginLockout
		now  time.Time
		want lockDecision
	}{
		{"no record", nil, minutes(0), decisionOpen},
		{"below threshold", &models.LoginLockout{FailureCount: 4, LastFailureAt: minutes(0)}, minutes(1), decisionOpen},
		{"at threshold inside window", &models.LoginLockout{FailureCount: 5, LastFailureAt: minutes(0)}, minutes(9.99), decisionLocked},
		{"above threshold inside window", &models.LoginLockout{FailureCount: 8, LastFailureAt: minutes(0)}, minutes(1), decisionLocked},
		{"window boundary is not locked", &models.LoginLockout{FailureCount: 5, LastFailureAt: minutes(0)}, minutes(10), decisionExpired},
		{"after window", &models.LoginLockout{FailureCount: 5, LastFailureAt: minutes(0)}, minutes(30), decisionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decide(tt.rec, tt.now))
		})
	}
}

func TestMemoryLoginGuard_UnknownAddressIsOpen(t *testing.T) {
	g := NewMemoryLoginGuard()

	locked, err := g.CheckLocked(context.Background(), "9.9.9.9", minutes(0))
	require.NoError(t, err)
	assert.False(t, locked)

	_, ok := g.snapshot("9.9.9.9")
	assert.False(t, ok, "checking must not create a record")
}

func TestMemoryLoginGuard_LocksAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryLoginGuard()
	addr := "1.2.3.4"

	for i := 0; i < MaxLoginAttempts-1; i++ {
		require.NoError(t, g.RecordFailure(ctx, addr, minutes(float64(i))))
		locked, err := g.CheckLocked(ctx, addr, minutes(float64(i)))
		require.NoError(t, err)
		assert.False(t, locked, "locked after %d failures", i+1)
	}

	require.NoError(t, g.RecordFailure(ctx, addr, minutes(4)))
	locked, err := g.CheckLocked(ctx, addr, minutes(4))
	require.NoError(t, err)
	assert.True(t, locked)

	// Other addresses are unaffected.
	locked, err = g.CheckLocked(ctx, "5.6.7.8", minutes(4))
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMemoryLoginGuard_WindowCountsFromLastFailure(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryLoginGuard()
	addr := "1.2.3.4"

	for i := 0; i < 6; i++ {
		require.NoError(t, g.RecordFailure(ctx, addr, minutes(float64(i))))
	}

	locked, _ := g.CheckLocked(ctx, addr, minutes(14.9))
	assert.True(t, locked, "last failure at t=5, still locked at t=14.9")

	locked, _ = g.CheckLocked(ctx, addr, minutes(15))
	assert.False(t, locked)
}

func TestMemoryLoginGuard_ExpiredLockIsReset(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryLoginGuard()
	addr := "1.2.3.4"

	for i := 0; i < MaxLoginAttempts; i++ {
		require.NoError(t, g.RecordFailure(ctx, addr, minutes(0)))
	}

	locked, err := g.CheckLocked(ctx, addr, minutes(11))
	require.NoError(t, err)
	assert.False(t, locked)

	rec, ok := g.snapshot(addr)
	require.True(t, ok)
	assert.Equal(t, 0, rec.FailureCount)
	assert.True(t, rec.LastFailureAt.IsZero())

	// A single new failure after the reset does not re-lock.
	require.NoError(t, g.RecordFailure(ctx, addr, minutes(12)))
	locked, _ = g.CheckLocked(ctx, addr, minutes(12))
	assert.False(t, locked)
}

func TestMemoryLoginGuard_SuccessClearsRecord(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryLoginGuard()
	addr := "1.2.3.4"

	for i := 0; i < MaxLoginAttempts-1; i++ {
		require.NoError(t, g.RecordFailure(ctx, addr, minutes(0)))
	}
	require.NoError(t, g.RecordSuccess(ctx, addr))

	_, ok := g.snapshot(addr)
	assert.False(t, ok)

	// Four more failures are again below the threshold.
	for i := 0; i < MaxLoginAttempts-1; i++ {
		require.NoError(t, g.RecordFailure(ctx, addr, minutes(1)))
	}
	locked, _ := g.CheckLocked(ctx, addr, minutes(1))
	assert.False(t, locked)
}

func TestMemoryLoginGuard_ConcurrentFailuresAreAllCounted(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryLoginGuard()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = g.RecordFailure(ctx, fmt.Sprintf("10.0.0.%d", i%2), minutes(0))
		}(i)
	}
	wg.Wait()

	a, _ := g.snapshot("10.0.0.0")
	b, _ := g.snapshot("10.0.0.1")
	assert.Equal(t, 25, a.FailureCount)
	assert.Equal(t, 25, b.FailureCount)
}

func TestRepositoryLoginGuard_Decisions(t *testing.T) {
	ctx := context.Background()
	var resets, deletes int
	rec := &models.LoginLockout{Address: "1.2.3.4", FailureCount: 5, LastFailureAt: minutes(0)}

	repo := &MockLockoutRepository{
		GetFunc: func(ctx context.Context, address string) (*models.LoginLockout, error) {
			return rec, nil
		},
		ResetFunc: func(ctx context.Context, address string) error {
			resets++
			return nil
		},
		DeleteFunc: func(ctx context.Context, address string) error {
			deletes++
			return nil
		},
	}
	g := NewRepositoryLoginGuard(repo, discardLogger())

	locked, err := g.CheckLocked(ctx, "1.2.3.4", minutes(5))
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Equal(t, 0, resets)

	locked, err = g.CheckLocked(ctx, "1.2.3.4", minutes(10))
	require.NoError(t, err)
	assert.False(t, locked)
	assert.Equal(t, 1, resets)

	require.NoError(t, g.RecordSuccess(ctx, "1.2.3.4"))
	assert.Equal(t, 1, deletes)
}

func TestRepositoryLoginGuard_NotFoundIsOpen(t *testing.T) {
	g := NewRepositoryLoginGuard(&MockLockoutRepository{}, discardLogger())

	locked, err := g.CheckLocked(context.Background(), "1.2.3.4", minutes(0))
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestRepositoryLoginGuard_FailOpenAndClosed(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection refused")
	newRepo := func() *MockLockoutRepository {
		return &MockLockoutRepository{
			GetFunc: func(ctx context.Context, address string) (*models.LoginLockout, error) {
				return nil, storeErr
			},
			RecordFailureFunc: func(ctx context.Context, address string, at time.Time) (*models.LoginLockout, error) {
				return nil, storeErr
			},
			DeleteFunc: func(ctx context.Context, address string) error {
				return storeErr
			},
		}
	}

	t.Run("fail open", func(t *testing.T) {
		g := NewRepositoryLoginGuard(newRepo(), discardLogger())

		locked, err := g.CheckLocked(ctx, "1.2.3.4", minutes(0))
		assert.NoError(t, err)
		assert.False(t, locked)
		assert.NoError(t, g.RecordFailure(ctx, "1.2.3.4", minutes(0)))
		assert.NoError(t, g.RecordSuccess(ctx, "1.2.3.4"))
	})

	t.Run("fail closed", func(t *testing.T) {
		g := NewRepositoryLoginGuard(newRepo(), discardLogger()).FailClosed()

		_, err := g.CheckLocked(ctx, "1.2.3.4", minutes(0))
		assert.ErrorIs(t, err, storeErr)
		assert.ErrorIs(t, g.RecordFailure(ctx, "1.2.3.4", minutes(0)), storeErr)
		assert.ErrorIs(t, g.RecordSuccess(ctx, "1.2.3.4"), storeErr)
	})
}
