package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	appcashbox "github.com/estudio/backend/internal/application/cashbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSweeper struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeSweeper) AutoCloseStale(ctx context.Context) (*appcashbox.AutoCloseStaleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &appcashbox.AutoCloseStaleResult{}, nil
}

func (f *fakeSweeper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time           { return c.now }
func (c fixedClock) Today() time.Time         { return c.now.Truncate(24 * time.Hour) }
func (c fixedClock) Location() *time.Location { return c.now.Location() }

func TestParseCronSchedule(t *testing.T) {
	t.Run("parses minute and hour", func(t *testing.T) {
		hour, minute, err := ParseCronSchedule("30 3 * * *")
		require.NoError(t, err)
		assert.Equal(t, 3, hour)
		assert.Equal(t, 30, minute)
	})

	t.Run("empty expression uses defaults", func(t *testing.T) {
		hour, minute, err := ParseCronSchedule("")
		require.NoError(t, err)
		assert.Equal(t, 0, hour)
		assert.Equal(t, 5, minute)
	})

	t.Run("rejects out-of-range hour", func(t *testing.T) {
		_, _, err := ParseCronSchedule("0 24 * * *")
		assert.Error(t, err)
	})

	t.Run("rejects out-of-range minute", func(t *testing.T) {
		_, _, err := ParseCronSchedule("60 2 * * *")
		assert.Error(t, err)
	})
}

func TestAutoCloseScheduler(t *testing.T) {
	newScheduler := func(sweeper Sweeper) *AutoCloseScheduler {
		cfg := DefaultAutoCloseSchedulerConfig()
		clock := fixedClock{now: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)}
		return NewAutoCloseScheduler(cfg, sweeper, clock, zap.NewNop())
	}

	t.Run("start and stop are idempotent", func(t *testing.T) {
		s := newScheduler(&fakeSweeper{})
		ctx := context.Background()

		require.NoError(t, s.Start(ctx))
		require.NoError(t, s.Start(ctx))

		require.NoError(t, s.Stop(ctx))
		require.NoError(t, s.Stop(ctx))
	})

	t.Run("manual trigger requires a running scheduler", func(t *testing.T) {
		s := newScheduler(&fakeSweeper{})

		err := s.TriggerManualRun(context.Background())
		assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	})

	t.Run("manual trigger runs the sweep", func(t *testing.T) {
		sweeper := &fakeSweeper{}
		s := newScheduler(sweeper)
		ctx := context.Background()

		require.NoError(t, s.Start(ctx))
		defer s.Stop(ctx)

		require.NoError(t, s.TriggerManualRun(ctx))

		assert.Eventually(t, func() bool {
			return sweeper.callCount() == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("computes the next run time", func(t *testing.T) {
		s := newScheduler(&fakeSweeper{})
		ctx := context.Background()

		require.NoError(t, s.Start(ctx))
		defer s.Stop(ctx)

		next := s.GetNextRunAt()
		require.NotNil(t, next)
		// Started at 10:00, so the 00:05 slot has passed for the day
		assert.Equal(t, 16, next.Day())
		assert.Equal(t, 0, next.Hour())
		assert.Equal(t, 5, next.Minute())
	})

	t.Run("shouldRun only at the configured minute", func(t *testing.T) {
		s := newScheduler(&fakeSweeper{})

		assert.True(t, s.shouldRun(time.Date(2026, 3, 15, 0, 5, 30, 0, time.UTC)))
		assert.False(t, s.shouldRun(time.Date(2026, 3, 15, 0, 6, 0, 0, time.UTC)))
		assert.False(t, s.shouldRun(time.Date(2026, 3, 15, 12, 5, 0, 0, time.UTC)))
	})
}
