package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type fetchCall struct {
	params int
	mode   Mode
}

type recorder struct {
	mu    sync.Mutex
	calls []fetchCall
}

func (r *recorder) add(p int, m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fetchCall{p, m})
}

func (r *recorder) all() []fetchCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fetchCall(nil), r.calls...)
}

func newTestCycle(fc clockwork.Clock, interval time.Duration, fetch FetchFunc[int, string]) *Cycle[int, string] {
	return NewCycle(CycleConfig{Name: "test", Interval: interval, Clock: fc, ErrorMessage: "yüklenemedi"}, 1, "", fetch)
}

func TestMountLoadsOnceAndArmsOneTimer(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &recorder{}
	c := newTestCycle(fc, 30*time.Second, func(_ context.Context, p int, _ string, m Mode) (string, error) {
		rec.add(p, m)
		return "ok", nil
	})

	require.NoError(t, c.Mount(context.Background()))
	require.NoError(t, c.Mount(context.Background()))
	require.Equal(t, []fetchCall{{1, ModeInitial}}, rec.all())
	require.Equal(t, 1, c.ArmedTimers())
	require.Equal(t, "ok", c.Snapshot())
	require.Equal(t, fc.Now(), c.Status().LastUpdateTime)

	c.Unmount()
	c.Unmount()
	require.Equal(t, 0, c.ArmedTimers())
}

func TestParamChangesNeverStackTimers(t *testing.T) {
	fc := clockwork.NewFakeClock()
	c := newTestCycle(fc, 30*time.Second, func(_ context.Context, p int, _ string, _ Mode) (string, error) {
		return "ok", nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, c.Mount(ctx))
	for p := 2; p <= 4; p++ {
		require.NoError(t, c.SetParams(ctx, p))
		require.Equal(t, 1, c.ArmedTimers())
	}
	require.Equal(t, 4, c.Params())

	c.Unmount()
	require.Equal(t, 0, c.ArmedTimers())
	require.NoError(t, fc.BlockUntilContext(ctx, 0))
}

func TestTickRunsSilentRefresh(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &recorder{}
	var fail atomic.Bool
	fail.Store(true)
	c := newTestCycle(fc, 30*time.Second, func(_ context.Context, p int, _ string, m Mode) (string, error) {
		rec.add(p, m)
		if fail.Load() {
			return "", errors.New("boom")
		}
		return "fresh", nil
	})

	require.Error(t, c.Mount(context.Background()))
	st := c.Status()
	require.NotNil(t, st.Err)
	require.Equal(t, "yüklenemedi", st.Err.Message)
	require.False(t, st.Loading)

	// A failing silent refresh keeps the error panel as it is.
	fc.Advance(30 * time.Second)
	require.Eventually(t, func() bool { return len(rec.all()) == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !c.Status().IsAutoRefreshing }, time.Second, 5*time.Millisecond)
	require.NotNil(t, c.Status().Err)

	fail.Store(false)
	fc.Advance(30 * time.Second)
	require.Eventually(t, func() bool { return c.Snapshot() == "fresh" }, time.Second, 5*time.Millisecond)
	require.Nil(t, c.Status().Err)
	require.Equal(t, ModeSilent, rec.all()[2].mode)

	c.Unmount()
}

func TestNoIntervalNeverArms(t *testing.T) {
	c := newTestCycle(clockwork.NewFakeClock(), 0, func(context.Context, int, string, Mode) (string, error) {
		return "ok", nil
	})
	require.NoError(t, c.Mount(context.Background()))
	require.Equal(t, 0, c.ArmedTimers())
	c.Unmount()
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	c := newTestCycle(clockwork.NewFakeClock(), 0, func(_ context.Context, p int, _ string, _ Mode) (string, error) {
		if p == 1 {
			close(started)
			<-release
			return "old", nil
		}
		return "new", nil
	})

	done := make(chan error)
	go func() { done <- c.Mount(context.Background()) }()
	<-started

	require.NoError(t, c.SetParams(context.Background(), 2))
	require.Equal(t, "new", c.Snapshot())

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, "new", c.Snapshot())
	require.False(t, c.Status().Loading)
	c.Unmount()
}

func TestUnmountDiscardsInFlightLoad(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	c := newTestCycle(clockwork.NewFakeClock(), 30*time.Second, func(ctx context.Context, _ int, _ string, _ Mode) (string, error) {
		close(started)
		<-release
		return "late", nil
	})

	done := make(chan error)
	go func() { done <- c.Mount(context.Background()) }()
	<-started
	c.Unmount()
	close(release)
	require.NoError(t, <-done)

	require.Equal(t, "", c.Snapshot())
	require.Equal(t, 0, c.ArmedTimers())
	require.False(t, c.Status().Loading)
}

func TestRefreshClearsFlagOnFailureAndRetryReruns(t *testing.T) {
	var calls atomic.Int32
	c := newTestCycle(clockwork.NewFakeClock(), 0, func(context.Context, int, string, Mode) (string, error) {
		if calls.Add(1) == 2 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	ctx := context.Background()
	require.NoError(t, c.Mount(ctx))

	require.Error(t, c.Refresh(ctx))
	st := c.Status()
	require.False(t, st.Refreshing)
	require.NotNil(t, st.Err)

	require.NoError(t, c.Retry(ctx))
	require.Nil(t, c.Status().Err)
	require.EqualValues(t, 3, calls.Load())
	c.Unmount()
}

func TestRefilterKeepsTimerAndUsesItsOwnMessage(t *testing.T) {
	fc := clockwork.NewFakeClock()
	rec := &recorder{}
	c := NewCycle(CycleConfig{Name: "test", Interval: time.Minute, Clock: fc, ErrorMessage: "a", RefilterErrorMessage: "b"}, 1, "",
		func(_ context.Context, p int, _ string, m Mode) (string, error) {
			rec.add(p, m)
			if m == ModeRefilter {
				return "", errors.New("boom")
			}
			return "ok", nil
		})
	ctx := context.Background()
	require.NoError(t, c.Mount(ctx))
	before := c.Status().LastUpdateTime

	fc.Advance(10 * time.Second)
	require.Error(t, c.Refilter(ctx, func(p *int) { *p = 7 }))
	require.Equal(t, "b", c.Status().Err.Message)
	require.Equal(t, before, c.Status().LastUpdateTime)
	require.Equal(t, 1, c.ArmedTimers())
	require.Equal(t, fetchCall{7, ModeRefilter}, rec.all()[1])
	c.Unmount()
}

func TestObserverSeesChanges(t *testing.T) {
	var seen atomic.Int32
	c := NewCycle(CycleConfig{Name: "obs", Clock: clockwork.NewFakeClock(), OnChange: func(name string, _ Status) {
		if name == "obs" {
			seen.Add(1)
		}
	}}, 0, 0, func(context.Context, int, int, Mode) (int, error) { return 1, nil })

	require.NoError(t, c.Mount(context.Background()))
	c.Update(func(v *int) { *v++ })
	require.Equal(t, 2, c.Snapshot())
	require.Greater(t, seen.Load(), int32(1))
	c.Unmount()
}

func TestRefilterDuringMountStillArmsTimer(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	c := newTestCycle(clockwork.NewFakeClock(), time.Minute, func(_ context.Context, p int, _ string, m Mode) (string, error) {
		if m == ModeInitial {
			close(started)
			<-release
			return "initial", nil
		}
		return "filtered", nil
	})

	done := make(chan error)
	go func() { done <- c.Mount(context.Background()) }()
	<-started

	require.NoError(t, c.Refilter(context.Background(), func(p *int) { *p = 7 }))
	close(release)
	require.NoError(t, <-done)

	require.True(t, c.Status().Mounted)
	require.Equal(t, 1, c.ArmedTimers())
	require.Equal(t, "filtered", c.Snapshot())
	require.Equal(t, 7, c.Params())
	c.Unmount()
	require.Equal(t, 0, c.ArmedTimers())
}
