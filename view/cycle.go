package view

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mode tells a fetch why it is running, so sections can fetch less on
// background ticks and filter changes.
type Mode int

const (
	ModeInitial Mode = iota
	ModeSilent
	ModeRefilter
)

func (m Mode) String() string {
	switch m {
	case ModeInitial:
		return "initial"
	case ModeSilent:
		return "silent"
	case ModeRefilter:
		return "refilter"
	}
	return "unknown"
}

// FetchFunc loads a full snapshot for params. prev is the snapshot currently
// shown, for fetches that only refresh part of it.
type FetchFunc[P, T any] func(ctx context.Context, params P, prev T, mode Mode) (T, error)

// SectionError is the error panel of a section: a localized message plus the
// action that failed, which Retry re-invokes.
type SectionError struct {
	Message string
	Err     error
	retry   func(context.Context) error
}

func (e *SectionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

// Status is the refresh state a section renders from.
type Status struct {
	Mounted          bool
	Loading          bool
	Refreshing       bool
	IsAutoRefreshing bool
	LastUpdateTime   time.Time
	Err              *SectionError
}

type CycleConfig struct {
	Name string
	// Interval between silent refreshes. Zero disables them.
	Interval time.Duration
	Clock    clockwork.Clock
	// ErrorMessage is shown when an initial load or explicit refresh fails.
	ErrorMessage string
	// RefilterErrorMessage is shown when a filter change fails. Defaults to ErrorMessage.
	RefilterErrorMessage string
	// OnChange is called, outside any lock, after every status or data change.
	OnChange func(name string, st Status)
}

// Cycle owns one section's data and its refresh timer. Results of a fetch
// are applied only if nothing invalidated them (unmount, new params) while
// it was in flight. An explicit refresh and a silent tick that overlap are
// not serialized: whichever finishes last wins.
type Cycle[P, T any] struct {
	cfg   CycleConfig
	fetch FetchFunc[P, T]
	log   zerolog.Logger

	mu         sync.Mutex
	params     P
	data       T
	status     Status
	generation uint64
	epoch      uint64
	// arming moves only when the timer is restarted or stopped. Refilter
	// leaves it alone, so a filter change never cancels a pending arm.
	arming   uint64
	loadingN int
	refreshN int
	silentN  int

	ctx    context.Context
	cancel context.CancelFunc
	ticker clockwork.Ticker
	stop   chan struct{}
	armed  int
}

func (cfg CycleConfig) clock() clockwork.Clock {
	if cfg.Clock == nil {
		return clockwork.NewRealClock()
	}
	return cfg.Clock
}

func NewCycle[P, T any](cfg CycleConfig, params P, initial T, fetch FetchFunc[P, T]) *Cycle[P, T] {
	cfg.Clock = cfg.clock()
	if cfg.RefilterErrorMessage == "" {
		cfg.RefilterErrorMessage = cfg.ErrorMessage
	}
	return &Cycle[P, T]{
		cfg:    cfg,
		fetch:  fetch,
		log:    log.With().Str("section", cfg.Name).Logger(),
		params: params,
		data:   initial,
	}
}

func (c *Cycle[P, T]) Name() string {
	return c.cfg.Name
}

func (c *Cycle[P, T]) Interval() time.Duration {
	return c.cfg.Interval
}

func (c *Cycle[P, T]) Clock() clockwork.Clock {
	return c.cfg.Clock
}

// Mount loads the section once and then arms the silent refresh timer.
// The initial load error is returned and also recorded in Status.
func (c *Cycle[P, T]) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.status.Mounted {
		c.mu.Unlock()
		return nil
	}
	c.status.Mounted = true
	c.epoch++
	c.generation++
	c.arming++
	c.ctx, c.cancel = context.WithCancel(ctx)
	runCtx := c.ctx
	arm := c.arming
	c.mu.Unlock()

	c.log.Debug().Dur("interval", c.cfg.Interval).Msg("mount")
	err := c.LoadInitial(runCtx)
	c.armIfCurrent(arm)
	return err
}

// Unmount stops the timer and invalidates anything still in flight. It is
// safe to call more than once.
func (c *Cycle[P, T]) Unmount() {
	c.mu.Lock()
	if !c.status.Mounted {
		c.mu.Unlock()
		return
	}
	c.status.Mounted = false
	c.epoch++
	c.generation++
	c.arming++
	c.disarm()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loadingN, c.refreshN, c.silentN = 0, 0, 0
	c.status.Loading, c.status.Refreshing, c.status.IsAutoRefreshing = false, false, false
	c.mu.Unlock()

	c.log.Debug().Msg("unmount")
	c.notify()
}

// SetParams replaces the query parameters: the timer is cancelled, the
// section reloads and a fresh timer is armed. Before Mount it only records p.
func (c *Cycle[P, T]) SetParams(ctx context.Context, p P) error {
	c.mu.Lock()
	c.params = p
	if !c.status.Mounted {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	c.arming++
	c.disarm()
	arm := c.arming
	c.mu.Unlock()

	err := c.LoadInitial(ctx)
	c.armIfCurrent(arm)
	return err
}

// Refilter applies mutate to the parameters and re-queries without touching
// the timer or the last update time.
func (c *Cycle[P, T]) Refilter(ctx context.Context, mutate func(*P)) error {
	c.mu.Lock()
	mutate(&c.params)
	if !c.status.Mounted {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen, epoch := c.generation, c.epoch
	params, prev := c.params, c.data
	c.refreshN++
	c.status.Refreshing = true
	c.mu.Unlock()
	c.notify()

	data, err := c.fetch(ctx, params, prev, ModeRefilter)

	c.mu.Lock()
	c.settle(epoch, &c.refreshN)
	c.status.Refreshing = c.refreshN > 0
	if gen != c.generation {
		c.mu.Unlock()
		c.notify()
		return nil
	}
	if err != nil {
		c.status.Err = &SectionError{Message: c.cfg.RefilterErrorMessage, Err: err, retry: func(ctx context.Context) error {
			return c.Refilter(ctx, func(*P) {})
		}}
		c.mu.Unlock()
		c.log.Err(err).Msg("refilter failed")
		c.notify()
		return err
	}
	c.data = data
	c.status.Err = nil
	c.mu.Unlock()
	c.notify()
	return nil
}

// LoadInitial shows the loading state, fetches, and surfaces any failure as
// the section error.
func (c *Cycle[P, T]) LoadInitial(ctx context.Context) error {
	return c.load(ctx, func(ctx context.Context) error { return c.LoadInitial(ctx) })
}

// Refresh is the user-triggered reload. Refreshing is set for its duration
// and always cleared, whatever the outcome.
func (c *Cycle[P, T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if !c.status.Mounted {
		c.mu.Unlock()
		return nil
	}
	epoch := c.epoch
	c.refreshN++
	c.status.Refreshing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.settle(epoch, &c.refreshN)
		c.status.Refreshing = c.refreshN > 0
		c.mu.Unlock()
		c.notify()
	}()
	return c.load(ctx, func(ctx context.Context) error { return c.Refresh(ctx) })
}

func (c *Cycle[P, T]) load(ctx context.Context, retry func(context.Context) error) error {
	c.mu.Lock()
	gen, epoch := c.generation, c.epoch
	params, prev := c.params, c.data
	c.loadingN++
	c.status.Loading = true
	c.status.Err = nil
	c.mu.Unlock()
	c.notify()

	data, err := c.fetch(ctx, params, prev, ModeInitial)

	c.mu.Lock()
	c.settle(epoch, &c.loadingN)
	c.status.Loading = c.loadingN > 0
	if gen != c.generation {
		c.mu.Unlock()
		c.log.Debug().Msg("discarding stale load")
		c.notify()
		return nil
	}
	if err != nil {
		c.status.Err = &SectionError{Message: c.cfg.ErrorMessage, Err: err, retry: retry}
		c.mu.Unlock()
		c.log.Err(err).Msg("load failed")
		c.notify()
		return err
	}
	c.data = data
	c.status.LastUpdateTime = c.cfg.Clock.Now()
	c.mu.Unlock()
	c.notify()
	return nil
}

// LoadSilently is the background refresh. It never shows loading or error
// state; a failure is logged and the next tick tries again.
func (c *Cycle[P, T]) LoadSilently(ctx context.Context) {
	c.mu.Lock()
	if !c.status.Mounted {
		c.mu.Unlock()
		return
	}
	gen, epoch := c.generation, c.epoch
	params, prev := c.params, c.data
	c.silentN++
	c.status.IsAutoRefreshing = true
	c.mu.Unlock()
	c.notify()

	data, err := c.fetch(ctx, params, prev, ModeSilent)

	c.mu.Lock()
	c.settle(epoch, &c.silentN)
	c.status.IsAutoRefreshing = c.silentN > 0
	switch {
	case gen != c.generation:
		c.log.Debug().Msg("discarding stale silent refresh")
	case err != nil:
		c.log.Debug().Err(err).Msg("silent refresh failed")
	default:
		c.data = data
		c.status.LastUpdateTime = c.cfg.Clock.Now()
		c.status.Err = nil
	}
	c.mu.Unlock()
	c.notify()
}

// Retry re-invokes whatever action produced the current error.
func (c *Cycle[P, T]) Retry(ctx context.Context) error {
	c.mu.Lock()
	e := c.status.Err
	c.mu.Unlock()
	if e == nil || e.retry == nil {
		return nil
	}
	return e.retry(ctx)
}

// Fail records a failed user action as the section error.
func (c *Cycle[P, T]) Fail(message string, err error, retry func(context.Context) error) *SectionError {
	se := &SectionError{Message: message, Err: err, retry: retry}
	c.mu.Lock()
	c.status.Err = se
	c.mu.Unlock()
	c.log.Err(err).Str("message", message).Msg("action failed")
	c.notify()
	return se
}

// ClearError drops the section error, as starting a new action does.
func (c *Cycle[P, T]) ClearError() {
	c.mu.Lock()
	changed := c.status.Err != nil
	c.status.Err = nil
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// Update mutates the current snapshot in place, for local edits that follow a
// successful action (marking an alert read, adding an api key).
func (c *Cycle[P, T]) Update(fn func(*T)) {
	c.mu.Lock()
	fn(&c.data)
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns the data currently shown. Callers must not mutate it.
func (c *Cycle[P, T]) Snapshot() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

func (c *Cycle[P, T]) Params() P {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

func (c *Cycle[P, T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ArmedTimers is the number of live refresh timers; never more than one.
func (c *Cycle[P, T]) ArmedTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

func (c *Cycle[P, T]) armIfCurrent(arm uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if arm != c.arming || !c.status.Mounted || c.cfg.Interval <= 0 {
		return
	}
	c.disarm()

	ticker := c.cfg.Clock.NewTicker(c.cfg.Interval)
	stop := make(chan struct{})
	c.ticker, c.stop = ticker, stop
	c.armed++
	ctx := c.ctx

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				c.LoadSilently(ctx)
			}
		}
	}()
}

// disarm must be called with mu held.
func (c *Cycle[P, T]) disarm() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	close(c.stop)
	c.ticker, c.stop = nil, nil
	c.armed--
}

// settle decrements an in-flight counter unless an unmount reset it meanwhile.
// Must be called with mu held.
func (c *Cycle[P, T]) settle(epoch uint64, n *int) {
	if epoch == c.epoch && *n > 0 {
		*n--
	}
}

func (c *Cycle[P, T]) notify() {
	if c.cfg.OnChange == nil {
		return
	}
	c.cfg.OnChange(c.cfg.Name, c.Status())
}
