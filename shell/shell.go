// Package shell is the dashboard's top level: it restores or establishes the
// session, watches for expiry, and keeps exactly one section mounted.
package shell

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/auth"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/session"
	"github.com/yenikoza/tablet-dashboard/view"
)

const DefaultPollInterval = 5 * time.Minute

type State int

const (
	Booting State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Booting:
		return "booting"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Authenticator is the remote half of the session lifecycle.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	CurrentUser(ctx context.Context, token string) (*session.User, error)
	Logout(ctx context.Context, token string) error
}

var _ Authenticator = (*auth.Gateway)(nil)

// ControllerFactory builds a fresh controller for a section.
type ControllerFactory interface {
	New(section string) (view.Controller, bool)
}

// Event is sent to subscribers on every state or section change.
type Event struct {
	State   State
	Section Section
	User    *session.User
}

type Shell struct {
	store        *session.Store
	auth         Authenticator
	location     Location
	factory      ControllerFactory
	clock        clockwork.Clock
	pollInterval time.Duration

	// routeMu serializes section switches so mounts never interleave.
	routeMu sync.Mutex

	mu      sync.Mutex
	base    context.Context
	booted  bool
	state   State
	user    *session.User
	section Section
	active  view.Controller

	pollTicker clockwork.Ticker
	pollStop   chan struct{}
	unlisten   func()

	nextSub int
	subs    map[int]func(Event)
}

type Option func(*Shell)

func WithClock(c clockwork.Clock) Option {
	return func(s *Shell) { s.clock = c }
}

func WithPollInterval(d time.Duration) Option {
	return func(s *Shell) { s.pollInterval = d }
}

func WithControllerFactory(f ControllerFactory) Option {
	return func(s *Shell) { s.factory = f }
}

func NewShell(store *session.Store, authenticator Authenticator, location Location, opts ...Option) (*Shell, error) {
	if store == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewShell] session store is required")
	}
	if authenticator == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewShell] authenticator is required")
	}
	if location == nil {
		location = NewMemoryLocation("")
	}
	s := &Shell{
		store:        store,
		auth:         authenticator,
		location:     location,
		clock:        clockwork.NewRealClock(),
		pollInterval: DefaultPollInterval,
		state:        Booting,
		section:      Overview,
		subs:         map[int]func(Event){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Boot restores a stored session. It runs once; the shell always leaves
// Booting, whatever the outcome. No network call is made unless a complete,
// unexpired session is stored.
func (s *Shell) Boot(ctx context.Context) error {
	s.mu.Lock()
	if s.booted {
		s.mu.Unlock()
		return errors.ErrAlreadyBooted
	}
	s.booted = true
	s.base = context.WithoutCancel(ctx)
	s.mu.Unlock()

	sess, ok := s.store.Load(ctx)
	if !ok {
		log.Debug().Msg("no stored session")
		s.enterUnauthenticated()
		return nil
	}
	if !s.store.IsValid(sess.Token) {
		log.Info().Msg("stored session expired, clearing")
		s.clearStore(ctx)
		s.enterUnauthenticated()
		return nil
	}

	user, err := s.auth.CurrentUser(ctx, sess.Token)
	if err != nil {
		log.Err(err).Msg("[Boot] session rejected, clearing")
		s.clearStore(ctx)
		s.enterUnauthenticated()
		return nil
	}
	log.Info().Str("user", user.Username).Msg("session restored")
	s.enterAuthenticated(user)
	return nil
}

// Login authenticates and persists the session. On failure the state is
// unchanged and the error carries the message to show.
func (s *Shell) Login(ctx context.Context, username, password string) (*session.User, error) {
	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, res.Session()); err != nil {
		return nil, errors.Wrapf(err, "[Login] saving session")
	}

	s.mu.Lock()
	if s.base == nil {
		s.base = context.WithoutCancel(ctx)
	}
	s.booted = true
	s.mu.Unlock()

	user := res.User
	log.Info().Str("user", user.Username).Msg("logged in")
	s.enterAuthenticated(&user)
	return &user, nil
}

// Logout ends the session. The server is told if a token is stored, but
// whatever it answers the local session is cleared and the shell is left
// Unauthenticated on Overview.
func (s *Shell) Logout(ctx context.Context) {
	if tok, ok := s.store.LoadToken(ctx); ok {
		if err := s.auth.Logout(ctx, tok); err != nil {
			log.Err(err).Msg("[Logout] server logout failed, clearing local session anyway")
		}
	}
	s.clearStore(ctx)
	s.enterUnauthenticated()
	log.Info().Msg("logged out")
}

// Close stops the expiry poll and unmounts the active section. The stored
// session is kept so the next Boot can restore it.
func (s *Shell) Close() {
	s.mu.Lock()
	s.teardown()
	active := s.active
	s.active = nil
	s.mu.Unlock()

	if active != nil {
		active.Unmount()
	}
}

// Navigate selects a section and mirrors it into the location fragment.
func (s *Shell) Navigate(ctx context.Context, raw string) error {
	sec, err := mustSection(raw)
	if err != nil {
		return err
	}
	if s.State() != Authenticated {
		return errors.Wrapf(errors.ErrNotAuthenticated, "[Navigate] %s", sec)
	}
	s.location.SetFragment(string(sec))
	s.switchTo(sec)
	return nil
}

func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User is a copy of the signed-in profile, nil when signed out.
func (s *Shell) User() *session.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Shell) ActiveSection() Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.section
}

// Active is the mounted controller, nil when signed out or without a
// controller factory.
func (s *Shell) Active() view.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Subscribe registers fn for events and returns its removal.
func (s *Shell) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// PollTimers is the number of live session-expiry timers; one while
// authenticated, otherwise zero.
func (s *Shell) PollTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pollTicker != nil {
		return 1
	}
	return 0
}

func (s *Shell) enterAuthenticated(user *session.User) {
	s.mu.Lock()
	s.teardown()
	s.state = Authenticated
	s.user = user
	s.armPoll()
	s.unlisten = s.location.Listen(s.onFragment)
	s.mu.Unlock()
	s.emit()

	// A fragment present at sign-in wins over the current selection.
	sec := s.ActiveSection()
	if frag, ok := ParseSection(s.location.Fragment()); ok {
		sec = frag
	}
	s.switchTo(sec)
}

func (s *Shell) enterUnauthenticated() {
	s.mu.Lock()
	s.teardown()
	s.state = Unauthenticated
	s.user = nil
	s.section = Overview
	active := s.active
	s.active = nil
	s.mu.Unlock()

	if active != nil {
		active.Unmount()
	}
	s.emit()
}

func (s *Shell) onFragment(fragment string) {
	sec, ok := ParseSection(fragment)
	if !ok {
		log.Debug().Str("fragment", fragment).Msg("ignoring unknown section")
		return
	}
	s.switchTo(sec)
}

// switchTo unmounts the current controller and mounts one for sec. Nothing
// happens if sec is already mounted or the shell is signed out.
func (s *Shell) switchTo(sec Section) {
	s.routeMu.Lock()
	defer s.routeMu.Unlock()

	s.mu.Lock()
	if s.state != Authenticated || (s.section == sec && (s.active != nil || s.factory == nil)) {
		s.mu.Unlock()
		return
	}
	old := s.active
	s.section = sec
	s.active = nil
	var ctrl view.Controller
	if s.factory != nil {
		ctrl, _ = s.factory.New(string(sec))
	}
	s.active = ctrl
	base := s.base
	s.mu.Unlock()

	if old != nil {
		old.Unmount()
	}
	s.emit()
	if ctrl == nil {
		return
	}

	if err := ctrl.Mount(base); err != nil {
		log.Err(err).Str("section", string(sec)).Msg("initial load failed")
	}

	// A logout or another switch may have happened while loading.
	s.mu.Lock()
	stale := s.active != ctrl
	s.mu.Unlock()
	if stale {
		ctrl.Unmount()
	}
}

// armPoll must be called with mu held.
func (s *Shell) armPoll() {
	ticker := s.clock.NewTicker(s.pollInterval)
	stop := make(chan struct{})
	s.pollTicker, s.pollStop = ticker, stop
	base := s.base

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				s.checkExpiry(base, stop)
			}
		}
	}()
}

// teardown removes the expiry poll and the fragment listener. Must be called
// with mu held.
func (s *Shell) teardown() {
	if s.pollTicker != nil {
		s.pollTicker.Stop()
		close(s.pollStop)
		s.pollTicker, s.pollStop = nil, nil
	}
	if s.unlisten != nil {
		s.unlisten()
		s.unlisten = nil
	}
}

// checkExpiry is a local check of the stored token; it never calls the
// server except through the logout it may trigger.
func (s *Shell) checkExpiry(ctx context.Context, stop chan struct{}) {
	s.mu.Lock()
	current := s.pollStop == stop
	s.mu.Unlock()
	if !current {
		return
	}
	if s.store.HasValidToken(ctx) {
		return
	}
	log.Info().Msg("session expired, logging out")
	s.Logout(ctx)
}

func (s *Shell) clearStore(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		log.Err(err).Msg("failed to clear session")
	}
}

func (s *Shell) emit() {
	s.mu.Lock()
	ev := Event{State: s.state, Section: s.section}
	if s.user != nil {
		u := *s.user
		ev.User = &u
	}
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
