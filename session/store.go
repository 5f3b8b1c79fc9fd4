// Package session holds the authenticated-session state machine that
// sits between an identity provider and the rest of the application.
// It serializes concurrent auth calls so that only the most recent
// operation is allowed to change the visible user and session.
package session

import (
	"context"
	"sync"

	"github.com/rafaelcosta/filantropia-api/identity"
)

// State is the lifecycle phase of the store.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
)

// Notifier receives user-facing notifications emitted by the store.
type Notifier interface {
	Notify(severity, title, message string)
}

// Snapshot is a point-in-time copy of the store's visible state.
type Snapshot struct {
	State   State
	User    *identity.User
	Session *identity.Session
	Loading bool
}

// Store tracks the current user and session for a single client.
// All methods are safe for concurrent use.
type Store struct {
	provider identity.Provider
	notifier Notifier

	mu       sync.Mutex
	state    State
	user     *identity.User
	session  *identity.Session
	inflight int
	seq      uint64

	initOnce sync.Once
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStore creates an uninitialized store over the given provider.
// notifier may be nil when the caller has no notification surface.
func NewStore(provider identity.Provider, notifier Notifier) *Store {
	return &Store{
		provider: provider,
		notifier: notifier,
		state:    StateUninitialized,
		stop:     make(chan struct{}),
	}
}

// Initialize restores the session behind the given token and starts
// mirroring provider push events. It runs at most once; later calls are
// no-ops. A provider failure still leaves the store ready, anonymous.
func (s *Store) Initialize(ctx context.Context, accessToken string) {
	s.initOnce.Do(func() {
		s.mu.Lock()
		s.state = StateInitializing
		s.mu.Unlock()

		var user *identity.User
		var sess *identity.Session

		if restored, err := s.provider.GetSession(ctx, accessToken); err == nil && restored != nil {
			sess = restored
			if u, err := s.provider.GetUser(ctx, accessToken); err == nil {
				user = u
			}
		}

		s.mu.Lock()
		s.state = StateReady
		s.user = user
		s.session = sess
		s.mu.Unlock()

		s.wg.Add(1)
		go s.mirrorEvents()
	})
}

// SignIn authenticates through the provider. On failure the visible
// user and session are untouched and the notifier gets an error
// notification carrying the provider's message.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	token := s.begin()

	user, sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.fail(token, "Sign in failed", err)
		return err
	}

	s.complete(token, user, sess)
	return nil
}

// SignUp registers through the provider. Failure semantics match SignIn.
func (s *Store) SignUp(ctx context.Context, email, password string, metadata *identity.UserMetadata) error {
	token := s.begin()

	user, sess, err := s.provider.SignUp(ctx, email, password, metadata)
	if err != nil {
		s.fail(token, "Sign up failed", err)
		return err
	}

	s.complete(token, user, sess)
	return nil
}

// SignOut revokes the current session. Failure semantics match SignIn:
// the visible user and session stay untouched and the notifier gets the
// provider's message.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	current := s.session
	s.mu.Unlock()

	token := s.begin()

	if current != nil {
		if err := s.provider.SignOut(ctx, current.AccessToken); err != nil {
			s.fail(token, "Sign out failed", err)
			return err
		}
	}

	s.complete(token, nil, nil)
	return nil
}

// Snapshot returns a copy of the store's visible state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:   s.state,
		User:    s.user,
		Session: s.session,
		Loading: s.inflight > 0,
	}
}

// Close stops the event-mirroring goroutine. It does not close the
// provider, which may be shared.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// begin registers an in-flight operation and hands back its sequence
// token. Only the holder of the latest token may mutate state.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.seq++
	return s.seq
}

// complete applies an operation's result unless a newer operation has
// started since, in which case only the loading counter is released.
func (s *Store) complete(token uint64, user *identity.User, sess *identity.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if token == s.seq {
		s.user = user
		s.session = sess
	}
}

func (s *Store) fail(_ uint64, title string, err error) {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Notify("error", title, err.Error())
	}
}

// mirrorEvents applies provider push events (token refresh, forced
// sign-out) to the visible state until Close or provider shutdown.
func (s *Store) mirrorEvents() {
	defer s.wg.Done()
	events := s.provider.Events()
	for {
		select {
		case <-s.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.applyEvent(ev)
		}
	}
}

func (s *Store) applyEvent(ev identity.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case identity.EventTokenRefreshed:
		if s.user != nil && s.user.ID == ev.UserID && ev.Session != nil {
			s.session = ev.Session
		}
	case identity.EventSignedOut:
		if s.user != nil && s.user.ID == ev.UserID {
			s.user = nil
			s.session = nil
		}
	}
}
