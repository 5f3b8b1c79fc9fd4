package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rafaelcosta/filantropia-api/identity"
)

// fakeProvider scripts identity.Provider behavior for store tests.
type fakeProvider struct {
	mu           sync.Mutex
	user         *identity.User
	session      *identity.Session
	signInErr    error
	signUpErr    error
	signOutErr   error
	getSessCalls int
	events       chan identity.AuthEvent
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		user:    &identity.User{ID: 7, Email: "user@example.com"},
		session: &identity.Session{AccessToken: "access", RefreshToken: "refresh"},
		events:  make(chan identity.AuthEvent, 4),
	}
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password string, metadata *identity.UserMetadata) (*identity.User, *identity.Session, error) {
	if f.signUpErr != nil {
		return nil, nil, f.signUpErr
	}
	return f.user, f.session, nil
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*identity.User, *identity.Session, error) {
	if f.signInErr != nil {
		return nil, nil, f.signInErr
	}
	return f.user, f.session, nil
}

func (f *fakeProvider) SignOut(ctx context.Context, accessToken string) error {
	return f.signOutErr
}

func (f *fakeProvider) GetSession(ctx context.Context, accessToken string) (*identity.Session, error) {
	f.mu.Lock()
	f.getSessCalls++
	f.mu.Unlock()
	if accessToken == "" {
		return nil, nil
	}
	return f.session, nil
}

func (f *fakeProvider) GetUser(ctx context.Context, accessToken string) (*identity.User, error) {
	if accessToken == "" {
		return nil, nil
	}
	return f.user, nil
}

func (f *fakeProvider) Events() <-chan identity.AuthEvent { return f.events }
func (f *fakeProvider) Close() error                      { close(f.events); return nil }

// recordedNotification captures Notifier calls.
type recordedNotification struct {
	Severity, Title, Message string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []recordedNotification
}

func (n *fakeNotifier) Notify(severity, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recordedNotification{severity, title, message})
}

func (n *fakeNotifier) last(t *testing.T) recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		t.Fatal("expected a notification")
	}
	return n.calls[len(n.calls)-1]
}

func TestInitializeAnonymous(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()

	if store.Snapshot().State != StateUninitialized {
		t.Fatal("new store must start uninitialized")
	}

	store.Initialize(context.Background(), "")

	snap := store.Snapshot()
	if snap.State != StateReady {
		t.Errorf("expected ready, got %s", snap.State)
	}
	if snap.User != nil || snap.Session != nil {
		t.Error("empty token must leave the store anonymous")
	}
}

func TestInitializeRestoresSession(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()

	store.Initialize(context.Background(), "access")

	snap := store.Snapshot()
	if snap.State != StateReady || snap.User == nil || snap.User.ID != 7 {
		t.Errorf("expected restored user, got %+v", snap)
	}
}

func TestInitializeRunsOnce(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()

	store.Initialize(context.Background(), "access")
	store.Initialize(context.Background(), "other")
	store.Initialize(context.Background(), "")

	provider.mu.Lock()
	calls := provider.getSessCalls
	provider.mu.Unlock()
	if calls != 1 {
		t.Errorf("initialize must hit the provider once, got %d calls", calls)
	}
}

func TestSignInSuccess(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()
	store.Initialize(context.Background(), "")

	if err := store.SignIn(context.Background(), "user@example.com", "pw"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	snap := store.Snapshot()
	if snap.User == nil || snap.Session == nil || snap.Loading {
		t.Errorf("unexpected state after sign in: %+v", snap)
	}
}

func TestSignInFailureLeavesStateUntouched(t *testing.T) {
	provider := newFakeProvider()
	notifier := &fakeNotifier{}
	store := NewStore(provider, notifier)
	defer store.Close()
	store.Initialize(context.Background(), "")

	provider.signInErr = errors.New("invalid email or password")
	err := store.SignIn(context.Background(), "user@example.com", "wrong")
	if err == nil {
		t.Fatal("expected sign in error")
	}

	snap := store.Snapshot()
	if snap.Loading {
		t.Error("loading must return to false after failure")
	}
	if snap.User != nil || snap.Session != nil {
		t.Error("failed sign in must not alter user or session")
	}

	n := notifier.last(t)
	if n.Severity != "error" || n.Message != "invalid email or password" {
		t.Errorf("notification must carry the provider message, got %+v", n)
	}
}

func TestSignOutClearsState(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()
	store.Initialize(context.Background(), "access")

	if err := store.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}

	snap := store.Snapshot()
	if snap.User != nil || snap.Session != nil {
		t.Errorf("expected cleared state, got %+v", snap)
	}
}

func TestSignOutFailureLeavesStateUntouched(t *testing.T) {
	provider := newFakeProvider()
	notifier := &fakeNotifier{}
	store := NewStore(provider, notifier)
	defer store.Close()
	store.Initialize(context.Background(), "access")

	provider.signOutErr = errors.New("revocation backend unavailable")
	err := store.SignOut(context.Background())
	if err == nil {
		t.Fatal("expected sign out error")
	}

	snap := store.Snapshot()
	if snap.Loading {
		t.Error("loading must return to false after failure")
	}
	if snap.User == nil || snap.Session == nil {
		t.Error("failed sign out must not alter user or session")
	}

	n := notifier.last(t)
	if n.Severity != "error" || n.Message != "revocation backend unavailable" {
		t.Errorf("notification must carry the provider message, got %+v", n)
	}
}

func TestStaleResponseDoesNotOverwrite(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()
	store.Initialize(context.Background(), "")

	// An older operation completing after a newer one must not win.
	first := store.begin()
	second := store.begin()

	newer := &identity.Session{AccessToken: "newer"}
	store.complete(second, provider.user, newer)
	store.complete(first, provider.user, &identity.Session{AccessToken: "older"})

	snap := store.Snapshot()
	if snap.Session == nil || snap.Session.AccessToken != "newer" {
		t.Errorf("stale completion overwrote newer state: %+v", snap.Session)
	}
	if snap.Loading {
		t.Error("all operations completed, loading must be false")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestEventMirroringTokenRefresh(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()
	store.Initialize(context.Background(), "access")

	refreshed := &identity.Session{AccessToken: "rotated"}
	provider.events <- identity.AuthEvent{Type: identity.EventTokenRefreshed, UserID: 7, Session: refreshed}

	waitFor(t, func() bool {
		snap := store.Snapshot()
		return snap.Session != nil && snap.Session.AccessToken == "rotated"
	})
}

func TestEventMirroringIgnoresOtherUsers(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()
	store.Initialize(context.Background(), "access")

	provider.events <- identity.AuthEvent{Type: identity.EventSignedOut, UserID: 99}
	// Give the mirror goroutine a moment to consume the event.
	provider.events <- identity.AuthEvent{Type: identity.EventTokenRefreshed, UserID: 7, Session: &identity.Session{AccessToken: "x"}}

	waitFor(t, func() bool {
		snap := store.Snapshot()
		return snap.Session != nil && snap.Session.AccessToken == "x"
	})

	if store.Snapshot().User == nil {
		t.Error("sign-out event for another user must not clear the store")
	}
}

func TestEventMirroringSignOut(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	defer store.Close()
	store.Initialize(context.Background(), "access")

	provider.events <- identity.AuthEvent{Type: identity.EventSignedOut, UserID: 7}

	waitFor(t, func() bool {
		snap := store.Snapshot()
		return snap.User == nil && snap.Session == nil
	})
}

func TestCloseStopsMirroring(t *testing.T) {
	provider := newFakeProvider()
	store := NewStore(provider, nil)
	store.Initialize(context.Background(), "access")

	store.Close()

	// After Close the goroutine is gone; events pile up unread and the
	// store keeps its last state.
	provider.events <- identity.AuthEvent{Type: identity.EventSignedOut, UserID: 7}
	time.Sleep(50 * time.Millisecond)

	if store.Snapshot().User == nil {
		t.Error("store must not mirror events after Close")
	}
}
