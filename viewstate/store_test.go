package viewstate

import (
	"sync"
	"testing"
	"time"
)

// memoryPersister records Save calls for assertions.
type memoryPersister struct {
	mu    sync.Mutex
	saved map[uint]Persisted
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{saved: make(map[uint]Persisted)}
}

func (p *memoryPersister) Load(userID uint) (*Persisted, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if state, ok := p.saved[userID]; ok {
		return &state, nil
	}
	return nil, nil
}

func (p *memoryPersister) Save(userID uint, state Persisted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved[userID] = state
	return nil
}

func TestDefaults(t *testing.T) {
	store := NewStore(1, nil)
	defer store.Close()

	snap := store.Snapshot()
	if snap.Viewport != DefaultViewport() {
		t.Errorf("expected default viewport, got %+v", snap.Viewport)
	}
	if snap.Layout != DefaultLayout() {
		t.Errorf("expected default layout, got %+v", snap.Layout)
	}
	if len(snap.Modals) != 0 || len(snap.Notifications) != 0 {
		t.Errorf("expected empty modals and notifications, got %+v", snap)
	}
}

func TestModals(t *testing.T) {
	store := NewStore(1, nil)
	defer store.Close()

	store.OpenModal("create-activity")
	if !store.Snapshot().Modals["create-activity"] {
		t.Error("expected modal open")
	}

	store.CloseModal("create-activity")
	if len(store.Snapshot().Modals) != 0 {
		t.Error("expected modal closed")
	}
}

func TestNotificationIDs(t *testing.T) {
	store := NewStore(1, nil)
	defer store.Close()

	id := store.Notify("error", "t", "m")
	if len(id) != 9 {
		t.Errorf("expected 9-character id, got %q", id)
	}

	other := store.Notify("error", "t2", "m2")
	if id == other {
		t.Error("notification ids must differ")
	}
}

func TestNotificationExpirySparesErrors(t *testing.T) {
	store := NewStore(1, nil)
	defer store.Close()

	store.Notify("error", "broken", "stays")
	store.Notify("success", "done", "goes away")

	if n := len(store.Snapshot().Notifications); n != 2 {
		t.Fatalf("expected 2 notifications, got %d", n)
	}

	deadline := time.Now().Add(notificationTTL + 2*time.Second)
	for time.Now().Before(deadline) {
		if len(store.Snapshot().Notifications) == 1 {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	remaining := store.Snapshot().Notifications
	if len(remaining) != 1 {
		t.Fatalf("expected only the error to remain, got %d", len(remaining))
	}
	if remaining[0].Severity != "error" {
		t.Errorf("expected the error notification to survive, got %+v", remaining[0])
	}
}

func TestDismissNotification(t *testing.T) {
	store := NewStore(1, nil)
	defer store.Close()

	id := store.Notify("error", "t", "m")
	store.DismissNotification(id)

	if len(store.Snapshot().Notifications) != 0 {
		t.Error("expected notification dismissed")
	}

	// Unknown ids are a no-op.
	store.DismissNotification("nope")
}

func TestClearNotifications(t *testing.T) {
	store := NewStore(1, nil)
	defer store.Close()

	store.Notify("error", "t", "m")
	store.Notify("success", "t", "m")
	store.ClearNotifications()

	if len(store.Snapshot().Notifications) != 0 {
		t.Error("expected all notifications cleared")
	}
}

func TestPersistsViewportAndLayoutOnly(t *testing.T) {
	persister := newMemoryPersister()
	store := NewStore(42, persister)
	defer store.Close()

	store.OpenModal("settings")
	store.Notify("info", "hello", "")

	bearing := 45.0
	pitch := 30.0
	viewport := Viewport{Longitude: -46.7, Latitude: -23.4, Zoom: 8, Bearing: &bearing, Pitch: &pitch}
	store.SetViewport(viewport)
	store.SetLayout(Layout{ShowMetrics: true, ShowMap: false, ShowActivities: true, ChartType: "line", SidebarCollapsed: true})

	persister.mu.Lock()
	saved := persister.saved[42]
	persister.mu.Unlock()

	if saved.Viewport != viewport {
		t.Errorf("expected persisted viewport %+v, got %+v", viewport, saved.Viewport)
	}
	if saved.Viewport.Bearing == nil || *saved.Viewport.Bearing != 45 ||
		saved.Viewport.Pitch == nil || *saved.Viewport.Pitch != 30 {
		t.Errorf("expected bearing and pitch persisted, got %+v", saved.Viewport)
	}
	if saved.Layout.ShowMap || !saved.Layout.ShowMetrics || !saved.Layout.SidebarCollapsed ||
		saved.Layout.ChartType != "line" {
		t.Errorf("expected persisted layout, got %+v", saved.Layout)
	}
}

func TestConcurrentViewportWritesPersistLastWriter(t *testing.T) {
	persister := newMemoryPersister()
	store := NewStore(42, persister)
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(zoom float64) {
			defer wg.Done()
			store.SetViewport(Viewport{Longitude: -46.6, Latitude: -23.5, Zoom: zoom})
		}(float64(i))
	}
	wg.Wait()

	persister.mu.Lock()
	saved := persister.saved[42]
	persister.mu.Unlock()

	// The persisted viewport must match whatever won in memory.
	if saved.Viewport != store.Snapshot().Viewport {
		t.Errorf("persisted viewport %+v diverged from in-memory %+v",
			saved.Viewport, store.Snapshot().Viewport)
	}
}

func TestRestoresPersistedState(t *testing.T) {
	persister := newMemoryPersister()
	persister.saved[42] = Persisted{
		Viewport: Viewport{Longitude: -40, Latitude: -20, Zoom: 6},
		Layout:   Layout{ShowMap: true, ChartType: "line"},
	}

	store := NewStore(42, persister)
	defer store.Close()

	snap := store.Snapshot()
	if snap.Viewport.Zoom != 6 || snap.Layout.ChartType != "line" {
		t.Errorf("expected restored state, got %+v", snap)
	}
}

func TestManagerReturnsSameStorePerUser(t *testing.T) {
	m := NewManager(nil)
	defer m.Close()

	a := m.ForUser(1)
	b := m.ForUser(1)
	c := m.ForUser(2)

	if a != b {
		t.Error("same user must get the same store")
	}
	if a == c {
		t.Error("different users must get different stores")
	}
}
