// Package viewstate keeps per-user UI state on the server: open
// modals, transient notifications, the map viewport and layout
// preferences. Viewport and layout survive restarts through a
// persister; everything else is in-memory only.
package viewstate

import (
	"math/rand"
	"sync"
	"time"
)

const notificationTTL = 5 * time.Second

// Viewport is the map camera position. Bearing and pitch are optional
// and stay nil until a client sets them.
type Viewport struct {
	Longitude float64  `json:"longitude"`
	Latitude  float64  `json:"latitude"`
	Zoom      float64  `json:"zoom"`
	Bearing   *float64 `json:"bearing,omitempty"`
	Pitch     *float64 `json:"pitch,omitempty"`
}

// Layout holds dashboard layout preferences: which panels are shown
// and how the budget chart renders.
type Layout struct {
	ShowMetrics      bool   `json:"show_metrics"`
	ShowMap          bool   `json:"show_map"`
	ShowActivities   bool   `json:"show_activities"`
	ChartType        string `json:"chart_type"` // bar, line
	SidebarCollapsed bool   `json:"sidebar_collapsed"`
}

// Notification is a transient user-facing message. Non-error
// severities expire automatically; errors stay until dismissed.
type Notification struct {
	ID        string    `json:"id"`
	Severity  string    `json:"severity"` // info, success, warning, error
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Persisted is the subset of state written through the persister.
type Persisted struct {
	Viewport Viewport `json:"viewport"`
	Layout   Layout   `json:"layout"`
}

// Persister stores the durable subset of a user's view state.
type Persister interface {
	Load(userID uint) (*Persisted, error)
	Save(userID uint, state Persisted) error
}

// Snapshot is a point-in-time copy of the full view state.
type Snapshot struct {
	Modals        map[string]bool `json:"modals"`
	Notifications []Notification  `json:"notifications"`
	Viewport      Viewport        `json:"viewport"`
	Layout        Layout          `json:"layout"`
}

// DefaultViewport centers on São Paulo.
func DefaultViewport() Viewport {
	return Viewport{Longitude: -46.6333, Latitude: -23.5505, Zoom: 10}
}

// DefaultLayout shows every dashboard panel with a bar chart.
func DefaultLayout() Layout {
	return Layout{ShowMetrics: true, ShowMap: true, ShowActivities: true, ChartType: "bar"}
}

// Store holds one user's view state. Safe for concurrent use.
type Store struct {
	mu            sync.Mutex
	userID        uint
	modals        map[string]bool
	notifications []Notification
	viewport      Viewport
	layout        Layout
	persister     Persister
	timers        map[string]*time.Timer
	rng           *rand.Rand
}

// NewStore creates a store for one user, restoring the persisted
// subset when a persister is given. nil persister means memory-only.
func NewStore(userID uint, persister Persister) *Store {
	s := &Store{
		userID:    userID,
		modals:    make(map[string]bool),
		viewport:  DefaultViewport(),
		layout:    DefaultLayout(),
		persister: persister,
		timers:    make(map[string]*time.Timer),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if persister != nil {
		if saved, err := persister.Load(userID); err == nil && saved != nil {
			s.viewport = saved.Viewport
			s.layout = saved.Layout
		}
	}
	return s
}

// OpenModal marks a modal open.
func (s *Store) OpenModal(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modals[name] = true
}

// CloseModal marks a modal closed.
func (s *Store) CloseModal(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.modals, name)
}

// Notify appends a notification and schedules its expiry. Errors are
// kept until DismissNotification. Returns the notification id.
func (s *Store) Notify(severity, title, message string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := Notification{
		ID:        s.newID(),
		Severity:  severity,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	s.notifications = append(s.notifications, n)

	if severity != "error" {
		id := n.ID
		s.timers[id] = time.AfterFunc(notificationTTL, func() {
			s.DismissNotification(id)
		})
	}
	return n.ID
}

// DismissNotification removes a notification by id. Unknown ids are a no-op.
func (s *Store) DismissNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearNotifications drops every notification, error severity included,
// and stops their expiry timers.
func (s *Store) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.notifications = nil
}

// SetViewport replaces the viewport and persists it. Persistence
// happens under the lock so saves reach the persister in the same
// order the writes took effect in memory.
func (s *Store) SetViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
	s.persistLocked()
}

// SetLayout replaces the layout preferences and persists them.
func (s *Store) SetLayout(l Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = l
	s.persistLocked()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	modals := make(map[string]bool, len(s.modals))
	for k, v := range s.modals {
		modals[k] = v
	}
	notifications := make([]Notification, len(s.notifications))
	copy(notifications, s.notifications)

	return Snapshot{
		Modals:        modals,
		Notifications: notifications,
		Viewport:      s.viewport,
		Layout:        s.layout,
	}
}

// Close stops all pending expiry timers.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// persistLocked writes the durable subset. Caller holds the lock.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	_ = s.persister.Save(s.userID, Persisted{Viewport: s.viewport, Layout: s.layout})
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newID returns a 9-character base36 id. Caller holds the lock.
func (s *Store) newID() string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = idAlphabet[s.rng.Intn(len(idAlphabet))]
	}
	return string(b)
}
