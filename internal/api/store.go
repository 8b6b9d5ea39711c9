package api

import (
	"context"
	"sync"
	"time"

	"car-mzansi-connect/internal/finance/wizard"

	"github.com/google/uuid"
)

// Factory builds a wizard wired to the store's notifier and close hook.
type Factory func(id string, notifier wizard.Notifier, onClose func(id string)) *wizard.Controller

type entry struct {
	ctrl     *wizard.Controller
	notes    []wizard.Notification
	lastSeen time.Time
}

// Store holds the wizards opened through the API. Wizards leave the store
// when they close, either explicitly, after the success dwell, or when idle
// longer than the configured expiry.
type Store struct {
	factory Factory
	idle    time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func NewStore(factory Factory, idle time.Duration) *Store {
	return &Store{
		factory: factory,
		idle:    idle,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Create registers a new closed wizard.
func (s *Store) Create() *wizard.Controller {
	id := uuid.NewString()
	ctrl := s.factory(id, wizard.NotifierFunc(s.notify), s.remove)

	s.mu.Lock()
	s.entries[ctrl.ID()] = &entry{ctrl: ctrl, lastSeen: s.now()}
	s.mu.Unlock()
	return ctrl
}

func (s *Store) Get(id string) (*wizard.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.ctrl, true
}

// Drain returns and clears the notifications raised by a wizard.
func (s *Store) Drain(id string) []wizard.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	notes := e.notes
	e.notes = nil
	return notes
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// notify runs under the controller lock and must not call back into it.
func (s *Store) notify(n wizard.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[n.WizardID]; ok {
		e.notes = append(e.notes, n)
	}
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Sweep closes wizards idle since before now minus the expiry.
func (s *Store) Sweep(now time.Time) int {
	if s.idle <= 0 {
		return 0
	}

	s.mu.Lock()
	var stale []*wizard.Controller
	for _, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idle {
			stale = append(stale, e.ctrl)
		}
	}
	s.mu.Unlock()

	for _, ctrl := range stale {
		if err := ctrl.Close(); err != nil {
			// never opened, so no close hook ran
			s.remove(ctrl.ID())
		}
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
