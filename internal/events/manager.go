package events

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager is the in-memory event store keyed by event id.
type Manager struct {
	mu     sync.RWMutex
	events map[uuid.UUID]Event
}

func NewManager() *Manager {
	return &Manager{
		events: make(map[uuid.UUID]Event),
	}
}

// Add stores e under its id.
func (m *Manager) Add(e Event) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[e.ID] = e
	return e.ID
}

func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(m.events, id)
	return nil
}

// Edit replaces the event stored under id. The stored event keeps id
// whatever the replacement's own id is.
func (m *Manager) Edit(id uuid.UUID, updated Event) error {
	if !updated.End.After(updated.Start) {
		return fmt.Errorf("edit %s: %w", id, ErrInvalidTimeRange)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return fmt.Errorf("edit %s: %w", id, ErrNotFound)
	}
	updated.ID = id
	m.events[id] = updated
	return nil
}

func (m *Manager) Get(id uuid.UUID) (Event, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[id]
	return e, ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}

// List returns every stored event ordered by start time.
func (m *Manager) List() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	sortEvents(out)
	return out
}

// ForDay returns the events that start on day's calendar date. An event
// running past midnight is only listed on its start day.
func (m *Manager) ForDay(day time.Time) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Event
	for _, e := range m.events {
		if e.OnDay(day) {
			out = append(out, e)
		}
	}
	sortEvents(out)
	return out
}

// Replace removes the events in old that are still present and adds the
// events in add, as one step. It returns the ids now stored for add.
func (m *Manager) Replace(old []uuid.UUID, add []Event) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range old {
		delete(m.events, id)
	}

	ids := make([]uuid.UUID, 0, len(add))
	for _, e := range add {
		m.events[e.ID] = e
		ids = append(ids, e.ID)
	}
	return ids
}

func sortEvents(evs []Event) {
	sort.SliceStable(evs, func(i, j int) bool {
		if !evs[i].Start.Equal(evs[j].Start) {
			return evs[i].Start.Before(evs[j].Start)
		}
		if evs[i].Title != evs[j].Title {
			return evs[i].Title < evs[j].Title
		}
		return evs[i].ID.String() < evs[j].ID.String()
	})
}
