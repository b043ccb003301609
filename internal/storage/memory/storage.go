package memorystorage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lomoval/eventcalendar/internal/storage"
)

type Storage struct {
	mu    sync.RWMutex
	data  map[string]storage.Event
	order []string // insertion order, the natural order of the store
}

func New() *Storage {
	return &Storage{data: make(map[string]storage.Event)}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Ping(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) AddEvent(_ context.Context, e *storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, ok := s.data[e.ID]; ok {
		return fmt.Errorf("duplicate ID %q: %w", e.ID, storage.ErrDuplicateEventID)
	}
	s.data[e.ID] = *e
	s.order = append(s.order, e.ID)
	return nil
}

func (s *Storage) RemoveEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	delete(s.data, id)
	for i, orderedID := range s.order {
		if orderedID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) ListEvents(_ context.Context) ([]storage.Event, error) {
	return s.selectWhere(func(storage.Event) bool { return true }), nil
}

func (s *Storage) ListEventsInRange(_ context.Context, startTime time.Time, endTime time.Time) ([]storage.Event, error) {
	return s.selectWhere(func(e storage.Event) bool { return e.InRange(startTime, endTime) }), nil
}

func (s *Storage) selectWhere(match func(storage.Event) bool) []storage.Event {
	events := make([]storage.Event, 0)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if event := s.data[id]; match(event) {
			events = append(events, event)
		}
	}
	return events
}
