package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFoundEvent    = errors.New("event not found")
	ErrDuplicateEventID = errors.New("event with same ID exists")
)

type Storage interface {
	Connect(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	AddEvent(ctx context.Context, e *Event) error
	RemoveEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context) ([]Event, error)
	// ListEventsInRange selects events starting in [start:end].
	ListEventsInRange(ctx context.Context, start time.Time, end time.Time) ([]Event, error)
}
