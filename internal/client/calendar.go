package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lomoval/eventcalendar/internal/storage"
	"github.com/lomoval/eventcalendar/internal/util"
)

const (
	DefaultDuration = 15
	DefaultType     = "Work"
)

var (
	ErrSlotInPast      = errors.New("cannot create events in the past")
	ErrNameRequired    = errors.New("event name is required")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
)

// DisplayEvent is an event as shown to the user. Time is its start and
// End is derived from Time and Duration on every call.
type DisplayEvent struct {
	storage.Event
}

func newDisplayEvent(e storage.Event) DisplayEvent {
	return DisplayEvent{Event: e}
}

// Draft is an event being composed before submission.
type Draft struct {
	Start       time.Time
	Name        string
	Duration    int
	Type        string
	Description string
}

type Service interface {
	ListEvents(ctx context.Context) ([]storage.Event, error)
	Summary(ctx context.Context, rng string) ([]storage.Event, error)
	CreateEvent(ctx context.Context, req EventRequest) (storage.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type Calendar struct {
	api    Service
	now    func() time.Time
	events []DisplayEvent
}

func NewCalendar(api Service, now func() time.Time) *Calendar {
	if now == nil {
		now = time.Now
	}
	return &Calendar{api: api, now: now}
}

// Events returns the list loaded by the last Refresh.
func (c *Calendar) Events() []DisplayEvent {
	return c.events
}

func (c *Calendar) Refresh(ctx context.Context) ([]DisplayEvent, error) {
	events, err := c.api.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	c.events = toDisplay(events)
	return c.events, nil
}

// Summary shows a window without replacing the loaded list.
func (c *Calendar) Summary(ctx context.Context, rng string) ([]DisplayEvent, error) {
	events, err := c.api.Summary(ctx, rng)
	if err != nil {
		return nil, err
	}
	return toDisplay(events), nil
}

func (c *Calendar) SelectSlot(start time.Time) (Draft, error) {
	start = util.TruncateToMinute(start)
	if start.Before(util.TruncateToMinute(c.now())) {
		return Draft{}, ErrSlotInPast
	}
	return Draft{Start: start, Duration: DefaultDuration, Type: DefaultType}, nil
}

// Submit sends the draft and reloads the list on success.
func (c *Calendar) Submit(ctx context.Context, d Draft) (DisplayEvent, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return DisplayEvent{}, ErrNameRequired
	}
	if d.Duration <= 0 {
		return DisplayEvent{}, ErrInvalidDuration
	}
	typ := d.Type
	if typ == "" {
		typ = DefaultType
	}

	e, err := c.api.CreateEvent(ctx, EventRequest{
		Name:        name,
		Time:        d.Start,
		Duration:    d.Duration,
		Type:        typ,
		Description: d.Description,
	})
	if err != nil {
		return DisplayEvent{}, err
	}
	if _, err := c.Refresh(ctx); err != nil {
		return newDisplayEvent(e), fmt.Errorf("event created, failed to reload events: %w", err)
	}
	return newDisplayEvent(e), nil
}

// Delete removes the event when confirm agrees. A nil confirm declines.
// It reports whether a request was sent.
func (c *Calendar) Delete(ctx context.Context, e DisplayEvent, confirm func(DisplayEvent) bool) (bool, error) {
	if confirm == nil || !confirm(e) {
		return false, nil
	}
	if err := c.api.DeleteEvent(ctx, e.ID); err != nil {
		return true, err
	}
	if _, err := c.Refresh(ctx); err != nil {
		return true, fmt.Errorf("event deleted, failed to reload events: %w", err)
	}
	return true, nil
}

func toDisplay(events []storage.Event) []DisplayEvent {
	result := make([]DisplayEvent, 0, len(events))
	for _, e := range events {
		result = append(result, newDisplayEvent(e))
	}
	return result
}
