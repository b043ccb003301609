package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lomoval/eventcalendar/internal/storage"
	log "github.com/sirupsen/logrus"
)

const (
	ActionCreated = "event.created"
	ActionDeleted = "event.deleted"
)

var (
	ErrMissingFields   = errors.New("missing name, time, duration, or type")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
)

// Notifier receives event changes. Delivery failures never fail the change itself.
type Notifier interface {
	Notify(ctx context.Context, action string, e storage.Event) error
}

type EventInput struct {
	Name        string    `json:"name" validate:"required"`
	Time        time.Time `json:"time" validate:"required"`
	Duration    int       `json:"duration" validate:"required,gt=0"`
	Type        string    `json:"type" validate:"required"`
	Description string    `json:"description"`
}

type App struct {
	Storage  storage.Storage
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
}

type Option func(a *App)

func WithNotifier(n Notifier) Option {
	return func(a *App) { a.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func New(storage storage.Storage, opts ...Option) *App {
	a := &App{Storage: storage, validate: validator.New(), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) ListEvents(ctx context.Context) ([]storage.Event, error) {
	events, err := a.Storage.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Summary returns the events of the rolling window ending now.
func (a *App) Summary(ctx context.Context, r Range) ([]storage.Event, error) {
	start, end, err := r.Bounds(a.now())
	if err != nil {
		return nil, err
	}
	events, err := a.Storage.ListEventsInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to select events %s - %s: %w", start, end, err)
	}
	return events, nil
}

func (a *App) CreateEvent(ctx context.Context, in EventInput) (storage.Event, error) {
	if err := a.validateInput(in); err != nil {
		return storage.Event{}, err
	}

	e := storage.Event{
		Name:        in.Name,
		Time:        in.Time,
		Duration:    in.Duration,
		Type:        in.Type,
		Description: in.Description,
	}
	if err := a.Storage.AddEvent(ctx, &e); err != nil {
		return storage.Event{}, fmt.Errorf("failed to add event: %w", err)
	}

	a.notify(ctx, ActionCreated, e)
	return e, nil
}

// DeleteEvent is idempotent: removing an unknown id succeeds.
func (a *App) DeleteEvent(ctx context.Context, id string) error {
	err := a.Storage.RemoveEvent(ctx, id)
	if errors.Is(err, storage.ErrNotFoundEvent) {
		log.Debugf("nothing to remove: %v", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove event: %w", err)
	}

	a.notify(ctx, ActionDeleted, storage.Event{ID: id})
	return nil
}

func (a *App) validateInput(in EventInput) error {
	err := a.validate.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	for _, fieldErr := range validationErrors {
		if fieldErr.Tag() == "required" {
			return ErrMissingFields
		}
	}
	return ErrInvalidDuration
}

func (a *App) notify(ctx context.Context, action string, e storage.Event) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, action, e); err != nil {
		log.Errorf("failed to send %s notification for %q: %v", action, e.ID, err)
	}
}
