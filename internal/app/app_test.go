package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lomoval/eventcalendar/internal/storage"
	memorystorage "github.com/lomoval/eventcalendar/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

type notification struct {
	action string
	event  storage.Event
}

type recordingNotifier struct {
	sent []notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, action string, e storage.Event) error {
	n.sent = append(n.sent, notification{action: action, event: e})
	return n.err
}

type failingStorage struct {
	*memorystorage.Storage
}

func (failingStorage) ListEvents(context.Context) ([]storage.Event, error) {
	return nil, errors.New("connection refused")
}

func (failingStorage) RemoveEvent(context.Context, string) error {
	return errors.New("connection refused")
}

func newApp(opts ...Option) *App {
	return New(memorystorage.New(), append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
}

func validInput() EventInput {
	return EventInput{Name: "Standup", Time: now.Add(time.Hour), Duration: 30, Type: "Work"}
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		a := newApp()
		in := validInput()
		in.Description = "daily"

		e, err := a.CreateEvent(ctx, in)
		require.NoError(t, err)
		require.NotEmpty(t, e.ID)
		require.Equal(t, "daily", e.Description)

		events, err := a.ListEvents(ctx)
		require.NoError(t, err)
		require.Equal(t, []storage.Event{e}, events)
	})

	tests := []struct {
		name        string
		modify      func(in *EventInput)
		expectedErr error
	}{
		{name: "no name", modify: func(in *EventInput) { in.Name = "" }, expectedErr: ErrMissingFields},
		{name: "no time", modify: func(in *EventInput) { in.Time = time.Time{} }, expectedErr: ErrMissingFields},
		{name: "no duration", modify: func(in *EventInput) { in.Duration = 0 }, expectedErr: ErrMissingFields},
		{name: "no type", modify: func(in *EventInput) { in.Type = "" }, expectedErr: ErrMissingFields},
		{name: "negative duration", modify: func(in *EventInput) { in.Duration = -15 }, expectedErr: ErrInvalidDuration},
		{name: "empty", modify: func(in *EventInput) { *in = EventInput{} }, expectedErr: ErrMissingFields},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			a := newApp()
			in := validInput()
			tt.modify(&in)

			_, err := a.CreateEvent(ctx, in)
			require.ErrorIs(t, err, tt.expectedErr)

			events, err := a.ListEvents(ctx)
			require.NoError(t, err)
			require.Empty(t, events)
		})
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	a := newApp()

	for _, offset := range []time.Duration{
		-8 * 24 * time.Hour,
		-7 * 24 * time.Hour,
		-3 * 24 * time.Hour,
		-20 * 24 * time.Hour,
		-40 * 24 * time.Hour,
		time.Hour,
	} {
		in := validInput()
		in.Time = now.Add(offset)
		_, err := a.CreateEvent(ctx, in)
		require.NoError(t, err)
	}

	t.Run("weekly", func(t *testing.T) {
		events, err := a.Summary(ctx, RangeWeekly)
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.True(t, events[0].Time.Equal(now.AddDate(0, 0, -7)))
		require.True(t, events[1].Time.Equal(now.AddDate(0, 0, -3)))
	})

	t.Run("monthly", func(t *testing.T) {
		// 2024-03-31 minus one month is 2024-03-02, so the event 40 days ago is out.
		events, err := a.Summary(ctx, RangeMonthly)
		require.NoError(t, err)
		require.Len(t, events, 4)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, r := range []Range{"yearly", ""} {
			_, err := a.Summary(ctx, r)
			require.ErrorIs(t, err, ErrInvalidRange)
		}
	})

	t.Run("monthly without events", func(t *testing.T) {
		events, err := newApp().Summary(ctx, RangeMonthly)
		require.NoError(t, err)
		require.NotNil(t, events)
		require.Empty(t, events)
	})
}

func TestRangeBounds(t *testing.T) {
	start, end, err := RangeMonthly.Bounds(now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), start)
	require.Equal(t, now, end)

	start, _, err = RangeWeekly.Bounds(now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC), start)
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		a := newApp()
		e, err := a.CreateEvent(ctx, validInput())
		require.NoError(t, err)

		require.NoError(t, a.DeleteEvent(ctx, e.ID))

		events, err := a.ListEvents(ctx)
		require.NoError(t, err)
		require.Empty(t, events)
	})

	t.Run("not existing", func(t *testing.T) {
		require.NoError(t, newApp().DeleteEvent(ctx, "__not_exists__"))
	})

	t.Run("storage failure", func(t *testing.T) {
		a := New(failingStorage{memorystorage.New()})
		require.Error(t, a.DeleteEvent(ctx, "id"))
		_, err := a.ListEvents(ctx)
		require.Error(t, err)
	})
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	a := newApp(WithNotifier(notifier))

	e, err := a.CreateEvent(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, a.DeleteEvent(ctx, e.ID))
	require.NoError(t, a.DeleteEvent(ctx, e.ID))
	_, err = a.CreateEvent(ctx, EventInput{})
	require.Error(t, err)

	require.Equal(t, []notification{
		{action: ActionCreated, event: e},
		{action: ActionDeleted, event: storage.Event{ID: e.ID}},
	}, notifier.sent)

	t.Run("failed delivery does not fail the change", func(t *testing.T) {
		a := newApp(WithNotifier(&recordingNotifier{err: errors.New("channel closed")}))
		_, err := a.CreateEvent(ctx, validInput())
		require.NoError(t, err)
	})
}
