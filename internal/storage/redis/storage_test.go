package redisstorage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/lomoval/eventcalendar/internal/storage"
	"github.com/stretchr/testify/require"
)

func createStorage(t *testing.T) *Storage {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	initDate := time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("add event", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Name: "test", Time: initDate, Duration: 45, Type: "Work", Description: "description"}

		require.NoError(t, s.AddEvent(ctx, &e))
		require.NotEmpty(t, e.ID)

		events, err := s.ListEvents(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.True(t, e.Time.Equal(events[0].Time))
		events[0].Time = e.Time
		require.Equal(t, e, events[0])
	})

	t.Run("duplicate id", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Name: "test", Time: initDate, Duration: 45, Type: "Work"}

		require.NoError(t, s.AddEvent(ctx, &e))
		require.ErrorIs(t, s.AddEvent(ctx, &e), storage.ErrDuplicateEventID)
	})

	t.Run("remove event", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Name: "test", Time: initDate, Duration: 45, Type: "Work"}
		require.NoError(t, s.AddEvent(ctx, &e))

		require.NoError(t, s.RemoveEvent(ctx, e.ID))
		require.ErrorIs(t, s.RemoveEvent(ctx, e.ID), storage.ErrNotFoundEvent)

		events, err := s.ListEvents(ctx)
		require.NoError(t, err)
		require.Empty(t, events)
	})

	t.Run("range", func(t *testing.T) {
		s := createStorage(t)
		for i := 0; i < 10; i++ {
			e := storage.Event{Name: "test", Time: initDate.AddDate(0, 0, i), Duration: 15, Type: "Work"}
			require.NoError(t, s.AddEvent(ctx, &e))
		}

		events, err := s.ListEventsInRange(ctx, initDate.AddDate(0, 0, 2), initDate.AddDate(0, 0, 5))
		require.NoError(t, err)
		require.Len(t, events, 4)
	})

	t.Run("range bound below millisecond", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Name: "test", Time: initDate.Add(500 * time.Microsecond), Duration: 15, Type: "Work"}
		require.NoError(t, s.AddEvent(ctx, &e))

		events, err := s.ListEventsInRange(ctx, initDate.Add(-time.Hour), initDate)
		require.NoError(t, err)
		require.Empty(t, events)
	})

	t.Run("hash and index change together", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Name: "test", Time: initDate, Duration: 15, Type: "Work"}
		require.NoError(t, s.AddEvent(ctx, &e))
		requireIndexed(t, s, 1)

		require.ErrorIs(t, s.AddEvent(ctx, &e), storage.ErrDuplicateEventID)
		requireIndexed(t, s, 1)

		require.NoError(t, s.RemoveEvent(ctx, e.ID))
		requireIndexed(t, s, 0)

		require.ErrorIs(t, s.RemoveEvent(ctx, e.ID), storage.ErrNotFoundEvent)
		requireIndexed(t, s, 0)
	})

	t.Run("index write failure is reported", func(t *testing.T) {
		s := createStorage(t)
		require.NoError(t, s.client.Set(ctx, s.timeIndexKey, "not a sorted set", 0).Err())

		e := storage.Event{Name: "test", Time: initDate, Duration: 15, Type: "Work"}
		require.Error(t, s.AddEvent(ctx, &e))
	})
}

func requireIndexed(t *testing.T, s *Storage, n int64) {
	t.Helper()
	ctx := context.Background()
	require.Equal(t, n, s.client.HLen(ctx, s.storageKey).Val())
	require.Equal(t, n, s.client.ZCard(ctx, s.timeIndexKey).Val())
}
