//go:build sql
// +build sql

package sqlstorage_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lomoval/eventcalendar/internal/storage"
	sqlstorage "github.com/lomoval/eventcalendar/internal/storage/sql"
	"github.com/stretchr/testify/require"
)

var (
	host     = "127.0.0.1"
	port     = 5532
	database = "testing"
	username = "postgres"
	password = "pas"
)

func TestMain(m *testing.M) {
	pgHost := os.Getenv("POSTGRES_HOST")
	pgPort := os.Getenv("POSTGRES_PORT")
	if pgHost != "" {
		host = pgHost
	}
	if pgPort != "" {
		port, _ = strconv.Atoi(pgPort)
	}

	code := m.Run()
	os.Exit(code)
}

func TestStorage(t *testing.T) {
	initDate := time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("add event", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Name: "test", Time: initDate.Add(time.Hour), Duration: 30, Type: "Work", Description: "description"}

		require.NoError(t, s.AddEvent(context.Background(), &e))
		require.NotEmpty(t, e.ID)

		events, err := s.ListEvents(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, len(events))
		compareEvents(t, e, events[0])
	})

	t.Run("add event with same id", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Name: "test", Time: initDate, Duration: 30, Type: "Work"}

		require.NoError(t, s.AddEvent(context.Background(), &e))
		require.ErrorIs(t, s.AddEvent(context.Background(), &e), storage.ErrDuplicateEventID)
	})

	t.Run("delete event", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Name: "test", Time: initDate, Duration: 30, Type: "Work"}
		require.NoError(t, s.AddEvent(context.Background(), &e))

		require.NoError(t, s.RemoveEvent(context.Background(), e.ID))
		require.ErrorIs(t, s.RemoveEvent(context.Background(), e.ID), storage.ErrNotFoundEvent)

		events, err := s.ListEvents(context.Background())
		require.NoError(t, err)
		require.Equal(t, 0, len(events))
	})

	t.Run("range", func(t *testing.T) {
		s := createStorage(t)
		for i := 0; i < 60; i++ {
			e := storage.Event{Name: "test", Time: initDate.AddDate(0, 0, i), Duration: 30, Type: "Work"}
			require.NoError(t, s.AddEvent(context.Background(), &e))
		}

		list, err := s.ListEventsInRange(context.Background(), initDate, initDate.AddDate(0, 0, 7))
		require.NoError(t, err)
		require.Equal(t, 8, len(list))

		list, err = s.ListEventsInRange(context.Background(), initDate, initDate.AddDate(0, 1, 0))
		require.NoError(t, err)
		require.Equal(t, 32, len(list))
	})
}

func cleanupDB() error {
	db, err := sqlx.Connect(
		"postgres",
		fmt.Sprintf("sslmode=disable host=%s port=%d dbname=%s user=%s password=%s", host, port, database, username, password),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("TRUNCATE TABLE Events")
	return err
}

func compareEvents(t *testing.T, expected storage.Event, actual storage.Event) {
	t.Helper()
	require.True(t, expected.Time.Equal(actual.Time), "time is not equals %q != %q", expected.Time, actual.Time)
	expected.Time = actual.Time
	require.Equal(t, expected, actual)
}

func createStorage(t *testing.T) *sqlstorage.Storage {
	t.Helper()
	s := sqlstorage.New(sqlstorage.Config{
		Host:     host,
		Port:     port,
		Database: database,
		Username: username,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, cleanupDB())
	t.Cleanup(func() {
		require.NoError(t, cleanupDB())
		s.Close(context.Background())
	})
	return s
}
