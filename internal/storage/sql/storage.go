package sqlstorage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/lomoval/eventcalendar/internal/storage"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var ErrConnectionFailed = errors.New("failed to connect")

const (
	dbErrUniqueViolation = "23505"

	selectEvents = "SELECT id, name, start_timestamp AS time, duration, type, description FROM Events"
)

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type Storage struct {
	host     string
	port     int
	database string
	username string
	password string
	db       *sqlx.DB

	migrateMu sync.Mutex
	migrated  bool
}

func New(config Config) *Storage {
	return &Storage{
		host:     config.Host,
		port:     config.Port,
		database: config.Database,
		username: config.Username,
		password: config.Password,
	}
}

// Connect prepares the connection pool and applies migrations when the
// server is reachable. An unreachable server is not an error here, Ping reports it
// and migrations run on the first call that reaches the server.
func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.Open(
		"postgres",
		fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			s.host, s.port, s.database, s.username, s.password),
	)
	if err != nil {
		log.Errorf("failed to open connection: %v", err)
		return ErrConnectionFailed
	}
	s.db = db

	if err := s.db.PingContext(ctx); err != nil {
		log.Errorf("postgres is unreachable, skipping migrations: %v", err)
		return nil
	}
	return s.ensureMigrated(ctx)
}

func (s *Storage) ensureMigrated(ctx context.Context) error {
	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()
	if s.migrated {
		return nil
	}
	if err := s.migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	s.migrated = true
	return nil
}

func (s *Storage) migrate(ctx context.Context) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		buf, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, string(buf)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
		log.Debugf("applied migration %s", name)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	return s.ensureMigrated(ctx)
}

func (s *Storage) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.ensureMigrated(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO Events(id, name, start_timestamp, duration, type, description) VALUES($1, $2, $3, $4, $5, $6)",
		e.ID, e.Name, e.Time.UTC(), e.Duration, e.Type, e.Description)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == dbErrUniqueViolation {
		return fmt.Errorf("duplicate ID %q: %w", e.ID, storage.ErrDuplicateEventID)
	}
	return err
}

func (s *Storage) RemoveEvent(ctx context.Context, id string) error {
	if err := s.ensureMigrated(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM Events WHERE id=$1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]storage.Event, error) {
	if err := s.ensureMigrated(ctx); err != nil {
		return nil, err
	}
	events := make([]storage.Event, 0)
	err := s.db.SelectContext(ctx, &events, selectEvents)
	return events, err
}

// Select in range [startTime:endTime].
func (s *Storage) ListEventsInRange(
	ctx context.Context,
	startTime time.Time,
	endTime time.Time,
) ([]storage.Event, error) {
	if err := s.ensureMigrated(ctx); err != nil {
		return nil, err
	}
	events := make([]storage.Event, 0)
	err := s.db.SelectContext(
		ctx,
		&events,
		selectEvents+" WHERE start_timestamp>=$1 AND start_timestamp<=$2",
		startTime.UTC(),
		endTime.UTC(),
	)
	return events, err
}
