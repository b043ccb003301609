package redisstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/lomoval/eventcalendar/internal/storage"
)

// maxTxRetries bounds the optimistic-lock retries of AddEvent.
const maxTxRetries = 3

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Storage keeps every event as a JSON document in one hash and indexes
// the ids by start time (unix milliseconds) in a sorted set.
type Storage struct {
	options      *redis.Options
	client       *redis.Client
	storageKey   string
	timeIndexKey string
}

func New(config Config) *Storage {
	return &Storage{
		options: &redis.Options{
			Addr:     net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
			Password: config.Password,
			DB:       config.DB,
		},
		storageKey:   "events",
		timeIndexKey: "events:byTime",
	}
}

func NewWithClient(client *redis.Client) *Storage {
	return &Storage{client: client, storageKey: "events", timeIndexKey: "events:byTime"}
}

func (s *Storage) Connect(_ context.Context) error {
	if s.client == nil {
		s.client = redis.NewClient(s.options)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close(_ context.Context) error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	jsonVal, err := json.Marshal(e)
	if err != nil {
		return err
	}

	doc := string(jsonVal)
	for i := 0; i < maxTxRetries; i++ {
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			exists, err := tx.HExists(ctx, s.storageKey, e.ID).Result()
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("duplicate ID %q: %w", e.ID, storage.ErrDuplicateEventID)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.ZAdd(ctx, s.timeIndexKey, &redis.Z{Score: score(e.Time), Member: e.ID})
				pipe.HSet(ctx, s.storageKey, e.ID, doc)
				return nil
			})
			return err
		}, s.storageKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *Storage) RemoveEvent(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, s.storageKey, id)
		pipe.ZRem(ctx, s.timeIndexKey, id)
		return nil
	})
	if err != nil {
		return err
	}
	if removed.Val() == 0 {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]storage.Event, error) {
	ids, err := s.client.ZRange(ctx, s.timeIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.getEvents(ctx, ids, func(storage.Event) bool { return true })
}

// Select in range [startTime:endTime].
func (s *Storage) ListEventsInRange(
	ctx context.Context,
	startTime time.Time,
	endTime time.Time,
) ([]storage.Event, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.timeIndexKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(startTime.UnixMilli(), 10),
		Max: strconv.FormatInt(endTime.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	// Scores are truncated to milliseconds, the exact bounds are checked on the documents.
	return s.getEvents(ctx, ids, func(e storage.Event) bool { return e.InRange(startTime, endTime) })
}

func (s *Storage) getEvents(ctx context.Context, ids []string, match func(storage.Event) bool) ([]storage.Event, error) {
	events := make([]storage.Event, 0, len(ids))
	if len(ids) == 0 {
		return events, nil
	}

	values, err := s.client.HMGet(ctx, s.storageKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			// removed between the index read and the hash read
			continue
		}

		var event storage.Event
		if err := json.Unmarshal([]byte(str), &event); err != nil {
			return nil, fmt.Errorf("failed to parse stored event: %w", err)
		}
		if match(event) {
			events = append(events, event)
		}
	}
	return events, nil
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}
