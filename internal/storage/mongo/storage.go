package mongostorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lomoval/eventcalendar/internal/storage"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var ErrConnectionFailed = errors.New("failed to connect")

type Config struct {
	URI        string
	Database   string
	Collection string
}

// eventDocument is the persisted shape of storage.Event.
type eventDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Time        time.Time          `bson:"time"`
	Duration    int                `bson:"duration"`
	Type        string             `bson:"type"`
	Description string             `bson:"description,omitempty"`
}

func newDocument(e storage.Event) (eventDocument, error) {
	id := primitive.NewObjectID()
	if e.ID != "" {
		var err error
		if id, err = primitive.ObjectIDFromHex(e.ID); err != nil {
			return eventDocument{}, fmt.Errorf("incorrect event id %q: %w", e.ID, err)
		}
	}
	return eventDocument{
		ID:          id,
		Name:        e.Name,
		Time:        e.Time.UTC(),
		Duration:    e.Duration,
		Type:        e.Type,
		Description: e.Description,
	}, nil
}

func (d eventDocument) toEvent() storage.Event {
	return storage.Event{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Time:        d.Time,
		Duration:    d.Duration,
		Type:        d.Type,
		Description: d.Description,
	}
}

type Storage struct {
	uri            string
	databaseName   string
	collectionName string
	client         *mongo.Client
	events         *mongo.Collection
}

func New(config Config) *Storage {
	return &Storage{
		uri:            config.URI,
		databaseName:   config.Database,
		collectionName: config.Collection,
	}
}

// Connect creates the client. The driver dials lazily, so an unreachable
// server is only visible through Ping and failed queries.
func (s *Storage) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		log.Errorf("failed to create mongo client: %v", err)
		return ErrConnectionFailed
	}
	s.client = client
	s.events = client.Database(s.databaseName).Collection(s.collectionName)
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Storage) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	doc, err := newDocument(*e)
	if err != nil {
		return err
	}

	if _, err := s.events.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("duplicate ID %q: %w", e.ID, storage.ErrDuplicateEventID)
		}
		return err
	}
	e.ID = doc.ID.Hex()
	return nil
}

func (s *Storage) RemoveEvent(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// No document can carry an id that is not an ObjectID.
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}

	res, err := s.events.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]storage.Event, error) {
	return s.find(ctx, bson.M{})
}

// Select in range [startTime:endTime].
func (s *Storage) ListEventsInRange(
	ctx context.Context,
	startTime time.Time,
	endTime time.Time,
) ([]storage.Event, error) {
	return s.find(ctx, bson.M{"time": bson.M{"$gte": startTime.UTC(), "$lte": endTime.UTC()}})
}

func (s *Storage) find(ctx context.Context, filter bson.M) ([]storage.Event, error) {
	cursor, err := s.events.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var docs []eventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]storage.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, doc.toEvent())
	}
	return events, nil
}
