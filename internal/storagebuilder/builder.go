package storagebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/lomoval/eventcalendar/internal/storage"
	memorystorage "github.com/lomoval/eventcalendar/internal/storage/memory"
	mongostorage "github.com/lomoval/eventcalendar/internal/storage/mongo"
	redisstorage "github.com/lomoval/eventcalendar/internal/storage/redis"
	sqlstorage "github.com/lomoval/eventcalendar/internal/storage/sql"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	StorageType string
	Mongo       mongostorage.Config
	Database    sqlstorage.Config
	Redis       redisstorage.Config
}

func NewStorage(config Config) (storage.Storage, error) {
	switch config.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "mongo":
		return mongostorage.New(config.Mongo), nil
	case "sql":
		return sqlstorage.New(config.Database), nil
	case "redis":
		return redisstorage.New(config.Redis), nil
	default:
		return nil, fmt.Errorf("unknown storage type %s", config.StorageType)
	}
}

// New builds and connects the storage. An unreachable server is logged but
// does not fail: requests made while it is down fail on their own.
func New(config Config) (storage.Storage, error) {
	s, err := NewStorage(config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s storage: %w", config.StorageType, err)
	}
	if err := s.Ping(ctx); err != nil {
		log.Errorf("%s storage is unreachable: %v", config.StorageType, err)
	} else {
		log.Infof("connected to %s storage", config.StorageType)
	}
	return s, nil
}
