package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lomoval/eventcalendar/internal/logger"
	"github.com/lomoval/eventcalendar/internal/rabbit"
	internalhttp "github.com/lomoval/eventcalendar/internal/server/http"
	"github.com/lomoval/eventcalendar/internal/storagebuilder"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envConfigPrefix = "$env:"

type Config struct {
	HTTPServer internalhttp.Config
	Logger     logger.Config
	Storage    storagebuilder.Config
	Rabbit     rabbit.Config
}

func NewConfig(configFile string) (Config, error) {
	config := Config{}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("failed to load .env: %v", err)
	}

	v := viper.New()
	v.SetDefault("httpServer.host", "127.0.0.1")
	v.SetDefault("httpServer.port", "5000")
	v.SetDefault("httpServer.allowedOrigins", []string{"*"})
	v.SetDefault("logger.level", "WARN")
	v.SetDefault("logger.format", "text")
	v.SetDefault("storage.storageType", "mongo")
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.database", "calendarApp")
	v.SetDefault("storage.mongo.collection", "events")
	v.SetDefault("storage.database.host", "127.0.0.1")
	v.SetDefault("storage.database.port", "5432")
	v.SetDefault("storage.database.database", "calendar")
	v.SetDefault("storage.redis.host", "127.0.0.1")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("rabbit.enabled", false)
	v.SetDefault("rabbit.host", "127.0.0.1")
	v.SetDefault("rabbit.port", "5672")
	v.SetDefault("rabbit.user", "guest")
	v.SetDefault("rabbit.password", "guest")
	v.SetDefault("rabbit.queue", "calendar.events")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return config, fmt.Errorf("failed to read config %q: %w", configFile, err)
		}
	}
	for _, key := range v.AllKeys() {
		env := v.GetString(key)
		if strings.HasPrefix(env, envConfigPrefix) {
			err := v.BindEnv(key, env[len(envConfigPrefix):])
			if err != nil {
				return Config{}, fmt.Errorf("failed to prepare config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	return config, nil
}
