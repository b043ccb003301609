package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lomoval/eventcalendar/internal/logger"
	"github.com/lomoval/eventcalendar/internal/rabbit"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "./configs/sender_config.yaml", "Path to configuration file")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	config, err := NewConfig(configFile)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}
	err = logger.PrepareLogger(config.Logger)
	if err != nil {
		log.Errorf("failed to start %v", err)
		return
	}

	r := rabbit.New(config.Rabbit)
	if err := r.Connect(); err != nil {
		log.Errorf("failed to connect to rabbit: %v", err)
		return
	}
	defer r.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	log.Info("sender is running...")
	if err := r.Consume(ctx, handleDelivery); err != nil {
		log.Errorf("consuming stopped: %v", err)
	}
}

func handleDelivery(msg amqp.Delivery) {
	m, err := parseMessage(msg.Body)
	if err != nil {
		log.Errorf("failed to parse bytes: %s", err)
		return
	}
	log.WithField("action", m.Action).
		WithField("id", m.Event.ID).
		WithField("name", m.Event.Name).
		WithField("time", m.Event.Time).
		WithField("sentAt", m.SentAt).
		Info("event changed")
}

func parseMessage(body []byte) (rabbit.Message, error) {
	m := rabbit.Message{}
	err := json.Unmarshal(body, &m)
	return m, err
}
