package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"time"

	"github.com/lomoval/eventcalendar/internal/client"
	log "github.com/sirupsen/logrus"
)

var serverURL string

func init() {
	flag.StringVar(&serverURL, "server", "http://localhost:5000", "Calendar service address")
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
}

func main() {
	flag.Parse()

	cal := client.NewCalendar(client.NewAPI(serverURL), time.Now)
	r := newREPL(cal, bufio.NewScanner(os.Stdin), os.Stdout)
	r.run(context.Background())
}
