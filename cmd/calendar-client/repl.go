package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lomoval/eventcalendar/internal/client"
	"github.com/lomoval/eventcalendar/internal/util"
	log "github.com/sirupsen/logrus"
)

const (
	slotLayout = "2006-01-02 15:04"
	dayLayout  = "Mon, 02 Jan 2006"
	timeLayout = "15:04"
)

const helpText = `commands:
  list                 all events
  week                 events of the last 7 days
  month                events of the last month
  new <date> <time>    create an event, e.g. new 2024-04-01 09:30
  show <n>             details of event n from the last listing
  delete <n>           delete event n from the last listing
  help                 this text
  quit                 exit
`

type repl struct {
	cal   *client.Calendar
	in    *bufio.Scanner
	out   io.Writer
	shown []client.DisplayEvent
}

func newREPL(cal *client.Calendar, in *bufio.Scanner, out io.Writer) *repl {
	return &repl{cal: cal, in: in, out: out}
}

func (r *repl) run(ctx context.Context) {
	r.list(ctx)
	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return
		}
		fields := strings.Fields(r.in.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd, args := fields[0], fields[1:]; cmd {
		case "list":
			r.list(ctx)
		case "week":
			r.summary(ctx, "weekly")
		case "month":
			r.summary(ctx, "monthly")
		case "new":
			r.create(ctx, args)
		case "show":
			r.show(args)
		case "delete":
			r.remove(ctx, args)
		case "help":
			fmt.Fprint(r.out, helpText)
		case "quit", "exit":
			return
		default:
			fmt.Fprintf(r.out, "unknown command %q, type help\n", cmd)
		}
	}
}

func (r *repl) list(ctx context.Context) {
	events, err := r.cal.Refresh(ctx)
	if err != nil {
		r.fail("failed to load events", err)
		return
	}
	r.render(events)
}

func (r *repl) summary(ctx context.Context, rng string) {
	events, err := r.cal.Summary(ctx, rng)
	if err != nil {
		r.fail("failed to load summary", err)
		return
	}
	r.render(events)
}

func (r *repl) create(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(r.out, "usage: new <YYYY-MM-DD> <HH:MM>")
		return
	}
	start, err := time.ParseInLocation(slotLayout, args[0]+" "+args[1], time.Local)
	if err != nil {
		fmt.Fprintf(r.out, "invalid date or time: %v\n", err)
		return
	}
	draft, err := r.cal.SelectSlot(start)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	draft.Name = r.prompt("name", "")
	duration := r.prompt("duration, minutes", strconv.Itoa(draft.Duration))
	if draft.Duration, err = strconv.Atoi(duration); err != nil {
		fmt.Fprintln(r.out, client.ErrInvalidDuration)
		return
	}
	draft.Type = r.prompt("type", draft.Type)
	draft.Description = r.prompt("description", "")

	e, err := r.cal.Submit(ctx, draft)
	if err != nil {
		r.fail("failed to create event", err)
		return
	}
	fmt.Fprintf(r.out, "created %q at %s\n", e.Name, e.Time.Local().Format(slotLayout))
	r.render(r.cal.Events())
}

func (r *repl) show(args []string) {
	e, ok := r.pick(args)
	if !ok {
		return
	}
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "name\t%s\n", e.Name)
	fmt.Fprintf(w, "type\t%s\n", e.Type)
	fmt.Fprintf(w, "start\t%s\n", e.Time.Local().Format(slotLayout))
	fmt.Fprintf(w, "end\t%s\n", e.End().Local().Format(slotLayout))
	fmt.Fprintf(w, "duration\t%d min\n", e.Duration)
	if e.Description != "" {
		fmt.Fprintf(w, "description\t%s\n", e.Description)
	}
	fmt.Fprintf(w, "id\t%s\n", e.ID)
	w.Flush()
}

func (r *repl) remove(ctx context.Context, args []string) {
	e, ok := r.pick(args)
	if !ok {
		return
	}
	sent, err := r.cal.Delete(ctx, e, func(e client.DisplayEvent) bool {
		answer := r.prompt(fmt.Sprintf("delete %q? [y/N]", e.Name), "n")
		return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	})
	if err != nil {
		r.fail("failed to delete event", err)
		return
	}
	if sent {
		fmt.Fprintf(r.out, "deleted %q\n", e.Name)
		r.render(r.cal.Events())
	}
}

func (r *repl) pick(args []string) (client.DisplayEvent, bool) {
	if len(args) != 1 {
		fmt.Fprintln(r.out, "usage: <command> <n>")
		return client.DisplayEvent{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(r.shown) {
		fmt.Fprintf(r.out, "no event %s in the last listing\n", args[0])
		return client.DisplayEvent{}, false
	}
	return r.shown[n-1], true
}

func (r *repl) prompt(label, def string) string {
	if def != "" {
		fmt.Fprintf(r.out, "%s (%s): ", label, def)
	} else {
		fmt.Fprintf(r.out, "%s: ", label)
	}
	if !r.in.Scan() {
		return def
	}
	answer := strings.TrimSpace(r.in.Text())
	if answer == "" {
		return def
	}
	return answer
}

// render prints an agenda grouped by day and numbers events for show and delete.
func (r *repl) render(events []client.DisplayEvent) {
	r.shown = events
	if len(events) == 0 {
		fmt.Fprintln(r.out, "no events")
		return
	}

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	var day time.Time
	for i, e := range events {
		start := e.Time.Local()
		if d := util.TruncateToDay(start); !d.Equal(day) {
			day = d
			fmt.Fprintf(w, "%s\n", d.Format(dayLayout))
		}
		fmt.Fprintf(w, "  %d\t%s-%s\t%s\t[%s]\n",
			i+1, start.Format(timeLayout), e.End().Local().Format(timeLayout), e.Name, e.Type)
	}
	w.Flush()
}

func (r *repl) fail(msg string, err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(r.out, "%s: %s\n", msg, apiErr.Message)
		return
	case errors.Is(err, client.ErrNameRequired),
		errors.Is(err, client.ErrInvalidDuration),
		errors.Is(err, client.ErrSlotInPast):
		fmt.Fprintf(r.out, "%s: %v\n", msg, err)
		return
	}
	log.Debugf("%s: %v", msg, err)
	fmt.Fprintf(r.out, "%s: service unavailable\n", msg)
}
