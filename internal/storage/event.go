package storage

import (
	"time"
)

type Event struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Time        time.Time `json:"time" db:"time"`
	Duration    int       `json:"duration" db:"duration"` // minutes
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description,omitempty" db:"description"`
}

// End is the moment the event finishes. It is never stored.
func (e Event) End() time.Time {
	return e.Time.Add(time.Duration(e.Duration) * time.Minute)
}

// InRange reports whether the event starts within [start:end].
func (e Event) InRange(start, end time.Time) bool {
	return !e.Time.Before(start) && !e.Time.After(end)
}
