package internalhttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lomoval/eventcalendar/internal/app"
	log "github.com/sirupsen/logrus"
)

const (
	errInvalidRange        = "Invalid range. Use weekly or monthly."
	errMissingFields       = "Missing name, time, duration, or type"
	errInvalidDuration     = "Duration must be a positive number of minutes"
	errInvalidBody         = "Invalid request body"
	errInvalidTime         = "Invalid time, use RFC 3339 format"
	errInternalServerError = "Internal server error"
)

type createEventRequest struct {
	Name        string `json:"name"`
	Time        string `json:"time"`
	Duration    int    `json:"duration"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (req createEventRequest) toInput() (app.EventInput, error) {
	in := app.EventInput{
		Name:        req.Name,
		Duration:    req.Duration,
		Type:        req.Type,
		Description: req.Description,
	}
	if req.Time == "" {
		return in, nil
	}
	t, err := time.Parse(time.RFC3339Nano, req.Time)
	if err != nil {
		return in, err
	}
	in.Time = t
	return in, nil
}

// GET /events
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.app.ListEvents(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

// GET /summary?range=weekly|monthly
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	events, err := s.app.Summary(r.Context(), app.Range(r.URL.Query().Get("range")))
	if err != nil {
		if errors.Is(err, app.ErrInvalidRange) {
			respondWithError(w, http.StatusBadRequest, errInvalidRange)
			return
		}
		internalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

// POST /events
func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, errInvalidTime)
		return
	}

	event, err := s.app.CreateEvent(r.Context(), in)
	switch {
	case errors.Is(err, app.ErrMissingFields):
		respondWithError(w, http.StatusBadRequest, errMissingFields)
	case errors.Is(err, app.ErrInvalidDuration):
		respondWithError(w, http.StatusBadRequest, errInvalidDuration)
	case err != nil:
		internalError(w, err)
	default:
		respondWithJSON(w, http.StatusCreated, event)
	}
}

// DELETE /events/{id}
func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteEvent(r.Context(), mux.Vars(r)["id"]); err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.app.Storage.Ping(ctx); err != nil {
		log.Warnf("health check failed: %v", err)
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func internalError(w http.ResponseWriter, err error) {
	log.Errorf("request failed: %v", err)
	respondWithError(w, http.StatusInternalServerError, errInternalServerError)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}
