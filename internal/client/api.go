package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lomoval/eventcalendar/internal/storage"
)

// APIError is a non-2xx response. Message is the server's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

type EventRequest struct {
	Name        string    `json:"name"`
	Time        time.Time `json:"time"`
	Duration    int       `json:"duration"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
}

type API struct {
	baseURL string
	client  *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (a *API) ListEvents(ctx context.Context) ([]storage.Event, error) {
	var events []storage.Event
	err := a.do(ctx, http.MethodGet, "/events", nil, &events)
	return events, err
}

// Summary fetches the events of a "weekly" or "monthly" window.
func (a *API) Summary(ctx context.Context, rng string) ([]storage.Event, error) {
	var events []storage.Event
	err := a.do(ctx, http.MethodGet, "/summary?range="+url.QueryEscape(rng), nil, &events)
	return events, err
}

func (a *API) CreateEvent(ctx context.Context, req EventRequest) (storage.Event, error) {
	var e storage.Event
	err := a.do(ctx, http.MethodPost, "/events", req, &e)
	return e, err
}

func (a *API) DeleteEvent(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
