package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/AJaySi/ALwrity-sub003/models"
)

// Config holds scheduler API client configuration.
type Config struct {
	BaseURL           string        `json:"baseUrl" yaml:"base_url"`             // Scheduler API root
	RequestTimeout    time.Duration `json:"requestTimeout" yaml:"request_timeout"` // Per-request timeout (default: 15s)
	RequestsPerSecond float64       `json:"requestsPerSecond" yaml:"requests_per_second"`
	Burst             int           `json:"burst" yaml:"burst"`
}

// DefaultConfig returns default API client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "http://localhost:8000/api/scheduler",
		RequestTimeout:    15 * time.Second,
		RequestsPerSecond: 5,
		Burst:             10,
	}
}

// Client talks to the scheduler backend. All requests go through a rate
// limiter and a circuit breaker so a struggling upstream is not hammered.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a scheduler API client.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "scheduler-api",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).
					Str("from", from.String()).Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		}),
	}
}

// EventQuery parameterizes a paginated event fetch.
type EventQuery struct {
	Limit     int
	Offset    int
	EventType string // optional filter
	Days      int    // lookback window in days
}

// LogQuery parameterizes a paginated log fetch.
type LogQuery struct {
	Limit  int
	Offset int
	Days   int
}

// FetchEvents returns one page of scheduler events.
func (c *Client) FetchEvents(ctx context.Context, q EventQuery) (*EventPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	if q.EventType != "" {
		params.Set("event_type", q.EventType)
	}
	if q.Days > 0 {
		params.Set("days", strconv.Itoa(q.Days))
	}

	var env eventEnvelope
	if err := c.getJSON(ctx, "/events", params, &env); err != nil {
		return nil, err
	}
	return env.normalize(), nil
}

// FetchExecutionLogs returns one page of task execution logs restricted
// to failed executions.
func (c *Client) FetchExecutionLogs(ctx context.Context, q LogQuery) (*ExecutionLogPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("status", "failed")
	if q.Days > 0 {
		params.Set("days", strconv.Itoa(q.Days))
	}

	var env executionLogEnvelope
	if err := c.getJSON(ctx, "/logs/executions", params, &env); err != nil {
		return nil, err
	}
	return env.normalize(), nil
}

// FetchSchedulerLogs returns one page of the scheduler's own error logs.
func (c *Client) FetchSchedulerLogs(ctx context.Context, q LogQuery) (*SchedulerLogPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("level", "error")
	if q.Days > 0 {
		params.Set("days", strconv.Itoa(q.Days))
	}

	var env schedulerLogEnvelope
	if err := c.getJSON(ctx, "/logs/scheduler", params, &env); err != nil {
		return nil, err
	}
	return env.normalize(), nil
}

// FetchInterventionAlerts returns open intervention alerts.
func (c *Client) FetchInterventionAlerts(ctx context.Context) ([]models.InterventionAlert, error) {
	var out struct {
		Alerts []models.InterventionAlert `json:"alerts"`
	}
	if err := c.getJSON(ctx, "/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out.Alerts, nil
}

// FetchStatus returns the live scheduler status snapshot.
func (c *Client) FetchStatus(ctx context.Context) (*models.SchedulerStatus, error) {
	var status models.SchedulerStatus
	if err := c.getJSON(ctx, "/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// getJSON performs a rate-limited, breaker-guarded GET and decodes the
// response into out. Failures are normalized once here, per the error
// contract, so consumers never re-derive messages.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.config.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, normalizeError(nil, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, normalizeError(nil, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, normalizeError(nil, err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, normalizeError(body, fmt.Errorf("scheduler API returned status %d", resp.StatusCode))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return nil, normalizeError(nil, err)
		}
		return nil, nil
	})
	return err
}
