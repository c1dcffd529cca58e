package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AJaySi/ALwrity-sub003/internal/apiclient"
	"github.com/AJaySi/ALwrity-sub003/internal/cache"
	"github.com/AJaySi/ALwrity-sub003/internal/observe"
	"github.com/AJaySi/ALwrity-sub003/models"
)

// Cache keys for the upstream feeds.
const (
	cacheKeyEvents   = "scheduler_events"
	cacheKeyStatus   = "scheduler_status"
	cacheKeyAlerts   = "intervention_alerts"
	cacheKeyExecLog  = "execution_logs"
	cacheKeySchedLog = "scheduler_logs"
)

// Config holds collector configuration.
type Config struct {
	RefreshInterval time.Duration `json:"refreshInterval" yaml:"refresh_interval"` // How often to rebuild the dashboard (default: 30s)
	LookbackDays    int           `json:"lookbackDays" yaml:"lookback_days"`       // Event window passed to the API (default: 30)
	PageSize        int           `json:"pageSize" yaml:"page_size"`               // Events per page (default: 200)
	MaxPages        int           `json:"maxPages" yaml:"max_pages"`               // Hard cap on pages per refresh (default: 20)
	EventsTTL       time.Duration `json:"eventsTtl" yaml:"events_ttl"`
	StatusTTL       time.Duration `json:"statusTtl" yaml:"status_ttl"`
	LogsTTL         time.Duration `json:"logsTtl" yaml:"logs_ttl"`
	BucketTimezone  string        `json:"bucketTimezone" yaml:"bucket_timezone"` // "local", "utc" or an IANA name
}

// DefaultConfig returns default collector configuration.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 30 * time.Second,
		LookbackDays:    30,
		PageSize:        200,
		MaxPages:        20,
		EventsTTL:       25 * time.Second,
		StatusTTL:       10 * time.Second,
		LogsTTL:         25 * time.Second,
		BucketTimezone:  "local",
	}
}

// SchedulerAPI is what the collector needs from the upstream client.
type SchedulerAPI interface {
	FetchEvents(ctx context.Context, q apiclient.EventQuery) (*apiclient.EventPage, error)
	FetchExecutionLogs(ctx context.Context, q apiclient.LogQuery) (*apiclient.ExecutionLogPage, error)
	FetchSchedulerLogs(ctx context.Context, q apiclient.LogQuery) (*apiclient.SchedulerLogPage, error)
	FetchInterventionAlerts(ctx context.Context) ([]models.InterventionAlert, error)
	FetchStatus(ctx context.Context) (*models.SchedulerStatus, error)
}

// UpdateCallback is invoked with each freshly published dashboard.
type UpdateCallback func(*models.Dashboard)

// Collector runs the refresh cycle: fetch the feeds through the TTL cache,
// fold them into buckets, metrics, insights and failures, and publish one
// immutable dashboard snapshot. A generation counter makes sure a refresh
// that outlived its cycle can never clobber a newer snapshot.
type Collector struct {
	config Config
	api    SchedulerAPI
	cache  *cache.Cache
	loc    *time.Location
	now    func() time.Time

	generation uint64 // atomic

	mu        sync.RWMutex
	dashboard *models.Dashboard

	onUpdate UpdateCallback
}

// NewCollector creates a collector. It fails only when the configured
// bucket timezone does not resolve.
func NewCollector(config Config, api SchedulerAPI, c *cache.Cache) (*Collector, error) {
	loc, err := resolveLocation(config.BucketTimezone)
	if err != nil {
		return nil, fmt.Errorf("resolve bucket timezone %q: %w", config.BucketTimezone, err)
	}
	return &Collector{
		config: config,
		api:    api,
		cache:  c,
		loc:    loc,
		now:    time.Now,
	}, nil
}

// SetUpdateCallback registers the callback fired on every published
// snapshot. Must be called before Start.
func (c *Collector) SetUpdateCallback(cb UpdateCallback) {
	c.onUpdate = cb
}

// Dashboard returns the latest published snapshot, or nil before the first
// successful refresh.
func (c *Collector) Dashboard() *models.Dashboard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dashboard
}

// Start begins the refresh loop and blocks until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	log.Info().Dur("interval", c.config.RefreshInterval).Msg("starting telemetry collector")

	if err := c.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("initial dashboard refresh failed")
	}

	ticker := time.NewTicker(c.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping telemetry collector")
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("dashboard refresh failed")
			}
		}
	}
}

// Refresh runs one full cycle and publishes the resulting snapshot unless
// a newer cycle has started in the meantime.
func (c *Collector) Refresh(ctx context.Context) error {
	gen := atomic.AddUint64(&c.generation, 1)
	started := c.now()
	observe.RefreshCycles.Inc()

	events, err := c.fetchAllEvents(ctx)
	if err != nil {
		observe.RefreshFailures.Inc()
		return fmt.Errorf("fetch scheduler events: %w", err)
	}

	status, err := cache.Fetch(ctx, c.cache, cacheKeyStatus, c.config.StatusTTL, c.api.FetchStatus)
	if err != nil {
		observe.RefreshFailures.Inc()
		return fmt.Errorf("fetch scheduler status: %w", err)
	}

	// Failure feeds degrade independently: a broken feed empties its slice
	// instead of sinking the whole refresh.
	alerts := c.fetchAlerts(ctx)
	execLogs := c.fetchExecutionLogs(ctx)
	schedLogs := c.fetchSchedulerLogs(ctx)

	buckets := AggregateDaily(events, c.loc)
	health := ComputeHealth(events, buckets)
	insights := BuildInsights(*status, c.now())
	failures := MergeFailures(alerts, execLogs, schedLogs)

	dash := &models.Dashboard{
		Status:         *status,
		DailyActivity:  buckets,
		Health:         health,
		Insights:       insights,
		RecentFailures: failures,
		Events:         events,
		GeneratedAt:    c.now(),
	}

	if !c.publish(ctx, gen, dash) {
		log.Debug().Uint64("generation", gen).Msg("refresh superseded, snapshot discarded")
		return nil
	}

	observe.RefreshDuration.Observe(c.now().Sub(started).Seconds())
	log.Debug().
		Int("events", len(events)).
		Int("buckets", len(buckets)).
		Int("failures", len(failures)).
		Msg("dashboard refreshed")

	if c.onUpdate != nil {
		c.onUpdate(dash)
	}
	return nil
}

// publish installs the snapshot unless the cycle was superseded or torn
// down while it was in flight.
func (c *Collector) publish(ctx context.Context, gen uint64, dash *models.Dashboard) bool {
	if ctx.Err() != nil {
		return false
	}
	if atomic.LoadUint64(&c.generation) != gen {
		return false
	}
	c.mu.Lock()
	c.dashboard = dash
	c.mu.Unlock()
	return true
}

// fetchAllEvents pages through the event feed until the API reports no
// more, bounded by MaxPages. The whole window is cached as one value.
func (c *Collector) fetchAllEvents(ctx context.Context) ([]models.SchedulerEvent, error) {
	return cache.Fetch(ctx, c.cache, cacheKeyEvents, c.config.EventsTTL, func(ctx context.Context) ([]models.SchedulerEvent, error) {
		var all []models.SchedulerEvent
		offset := 0
		for page := 0; page < c.config.MaxPages; page++ {
			p, err := c.api.FetchEvents(ctx, apiclient.EventQuery{
				Limit:  c.config.PageSize,
				Offset: offset,
				Days:   c.config.LookbackDays,
			})
			if err != nil {
				return nil, err
			}
			all = append(all, p.Events...)
			if !p.Page.HasMore || len(p.Events) == 0 {
				break
			}
			offset += c.config.PageSize
		}
		return all, nil
	})
}

func (c *Collector) fetchAlerts(ctx context.Context) []models.InterventionAlert {
	alerts, err := cache.Fetch(ctx, c.cache, cacheKeyAlerts, c.config.LogsTTL, c.api.FetchInterventionAlerts)
	if err != nil {
		observe.FeedErrors.WithLabelValues("alerts").Inc()
		log.Warn().Err(err).Msg("intervention alert feed unavailable")
		return nil
	}
	return alerts
}

func (c *Collector) fetchExecutionLogs(ctx context.Context) []models.ExecutionLog {
	page, err := cache.Fetch(ctx, c.cache, cacheKeyExecLog, c.config.LogsTTL, func(ctx context.Context) (*apiclient.ExecutionLogPage, error) {
		return c.api.FetchExecutionLogs(ctx, apiclient.LogQuery{Limit: maxFailureRecords, Days: c.config.LookbackDays})
	})
	if err != nil {
		observe.FeedErrors.WithLabelValues("execution_logs").Inc()
		log.Warn().Err(err).Msg("execution log feed unavailable")
		return nil
	}
	return page.Logs
}

func (c *Collector) fetchSchedulerLogs(ctx context.Context) []models.SchedulerLog {
	page, err := cache.Fetch(ctx, c.cache, cacheKeySchedLog, c.config.LogsTTL, func(ctx context.Context) (*apiclient.SchedulerLogPage, error) {
		return c.api.FetchSchedulerLogs(ctx, apiclient.LogQuery{Limit: maxFailureRecords, Days: c.config.LookbackDays})
	})
	if err != nil {
		observe.FeedErrors.WithLabelValues("scheduler_logs").Inc()
		log.Warn().Err(err).Msg("scheduler log feed unavailable")
		return nil
	}
	return page.Logs
}

func resolveLocation(name string) (*time.Location, error) {
	switch strings.ToLower(name) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	default:
		return time.LoadLocation(name)
	}
}
