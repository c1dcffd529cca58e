package models

import "time"

// DailyActivity holds the counters accumulated for one calendar day of
// scheduler activity. Events without a date land in the "Unknown" bucket.
type DailyActivity struct {
	Date          string `json:"date"`
	CheckCycles   int    `json:"check_cycles"`
	TasksFound    int    `json:"tasks_found"`
	TasksExecuted int    `json:"tasks_executed"`
	TasksFailed   int    `json:"tasks_failed"`
	JobsScheduled int    `json:"jobs_scheduled"`
	JobsCompleted int    `json:"jobs_completed"`
	JobsFailed    int    `json:"jobs_failed"`
	ActiveUsers   int64  `json:"active_users"`
}

// Trend describes the direction of recent task volume relative to the
// full retained window.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// HealthMetrics are the scalar health figures derived from the event window.
type HealthMetrics struct {
	TotalTasksProcessed int     `json:"total_tasks_processed"`
	SuccessRate         float64 `json:"success_rate"`
	AvgTasksPerCycle    float64 `json:"avg_tasks_per_cycle"`
	Trend               Trend   `json:"trend"`
}

// InsightType classifies an operational insight for the dashboard.
type InsightType string

const (
	InsightInfo    InsightType = "info"
	InsightWarning InsightType = "warning"
	InsightError   InsightType = "error"
	InsightSuccess InsightType = "success"
)

// Insight is one human-readable advisory line about scheduler health.
type Insight struct {
	Type    InsightType `json:"type"`
	Message string      `json:"message"`
}

// FailureSource tags which feed a failure record came from.
type FailureSource string

const (
	SourceIntervention FailureSource = "intervention"
	SourceExecution    FailureSource = "execution"
	SourceScheduler    FailureSource = "scheduler"
)

// FailureRecord is one display-ready failure merged from the feeds.
// Key is source-qualified because the feeds number their records
// independently and plain ids collide across sources.
type FailureRecord struct {
	Source     FailureSource `json:"source"`
	Key        string        `json:"key"`
	OccurredAt *time.Time    `json:"occurred_at"`
	Task       string        `json:"task"`
	Error      string        `json:"error"`
}

// Dashboard is the immutable view model published to display clients.
// A fresh value is built on every refresh cycle and never mutated.
type Dashboard struct {
	Status         SchedulerStatus  `json:"status"`
	DailyActivity  []DailyActivity  `json:"daily_activity"`
	Health         HealthMetrics    `json:"health"`
	Insights       []Insight        `json:"insights"`
	RecentFailures []FailureRecord  `json:"recent_failures"`
	Events         []SchedulerEvent `json:"events"`
	GeneratedAt    time.Time        `json:"generated_at"`
}
