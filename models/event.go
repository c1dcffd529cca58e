package models

import (
	"encoding/json"
	"time"
)

// Event types emitted by the scheduler's event feed.
const (
	EventCheckCycle         = "check_cycle"
	EventIntervalAdjustment = "interval_adjustment"
	EventStart              = "start"
	EventStop               = "stop"
	EventJobScheduled       = "job_scheduled"
	EventJobCompleted       = "job_completed"
	EventJobFailed          = "job_failed"
)

// SchedulerEvent is a single raw event from the scheduler event feed.
// The task counters are only meaningful for check_cycle events; numeric
// fields the feed omits decode to zero.
type SchedulerEvent struct {
	EventType             string          `json:"event_type"`
	EventDate             *time.Time      `json:"event_date"`
	TasksFound            int             `json:"tasks_found"`
	TasksExecuted         int             `json:"tasks_executed"`
	TasksFailed           int             `json:"tasks_failed"`
	CheckCycleNumber      int             `json:"check_cycle_number"`
	CheckDurationSeconds  float64         `json:"check_duration_seconds"`
	ActiveStrategiesCount int             `json:"active_strategies_count"`
	JobID                 string          `json:"job_id,omitempty"`
	UserID                string          `json:"user_id,omitempty"`
	ErrorMessage          string          `json:"error_message,omitempty"`
	EventData             json.RawMessage `json:"event_data,omitempty"`
}

// SchedulerStatus is the live snapshot reported by the scheduler API.
// LastCheck is kept as the raw string the API sent; it is parsed lazily
// and malformed values are tolerated.
type SchedulerStatus struct {
	Running                 bool   `json:"running"`
	ActiveStrategiesCount   int    `json:"active_strategies_count"`
	TasksExecuted           int    `json:"tasks_executed"`
	TasksFailed             int    `json:"tasks_failed"`
	CheckIntervalMinutes    int    `json:"check_interval_minutes"`
	MinCheckIntervalMinutes int    `json:"min_check_interval_minutes"`
	MaxCheckIntervalMinutes int    `json:"max_check_interval_minutes"`
	IntelligentScheduling   bool   `json:"intelligent_scheduling"`
	LastCheck               string `json:"last_check,omitempty"`
}

// InterventionAlert is a failure-shaped record from the intervention feed.
type InterventionAlert struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	CreatedAt *time.Time `json:"created_at"`
}

// ExecutionLog is one task execution record from the execution log feed.
type ExecutionLog struct {
	ID           int        `json:"id"`
	TaskName     string     `json:"task_name"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ExecutedAt   *time.Time `json:"executed_at"`
}

// SchedulerLog is one internal log line from the scheduler log feed.
type SchedulerLog struct {
	ID        int        `json:"id"`
	Level     string     `json:"level"`
	Component string     `json:"component"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp"`
}
