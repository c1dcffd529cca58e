package telemetry

import (
	"fmt"
	"time"

	"github.com/AJaySi/ALwrity-sub003/models"
)

// Failure-rate thresholds, in percent.
const (
	failureRateError   = 20.0
	failureRateWarning = 10.0
)

// stalenessFactor is how many expected intervals may elapse since the last
// check before the scheduler is flagged stale.
const stalenessFactor = 2

// lastCheckLayouts are the timestamp formats the status feed has been seen
// to emit for last_check.
var lastCheckLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// BuildInsights evaluates the fixed rule set over a scheduler status
// snapshot. Rules fire independently in a fixed order; every message embeds
// the concrete numbers it was derived from. The function is total: a
// malformed last_check is silently skipped rather than reported.
func BuildInsights(status models.SchedulerStatus, now time.Time) []models.Insight {
	insights := make([]models.Insight, 0, 5)

	// Rule 1: running state.
	if !status.Running {
		insights = append(insights, models.Insight{
			Type:    models.InsightError,
			Message: "Scheduler is stopped - scheduled jobs will not run until it is started",
		})
	} else {
		insights = append(insights, models.Insight{
			Type:    models.InsightSuccess,
			Message: "Scheduler is running",
		})
	}

	// Rule 2: strategy load drives the polling mode.
	if status.ActiveStrategiesCount == 0 {
		insights = append(insights, models.Insight{
			Type: models.InsightInfo,
			Message: fmt.Sprintf("No active strategies - checks run at the relaxed %d minute interval",
				status.CheckIntervalMinutes),
		})
	} else {
		insights = append(insights, models.Insight{
			Type: models.InsightInfo,
			Message: fmt.Sprintf("%d active strategies - checks run every %d minutes",
				status.ActiveStrategiesCount, status.CheckIntervalMinutes),
		})
	}

	// Rule 3: failure rate, skipped entirely on a zero denominator.
	if total := status.TasksExecuted + status.TasksFailed; total > 0 {
		rate := float64(status.TasksFailed) / float64(total) * 100
		switch {
		case rate > failureRateError:
			insights = append(insights, models.Insight{
				Type: models.InsightError,
				Message: fmt.Sprintf("High failure rate: %.1f%% of %d tasks failed",
					rate, total),
			})
		case rate > failureRateWarning:
			insights = append(insights, models.Insight{
				Type: models.InsightWarning,
				Message: fmt.Sprintf("Elevated failure rate: %.1f%% of %d tasks failed",
					rate, total),
			})
		case rate > 0:
			insights = append(insights, models.Insight{
				Type: models.InsightInfo,
				Message: fmt.Sprintf("Failure rate is healthy: %.1f%% of %d tasks failed",
					rate, total),
			})
		}
	}

	// Rule 4: scheduling mode.
	if status.IntelligentScheduling {
		insights = append(insights, models.Insight{
			Type: models.InsightSuccess,
			Message: fmt.Sprintf("Intelligent scheduling active - interval adapts between %d and %d minutes",
				status.MinCheckIntervalMinutes, status.MaxCheckIntervalMinutes),
		})
	}

	// Rule 5: staleness.
	if status.LastCheck != "" && status.CheckIntervalMinutes > 0 {
		if last, ok := parseLastCheck(status.LastCheck); ok {
			elapsed := now.Sub(last)
			threshold := time.Duration(stalenessFactor*status.CheckIntervalMinutes) * time.Minute
			if elapsed > threshold {
				insights = append(insights, models.Insight{
					Type: models.InsightWarning,
					Message: fmt.Sprintf("Last check cycle was %.0f minutes ago but one is expected every %d minutes",
						elapsed.Minutes(), status.CheckIntervalMinutes),
				})
			}
		}
	}

	return insights
}

func parseLastCheck(raw string) (time.Time, bool) {
	for _, layout := range lastCheckLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
