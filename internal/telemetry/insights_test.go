package telemetry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AJaySi/ALwrity-sub003/models"
)

func countByType(insights []models.Insight, typ models.InsightType) int {
	n := 0
	for _, in := range insights {
		if in.Type == typ {
			n++
		}
	}
	return n
}

func TestInsightsStoppedScheduler(t *testing.T) {
	insights := BuildInsights(models.SchedulerStatus{Running: false}, time.Now())

	assert.Equal(t, 1, countByType(insights, models.InsightError))
	assert.Equal(t, 0, countByType(insights, models.InsightSuccess))
	assert.Equal(t, models.InsightError, insights[0].Type)
	assert.Contains(t, insights[0].Message, "stopped")
}

func TestInsightsRunningScheduler(t *testing.T) {
	insights := BuildInsights(models.SchedulerStatus{Running: true}, time.Now())

	require.NotEmpty(t, insights)
	assert.Equal(t, models.InsightSuccess, insights[0].Type)
	assert.Contains(t, insights[0].Message, "running")
}

func TestInsightsStrategyLoad(t *testing.T) {
	idle := BuildInsights(models.SchedulerStatus{Running: true, CheckIntervalMinutes: 60}, time.Now())
	assert.Contains(t, idle[1].Message, "No active strategies")
	assert.Contains(t, idle[1].Message, "60")

	busy := BuildInsights(models.SchedulerStatus{
		Running: true, ActiveStrategiesCount: 3, CheckIntervalMinutes: 5,
	}, time.Now())
	assert.Equal(t, models.InsightInfo, busy[1].Type)
	assert.Contains(t, busy[1].Message, "3 active strategies")
	assert.Contains(t, busy[1].Message, "5 minutes")
}

func TestInsightsFailureRateTiers(t *testing.T) {
	tests := []struct {
		executed, failed int
		wantType         models.InsightType
	}{
		{executed: 70, failed: 30, wantType: models.InsightError},   // 30%
		{executed: 85, failed: 15, wantType: models.InsightWarning}, // 15%
		{executed: 95, failed: 5, wantType: models.InsightInfo},     // 5%
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d failed of %d", tc.failed, tc.executed+tc.failed), func(t *testing.T) {
			insights := BuildInsights(models.SchedulerStatus{
				Running:       true,
				TasksExecuted: tc.executed,
				TasksFailed:   tc.failed,
			}, time.Now())

			var found *models.Insight
			for i := range insights {
				if i >= 2 && insights[i].Type == tc.wantType {
					found = &insights[i]
					break
				}
			}
			require.NotNil(t, found, "expected a %s failure-rate insight", tc.wantType)
			assert.Contains(t, found.Message, "failed")
		})
	}
}

func TestInsightsNoFailureRateOnZeroDenominator(t *testing.T) {
	insights := BuildInsights(models.SchedulerStatus{Running: true}, time.Now())
	for _, in := range insights {
		assert.NotContains(t, in.Message, "failure rate")
	}
}

func TestInsightsNoFailureRateWhenNothingFailed(t *testing.T) {
	insights := BuildInsights(models.SchedulerStatus{Running: true, TasksExecuted: 50}, time.Now())
	for _, in := range insights {
		assert.NotContains(t, in.Message, "failed")
	}
}

func TestInsightsIntelligentScheduling(t *testing.T) {
	insights := BuildInsights(models.SchedulerStatus{
		Running:                 true,
		IntelligentScheduling:   true,
		MinCheckIntervalMinutes: 5,
		MaxCheckIntervalMinutes: 60,
	}, time.Now())

	var found bool
	for _, in := range insights {
		if in.Type == models.InsightSuccess && in.Message != "Scheduler is running" {
			found = true
			assert.Contains(t, in.Message, "5")
			assert.Contains(t, in.Message, "60")
		}
	}
	assert.True(t, found, "expected an intelligent-scheduling insight")
}

func TestInsightsStalenessWarning(t *testing.T) {
	for _, interval := range []int{1, 15, 60} {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		last := now.Add(-time.Duration(3*interval) * time.Minute)

		insights := BuildInsights(models.SchedulerStatus{
			Running:              true,
			CheckIntervalMinutes: interval,
			LastCheck:            last.Format(time.RFC3339),
		}, now)

		assert.Equal(t, 1, countByType(insights, models.InsightWarning),
			"interval %d: expected exactly one staleness warning", interval)
	}
}

func TestInsightsNoStalenessWithinThreshold(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	insights := BuildInsights(models.SchedulerStatus{
		Running:              true,
		CheckIntervalMinutes: 15,
		LastCheck:            now.Add(-20 * time.Minute).Format(time.RFC3339),
	}, now)

	assert.Equal(t, 0, countByType(insights, models.InsightWarning))
}

func TestInsightsMalformedLastCheckSilentlySkipped(t *testing.T) {
	insights := BuildInsights(models.SchedulerStatus{
		Running:              true,
		CheckIntervalMinutes: 15,
		LastCheck:            "not-a-timestamp",
	}, time.Now())

	assert.Equal(t, 0, countByType(insights, models.InsightWarning))
}

func TestInsightsRuleOrderIsFixed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	insights := BuildInsights(models.SchedulerStatus{
		Running:                 true,
		ActiveStrategiesCount:   2,
		TasksExecuted:           50,
		TasksFailed:             50,
		CheckIntervalMinutes:    10,
		MinCheckIntervalMinutes: 5,
		MaxCheckIntervalMinutes: 60,
		IntelligentScheduling:   true,
		LastCheck:               now.Add(-2 * time.Hour).Format(time.RFC3339),
	}, now)

	require.Len(t, insights, 5)
	assert.Equal(t, models.InsightSuccess, insights[0].Type) // running
	assert.Equal(t, models.InsightInfo, insights[1].Type)    // strategy load
	assert.Equal(t, models.InsightError, insights[2].Type)   // 50% failure rate
	assert.Equal(t, models.InsightSuccess, insights[3].Type) // intelligent scheduling
	assert.Equal(t, models.InsightWarning, insights[4].Type) // staleness
}
