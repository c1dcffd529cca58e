package telemetry

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AJaySi/ALwrity-sub003/models"
)

func tsPtr(t time.Time) *time.Time { return &t }

func checkCycleEvent(day time.Time, found, executed, failed int) models.SchedulerEvent {
	return models.SchedulerEvent{
		EventType:     models.EventCheckCycle,
		EventDate:     tsPtr(day),
		TasksFound:    found,
		TasksExecuted: executed,
		TasksFailed:   failed,
	}
}

func TestAggregateDailyEmptyInput(t *testing.T) {
	assert.Empty(t, AggregateDaily(nil, time.UTC))
}

func TestAggregateDailyGroupsByCalendarDay(t *testing.T) {
	day1 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	day1Later := time.Date(2025, 5, 1, 23, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 5, 2, 0, 15, 0, 0, time.UTC)

	events := []models.SchedulerEvent{
		checkCycleEvent(day1, 5, 4, 1),
		checkCycleEvent(day1Later, 3, 3, 0),
		checkCycleEvent(day2, 2, 2, 0),
		{EventType: models.EventJobScheduled, EventDate: tsPtr(day1)},
		{EventType: models.EventJobCompleted, EventDate: tsPtr(day2)},
		{EventType: models.EventJobFailed, EventDate: tsPtr(day2)},
	}

	buckets := AggregateDaily(events, time.UTC)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2025-05-01", buckets[0].Date)
	assert.Equal(t, 2, buckets[0].CheckCycles)
	assert.Equal(t, 8, buckets[0].TasksFound)
	assert.Equal(t, 7, buckets[0].TasksExecuted)
	assert.Equal(t, 1, buckets[0].TasksFailed)
	assert.Equal(t, 1, buckets[0].JobsScheduled)

	assert.Equal(t, "2025-05-02", buckets[1].Date)
	assert.Equal(t, 1, buckets[1].JobsCompleted)
	assert.Equal(t, 1, buckets[1].JobsFailed)
}

func TestAggregateDailyUnknownBucketForDatelessEvents(t *testing.T) {
	events := []models.SchedulerEvent{
		{EventType: models.EventCheckCycle, TasksFound: 1, TasksExecuted: 1},
	}
	buckets := AggregateDaily(events, time.UTC)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Unknown", buckets[0].Date)
}

func TestAggregateDailyUnknownBucketSortsLast(t *testing.T) {
	day := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	events := []models.SchedulerEvent{
		{EventType: models.EventCheckCycle, TasksFound: 1},
		checkCycleEvent(day, 1, 1, 0),
	}
	buckets := AggregateDaily(events, time.UTC)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2025-05-01", buckets[0].Date)
	assert.Equal(t, "Unknown", buckets[1].Date)
}

func TestAggregateDailyUnrecognizedEventTypeIsNoOp(t *testing.T) {
	day := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	events := []models.SchedulerEvent{
		{EventType: "mystery", EventDate: tsPtr(day)},
	}
	assert.Empty(t, AggregateDaily(events, time.UTC))
}

func TestAggregateDailyCapsAtThirtyMostRecent(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var events []models.SchedulerEvent
	for i := 0; i < 45; i++ {
		events = append(events, checkCycleEvent(base.AddDate(0, 0, i), 1, 1, 0))
	}

	buckets := AggregateDaily(events, time.UTC)
	require.Len(t, buckets, maxDailyBuckets)

	// The oldest 15 days are dropped, the rest stay ascending.
	assert.Equal(t, base.AddDate(0, 0, 15).Format(dateKeyLayout), buckets[0].Date)
	for i := 1; i < len(buckets); i++ {
		assert.Less(t, buckets[i-1].Date, buckets[i].Date)
	}
}

func TestAggregateDailyInsensitiveToInputOrder(t *testing.T) {
	day1 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	forward := []models.SchedulerEvent{
		checkCycleEvent(day1, 5, 4, 1),
		checkCycleEvent(day2, 3, 3, 0),
	}
	reversed := []models.SchedulerEvent{forward[1], forward[0]}

	assert.Equal(t, AggregateDaily(forward, time.UTC), AggregateDaily(reversed, time.UTC))
}

func TestAggregateDailyExecutedSumMatchesInput(t *testing.T) {
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	var events []models.SchedulerEvent
	wantExecuted := 0
	for i := 0; i < 20; i++ {
		executed := i * 3
		wantExecuted += executed
		events = append(events, checkCycleEvent(base.AddDate(0, 0, i%5), executed+2, executed, 2))
	}
	// Non-cycle events must not contribute to the task counters.
	events = append(events, models.SchedulerEvent{EventType: models.EventJobCompleted, EventDate: tsPtr(base)})

	gotExecuted := 0
	for _, b := range AggregateDaily(events, time.UTC) {
		gotExecuted += b.TasksExecuted
	}
	assert.Equal(t, wantExecuted, gotExecuted)
}

func TestAggregateDailyCountsDistinctUsers(t *testing.T) {
	day := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	var events []models.SchedulerEvent
	for i := 0; i < 3; i++ {
		ev := checkCycleEvent(day, 1, 1, 0)
		ev.UserID = fmt.Sprintf("user-%d", i)
		events = append(events, ev)
		// Same user twice should not inflate the estimate.
		events = append(events, ev)
	}

	buckets := AggregateDaily(events, time.UTC)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(3), buckets[0].ActiveUsers)
}

func TestAggregateDailyBucketBoundaryFollowsLocation(t *testing.T) {
	// 2025-05-01 23:30 UTC is already 2025-05-02 in UTC+2.
	moment := time.Date(2025, 5, 1, 23, 30, 0, 0, time.UTC)
	events := []models.SchedulerEvent{checkCycleEvent(moment, 1, 1, 0)}

	utcBuckets := AggregateDaily(events, time.UTC)
	eastBuckets := AggregateDaily(events, time.FixedZone("UTC+2", 2*60*60))

	require.Len(t, utcBuckets, 1)
	require.Len(t, eastBuckets, 1)
	assert.Equal(t, "2025-05-01", utcBuckets[0].Date)
	assert.Equal(t, "2025-05-02", eastBuckets[0].Date)
}
