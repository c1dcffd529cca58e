package telemetry

import "github.com/AJaySi/ALwrity-sub003/models"

// trendWindow is how many of the most recent daily buckets make up the
// "recent" side of the trend comparison.
const trendWindow = 7

// ComputeHealth derives the scalar health metrics from an event window and
// its daily buckets. It is total: empty or partially populated input yields
// the documented defaults (100% success on nothing processed, zero
// averages) instead of an error, so the dashboard always renders.
func ComputeHealth(events []models.SchedulerEvent, buckets []models.DailyActivity) models.HealthMetrics {
	var checkCycles, tasksFound, tasksExecuted, tasksFailed int
	for i := range events {
		ev := &events[i]
		if ev.EventType != models.EventCheckCycle {
			continue
		}
		checkCycles++
		tasksFound += ev.TasksFound
		tasksExecuted += ev.TasksExecuted
		tasksFailed += ev.TasksFailed
	}

	totalProcessed := tasksFound
	if totalProcessed <= 0 {
		totalProcessed = tasksExecuted + tasksFailed
	}

	successRate := 100.0
	if totalProcessed > 0 {
		successRate = float64(tasksExecuted) / float64(totalProcessed) * 100
		if successRate > 100 {
			successRate = 100
		}
		if successRate < 0 {
			successRate = 0
		}
	}

	avgPerCycle := 0.0
	if checkCycles > 0 {
		avgPerCycle = float64(totalProcessed) / float64(checkCycles)
	}

	return models.HealthMetrics{
		TotalTasksProcessed: totalProcessed,
		SuccessRate:         successRate,
		AvgTasksPerCycle:    avgPerCycle,
		Trend:               trendDirection(buckets),
	}
}

// trendDirection compares the mean tasks_found of the most recent
// trendWindow buckets against the mean across all retained buckets.
// Ties resolve to stable.
func trendDirection(buckets []models.DailyActivity) models.Trend {
	if len(buckets) == 0 {
		return models.TrendStable
	}

	var total int
	for i := range buckets {
		total += buckets[i].TasksFound
	}
	overall := float64(total) / float64(len(buckets))

	start := len(buckets) - trendWindow
	if start < 0 {
		start = 0
	}
	var recentTotal int
	for _, b := range buckets[start:] {
		recentTotal += b.TasksFound
	}
	recent := float64(recentTotal) / float64(len(buckets)-start)

	switch {
	case recent > overall:
		return models.TrendUp
	case recent < overall:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}
