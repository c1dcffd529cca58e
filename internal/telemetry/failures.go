package telemetry

import (
	"fmt"
	"sort"
	"time"

	"github.com/AJaySi/ALwrity-sub003/models"
)

// maxFailureRecords caps the merged failure list shown on the dashboard.
const maxFailureRecords = 10

// MergeFailures merges failure records from the three independent feeds
// into one list, newest first, capped at maxFailureRecords. Every record
// gets a source-qualified key because the feeds number rows independently
// and a bare numeric id collides across them. Records without a timestamp
// compare as epoch zero and therefore sort last.
func MergeFailures(alerts []models.InterventionAlert, execLogs []models.ExecutionLog, schedLogs []models.SchedulerLog) []models.FailureRecord {
	merged := make([]models.FailureRecord, 0, len(alerts)+len(execLogs)+len(schedLogs))

	for i := range alerts {
		a := &alerts[i]
		merged = append(merged, models.FailureRecord{
			Source:     models.SourceIntervention,
			Key:        failureKey(models.SourceIntervention, a.ID),
			OccurredAt: a.CreatedAt,
			Task:       a.Title,
			Error:      a.Message,
		})
	}
	for i := range execLogs {
		l := &execLogs[i]
		merged = append(merged, models.FailureRecord{
			Source:     models.SourceExecution,
			Key:        failureKey(models.SourceExecution, l.ID),
			OccurredAt: l.ExecutedAt,
			Task:       l.TaskName,
			Error:      l.ErrorMessage,
		})
	}
	for i := range schedLogs {
		l := &schedLogs[i]
		merged = append(merged, models.FailureRecord{
			Source:     models.SourceScheduler,
			Key:        failureKey(models.SourceScheduler, l.ID),
			OccurredAt: l.Timestamp,
			Task:       l.Component,
			Error:      l.Message,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return failureTime(merged[i]).After(failureTime(merged[j]))
	})

	if len(merged) > maxFailureRecords {
		merged = merged[:maxFailureRecords]
	}
	return merged
}

func failureKey(source models.FailureSource, id int) string {
	return fmt.Sprintf("%s_%d", source, id)
}

func failureTime(r models.FailureRecord) time.Time {
	if r.OccurredAt == nil {
		return time.Time{}
	}
	return *r.OccurredAt
}
