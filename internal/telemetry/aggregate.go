package telemetry

import (
	"sort"
	"time"

	"github.com/axiomhq/hyperloglog"

	"github.com/AJaySi/ALwrity-sub003/models"
)

// maxDailyBuckets bounds the rendered bucket window. Older buckets are
// dropped, not merged; the fold itself never skips an event.
const maxDailyBuckets = 30

// unknownDateKey is the sentinel bucket for events without a date.
const unknownDateKey = "Unknown"

const dateKeyLayout = "2006-01-02"

// dayAccum pairs a bucket's counters with the sketch estimating its
// distinct active users.
type dayAccum struct {
	activity models.DailyActivity
	users    *hyperloglog.Sketch
}

// AggregateDaily folds an unordered event collection into per-calendar-day
// activity buckets, sorted ascending by date and truncated to the most
// recent maxDailyBuckets. The calendar day is taken in loc, so deployments
// can bucket in server-local time, UTC, or a named reporting zone.
//
// Events with an unrecognized event_type touch no bucket at all.
func AggregateDaily(events []models.SchedulerEvent, loc *time.Location) []models.DailyActivity {
	if loc == nil {
		loc = time.Local
	}

	days := make(map[string]*dayAccum)
	for i := range events {
		ev := &events[i]
		key := dateKey(ev.EventDate, loc)

		acc, ok := days[key]
		if !ok {
			acc = &dayAccum{
				activity: models.DailyActivity{Date: key},
				users:    hyperloglog.New16(),
			}
		}

		switch ev.EventType {
		case models.EventCheckCycle:
			acc.activity.CheckCycles++
			acc.activity.TasksFound += ev.TasksFound
			acc.activity.TasksExecuted += ev.TasksExecuted
			acc.activity.TasksFailed += ev.TasksFailed
		case models.EventJobScheduled:
			acc.activity.JobsScheduled++
		case models.EventJobCompleted:
			acc.activity.JobsCompleted++
		case models.EventJobFailed:
			acc.activity.JobsFailed++
		case models.EventStart, models.EventStop, models.EventIntervalAdjustment:
			// Lifecycle events carry no per-day counter but still pin the
			// bucket so the day shows up in the chart.
		default:
			continue
		}

		if ev.UserID != "" {
			acc.users.Insert([]byte(ev.UserID))
		}
		days[key] = acc
	}

	buckets := make([]models.DailyActivity, 0, len(days))
	for _, acc := range days {
		acc.activity.ActiveUsers = int64(acc.users.Estimate())
		buckets = append(buckets, acc.activity)
	}

	// Date keys are zero-padded ISO dates, so lexical order is
	// chronological; the Unknown sentinel sorts after every real date.
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})

	if len(buckets) > maxDailyBuckets {
		buckets = buckets[len(buckets)-maxDailyBuckets:]
	}
	return buckets
}

func dateKey(t *time.Time, loc *time.Location) string {
	if t == nil {
		return unknownDateKey
	}
	return t.In(loc).Format(dateKeyLayout)
}
