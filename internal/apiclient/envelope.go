package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AJaySi/ALwrity-sub003/models"
)

// The backend answers list endpoints in one of two envelope shapes: a flat
// one carrying total_count/limit/offset/has_more beside the records, or a
// nested one with a pagination object. The nested shape is detected by the
// presence of the pagination key; both normalize to one canonical page type
// right after decoding, so nothing downstream ever branches on wire shape.

// Page is the canonical pagination block shared by all list responses.
type Page struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type wirePagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// EventPage is one normalized page of scheduler events.
type EventPage struct {
	Events []models.SchedulerEvent `json:"events"`
	Page   Page                    `json:"page"`
}

type eventEnvelope struct {
	Events []models.SchedulerEvent `json:"events"`

	// Flat shape.
	TotalCount int  `json:"total_count"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"has_more"`

	// Nested shape.
	Pagination *wirePagination `json:"pagination"`
}

func (e *eventEnvelope) normalize() *EventPage {
	return &EventPage{
		Events: e.Events,
		Page:   normalizePage(e.Pagination, e.TotalCount, e.Limit, e.Offset, e.HasMore),
	}
}

// ExecutionLogPage is one normalized page of task execution logs.
type ExecutionLogPage struct {
	Logs []models.ExecutionLog `json:"logs"`
	Page Page                  `json:"page"`
}

type executionLogEnvelope struct {
	Logs       []models.ExecutionLog `json:"logs"`
	TotalCount int                   `json:"total_count"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
	HasMore    bool                  `json:"has_more"`
	Pagination *wirePagination       `json:"pagination"`
}

func (e *executionLogEnvelope) normalize() *ExecutionLogPage {
	return &ExecutionLogPage{
		Logs: e.Logs,
		Page: normalizePage(e.Pagination, e.TotalCount, e.Limit, e.Offset, e.HasMore),
	}
}

// SchedulerLogPage is one normalized page of scheduler log lines.
type SchedulerLogPage struct {
	Logs []models.SchedulerLog `json:"logs"`
	Page Page                  `json:"page"`
}

type schedulerLogEnvelope struct {
	Logs       []models.SchedulerLog `json:"logs"`
	TotalCount int                   `json:"total_count"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
	HasMore    bool                  `json:"has_more"`
	Pagination *wirePagination       `json:"pagination"`
}

func (e *schedulerLogEnvelope) normalize() *SchedulerLogPage {
	return &SchedulerLogPage{
		Logs: e.Logs,
		Page: normalizePage(e.Pagination, e.TotalCount, e.Limit, e.Offset, e.HasMore),
	}
}

func normalizePage(nested *wirePagination, total, limit, offset int, hasMore bool) Page {
	if nested != nil {
		return Page{Total: nested.Total, Limit: nested.Limit, Offset: nested.Offset, HasMore: nested.HasMore}
	}
	return Page{Total: total, Limit: limit, Offset: offset, HasMore: hasMore}
}

// fallbackErrorMessage is used when the upstream gives us nothing usable.
const fallbackErrorMessage = "scheduler API request failed"

type apiErrorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// normalizeError turns a failed request into one descriptive error,
// preferring the server's detail field, then its message field, then the
// raw error text, then a fixed fallback.
func normalizeError(body []byte, err error) error {
	if len(body) > 0 {
		var parsed apiErrorBody
		if jsonErr := json.Unmarshal(body, &parsed); jsonErr == nil {
			if parsed.Detail != "" {
				return fmt.Errorf("%s", parsed.Detail)
			}
			if parsed.Message != "" {
				return fmt.Errorf("%s", parsed.Message)
			}
		}
	}
	if err != nil && err.Error() != "" {
		return err
	}
	return errors.New(fallbackErrorMessage)
}
