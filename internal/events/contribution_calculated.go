package events

import "time"

const (
	ContributionCalculatedTopic     = "payroll.contribution.calculated.v1"
	ContributionCalculatedEventType = "contribution.calculated"
)

type ContributionCalculatedEvent struct {
	EventType  string    `json:"event_type"`
	RunID      string    `json:"run_id"`
	RequestID  string    `json:"request_id,omitempty"`
	CityName   string    `json:"city_name"`
	Year       int       `json:"year"`
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}
