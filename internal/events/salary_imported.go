package events

import "time"

const (
	SalaryImportedTopic     = "payroll.salary.imported.v1"
	SalaryImportedEventType = "salary.imported"
)

// SalaryImportedEvent is emitted once per accepted salary upload.
type SalaryImportedEvent struct {
	EventType   string    `json:"event_type"`
	BatchID     string    `json:"batch_id"`
	RequestID   string    `json:"request_id,omitempty"`
	Count       int       `json:"count"`
	EmployeeIDs []string  `json:"employee_ids"`
	OccurredAt  time.Time `json:"occurred_at"`
}
