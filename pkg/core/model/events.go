package model

import "time"

// EventType names a domain event emitted by the scheduling core
type EventType string

const (
	EventScheduleCreated  EventType = "SCHEDULE_CREATED"
	EventScheduleRejected EventType = "SCHEDULE_REJECTED"
	EventShortageDetected EventType = "SHORTAGE_DETECTED"
)

// Event is published fire-and-forget to the notification dispatcher
type Event struct {
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	EmployeeID string          `json:"employeeId,omitempty"`
	Date       string          `json:"date,omitempty"`
	Record     *ScheduleRecord `json:"record,omitempty"`
	Violations []Violation     `json:"violations,omitempty"`
	Suggestion *Suggestion     `json:"suggestion,omitempty"`
}
