package mq

import "time"

// Payload of the reminder.due event.
type ReminderDuePayload struct {
	AlertID string    `json:"alert_id"`
	UserID  int       `json:"user_id"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	FiredAt time.Time `json:"fired_at"`
	TraceID string    `json:"trace_id,omitempty"`
}
