package events

import "time"

const (
	TypeSyncSessionStarted  = "SYNC_SESSION_STARTED"
	TypeSyncSessionFinished = "SYNC_SESSION_FINISHED"
	TypeSyncOperationDone   = "SYNC_OPERATION_DONE"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SYNC_SESSION_FINISHED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// SyncSessionEvent describes a sync run starting or finishing for a company.
type SyncSessionEvent struct {
	Type      string
	Ticket    string
	CompanyID string
	Status    string
	Total     int64
	Failed    int64
	At        time.Time
}

func (e SyncSessionEvent) EventType() string { return e.Type }

func (e SyncSessionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"ticket":     e.Ticket,
		"company_id": e.CompanyID,
		"status":     e.Status,
		"total":      e.Total,
		"failed":     e.Failed,
		"at":         e.At.Format(time.RFC3339),
	}
}

func (e SyncSessionEvent) Timestamp() time.Time { return e.At }
