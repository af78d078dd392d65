package models

import "time"

// StatusRecord is the per-user status row. ID is assigned by the identity
// provider and is never generated by the application.
type StatusRecord struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Message   string    `json:"custom_message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusUpdate carries the mutable fields. Every write replaces all three.
type StatusUpdate struct {
	Status    Status    `json:"status"`
	Message   string    `json:"custom_message"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u StatusUpdate) Apply(id string) StatusRecord {
	return StatusRecord{
		ID:        id,
		Status:    u.Status,
		Message:   u.Message,
		UpdatedAt: u.UpdatedAt,
	}
}

// ChangeType names the kind of row change carried by a ChangeEvent. Consumers
// treat every type the same way.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

type ChangeEvent struct {
	Type     ChangeType `json:"event_type"`
	RecordID string     `json:"record_id"`
	At       time.Time  `json:"at"`
}
