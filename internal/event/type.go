package event

import "time"

const WaterServiceEventsQueue string = "water_service_events"

type EventType string

const (
	EventRequestSubmitted EventType = "request_submitted"
	EventStatusChanged    EventType = "status_changed"
)

// RequestEvent is published for downstream consumers such as billing and
// field scheduling. It never carries identity data beyond the contact email.
type RequestEvent struct {
	Type            EventType `json:"event_type"`
	RequestID       string    `json:"request_id"`
	Status          string    `json:"status"`
	ApplicantEmail  string    `json:"applicant_email,omitempty"`
	PropertyUseType string    `json:"property_use_type,omitempty"`
	DepositRequired string    `json:"deposit_required,omitempty"`
	ChangedBy       string    `json:"changed_by,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
