package events

import (
	"encoding/json"
	"time"
)

// Routing keys.
const (
	RescheduleProposed  = "reschedule.proposed"
	RescheduleAccepted  = "reschedule.accepted"
	RescheduleDeclined  = "reschedule.declined"
	RescheduleCancelled = "reschedule.cancelled"
	RescheduleExpired   = "reschedule.expired"
	BookingCancelled    = "booking.cancelled"
)

// Event is the JSON body of every message. Fields that do not apply to an
// event type are omitted.
type Event struct {
	Type         string     `json:"type"`
	BookingID    string     `json:"booking_id"`
	RequestID    string     `json:"request_id,omitempty"`
	Status       string     `json:"status"`
	ProposedTime *time.Time `json:"proposed_time,omitempty"`
	ActorID      string     `json:"actor_id,omitempty"`
	ActorRole    string     `json:"actor_role,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
