package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/notify"
)

// ChangeMessage is the wire form of a committed change. It carries only
// identifiers; consumers read the record itself from storage when needed.
type ChangeMessage struct {
	EventID    uuid.UUID `json:"event_id"`
	Collection string    `json:"collection"`
	Op         notify.Op `json:"op"`
	RecordID   int64     `json:"record_id"`
	Month      string    `json:"month,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewChangeMessage(e notify.Event) *ChangeMessage {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &ChangeMessage{
		EventID:    id,
		Collection: e.Collection,
		Op:         e.Op,
		RecordID:   e.RecordID,
		Month:      e.Month,
		Timestamp:  ts,
	}
}

// Event converts the message back into an in-process event.
func (m *ChangeMessage) Event() notify.Event {
	return notify.Event{
		ID:         m.EventID,
		Collection: m.Collection,
		Op:         m.Op,
		RecordID:   m.RecordID,
		Month:      m.Month,
		At:         m.Timestamp,
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
