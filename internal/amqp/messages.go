package amqp

import (
	"encoding/json"
	"time"
)

// Message type tags carried in the AMQP delivery Type field.
const (
	TypeEntryCreated = "entry.created"
	TypeEntryDeleted = "entry.deleted"
)

// EntrySyncMessage announces a newly created entry. It carries only the id;
// the worker re-reads the full row from the repository before mirroring it.
type EntrySyncMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(id string) *EntrySyncMessage {
	return &EntrySyncMessage{ID: id, Timestamp: time.Now()}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EntryDeleteMessage announces a deleted entry. The local row is already gone
// when this is published, so it carries the id the backup mirror indexes by.
type EntryDeleteMessage struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD, for log context
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryDeleteMessage(id, date string) *EntryDeleteMessage {
	return &EntryDeleteMessage{ID: id, Date: date, Timestamp: time.Now()}
}

func (m *EntryDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryDeleteMessageFromJSON(data []byte) (*EntryDeleteMessage, error) {
	var msg EntryDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
