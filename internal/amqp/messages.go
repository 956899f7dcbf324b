package amqp

import (
	"encoding/json"
	"time"
)

// StateChangedMessage tells the sync worker the household snapshot changed.
// It carries only a revision counter; the worker fetches the current snapshot
// from the primary store, so a burst of edits collapses into one mirror write.
type StateChangedMessage struct {
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStateChangedMessage(revision int64) *StateChangedMessage {
	return &StateChangedMessage{
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

func (m *StateChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StateChangedMessageFromJSON(data []byte) (*StateChangedMessage, error) {
	var msg StateChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
