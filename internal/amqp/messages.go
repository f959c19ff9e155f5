package amqp

import (
	"encoding/json"
	"time"

	"budget/internal/core"
)

// ExportRequestMessage asks the worker to render a monthly report. Snapshot
// is optional: when nil the worker recomputes it from current records.
type ExportRequestMessage struct {
	Owner     string         `json:"owner,omitempty"`
	Month     core.MonthKey  `json:"month"`
	Snapshot  *core.Snapshot `json:"snapshot,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewExportRequestMessage(owner string, month core.MonthKey, snapshot *core.Snapshot) *ExportRequestMessage {
	return &ExportRequestMessage{
		Owner:     owner,
		Month:     month,
		Snapshot:  snapshot,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestMessageFromJSON creates a message from JSON bytes.
func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
