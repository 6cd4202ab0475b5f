package models

import (
	"encoding/json"
	"time"
)

// Provenance identifies where a failed message was consumed from.
type Provenance struct {
	Topic         string
	Partition     int32
	Offset        int64
	Key           string
	ConsumerGroup string
	Attempts      int
}

type DeadLetterRecord struct {
	Payload       json.RawMessage `json:"payload"`
	Error         string          `json:"error"`
	ErrorType     string          `json:"errorType"`
	SourceTopic   string          `json:"sourceTopic"`
	Partition     int32           `json:"partition"`
	Offset        int64           `json:"offset"`
	ConsumerGroup string          `json:"consumerGroup,omitempty"`
	Key           string          `json:"key,omitempty"`
	Attempts      int             `json:"attempts"`
	FailedAt      time.Time       `json:"failedAt"`
}
