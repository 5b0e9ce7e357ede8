package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IntegrityKind names a client-reported exam-session signal.
type IntegrityKind string

const (
	IntegrityTabSwitch   IntegrityKind = "tab_switch"
	IntegrityCopyAttempt IntegrityKind = "copy_attempt"
	IntegrityAutoSubmit  IntegrityKind = "auto_submit"
)

// Valid reports whether k is a recognised signal.
func (k IntegrityKind) Valid() bool {
	switch k {
	case IntegrityTabSwitch, IntegrityCopyAttempt, IntegrityAutoSubmit:
		return true
	}
	return false
}

// IntegrityEvent is an advisory signal reported by the exam client.
// It is never used for scoring.
type IntegrityEvent struct {
	ExamID     uuid.UUID       `json:"examId"`
	UserID     uuid.UUID       `json:"userId"`
	Kind       IntegrityKind   `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// Monitor event types.
const (
	MonitorEventSubmitted = "submitted"
	MonitorEventIntegrity = "integrity"
)

// MonitorEvent is published on an exam's monitor channel.
type MonitorEvent struct {
	Type   string        `json:"type"`
	ExamID uuid.UUID     `json:"examId"`
	UserID uuid.UUID     `json:"userId"`
	Kind   IntegrityKind `json:"kind,omitempty"`
	Count  int64         `json:"count,omitempty"`
	Result *Result       `json:"result,omitempty"`
	At     time.Time     `json:"at"`
}
