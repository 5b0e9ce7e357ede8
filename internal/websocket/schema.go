package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionTabSwitch   Action = "tab_switch"
	ActionCopyAttempt Action = "copy_attempt"
	ActionAutoSubmit  Action = "auto_submit"
	ActionPing        Action = "ping"
)

// RequestPayload is one client message. Payload carries optional client
// context such as the visibility state or the blocked key combination.
type RequestPayload struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventAck   Event = "ack"
	EventPong  Event = "pong"
)

// AckResponse confirms a recorded signal and its running count.
type AckResponse struct {
	Event  Event  `json:"event"`
	Action Action `json:"action"`
	Count  int64  `json:"count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
