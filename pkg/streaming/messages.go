// Package streaming defines the wire protocol spoken between the pose feed
// and the calibration service.
package streaming

import (
	"encoding/json"

	"github.com/holeinone/coursecal/pkg/core"
)

// Message type constants of the pose feed protocol.
const (
	TypeFrame   = "frame"
	TypeConfirm = "confirm"
	TypeReset   = "reset"
	TypeRealign = "realign"
	TypeStatus  = "status"
	TypeAck     = "ack"
	TypeError   = "error"
)

// Envelope wraps all messages sent over the WebSocket and each line of a
// replay file.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AckMessage is the service's acknowledgement response. Status is attached
// after every command so the display never has to ask separately.
type AckMessage struct {
	Type   string       `json:"type"` // always "ack"
	For    string       `json:"for"`  // the message type being acknowledged
	Result any          `json:"result,omitempty"`
	Status *core.Status `json:"status,omitempty"`
}

// RealignPayload is the result of a realign command.
type RealignPayload struct {
	Moved int `json:"moved"`
}

// ErrorMessage reports a command that could not be handled.
type ErrorMessage struct {
	Type  string `json:"type"` // always "error"
	For   string `json:"for"`
	Error string `json:"error"`
}

// FramePayload carries one frame's pose events.
type FramePayload = core.FrameBatch

// ConfirmPayload is the result of a confirm command.
type ConfirmPayload struct {
	Confirmed bool   `json:"confirmed"`
	Target    string `json:"target"`
}

// NewEnvelope marshals payload into an envelope of the given type.
// A nil payload produces an envelope without one.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	env := Envelope{Type: msgType}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	env.Payload = raw
	return env, nil
}
