// Package socket implements the reconnecting websocket transport for live playlist updates.
package socket

import (
	"encoding/json"

	"github.com/marquee-cli/marquee/creative"
	"github.com/marquee-cli/marquee/schedule"
)

// Message is the inbound push envelope. The backend sends exactly one of the
// payload fields per message; anything else routes to no-op.
type Message struct {
	Type  string          `json:"type,omitempty"`
	Data  []schedule.Row  `json:"data,omitempty"`
	Items []creative.Item `json:"items,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Event classifies an inbound message for the playback core.
type Event int

const (
	// EventNone marks a malformed or unroutable message; the core ignores it.
	EventNone Event = iota
	// EventRows carries raw rows needing the same mapping as a fetch.
	EventRows
	// EventItems carries pre-mapped creatives.
	EventItems
	// EventError carries a backend error to surface as a banner.
	EventError
	// EventWelcome is the handshake; it clears any existing error banner.
	EventWelcome
)

// Route classifies the message. Exactly one event is produced per message.
func (m Message) Route() Event {
	switch {
	case m.Type == "welcome":
		return EventWelcome
	case m.Error != "":
		return EventError
	case len(m.Items) > 0:
		return EventItems
	case len(m.Data) > 0:
		return EventRows
	default:
		return EventNone
	}
}

// Decode parses a raw frame into a Message. Malformed frames yield false.
func Decode(frame []byte) (Message, bool) {
	var m Message
	if err := json.Unmarshal(frame, &m); err != nil {
		return Message{}, false
	}
	return m, true
}

// Subscribe is the initial payload announcing the device on connect, and the
// keepalive re-sent on the poll cadence.
type Subscribe struct {
	DeviceID int `json:"deviceId"`
}
