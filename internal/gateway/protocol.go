// Package gateway exposes a ptysession.Session over the §6 WebSocket wire
// protocol to remote clients, using github.com/gorilla/websocket — the
// pack's de facto choice for this concern (see DESIGN.md).
package gateway

import (
	"encoding/json"
	"time"

	"agentmux/internal/ptysession"
)

// Message type discriminators, both directions, per spec.md §6.
const (
	TypeKey             = "Key"
	TypeResize           = "Resize"
	TypeRequestKeyframe  = "RequestKeyframe"
	TypeOutput           = "Output"
	TypeGridUpdate       = "GridUpdate"
	TypePtySize          = "PtySize"
	TypeError            = "Error"
)

// ClientMessage is a client→server frame. Data holds the raw KeyData or
// ResizeData payload when Type names Key or Resize; RequestKeyframe carries
// no data.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// KeyData is the payload of a Key client message.
type KeyData struct {
	Code      ptysession.KeyCode   `json:"code"`
	Modifiers ptysession.Modifiers `json:"modifiers"`
}

// ResizeData is the payload of a Resize client message.
type ResizeData struct {
	Rows uint16 `json:"rows"`
	Cols uint16 `json:"cols"`
}

// ServerMessage is a server→client frame.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// OutputData is the payload of an (optional, debug-only) Output message.
type OutputData struct {
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// PtySizeData is the payload of a PtySize message.
type PtySizeData struct {
	Rows uint16 `json:"rows"`
	Cols uint16 `json:"cols"`
}

// ErrorData is the payload of an Error message.
type ErrorData struct {
	Message string `json:"message"`
}

func gridUpdateMessage(u ptysession.Update) ServerMessage {
	if u.Keyframe != nil {
		return ServerMessage{Type: TypeGridUpdate, Data: u.Keyframe}
	}
	return ServerMessage{Type: TypeGridUpdate, Data: u.Diff}
}

func sizeMessage(size ptysession.GridSize) ServerMessage {
	return ServerMessage{Type: TypePtySize, Data: PtySizeData{Rows: size.Rows, Cols: size.Cols}}
}

func errorMessage(msg string) ServerMessage {
	return ServerMessage{Type: TypeError, Data: ErrorData{Message: msg}}
}

func outputMessage(chunk []byte) ServerMessage {
	return ServerMessage{Type: TypeOutput, Data: OutputData{Data: chunk, Timestamp: time.Now()}}
}

// parseClientMessage decodes one client→server frame's envelope. Data is
// left raw; decode it with unmarshalData.
func parseClientMessage(raw []byte) (ClientMessage, error) {
	var msg ClientMessage
	err := json.Unmarshal(raw, &msg)
	return msg, err
}

// unmarshalData decodes a ClientMessage's Data field into a typed payload.
func unmarshalData(raw json.RawMessage, v any) error {
	return json.Unmarshal(raw, v)
}
