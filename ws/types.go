package ws

import (
	"encoding/json"
	"fmt"
)

// ===== Outbound =====

// postRequest is the envelope for requests sent over the socket.
//
//	{"method": "post", "id": 1, "request": {"type": "action", "payload": {...}}}
type postRequest struct {
	Method  string      `json:"method"`
	ID      int64       `json:"id"`
	Request postPayload `json:"request"`
}

type postPayload struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type pingRequest struct {
	Method string `json:"method"`
}

// ===== Inbound =====

// message is any frame pushed by the server.
type message struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// postResponse is the data of a "post" channel message.
type postResponse struct {
	ID       int64 `json:"id"`
	Response struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	} `json:"response"`
}

// PostError is returned when the server answers a post with an error
// payload instead of a result.
type PostError struct {
	ID      int64
	Message string
}

func (e *PostError) Error() string {
	return fmt.Sprintf("websocket post %d failed: %s", e.ID, e.Message)
}

type postResult struct {
	payload json.RawMessage
	err     error
}
