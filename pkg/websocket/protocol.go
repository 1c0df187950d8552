// Package websocket defines the DevBoard WebSocket protocol: the JSON
// envelope exchanged in both directions, the action names and error codes,
// and a Router mapping actions to handlers.
package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType tells requests, replies and server pushes apart.
type MessageType string

const (
	MessageTypeRequest      MessageType = "request"
	MessageTypeResponse     MessageType = "response"
	MessageTypeNotification MessageType = "notification"
	MessageTypeError        MessageType = "error"
)

// Request actions.
const (
	ActionHealthCheck      = "health.check"
	ActionBoardList        = "board.list"
	ActionBoardState       = "board.state"
	ActionBoardSubscribe   = "board.subscribe"
	ActionBoardUnsubscribe = "board.unsubscribe"
	ActionTaskMove         = "task.move"
	ActionColumnReorder    = "column.reorder"
	ActionTaskFilter       = "task.filter"
)

// ActionNotification is pushed for every user-facing notification. Entity
// events are pushed under their event type.
const ActionNotification = "notification"

// Error codes carried in ErrorPayload.Code.
const (
	ErrorCodeBadRequest    = "BAD_REQUEST"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeInternalError = "INTERNAL_ERROR"
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeConflict      = "CONFLICT"
	ErrorCodeUnknownAction = "UNKNOWN_ACTION"
)

// Message is the envelope. Replies echo the request's ID and Action.
type Message struct {
	ID        string          `json:"id,omitempty"`
	Type      MessageType     `json:"type"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// ErrorPayload is the payload of a MessageTypeError message.
type ErrorPayload struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func newMessage(id string, typ MessageType, action string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", action, err)
	}
	return &Message{ID: id, Type: typ, Action: action, Payload: data, Timestamp: time.Now().UTC()}, nil
}

// NewRequest builds a client request.
func NewRequest(id, action string, payload interface{}) (*Message, error) {
	return newMessage(id, MessageTypeRequest, action, payload)
}

// NewNotification builds a server push. Pushes carry no id.
func NewNotification(action string, payload interface{}) (*Message, error) {
	return newMessage("", MessageTypeNotification, action, payload)
}

// Reply answers m with payload.
func (m *Message) Reply(payload interface{}) (*Message, error) {
	return newMessage(m.ID, MessageTypeResponse, m.Action, payload)
}

// Fail answers m with an error. A nil m yields an error with no id or
// action, used when the request itself could not be decoded.
func (m *Message) Fail(code, message string) (*Message, error) {
	var id, action string
	if m != nil {
		id, action = m.ID, m.Action
	}
	return newMessage(id, MessageTypeError, action, ErrorPayload{Code: code, Message: message})
}

// Decode unmarshals the payload into v. An absent payload leaves v as is.
func (m *Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 || string(m.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
