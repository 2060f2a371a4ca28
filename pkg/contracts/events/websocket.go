// Package events contains the event contracts pushed to dashboard clients
// over the WebSocket connection.
package events

import (
	"time"

	"disciplinedash/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle messages
	MessageTypeDatasetLoading MessageType = "dataset:loading"
	MessageTypeDatasetLoaded  MessageType = "dataset:loaded"
	MessageTypeDatasetFailed  MessageType = "dataset:failed"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetEvent tells clients that the dataset changed and views must be refetched.
// Clients show their placeholder while State is loading or failed.
type DatasetEvent struct {
	Status domain.DatasetStatus `json:"status"`
	Reason string               `json:"reason,omitempty"` // startup|reload|file_change
}

// NewDatasetMessage wraps a dataset status into a WebSocket message of the matching type.
func NewDatasetMessage(status domain.DatasetStatus, reason, traceID string) WebSocketMessage {
	msgType := MessageTypeDatasetLoaded
	switch status.State {
	case domain.DatasetStateLoading:
		msgType = MessageTypeDatasetLoading
	case domain.DatasetStateFailed:
		msgType = MessageTypeDatasetFailed
	}
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now(),
			TraceID:   traceID,
		},
		Data: DatasetEvent{Status: status, Reason: reason},
	}
}

// ConnectEvent is the first message a client receives after registering.
type ConnectEvent struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// NewConnectMessage builds the greeting sent to a newly registered client.
func NewConnectMessage(clientID, traceID string) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        clientID,
			Type:      MessageTypeConnect,
			Timestamp: time.Now(),
			TraceID:   traceID,
		},
		Data: ConnectEvent{ClientID: clientID, Status: "connected"},
	}
}
