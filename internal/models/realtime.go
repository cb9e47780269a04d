package models

import (
	"encoding/json"
	"time"
)

// EventType names one realtime event on the wire.
type EventType string

// Inbound events (client -> gateway).
const (
	EventConversationJoin     EventType = "conversation:join"
	EventConversationLeave    EventType = "conversation:leave"
	EventConversationMarkRead EventType = "conversation:mark_read"
	EventMessageSend          EventType = "message:send"
	EventMessageEdit          EventType = "message:edit"
	EventMessageDelete        EventType = "message:delete"
	EventMessageReact         EventType = "message:react"
	EventMessageUnreact       EventType = "message:unreact"
	EventTypingStart          EventType = "typing:start"
	EventTypingStop           EventType = "typing:stop"
	EventPresenceUpdate       EventType = "presence:update"
	EventUserLogout           EventType = "user:logout"
)

// Outbound events (gateway -> client).
const (
	EventConversationJoined     EventType = "conversation:joined"
	EventConversationCreated    EventType = "conversation:created"
	EventConversationReadByUser EventType = "conversation:read_by_user"
	EventMessageNew             EventType = "message:new"
	EventMessageEdited          EventType = "message:edited"
	EventMessageDeleted         EventType = "message:deleted"
	EventReactionAdded          EventType = "message:reaction_added"
	EventReactionRemoved        EventType = "message:reaction_removed"
	EventTypingUserStarted      EventType = "typing:user_started"
	EventTypingUserStopped      EventType = "typing:user_stopped"
	EventPresenceUserUpdated    EventType = "presence:user_updated"
	EventError                  EventType = "error"
)

// ClientFrame is one decoded inbound websocket message. Data stays raw until
// the dispatcher knows which payload type to unmarshal it into.
type ClientFrame struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServerFrame is one outbound websocket message.
type ServerFrame struct {
	Event EventType `json:"event"`
	Data  any       `json:"data,omitempty"`
}

// Inbound payloads.

type ConversationRefPayload struct {
	ConversationID string `json:"conversationId"`
}

type SendMessagePayload struct {
	// ConversationID targets an existing conversation. When empty,
	// RecipientID must be set and the conversation is created on first
	// contact.
	ConversationID string `json:"conversationId,omitempty"`
	RecipientID    string `json:"recipientId,omitempty"`
	Content        string `json:"content"`
	MessageType    string `json:"messageType,omitempty"`
	ReplyTo        string `json:"replyTo,omitempty"`
	// IdempotencyKey makes retries of a timed-out send safe.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type EditMessagePayload struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

type MessageRefPayload struct {
	MessageID string `json:"messageId"`
}

type ReactionRefPayload struct {
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

type PresenceUpdatePayload struct {
	Status PresenceStatus `json:"status"`
}

// Outbound payloads.

type ConversationJoinedPayload struct {
	ConversationID string `json:"conversationId"`
}

type ConversationCreatedPayload struct {
	Conversation *Conversation `json:"conversation"`
	IsInitiator  bool          `json:"isInitiator"`
}

type ReadByUserPayload struct {
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	ReadAt         time.Time `json:"readAt"`
}

type MessageDeletedPayload struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
}

type ReactionEventPayload struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Emoji          string `json:"emoji"`
}

type TypingEventPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type ErrorPayload struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
