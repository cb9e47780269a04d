package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message types accepted on send. Anything else is rejected as invalid input.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// Message is a single chat message inside a conversation. Deletion is a hard
// removal, so there is no soft-delete column.
type Message struct {
	// ID is the unique identifier for the message (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// ConversationID is the conversation the message belongs to.
	ConversationID string `gorm:"not null;index:idx_conversation_msg" json:"conversationId"`
	// SenderID is the id of the user who sent the message. Only the sender
	// may edit or delete it.
	SenderID string `gorm:"not null;index:idx_conversation_msg" json:"senderId"`
	// Content is the message body. Always non-empty after trimming.
	Content string `gorm:"type:text;not null" json:"content"`
	// Type indicates the kind of message ("text", "image", "file").
	Type string `gorm:"not null;default:text" json:"messageType"`
	// ReplyToID references another message in the same conversation.
	ReplyToID *string `gorm:"index" json:"replyTo,omitempty"`
	// Edited is set once the content has been changed after creation.
	Edited    bool      `gorm:"not null;default:false" json:"edited"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID if the ID is not yet set.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// ValidMessageType reports whether t is one of the accepted message types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}
