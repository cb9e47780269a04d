package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation represents a direct-message thread between exactly two users.
// The participant pair is stored in canonical order (UserAID < UserBID) so a
// lookup by either ordering of the two ids resolves to the same row.
type Conversation struct {
	// ID is the unique identifier for the conversation (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// UserAID is the lexicographically smaller participant id.
	UserAID string `gorm:"not null;uniqueIndex:ux_conversation_pair,priority:1" json:"userAId"`
	// UserBID is the lexicographically larger participant id.
	UserBID string `gorm:"not null;uniqueIndex:ux_conversation_pair,priority:2" json:"userBId"`
	// CreatedAt is the timestamp when the conversation was first created.
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID if the ID is not yet set.
func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// CanonicalPair orders two participant ids so that (a,b) and (b,a) map to the
// same conversation row.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// PeerOf returns the other participant of the conversation. It returns an
// empty string if userID is not a participant.
func (c *Conversation) PeerOf(userID string) string {
	switch userID {
	case c.UserAID:
		return c.UserBID
	case c.UserBID:
		return c.UserAID
	}
	return ""
}

// Participants returns both participant ids in canonical order.
func (c *Conversation) Participants() []string {
	return []string{c.UserAID, c.UserBID}
}
