package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction is one emoji a user attached to a message. The unique index over
// (message_id, user_id, emoji) means a user can react with a given emoji to a
// given message at most once; distinct emoji are separate rows.
type Reaction struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	MessageID string    `gorm:"not null;uniqueIndex:ux_message_user_emoji,priority:1" json:"messageId"`
	UserID    string    `gorm:"not null;uniqueIndex:ux_message_user_emoji,priority:2" json:"userId"`
	Emoji     string    `gorm:"not null;uniqueIndex:ux_message_user_emoji,priority:3" json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID if the ID is not yet set.
func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
