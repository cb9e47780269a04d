package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadStatus marks a message as read by a user. The unique index over
// (message_id, user_id) makes marking idempotent: inserting the same pair
// again is a no-op at the row level.
type ReadStatus struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	MessageID string    `gorm:"not null;uniqueIndex:ux_message_reader,priority:1" json:"messageId"`
	UserID    string    `gorm:"not null;uniqueIndex:ux_message_reader,priority:2" json:"userId"`
	ReadAt    time.Time `gorm:"not null" json:"readAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID if the ID is not yet set.
func (r *ReadStatus) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
