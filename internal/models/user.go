package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the account record referenced by conversations and messages. The
// gateway itself only ever works with the id; the rest of the profile is
// owned by the account service.
type User struct {
	ID          string `gorm:"primaryKey" json:"id"`
	DisplayName string `gorm:"not null" json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
}

// BeforeCreate is a GORM hook that assigns a UUID if the ID is not yet set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
