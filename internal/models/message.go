package models

import (
	"time"
)

// MaxMessageLength bounds message text, matching the column constraint.
const MaxMessageLength = 140

type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"size:140;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Like is a user/message edge with a composite primary key; one like per
// pair, created and removed only through the toggle.
type Like struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	MessageID uint      `json:"message_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`

	User    User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Message Message `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}

func (Like) TableName() string {
	return "likes"
}
