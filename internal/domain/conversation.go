package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeUser   MessageType = "USER_MESSAGE"
	MessageTypeAI     MessageType = "AI_RESPONSE"
	MessageTypeCoach  MessageType = "COACH_MESSAGE"
	MessageTypeSystem MessageType = "SYSTEM"
)

type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClientID  uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	CoachID   uuid.UUID `gorm:"type:uuid;index;not null" json:"coach_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

type Message struct {
	ID             uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID   `gorm:"type:uuid;index;not null" json:"conversation_id"`
	SenderID       *uuid.UUID  `gorm:"type:uuid" json:"sender_id"`
	Type           MessageType `gorm:"type:varchar(24);not null" json:"type"`
	Content        string      `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (Message) TableName() string { return "messages" }
