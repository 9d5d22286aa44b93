package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DraftStatus string

const (
	DraftPending  DraftStatus = "PENDING"
	DraftApproved DraftStatus = "APPROVED"
	DraftEdited   DraftStatus = "EDITED"
	DraftRejected DraftStatus = "REJECTED"
)

// Terminal reports whether the status admits no further transitions.
func (s DraftStatus) Terminal() bool { return s != DraftPending }

// DraftResponse is an AI-generated reply held for coach review. The visible
// message content stays hidden from the client until the draft is approved or
// edited; FinalContent records what was actually released.
type DraftResponse struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MessageID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"message_id"`
	ConversationID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"conversation_id"`
	OriginalContent string         `gorm:"type:text;not null" json:"original_content"`
	EditedContent   *string        `gorm:"type:text" json:"edited_content"`
	FinalContent    *string        `gorm:"type:text" json:"final_content"`
	Status          DraftStatus    `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"`
	SourceDocs      datatypes.JSON `gorm:"type:jsonb" json:"source_docs"`
	Confidence      *float64       `json:"confidence"`
	RejectionReason *string        `json:"rejection_reason"`
	ReviewedBy      *uuid.UUID     `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt      *time.Time     `json:"reviewed_at"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (DraftResponse) TableName() string { return "draft_responses" }
