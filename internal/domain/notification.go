package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationApprovalNeeded   NotificationType = "APPROVAL_NEEDED"
	NotificationResponseApproved NotificationType = "RESPONSE_APPROVED"
	NotificationCheckinDue       NotificationType = "CHECKIN_DUE"
	NotificationRiskAlert        NotificationType = "RISK_ALERT"
)

type Notification struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Type          NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title         string           `gorm:"not null" json:"title"`
	Body          string           `gorm:"type:text;not null" json:"body"`
	ReferenceID   *uuid.UUID       `gorm:"type:uuid" json:"reference_id"`
	ReferenceType *string          `gorm:"type:varchar(32)" json:"reference_type"`
	Read          bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt     time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (Notification) TableName() string { return "notifications" }
