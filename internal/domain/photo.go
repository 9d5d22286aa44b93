package domain

import (
	"time"

	"github.com/google/uuid"
)

type PhotoAngle string

const (
	AngleFront PhotoAngle = "front"
	AngleSide  PhotoAngle = "side"
	AngleBack  PhotoAngle = "back"
)

type ProgressPhoto struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClientID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	URL          string     `gorm:"not null" json:"url"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	Angle        PhotoAngle `gorm:"type:varchar(8);not null" json:"angle"`
	TakenAt      time.Time  `gorm:"index;not null" json:"taken_at"`
	Notes        *string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (ProgressPhoto) TableName() string { return "progress_photos" }
