package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MethodologyDoc is a coaching reference document that feeds draft generation.
type MethodologyDoc struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CoachID   uuid.UUID `gorm:"type:uuid;index;not null" json:"coach_id"`
	Title     string    `gorm:"not null" json:"title"`
	Category  *string   `gorm:"type:varchar(64)" json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MethodologyDoc) TableName() string { return "methodology_docs" }

// MethodologyChunk is a retrievable slice of a document with its embedding
// stored as a JSON array of floats.
type MethodologyChunk struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocID     uuid.UUID      `gorm:"type:uuid;index;not null" json:"doc_id"`
	Ordinal   int            `gorm:"not null" json:"ordinal"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Embedding datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (MethodologyChunk) TableName() string { return "methodology_chunks" }
