package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClientProfile holds the coaching relationship and nutrition goals for a
// client user. Risk fields are maintained by the risk engine and are nil until
// the first computation runs.
type ClientProfile struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID              uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CoachID             uuid.UUID      `gorm:"type:uuid;index;not null" json:"coach_id"`
	Goals               datatypes.JSON `gorm:"type:jsonb" json:"goals"`
	DietaryRestrictions datatypes.JSON `gorm:"type:jsonb" json:"dietary_restrictions"`
	Preferences         datatypes.JSON `gorm:"type:jsonb" json:"preferences"`
	ActivityLevel       *string        `json:"activity_level"`
	StartingWeight      *float64       `json:"starting_weight"`
	CurrentWeight       *float64       `json:"current_weight"`
	TargetWeight        *float64       `json:"target_weight"`
	RiskScore           *int           `json:"risk_score"`
	RiskFactors         datatypes.JSON `gorm:"type:jsonb" json:"risk_factors"`
	LastRiskUpdate      *time.Time     `json:"last_risk_update"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ClientProfile) TableName() string { return "client_profiles" }
