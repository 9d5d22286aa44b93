package domain

import (
	"time"

	"github.com/google/uuid"
)

type ComplianceTrend string

const (
	TrendImproving ComplianceTrend = "improving"
	TrendStable    ComplianceTrend = "stable"
	TrendDeclining ComplianceTrend = "declining"
	TrendUnknown   ComplianceTrend = "unknown"
)

// WeeklyCheckin is a client's self-report for one week. WeekStartDate is
// normalized to the Monday of that week; one row per client per week.
type WeeklyCheckin struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClientID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_checkin_client_week" json:"client_id"`
	WeekStartDate   time.Time        `gorm:"not null;uniqueIndex:idx_checkin_client_week" json:"week_start_date"`
	ComplianceScore float64          `gorm:"not null" json:"compliance_score"`
	CurrentWeight   *float64         `json:"current_weight"`
	WeightChange    *float64         `json:"weight_change"`
	EnergyLevel     *int             `json:"energy_level"`
	HungerLevel     *int             `json:"hunger_level"`
	Notes           *string          `gorm:"type:text" json:"notes"`
	ComplianceTrend *ComplianceTrend `gorm:"type:varchar(16)" json:"compliance_trend"`
	CoachNotes      *string          `gorm:"type:text" json:"coach_notes"`
	CoachRating     *int             `json:"coach_rating"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (WeeklyCheckin) TableName() string { return "weekly_checkins" }
