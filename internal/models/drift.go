package models

import "time"

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

type Drift struct {
	BaseModel

	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`
	Status       string `gorm:"not null;default:open;index"`   // "open", "in_progress", "resolved", "closed"
	Priority     string `gorm:"not null;default:medium;index"` // "low", "medium", "high", "critical"
	CreatedByID  uint   `gorm:"not null;index"`
	AssignedToID *uint  `gorm:"index"`
	ResolvedAt   *time.Time
	ClosedAt     *time.Time

	// Relationships
	CreatedBy     User           `gorm:"foreignKey:CreatedByID"`
	AssignedTo    *User          `gorm:"foreignKey:AssignedToID"`
	Comments      []Comment      `gorm:"foreignKey:DriftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Events        []Event        `gorm:"foreignKey:DriftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification `gorm:"foreignKey:DriftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
