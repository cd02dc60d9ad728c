package models

import (
	"gorm.io/datatypes"
)

const (
	EventCreated       = "created"
	EventUpdated       = "updated"
	EventStatusChanged = "status_changed"
	EventAssigned      = "assigned"
	EventUnassigned    = "unassigned"
	EventCommentAdded  = "comment_added"
)

// Event is an append-only audit record. Rows are never updated or deleted;
// no code path mutates one after creation.
type Event struct {
	BaseModel

	DriftID     uint           `gorm:"not null;index"`
	UserID      uint           `gorm:"not null;index"`
	EventType   string         `gorm:"not null"` // "created", "updated", "status_changed", "assigned", "unassigned", "comment_added"
	OldValue    datatypes.JSON `gorm:"type:jsonb"`
	NewValue    datatypes.JSON `gorm:"type:jsonb"`
	Description string         `gorm:"type:text;not null"`

	// Relationships
	Drift Drift `gorm:"foreignKey:DriftID"`
	User  User  `gorm:"foreignKey:UserID"`
}
