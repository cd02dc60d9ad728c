package models

import "time"

// BaseModel is shared by every table. Soft deletes are intentionally not
// used: comment and notification deletion must remove the row.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
