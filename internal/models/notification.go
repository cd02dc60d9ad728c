package models

import "time"

type Notification struct {
	BaseModel

	UserID  uint   `gorm:"not null;index"`
	DriftID uint   `gorm:"not null;index"`
	Title   string `gorm:"size:255;not null"`
	Message string `gorm:"type:text;not null"`
	IsRead  bool   `gorm:"not null;default:false;index"`
	ReadAt  *time.Time

	// Relationships
	User  User  `gorm:"foreignKey:UserID"`
	Drift Drift `gorm:"foreignKey:DriftID"`
}
