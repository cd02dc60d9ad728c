package models

type Comment struct {
	BaseModel

	DriftID  uint   `gorm:"not null;index"`
	AuthorID uint   `gorm:"not null;index"`
	Content  string `gorm:"type:text;not null"`

	// Relationships
	Drift  Drift `gorm:"foreignKey:DriftID"`
	Author User  `gorm:"foreignKey:AuthorID"`
}
