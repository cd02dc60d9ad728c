package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	BaseModel

	Username     string `gorm:"size:50;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FullName     string `gorm:"size:100"`
	Role         string `gorm:"not null;default:user"` // "admin", "user"
	IsActive     bool   `gorm:"not null;default:true"`

	// Relationships
	CreatedDrifts  []Drift        `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedDrifts []Drift        `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Comments       []Comment      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Events         []Event        `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications  []Notification `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// DisplayName is the name shown in notification messages.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
