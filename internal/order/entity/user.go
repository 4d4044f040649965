package entity

import "time"

// Roles used for notification fan-out and release authorization.
const (
	RoleAdmin      = "admin"
	RoleDesignLead = "design_lead"
	RoleDesignTeam = "design_team"
	RoleProduction = "production"
	RoleSite       = "site"
)

// User is a read-only view of the staff directory.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:64;not null"`
	Email     string    `json:"email" gorm:"size:128"`
	Role      string    `json:"role" gorm:"size:32;index"`
	Status    string    `json:"status" gorm:"size:16;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
