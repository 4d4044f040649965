package entity

import "time"

const (
	SnagStatusOpen     = "open"
	SnagStatusResolved = "resolved"
)

// Snag 现场质检发现的缺陷
type Snag struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	ProjectID     string     `json:"project_id" gorm:"size:36;not null;index"`
	ProjectItemID string     `json:"project_item_id" gorm:"size:36;not null;index"`
	Description   string     `json:"description" gorm:"type:text;not null"`
	Status        string     `json:"status" gorm:"size:20;not null;default:open"`
	RaisedBy      string     `json:"raised_by" gorm:"size:36"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Snag) TableName() string {
	return "snags"
}
