package entity

import "time"

// Notification types.
const (
	NotificationDrawingsCreated   = "drawing_requirements_created"
	NotificationDrawingAssigned   = "drawing_assigned"
	NotificationDrawingForReview  = "drawing_awaiting_client_approval"
	NotificationDrawingReleased   = "drawing_released"
	NotificationDepositPaid       = "deposit_paid"
	NotificationItemQCFailed      = "item_qc_failed"
	NotificationProjectRolledOver = "project_status_changed"
)

// Notification is an advisory in-app message for one user.
type Notification struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	UserID     string     `json:"user_id" gorm:"size:36;not null;index"`
	Type       string     `json:"type" gorm:"size:64;not null"`
	Title      string     `json:"title" gorm:"size:200;not null"`
	Body       string     `json:"body" gorm:"type:text"`
	EntityType string     `json:"entity_type" gorm:"size:32"`
	EntityID   string     `json:"entity_id" gorm:"size:36"`
	LinkURL    string     `json:"link_url" gorm:"size:512"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
