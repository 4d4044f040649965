package entity

import "time"

// DrawingTitleMaxLen is the maximum title length in runes.
const DrawingTitleMaxLen = 100

// DrawingRequirement 图纸需求（设计任务）
type DrawingRequirement struct {
	ID         string        `json:"id" gorm:"primaryKey;size:36"`
	ProjectID  string        `json:"project_id" gorm:"size:36;not null;index"`
	Code       string        `json:"code" gorm:"size:32;index"`
	Title      string        `json:"title" gorm:"size:400;not null"`
	Status     DrawingStatus `json:"status" gorm:"size:32;not null;default:queued;index"`
	AssignedTo *string       `json:"assigned_to,omitempty" gorm:"size:36;index"`
	ReleasedAt *time.Time    `json:"released_at,omitempty"`
	ReleasedBy string        `json:"released_by,omitempty" gorm:"size:36"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Relations
	Items []DrawingRequirementItem `json:"items,omitempty" gorm:"foreignKey:DrawingRequirementID;constraint:OnDelete:CASCADE"`
}

func (DrawingRequirement) TableName() string {
	return "drawing_requirements"
}

// DrawingRequirementItem links a requirement to the items it covers.
// An item belongs to at most one requirement.
type DrawingRequirementItem struct {
	ID                   string    `json:"id" gorm:"primaryKey;size:36"`
	DrawingRequirementID string    `json:"drawing_requirement_id" gorm:"size:36;not null;index"`
	ProjectItemID        string    `json:"project_item_id" gorm:"size:36;not null;uniqueIndex:uk_drawing_item"`
	CreatedAt            time.Time `json:"created_at"`
}

func (DrawingRequirementItem) TableName() string {
	return "drawing_requirement_items"
}

// DrawingTitle derives a requirement title from an item.
func DrawingTitle(item ProjectItem) string {
	title := item.Description
	if title == "" {
		title = item.ItemCode
	}
	runes := []rune(title)
	if len(runes) > DrawingTitleMaxLen {
		return string(runes[:DrawingTitleMaxLen])
	}
	return title
}
