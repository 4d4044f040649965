package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Item actions recorded in the transition log.
const (
	ItemActionAdvance = "advance"
	ItemActionPassQC  = "pass_qc"
	ItemActionFailQC  = "fail_qc"
	ItemActionRelease = "release"
)

// ItemTransitionLog 条目状态变更日志
type ItemTransitionLog struct {
	ID            string            `json:"id" gorm:"primaryKey;size:36"`
	ProjectID     string            `json:"project_id" gorm:"size:36;not null;index"`
	ProjectItemID string            `json:"project_item_id" gorm:"size:36;not null;index"`
	Action        string            `json:"action" gorm:"size:32;not null"`
	FromStatus    ItemStatus        `json:"from_status" gorm:"size:32"`
	ToStatus      ItemStatus        `json:"to_status" gorm:"size:32;not null"`
	OperatorID    string            `json:"operator_id" gorm:"size:64;not null"`
	OperatorType  string            `json:"operator_type" gorm:"size:20;default:user"` // user/system
	Comment       string            `json:"comment,omitempty" gorm:"type:text"`
	EventData     datatypes.JSONMap `json:"event_data,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (ItemTransitionLog) TableName() string {
	return "item_transition_logs"
}
