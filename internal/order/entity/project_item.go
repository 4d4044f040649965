package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectItem is one produced and installed unit, e.g. one cabinet.
// Phase fields are only written when the item enters that phase.
type ProjectItem struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	ProjectID   string          `json:"project_id" gorm:"size:36;not null;index"`
	QuoteItemID string          `json:"quote_item_id" gorm:"size:36"`
	ItemCode    string          `json:"item_code" gorm:"size:64;not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	Floor       string          `json:"floor" gorm:"size:32"`
	Room        string          `json:"room" gorm:"size:64"`
	ItemType    string          `json:"item_type" gorm:"size:64"`
	Quantity    int             `json:"quantity" gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2);not null;default:0"`
	Status      ItemStatus      `json:"status" gorm:"size:32;not null;index"`
	SortOrder   int             `json:"sort_order" gorm:"default:0"`

	// production
	ProductionStartedAt   *time.Time `json:"production_started_at,omitempty"`
	ProductionCompletedAt *time.Time `json:"production_completed_at,omitempty"`

	// workshop QC
	WorkshopQCPassed *bool      `json:"workshop_qc_passed,omitempty"`
	WorkshopQCAt     *time.Time `json:"workshop_qc_at,omitempty"`
	WorkshopQCNotes  string     `json:"workshop_qc_notes,omitempty" gorm:"type:text"`

	// logistics and installation
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	InstalledAt  *time.Time `json:"installed_at,omitempty"`
	InstalledBy  string     `json:"installed_by,omitempty" gorm:"size:36"`

	// site QC
	SiteQCPassed *bool      `json:"site_qc_passed,omitempty"`
	SiteQCAt     *time.Time `json:"site_qc_at,omitempty"`
	SiteQCNotes  string     `json:"site_qc_notes,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProjectItem) TableName() string {
	return "project_items"
}
