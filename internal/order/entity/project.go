package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project 执行中的项目，由报价转换生成
type Project struct {
	ID               string          `json:"id" gorm:"primaryKey;size:36"`
	Code             string          `json:"code" gorm:"size:32;uniqueIndex"`
	Name             string          `json:"name" gorm:"size:200;not null"`
	SiteAddress      string          `json:"site_address" gorm:"type:text"`
	ClientName       string          `json:"client_name" gorm:"size:128"`
	Status           ProjectStatus   `json:"status" gorm:"size:20;not null;index"`
	ContractValue    decimal.Decimal `json:"contract_value" gorm:"type:numeric(14,2);not null;default:0"`
	QuoteID          string          `json:"quote_id" gorm:"size:36;not null;uniqueIndex:uk_projects_quote_id"`
	DepositInvoiceID *string         `json:"deposit_invoice_id,omitempty" gorm:"size:36"`
	HeldFrom         ProjectStatus   `json:"held_from,omitempty" gorm:"size:20"`
	CreatedBy        string          `json:"created_by" gorm:"size:36"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relations
	Items []ProjectItem `json:"items,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string {
	return "projects"
}
