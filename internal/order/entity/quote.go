package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote 报价单
type Quote struct {
	ID             string              `json:"id" gorm:"primaryKey;size:36"`
	Code           string              `json:"code" gorm:"size:32;uniqueIndex"`
	EnquiryID      *string             `json:"enquiry_id,omitempty" gorm:"size:36;index"`
	ClientName     string              `json:"client_name" gorm:"size:128"`
	Status         QuoteStatus         `json:"status" gorm:"size:20;not null;default:draft;index"`
	ApprovalStatus QuoteApprovalStatus `json:"approval_status" gorm:"size:20;not null;default:not_requested"`
	Subtotal       decimal.Decimal     `json:"subtotal" gorm:"type:numeric(14,2);not null;default:0"`
	Total          decimal.Decimal     `json:"total" gorm:"type:numeric(14,2);not null;default:0"`
	ApprovedBy     string              `json:"approved_by,omitempty" gorm:"size:36"`
	ApprovedAt     *time.Time          `json:"approved_at,omitempty"`
	ConvertedAt    *time.Time          `json:"converted_at,omitempty"`
	CreatedBy      string              `json:"created_by" gorm:"size:36"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`

	// Relations
	Items   []QuoteItem `json:"items,omitempty" gorm:"foreignKey:QuoteID"`
	Enquiry *Enquiry    `json:"enquiry,omitempty" gorm:"foreignKey:EnquiryID"`
}

func (Quote) TableName() string {
	return "quotes"
}

// QuoteItem 报价行
type QuoteItem struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	QuoteID     string          `json:"quote_id" gorm:"size:36;not null;index"`
	Code        string          `json:"code" gorm:"size:64;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Floor       string          `json:"floor" gorm:"size:32"`
	Room        string          `json:"room" gorm:"size:64"`
	ItemType    string          `json:"item_type" gorm:"size:64"`
	Quantity    int             `json:"quantity" gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2);not null;default:0"`
	LineTotal   decimal.Decimal `json:"line_total" gorm:"type:numeric(14,2);not null;default:0"`
	SortOrder   int             `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (QuoteItem) TableName() string {
	return "quote_items"
}

// CalcLineTotal returns quantity × unit price.
func (qi QuoteItem) CalcLineTotal() decimal.Decimal {
	return qi.UnitPrice.Mul(decimal.NewFromInt(int64(qi.Quantity)))
}
