package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const InvoiceTypeDeposit = "deposit"

// Invoice 发票，引擎只关心定金发票
type Invoice struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	Number    string          `json:"number" gorm:"size:32;uniqueIndex"`
	ProjectID string          `json:"project_id" gorm:"size:36;not null;index"`
	Type      string          `json:"type" gorm:"size:20;not null;default:deposit"`
	Rate      decimal.Decimal `json:"rate" gorm:"type:numeric(5,4);not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Status    InvoiceStatus   `json:"status" gorm:"size:20;not null;default:draft"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	PaidBy    string          `json:"paid_by,omitempty" gorm:"size:36"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// DepositAmount returns rate × contract value rounded to cents.
func DepositAmount(contractValue, rate decimal.Decimal) decimal.Decimal {
	return contractValue.Mul(rate).Round(2)
}
