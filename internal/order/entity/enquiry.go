package entity

import "time"

// Enquiry 客户询盘，报价之前的线索
type Enquiry struct {
	ID              string        `json:"id" gorm:"primaryKey;size:36"`
	Code            string        `json:"code" gorm:"size:32;uniqueIndex"`
	ClientName      string        `json:"client_name" gorm:"size:128;not null"`
	ClientReference string        `json:"client_reference" gorm:"size:128"`
	Status          EnquiryStatus `json:"status" gorm:"size:20;not null;default:new;index"`
	LostReason      string        `json:"lost_reason,omitempty" gorm:"type:text"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Enquiry) TableName() string {
	return "enquiries"
}
