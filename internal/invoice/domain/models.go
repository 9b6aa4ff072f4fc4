// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states. Overdue is only stored
// once the dunning sweep persists it; before that it is derived at read time.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// Invoice is one bill for a contract for one billing month. BillingMonth is
// normalized to the first day of the month; at most one invoice exists per
// contract per month.
type Invoice struct {
	ID           snowflake.ID  `gorm:"primaryKey"`
	OrgID        snowflake.ID  `gorm:"not null;index"`
	ContractID   snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_invoice_contract_month"`
	BillingMonth time.Time     `gorm:"not null;uniqueIndex:ux_invoice_contract_month"`
	Amount       int64         `gorm:"not null"`
	Currency     string        `gorm:"type:text;not null;default:'JPY'"`
	Status       InvoiceStatus `gorm:"type:text;not null;default:'draft'"`
	DueDate      time.Time     `gorm:"not null"`
	SentAt       *time.Time    `gorm:""`
	PaidAt       *time.Time    `gorm:""`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// EffectiveStatus derives overdue from the due date instead of trusting the
// stored value, so reads never drift from the calendar.
func (i Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.Status == InvoiceStatusSent && now.After(i.DueDate) {
		return InvoiceStatusOverdue
	}
	return i.Status
}
