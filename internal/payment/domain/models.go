// Package domain contains persistence models for payments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentStatus represents the outcome of one collection attempt.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusChargeback PaymentStatus = "chargeback"
)

// Payment records funds received (or failed) against a contract/invoice pair.
// Retried failures produce multiple rows per invoice.
type Payment struct {
	ID           snowflake.ID  `gorm:"primaryKey"`
	OrgID        snowflake.ID  `gorm:"not null;index"`
	ContractID   snowflake.ID  `gorm:"not null;index"`
	InvoiceID    *snowflake.ID `gorm:"index"`
	Amount       int64         `gorm:"not null"`
	Currency     string        `gorm:"type:text;not null;default:'JPY'"`
	Status       PaymentStatus `gorm:"type:text;not null;default:'pending'"`
	Method       string        `gorm:"type:text"`
	FailureNote  *string       `gorm:"type:text"`
	SucceededAt  *time.Time    `gorm:""`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
