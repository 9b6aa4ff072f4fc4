// Package domain contains persistence models for contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ContractStatus represents contract lifecycle states. Transitions only move
// forward along the edges in the transition table; cancelled is terminal.
type ContractStatus string

const (
	ContractStatusLead          ContractStatus = "lead"
	ContractStatusClosedWon     ContractStatus = "closed_won"
	ContractStatusActive        ContractStatus = "active"
	ContractStatusCancelPending ContractStatus = "cancel_pending"
	ContractStatusCancelled     ContractStatus = "cancelled"
)

// BillingMethod is how the contract is collected.
type BillingMethod string

const (
	BillingMethodMonthlyPay BillingMethod = "monthlypay"
	BillingMethodInvoice    BillingMethod = "invoice"
)

// Contract is one paid subscription between an org's store account and a plan.
// PriceSnapshot is captured from the plan at creation and never changes,
// regardless of later plan price edits. Contracts are never hard-deleted.
type Contract struct {
	ID            snowflake.ID   `gorm:"primaryKey"`
	OrgID         snowflake.ID   `gorm:"not null;index"`
	AccountID     snowflake.ID   `gorm:"not null;index"`
	PlanID        snowflake.ID   `gorm:"not null;index"`
	Status        ContractStatus `gorm:"type:text;not null;default:'lead'"`
	BillingMethod BillingMethod  `gorm:"type:text;not null"`
	PriceSnapshot int64          `gorm:"not null"`
	Currency      string         `gorm:"type:text;not null;default:'JPY'"`
	PaymentDay    int            `gorm:"not null;default:27"`
	StartDate     time.Time      `gorm:"not null"`
	EndDate       *time.Time     `gorm:""`

	CancellationRequestedAt   *time.Time `gorm:""`
	CancellationEffectiveDate *time.Time `gorm:""`
	CancellationReason        *string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Contract) TableName() string { return "contracts" }
