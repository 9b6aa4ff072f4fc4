// Package domain contains the agent entitlement and settlement models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// AgentMonthlyEntitlement is the derived target-vs-earned record for an
// agent and month. Recomputing overwrites the row for the same key.
type AgentMonthlyEntitlement struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	OrgID         snowflake.ID `gorm:"not null;index"`
	AgentID       snowflake.ID `gorm:"not null;uniqueIndex:ux_entitlement_agent_month"`
	BillingMonth  time.Time    `gorm:"not null;uniqueIndex:ux_entitlement_agent_month"`
	EntitledCount int          `gorm:"not null"`
	EarnedCount   int          `gorm:"not null"`
	DeficitCount  int          `gorm:"not null"`
	CalculatedAt  time.Time    `gorm:"not null"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AgentMonthlyEntitlement) TableName() string { return "agent_monthly_entitlements" }

// SettlementStatus is the billing progression of a settlement.
type SettlementStatus string

const (
	SettlementStatusDraft    SettlementStatus = "draft"
	SettlementStatusInvoiced SettlementStatus = "invoiced"
	SettlementStatusPaid     SettlementStatus = "paid"
)

// PayoutStatus is the transfer progression, orthogonal to SettlementStatus.
type PayoutStatus string

const (
	PayoutStatusUnpaid     PayoutStatus = "unpaid"
	PayoutStatusRequested  PayoutStatus = "requested"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusPaid       PayoutStatus = "paid"
	PayoutStatusFailed     PayoutStatus = "failed"
	PayoutStatusCancelled  PayoutStatus = "cancelled"
)

// AgentSettlement is the billable outcome for an agent and month.
// Exactly one row exists per (agent, billing month).
type AgentSettlement struct {
	ID              snowflake.ID     `gorm:"primaryKey"`
	OrgID           snowflake.ID     `gorm:"not null;index"`
	AgentID         snowflake.ID     `gorm:"not null;uniqueIndex:ux_settlement_agent_month"`
	BillingMonth    time.Time        `gorm:"not null;uniqueIndex:ux_settlement_agent_month"`
	EntitledCount   int              `gorm:"not null"`
	PayableCount    int              `gorm:"not null"`
	CancelledOffset int              `gorm:"not null"`
	UnitPrice       int64            `gorm:"not null"`
	TotalAmount     int64            `gorm:"not null"`
	Currency        string           `gorm:"type:text;not null;default:'JPY'"`
	Status          SettlementStatus `gorm:"type:text;not null;default:'draft'"`
	InvoiceRef      string           `gorm:"type:text"`

	PayoutStatus      PayoutStatus `gorm:"type:text;not null;default:'unpaid'"`
	PayoutMethod      string       `gorm:"type:text"`
	PayoutProviderID  string       `gorm:"type:text"`
	PayoutRequestedAt *time.Time
	PayoutCompletedAt *time.Time
	PayoutFailureNote string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AgentSettlement) TableName() string { return "agent_settlements" }
