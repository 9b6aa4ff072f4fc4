// Package domain contains persistence models for reseller agents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Agent is a reseller earning payouts per acquired contract.
type Agent struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	OrgID          snowflake.ID `gorm:"not null;index"`
	Name           string       `gorm:"type:text;not null"`
	Email          string       `gorm:"type:text"`
	StockUnitPrice int64        `gorm:"not null"`
	MonthlyTarget  int          `gorm:"not null"`
	BankName       string       `gorm:"type:text"`
	BankBranch     string       `gorm:"type:text"`
	BankAccount    string       `gorm:"type:text"`
	IsActive       bool         `gorm:"not null;default:true"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Agent) TableName() string { return "agents" }

// AgentContractStatus marks whether an acquisition still counts.
type AgentContractStatus string

const (
	AgentContractStatusActive    AgentContractStatus = "active"
	AgentContractStatusCancelled AgentContractStatus = "cancelled"
	AgentContractStatusExcluded  AgentContractStatus = "excluded"
)

// AgentContract links an agent to a customer contract for a billing month.
// One row is one acquisition counted toward the agent's entitlement.
type AgentContract struct {
	ID           snowflake.ID        `gorm:"primaryKey"`
	OrgID        snowflake.ID        `gorm:"not null;index"`
	AgentID      snowflake.ID        `gorm:"not null;index"`
	ContractID   snowflake.ID        `gorm:"not null;index"`
	BillingMonth time.Time           `gorm:"not null;index"`
	Status       AgentContractStatus `gorm:"type:text;not null;default:'active'"`
	CreatedAt    time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AgentContract) TableName() string { return "agent_contracts" }

// AgentMonthlyPerformance is the raw acquisition count reported for an agent
// for one month. It is an independent input, not derived from AgentContract.
type AgentMonthlyPerformance struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	OrgID         snowflake.ID `gorm:"not null;index"`
	AgentID       snowflake.ID `gorm:"not null;uniqueIndex:ux_agent_performance_month"`
	BillingMonth  time.Time    `gorm:"not null;uniqueIndex:ux_agent_performance_month"`
	AcquiredCount int          `gorm:"not null"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AgentMonthlyPerformance) TableName() string { return "agent_monthly_performances" }
