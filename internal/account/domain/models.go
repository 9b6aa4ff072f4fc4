// Package domain contains persistence models for store accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// AccountStatus represents store account lifecycle states.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusClosed    AccountStatus = "closed"
)

// Account is a customer store that holds contracts.
type Account struct {
	ID        snowflake.ID  `gorm:"primaryKey"`
	OrgID     snowflake.ID  `gorm:"not null;index"`
	Name      string        `gorm:"type:text;not null"`
	Email     string        `gorm:"type:text"`
	Phone     string        `gorm:"type:text"`
	Address   string        `gorm:"type:text"`
	Status    AccountStatus `gorm:"type:text;not null;default:'active'"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }
