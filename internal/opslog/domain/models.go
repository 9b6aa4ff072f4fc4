// Package domain contains persistence models for the contract ops log.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OpsLog is a write-once audit entry tied to a contract. Rows are never
// updated or deleted after creation.
type OpsLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	OrgID      snowflake.ID      `gorm:"not null;index"`
	ContractID snowflake.ID      `gorm:"not null;index"`
	ActorType  string            `gorm:"type:text;not null"`
	ActorID    *string           `gorm:"type:text"`
	Action     string            `gorm:"type:text;not null"`
	Before     datatypes.JSONMap `gorm:"type:jsonb"`
	After      datatypes.JSONMap `gorm:"type:jsonb"`
	Reason     string            `gorm:"type:text;not null"`
	IPAddress  *string           `gorm:"type:text"`
	UserAgent  *string           `gorm:"type:text"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OpsLog) TableName() string { return "ops_logs" }
