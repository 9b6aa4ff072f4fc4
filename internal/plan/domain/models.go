// Package domain contains persistence models for subscription plans.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Plan is a sellable subscription plan. MonthlyPrice is the list price in
// the smallest currency unit; contracts snapshot it at creation.
type Plan struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	OrgID        snowflake.ID `gorm:"not null;index"`
	Code         string       `gorm:"type:text;not null"`
	Name         string       `gorm:"type:text;not null"`
	MonthlyPrice int64        `gorm:"not null"`
	Currency     string       `gorm:"type:text;not null;default:'JPY'"`
	IsActive     bool         `gorm:"not null;default:true"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Plan) TableName() string { return "plans" }
