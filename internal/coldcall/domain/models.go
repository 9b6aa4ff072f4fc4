// Package domain contains the cold-call tracking models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CallStatus tracks the outreach state of a prospect.
type CallStatus string

const (
	CallStatusNew       CallStatus = "new"
	CallStatusCalling   CallStatus = "calling"
	CallStatusAppointed CallStatus = "appointed"
	CallStatusRejected  CallStatus = "rejected"
	CallStatusNG        CallStatus = "ng"
)

// ColdCall is one prospect store being worked by sales outreach.
type ColdCall struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	OrgID        snowflake.ID `gorm:"not null;index"`
	StoreName    string       `gorm:"type:text;not null"`
	Phone        string       `gorm:"type:text"`
	Status       CallStatus   `gorm:"type:text;not null;default:'new'"`
	Assignee     string       `gorm:"type:text"`
	Notes        string       `gorm:"type:text"`
	NextCallDate *time.Time
	LastCalledAt *time.Time
	CallCount    int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ColdCall) TableName() string { return "cold_calls" }
