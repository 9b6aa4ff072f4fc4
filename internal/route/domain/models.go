// Package domain contains persistence models for third-party route
// integrations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RouteStatus is the overall connection state for a contract's store.
type RouteStatus string

const (
	RouteStatusPreparing RouteStatus = "preparing"
	RouteStatusRunning   RouteStatus = "running"
	RouteStatusPaused    RouteStatus = "paused"
	RouteStatusDeleting  RouteStatus = "deleting"
	RouteStatusDeleted   RouteStatus = "deleted"
	RouteStatusError     RouteStatus = "error"
)

// PlatformStatus is the per-platform connection sub-state.
type PlatformStatus string

const (
	PlatformStatusNotConnected PlatformStatus = "not_connected"
	PlatformStatusConnected    PlatformStatus = "connected"
	PlatformStatusError        PlatformStatus = "error"
	PlatformStatusPending      PlatformStatus = "pending"
)

// RouteIntegration is the platform connection state for one contract. At
// most one row exists per contract. A contract may only reach cancelled once
// its route is paused or deleted (or absent).
type RouteIntegration struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"not null;index"`
	ContractID snowflake.ID `gorm:"not null;uniqueIndex:ux_route_contract"`
	Status     RouteStatus  `gorm:"type:text;not null;default:'preparing'"`

	FacebookStatus  PlatformStatus `gorm:"type:text;not null;default:'not_connected'"`
	InstagramStatus PlatformStatus `gorm:"type:text;not null;default:'not_connected'"`
	GBPStatus       PlatformStatus `gorm:"type:text;not null;default:'not_connected';column:gbp_status"`
	LineStatus      PlatformStatus `gorm:"type:text;not null;default:'not_connected'"`

	StartedAt *time.Time `gorm:""`
	PausedAt  *time.Time `gorm:""`
	DeletedAt *time.Time `gorm:""`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (RouteIntegration) TableName() string { return "route_integrations" }

// Stopped reports whether the route no longer serves traffic.
func (r RouteIntegration) Stopped() bool {
	return r.Status == RouteStatusPaused || r.Status == RouteStatusDeleted
}
