package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, route *RouteIntegration) error
	Update(ctx context.Context, db *gorm.DB, route *RouteIntegration) error
	FindByContract(ctx context.Context, db *gorm.DB, orgID, contractID snowflake.ID) (*RouteIntegration, error)
}
