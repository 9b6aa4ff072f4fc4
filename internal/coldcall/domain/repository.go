package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, call *ColdCall) error
	Update(ctx context.Context, db *gorm.DB, call *ColdCall) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*ColdCall, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListColdCallFilter) ([]ColdCall, error)
}
