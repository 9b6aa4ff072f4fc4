package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contract *Contract) error
	Update(ctx context.Context, db *gorm.DB, contract *Contract) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Contract, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Contract, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListContractFilter) ([]Contract, error)
}
