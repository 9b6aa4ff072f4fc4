package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	Update(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Account, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListAccountFilter) ([]Account, error)
}
