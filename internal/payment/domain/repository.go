package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	Update(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListPaymentFilter) ([]Payment, error)
	CountSucceededByContract(ctx context.Context, db *gorm.DB, orgID, contractID snowflake.ID) (int64, error)
}
