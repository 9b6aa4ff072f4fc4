package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	FindByContractAndMonth(ctx context.Context, db *gorm.DB, orgID, contractID snowflake.ID, month time.Time) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListInvoiceFilter) ([]Invoice, error)
	ListSentPastDue(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]Invoice, error)
}
