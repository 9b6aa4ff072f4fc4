package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	UpsertEntitlement(ctx context.Context, db *gorm.DB, ent *AgentMonthlyEntitlement) error
	FindEntitlement(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month time.Time) (*AgentMonthlyEntitlement, error)

	Insert(ctx context.Context, db *gorm.DB, settlement *AgentSettlement) error
	Update(ctx context.Context, db *gorm.DB, settlement *AgentSettlement) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*AgentSettlement, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*AgentSettlement, error)
	FindByMonth(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month time.Time) (*AgentSettlement, error)
	ListByMonth(ctx context.Context, db *gorm.DB, orgID snowflake.ID, month time.Time) ([]AgentSettlement, error)
}
