package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, agent *Agent) error
	Update(ctx context.Context, db *gorm.DB, agent *Agent) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Agent, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Agent, error)

	InsertContract(ctx context.Context, db *gorm.DB, ac *AgentContract) error
	UpdateContract(ctx context.Context, db *gorm.DB, ac *AgentContract) error
	FindContractByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*AgentContract, error)
	FindContractByLink(ctx context.Context, db *gorm.DB, orgID, agentID, contractID snowflake.ID, month time.Time) (*AgentContract, error)
	ListContracts(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month *time.Time) ([]AgentContract, error)
	CountActiveContracts(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month time.Time) (int64, error)

	UpsertPerformance(ctx context.Context, db *gorm.DB, perf *AgentMonthlyPerformance) error
	FindPerformance(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month time.Time) (*AgentMonthlyPerformance, error)
}
