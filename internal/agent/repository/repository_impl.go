package repository

import (
	"context"
	"time"

	"github.com/agencyops/kanri/internal/agent/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, agent *domain.Agent) error {
	return db.WithContext(ctx).Create(agent).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, agent *domain.Agent) error {
	return db.WithContext(ctx).Save(agent).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Agent, error) {
	var agent domain.Agent
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&agent).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.Agent, error) {
	var agents []domain.Agent
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&agents).Error
	return agents, err
}

func (r *repo) InsertContract(ctx context.Context, db *gorm.DB, ac *domain.AgentContract) error {
	return db.WithContext(ctx).Create(ac).Error
}

func (r *repo) UpdateContract(ctx context.Context, db *gorm.DB, ac *domain.AgentContract) error {
	return db.WithContext(ctx).Save(ac).Error
}

func (r *repo) FindContractByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.AgentContract, error) {
	var ac domain.AgentContract
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&ac).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ac, nil
}

func (r *repo) FindContractByLink(ctx context.Context, db *gorm.DB, orgID, agentID, contractID snowflake.ID, month time.Time) (*domain.AgentContract, error) {
	var ac domain.AgentContract
	err := db.WithContext(ctx).
		Where("org_id = ? AND agent_id = ? AND contract_id = ? AND billing_month = ?", orgID, agentID, contractID, month).
		Take(&ac).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ac, nil
}

func (r *repo) ListContracts(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month *time.Time) ([]domain.AgentContract, error) {
	stmt := db.WithContext(ctx).
		Where("org_id = ? AND agent_id = ?", orgID, agentID)
	if month != nil {
		stmt = stmt.Where("billing_month = ?", *month)
	}

	var acs []domain.AgentContract
	err := stmt.Order("created_at DESC").Find(&acs).Error
	return acs, err
}

func (r *repo) CountActiveContracts(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.AgentContract{}).
		Where("org_id = ? AND agent_id = ? AND billing_month = ? AND status = ?",
			orgID, agentID, month, domain.AgentContractStatusActive).
		Count(&count).Error
	return count, err
}

func (r *repo) UpsertPerformance(ctx context.Context, db *gorm.DB, perf *domain.AgentMonthlyPerformance) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "agent_id"}, {Name: "billing_month"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"acquired_count": perf.AcquiredCount,
				"updated_at":     perf.UpdatedAt,
			}),
		}).
		Create(perf).Error
}

func (r *repo) FindPerformance(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month time.Time) (*domain.AgentMonthlyPerformance, error) {
	var perf domain.AgentMonthlyPerformance
	err := db.WithContext(ctx).
		Where("org_id = ? AND agent_id = ? AND billing_month = ?", orgID, agentID, month).
		Take(&perf).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &perf, nil
}
