package repository

import (
	"context"
	"time"

	"github.com/agencyops/kanri/internal/settlement/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertEntitlement(ctx context.Context, db *gorm.DB, ent *domain.AgentMonthlyEntitlement) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "agent_id"}, {Name: "billing_month"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"entitled_count": ent.EntitledCount,
				"earned_count":   ent.EarnedCount,
				"deficit_count":  ent.DeficitCount,
				"calculated_at":  ent.CalculatedAt,
				"updated_at":     ent.UpdatedAt,
			}),
		}).
		Create(ent).Error
}

func (r *repo) FindEntitlement(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month time.Time) (*domain.AgentMonthlyEntitlement, error) {
	var ent domain.AgentMonthlyEntitlement
	err := db.WithContext(ctx).
		Where("org_id = ? AND agent_id = ? AND billing_month = ?", orgID, agentID, month).
		Take(&ent).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ent, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, settlement *domain.AgentSettlement) error {
	return db.WithContext(ctx).Create(settlement).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, settlement *domain.AgentSettlement) error {
	return db.WithContext(ctx).Save(settlement).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.AgentSettlement, error) {
	var settlement domain.AgentSettlement
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&settlement).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.AgentSettlement, error) {
	stmt := db.WithContext(ctx)
	// sqlite has no row locks; its single-writer model serializes these anyway.
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var settlement domain.AgentSettlement
	err := stmt.
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&settlement).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

func (r *repo) FindByMonth(ctx context.Context, db *gorm.DB, orgID, agentID snowflake.ID, month time.Time) (*domain.AgentSettlement, error) {
	var settlement domain.AgentSettlement
	err := db.WithContext(ctx).
		Where("org_id = ? AND agent_id = ? AND billing_month = ?", orgID, agentID, month).
		Take(&settlement).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}

func (r *repo) ListByMonth(ctx context.Context, db *gorm.DB, orgID snowflake.ID, month time.Time) ([]domain.AgentSettlement, error) {
	var settlements []domain.AgentSettlement
	err := db.WithContext(ctx).
		Where("org_id = ? AND billing_month = ?", orgID, month).
		Order("agent_id ASC").
		Find(&settlements).Error
	return settlements, err
}
