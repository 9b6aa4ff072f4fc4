package repository

import (
	"context"

	"github.com/agencyops/kanri/internal/contract/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Create(contract).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Save(contract).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Contract, error) {
	var contract domain.Contract
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&contract).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Contract, error) {
	stmt := db.WithContext(ctx)
	// sqlite has no row locks; its single-writer model serializes these anyway.
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var contract domain.Contract
	err := stmt.
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&contract).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListContractFilter) ([]domain.Contract, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Contract{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.AccountID != "" {
		stmt = stmt.Where("account_id = ?", filter.AccountID)
	}
	if filter.PlanID != "" {
		stmt = stmt.Where("plan_id = ?", filter.PlanID)
	}
	if filter.BillingMethod != "" {
		stmt = stmt.Where("billing_method = ?", filter.BillingMethod)
	}

	var contracts []domain.Contract
	err := stmt.
		Order("created_at desc, id desc").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}
