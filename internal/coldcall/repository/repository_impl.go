package repository

import (
	"context"

	"github.com/agencyops/kanri/internal/coldcall/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, call *domain.ColdCall) error {
	return db.WithContext(ctx).Create(call).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, call *domain.ColdCall) error {
	return db.WithContext(ctx).Save(call).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.ColdCall, error) {
	var call domain.ColdCall
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&call).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &call, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListColdCallFilter) ([]domain.ColdCall, error) {
	stmt := db.WithContext(ctx).Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Assignee != "" {
		stmt = stmt.Where("assignee = ?", filter.Assignee)
	}

	var calls []domain.ColdCall
	err := stmt.Order("created_at DESC").Find(&calls).Error
	return calls, err
}
