package repository

import (
	"context"

	"github.com/agencyops/kanri/internal/route/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, route *domain.RouteIntegration) error {
	return db.WithContext(ctx).Create(route).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, route *domain.RouteIntegration) error {
	return db.WithContext(ctx).Save(route).Error
}

func (r *repo) FindByContract(ctx context.Context, db *gorm.DB, orgID, contractID snowflake.ID) (*domain.RouteIntegration, error) {
	var route domain.RouteIntegration
	err := db.WithContext(ctx).
		Where("org_id = ? AND contract_id = ?", orgID, contractID).
		Take(&route).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}
