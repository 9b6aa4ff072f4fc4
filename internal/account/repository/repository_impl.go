package repository

import (
	"context"

	"github.com/agencyops/kanri/internal/account/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Save(account).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListAccountFilter) ([]domain.Account, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}

	var accounts []domain.Account
	err := stmt.
		Order("created_at desc, id desc").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
