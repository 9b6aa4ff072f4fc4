package repository

import (
	"context"

	"github.com/agencyops/kanri/internal/opslog/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.OpsLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListByContract(ctx context.Context, db *gorm.DB, orgID, contractID, cursorID snowflake.ID, limit int) ([]domain.OpsLog, error) {
	query := db.WithContext(ctx).
		Model(&domain.OpsLog{}).
		Where("org_id = ? AND contract_id = ?", orgID, contractID)
	if cursorID != 0 {
		// Snowflake IDs are time ordered, so keyset paging on id alone
		// preserves newest-first order.
		query = query.Where("id < ?", cursorID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []domain.OpsLog
	if err := query.Order("id desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
