package repository

import (
	"context"

	"github.com/agencyops/kanri/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Save(payment).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListPaymentFilter) ([]domain.Payment, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("org_id = ?", orgID)
	if filter.ContractID != "" {
		stmt = stmt.Where("contract_id = ?", filter.ContractID)
	}
	if filter.InvoiceID != "" {
		stmt = stmt.Where("invoice_id = ?", filter.InvoiceID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var payments []domain.Payment
	err := stmt.
		Order("created_at desc, id desc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) CountSucceededByContract(ctx context.Context, db *gorm.DB, orgID, contractID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("org_id = ? AND contract_id = ? AND status = ?", orgID, contractID, domain.PaymentStatusSucceeded).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
