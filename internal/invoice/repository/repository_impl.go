package repository

import (
	"context"
	"time"

	"github.com/agencyops/kanri/internal/billingperiod"
	"github.com/agencyops/kanri/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Save(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Take(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindByContractAndMonth(ctx context.Context, db *gorm.DB, orgID, contractID snowflake.ID, month time.Time) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Where("org_id = ? AND contract_id = ? AND billing_month = ?", orgID, contractID, billingperiod.FirstOfMonth(month)).
		Take(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListInvoiceFilter) ([]domain.Invoice, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("org_id = ?", orgID)
	if filter.ContractID != "" {
		stmt = stmt.Where("contract_id = ?", filter.ContractID)
	}
	if filter.BillingMonth != "" {
		month, err := billingperiod.Parse(filter.BillingMonth)
		if err != nil {
			return nil, domain.ErrInvalidMonth
		}
		stmt = stmt.Where("billing_month = ?", month)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var invoices []domain.Invoice
	err := stmt.
		Order("billing_month desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListSentPastDue(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("status = ? AND due_date < ?", domain.InvoiceStatusSent, cutoff).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
