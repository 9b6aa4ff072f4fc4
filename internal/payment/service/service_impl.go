package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordPaymentRequest) (domain.Payment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Payment{}, domain.ErrInvalidOrganization
	}
	contractID, err := snowflake.ParseString(strings.TrimSpace(req.ContractID))
	if err != nil || contractID == 0 {
		return domain.Payment{}, domain.ErrInvalidContract
	}
	if req.Amount <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	var invoiceID *snowflake.ID
	if strings.TrimSpace(req.InvoiceID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
		if err != nil || parsed == 0 {
			return domain.Payment{}, domain.ErrInvalidInvoice
		}
		invoiceID = &parsed
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		ContractID: contractID,
		InvoiceID:  invoiceID,
		Amount:     req.Amount,
		Currency:   "JPY",
		Status:     domain.PaymentStatusPending,
		Method:     strings.TrimSpace(req.Method),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListPaymentFilter) ([]domain.Payment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.List(ctx, s.db, orgID, filter)
}

func (s *Service) MarkSucceeded(ctx context.Context, id string) (domain.Payment, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status != domain.PaymentStatusPending && payment.Status != domain.PaymentStatusFailed {
		return domain.Payment{}, domain.ErrInvalidMark
	}

	now := time.Now().UTC()
	payment.Status = domain.PaymentStatusSucceeded
	payment.SucceededAt = &now
	payment.FailureNote = nil
	payment.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, payment); err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}

func (s *Service) MarkFailed(ctx context.Context, id string, note string) (domain.Payment, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status != domain.PaymentStatusPending {
		return domain.Payment{}, domain.ErrInvalidMark
	}

	now := time.Now().UTC()
	payment.Status = domain.PaymentStatusFailed
	if note = strings.TrimSpace(note); note != "" {
		payment.FailureNote = &note
	}
	payment.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, payment); err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}

func (s *Service) Refund(ctx context.Context, id string) (domain.Payment, error) {
	return s.markFrom(ctx, id, domain.PaymentStatusRefunded, domain.PaymentStatusSucceeded)
}

func (s *Service) Chargeback(ctx context.Context, id string) (domain.Payment, error) {
	return s.markFrom(ctx, id, domain.PaymentStatusChargeback, domain.PaymentStatusSucceeded)
}

func (s *Service) HasSucceededPayment(ctx context.Context, contractID string) (bool, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return false, domain.ErrInvalidOrganization
	}
	parsed, err := snowflake.ParseString(strings.TrimSpace(contractID))
	if err != nil || parsed == 0 {
		return false, domain.ErrInvalidContract
	}
	count, err := s.repo.CountSucceededByContract(ctx, s.db, orgID, parsed)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Payment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, domain.ErrInvalidPayment
	}
	payment, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	return payment, nil
}

func (s *Service) markFrom(ctx context.Context, id string, target domain.PaymentStatus, allowedFrom domain.PaymentStatus) (domain.Payment, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status != allowedFrom {
		return domain.Payment{}, domain.ErrInvalidMark
	}

	payment.Status = target
	payment.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, payment); err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}
