package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/billingperiod"
	"github.com/agencyops/kanri/internal/clock"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	"github.com/agencyops/kanri/internal/invoice/domain"
	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ContractRepo contractdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	contractRepo contractdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("invoice.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		contractRepo: p.ContractRepo,
	}
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateInvoiceRequest) (domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOrganization
	}
	contractID, err := snowflake.ParseString(strings.TrimSpace(req.ContractID))
	if err != nil || contractID == 0 {
		return domain.Invoice{}, domain.ErrInvalidContract
	}
	month, err := billingperiod.Parse(req.BillingMonth)
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidMonth
	}

	contract, err := s.contractRepo.FindByID(ctx, s.db, orgID, contractID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if contract == nil {
		return domain.Invoice{}, domain.ErrContractNotFound
	}

	existing, err := s.repo.FindByContractAndMonth(ctx, s.db, orgID, contractID, month)
	if err != nil {
		return domain.Invoice{}, err
	}
	if existing != nil {
		return domain.Invoice{}, domain.ErrDuplicateMonth
	}

	dueDate := dueDateFor(month, contract.PaymentDay)
	if strings.TrimSpace(req.DueDate) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(req.DueDate))
		if err != nil {
			return domain.Invoice{}, domain.ErrInvalidDueDate
		}
		dueDate = parsed.UTC()
	}

	now := s.clock.Now()
	invoice := domain.Invoice{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		ContractID:   contractID,
		BillingMonth: month,
		Amount:       contract.PriceSnapshot,
		Currency:     contract.Currency,
		Status:       domain.InvoiceStatusDraft,
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicateMonth
		}
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Status = invoice.EffectiveStatus(s.clock.Now())
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListInvoiceFilter) ([]domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	invoices, err := s.repo.List(ctx, s.db, orgID, filter)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range invoices {
		invoices[i].Status = invoices[i].EffectiveStatus(now)
	}
	return invoices, nil
}

func (s *Service) MarkSent(ctx context.Context, id string) (domain.Invoice, error) {
	return s.mark(ctx, id, domain.InvoiceStatusSent, domain.InvoiceStatusDraft)
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.Invoice, error) {
	return s.mark(ctx, id, domain.InvoiceStatusPaid, domain.InvoiceStatusSent, domain.InvoiceStatusOverdue)
}

func (s *Service) MarkOverdue(ctx context.Context, id string) (domain.Invoice, error) {
	return s.mark(ctx, id, domain.InvoiceStatusOverdue, domain.InvoiceStatusSent)
}

func (s *Service) Void(ctx context.Context, id string) (domain.Invoice, error) {
	return s.mark(ctx, id, domain.InvoiceStatusVoid, domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusOverdue)
}

func (s *Service) SweepOverdue(ctx context.Context, graceDays int) (int64, error) {
	if graceDays < 0 {
		graceDays = 0
	}
	cutoff := s.clock.Now().AddDate(0, 0, -graceDays)

	invoices, err := s.repo.ListSentPastDue(ctx, s.db, cutoff)
	if err != nil {
		return 0, err
	}

	var updated int64
	for i := range invoices {
		invoice := invoices[i]
		invoice.Status = domain.InvoiceStatusOverdue
		invoice.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, &invoice); err != nil {
			s.log.Warn("overdue sweep update failed",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err),
			)
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, domain.ErrInvalidInvoice
	}
	invoice, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) mark(ctx context.Context, id string, target domain.InvoiceStatus, allowedFrom ...domain.InvoiceStatus) (domain.Invoice, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	allowed := false
	for _, from := range allowedFrom {
		if invoice.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.Invoice{}, domain.ErrInvalidMark
	}

	now := s.clock.Now()
	invoice.Status = target
	switch target {
	case domain.InvoiceStatusSent:
		invoice.SentAt = &now
	case domain.InvoiceStatusPaid:
		invoice.PaidAt = &now
	}
	invoice.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

// dueDateFor places the due date on the contract's payment day within the
// billing month, clamped to the month's last day.
func dueDateFor(month time.Time, paymentDay int) time.Time {
	firstOfNext := month.AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	day := paymentDay
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}
