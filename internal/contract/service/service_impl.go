package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/contract/domain"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	"github.com/agencyops/kanri/internal/orgcontext"
	plandomain "github.com/agencyops/kanri/internal/plan/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	PlanRepo  plandomain.Repository
	OpsLogSvc opslogdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	planRepo  plandomain.Repository
	opsLogSvc opslogdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("contract.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		planRepo:  p.PlanRepo,
		opsLogSvc: p.OpsLogSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateContractRequest) (domain.Contract, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Contract{}, domain.ErrInvalidOrganization
	}

	accountID, err := s.parseID(req.AccountID, domain.ErrInvalidAccount)
	if err != nil {
		return domain.Contract{}, err
	}
	planID, err := s.parseID(req.PlanID, domain.ErrInvalidPlan)
	if err != nil {
		return domain.Contract{}, err
	}
	method, err := parseBillingMethod(req.BillingMethod)
	if err != nil {
		return domain.Contract{}, err
	}
	paymentDay := req.PaymentDay
	if paymentDay == 0 {
		paymentDay = 27
	}
	if paymentDay < 1 || paymentDay > 31 {
		return domain.Contract{}, domain.ErrInvalidPaymentDay
	}
	startDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
	if err != nil {
		return domain.Contract{}, domain.ErrInvalidStartDate
	}

	plan, err := s.planRepo.FindByID(ctx, s.db, orgID, planID)
	if err != nil {
		return domain.Contract{}, err
	}
	if plan == nil {
		return domain.Contract{}, domain.ErrInvalidPlan
	}

	now := time.Now().UTC()
	contract := domain.Contract{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		AccountID:     accountID,
		PlanID:        planID,
		Status:        domain.ContractStatusLead,
		BillingMethod: method,
		PriceSnapshot: plan.MonthlyPrice,
		Currency:      plan.Currency,
		PaymentDay:    paymentDay,
		StartDate:     startDate.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &contract); err != nil {
		return domain.Contract{}, err
	}
	return contract, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateContractRequest) (domain.Contract, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Contract{}, domain.ErrInvalidOrganization
	}
	id, err := s.parseID(req.ID, domain.ErrInvalidContract)
	if err != nil {
		return domain.Contract{}, err
	}

	contract, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Contract{}, err
	}
	if contract == nil {
		return domain.Contract{}, domain.ErrNotFound
	}

	if req.PaymentDay != nil {
		if *req.PaymentDay < 1 || *req.PaymentDay > 31 {
			return domain.Contract{}, domain.ErrInvalidPaymentDay
		}
		contract.PaymentDay = *req.PaymentDay
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", strings.TrimSpace(*req.EndDate))
		if err != nil {
			return domain.Contract{}, domain.ErrInvalidStartDate
		}
		utc := endDate.UTC()
		contract.EndDate = &utc
	}
	if req.CancellationEffectiveDate != nil {
		effective, err := time.Parse("2006-01-02", strings.TrimSpace(*req.CancellationEffectiveDate))
		if err != nil {
			return domain.Contract{}, domain.ErrInvalidStartDate
		}
		utc := effective.UTC()
		contract.CancellationEffectiveDate = &utc
	}
	contract.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, contract); err != nil {
		return domain.Contract{}, err
	}
	return *contract, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Contract, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Contract{}, domain.ErrInvalidOrganization
	}
	parsed, err := s.parseID(id, domain.ErrInvalidContract)
	if err != nil {
		return domain.Contract{}, err
	}
	contract, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return domain.Contract{}, err
	}
	if contract == nil {
		return domain.Contract{}, domain.ErrNotFound
	}
	return *contract, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListContractFilter) ([]domain.Contract, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if filter.Status != "" && !isValidStatus(domain.ContractStatus(filter.Status)) {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, orgID, filter)
}

func (s *Service) ChangeStatus(ctx context.Context, req domain.ChangeStatusRequest) (domain.Contract, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Contract{}, domain.ErrInvalidOrganization
	}
	id, err := s.parseID(req.ID, domain.ErrInvalidContract)
	if err != nil {
		return domain.Contract{}, err
	}
	target := domain.ContractStatus(strings.ToLower(strings.TrimSpace(req.TargetStatus)))
	if !isValidStatus(target) {
		return domain.Contract{}, domain.ErrInvalidTargetStatus
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.Contract{}, domain.ErrReasonRequired
	}

	var updated domain.Contract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.repo.FindByIDForUpdate(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if contract == nil {
			return domain.ErrNotFound
		}

		if !isTransitionAllowed(contract.Status, target) {
			return domain.ErrInvalidTransition
		}

		blockers, err := s.checkGuards(ctx, tx, contract, target)
		if err != nil {
			return err
		}
		if len(blockers) > 0 {
			return &domain.TransitionBlockedError{
				From:    contract.Status,
				To:      target,
				Reasons: blockers,
			}
		}

		before := contract.Status
		now := time.Now().UTC()
		switch target {
		case domain.ContractStatusCancelPending:
			contract.CancellationRequestedAt = &now
			contract.CancellationReason = &reason
		case domain.ContractStatusActive:
			if contract.Status == domain.ContractStatusCancelPending {
				// Reinstatement clears the pending cancellation.
				contract.CancellationRequestedAt = nil
				contract.CancellationEffectiveDate = nil
				contract.CancellationReason = nil
			}
		case domain.ContractStatusCancelled:
			if contract.CancellationEffectiveDate == nil {
				contract.CancellationEffectiveDate = &now
			}
			contract.EndDate = contract.CancellationEffectiveDate
		}
		contract.Status = target
		contract.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, contract); err != nil {
			return err
		}

		if err := s.opsLogSvc.AppendTx(ctx, tx, opslogdomain.AppendEntry{
			ContractID: contract.ID,
			Action:     "contract.status_change",
			Before:     map[string]any{"status": string(before)},
			After:      map[string]any{"status": string(target)},
			Reason:     reason,
		}); err != nil {
			return err
		}

		updated = *contract
		return nil
	})
	if err != nil {
		return domain.Contract{}, err
	}

	s.log.Info("contract status changed",
		zap.String("contract_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *Service) parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}

func parseBillingMethod(value string) (domain.BillingMethod, error) {
	method := domain.BillingMethod(strings.ToLower(strings.TrimSpace(value)))
	switch method {
	case domain.BillingMethodMonthlyPay, domain.BillingMethodInvoice:
		return method, nil
	default:
		return "", domain.ErrInvalidBillingMethod
	}
}
