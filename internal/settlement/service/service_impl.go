package service

import (
	"context"
	"strings"
	"time"

	agentdomain "github.com/agencyops/kanri/internal/agent/domain"
	"github.com/agencyops/kanri/internal/billingperiod"
	"github.com/agencyops/kanri/internal/clock"
	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/internal/settlement/domain"
	"github.com/agencyops/kanri/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	AgentRepo agentdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	agentRepo agentdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("settlement.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		agentRepo: p.AgentRepo,
	}
}

func (s *Service) CalculateEntitlement(ctx context.Context, req domain.CalculateEntitlementRequest) (domain.AgentMonthlyEntitlement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentMonthlyEntitlement{}, domain.ErrInvalidOrganization
	}
	agentID, err := parseID(req.AgentID, domain.ErrInvalidAgent)
	if err != nil {
		return domain.AgentMonthlyEntitlement{}, err
	}
	month, err := billingperiod.Parse(req.BillingMonth)
	if err != nil {
		return domain.AgentMonthlyEntitlement{}, domain.ErrInvalidBillingMonth
	}

	agent, err := s.agentRepo.FindByID(ctx, s.db, orgID, agentID)
	if err != nil {
		return domain.AgentMonthlyEntitlement{}, err
	}
	if agent == nil {
		return domain.AgentMonthlyEntitlement{}, domain.ErrAgentNotFound
	}

	return s.calculate(ctx, orgID, agent, month)
}

// calculate upserts one entitlement row. The earned pool counts only
// active attributions for the month being calculated, so a stale
// attribution from another month never inflates the result.
func (s *Service) calculate(ctx context.Context, orgID snowflake.ID, agent *agentdomain.Agent, month time.Time) (domain.AgentMonthlyEntitlement, error) {
	activeCount, err := s.agentRepo.CountActiveContracts(ctx, s.db, orgID, agent.ID, month)
	if err != nil {
		return domain.AgentMonthlyEntitlement{}, err
	}

	entitled := agent.MonthlyTarget
	earned := int(activeCount)
	if earned > entitled {
		earned = entitled
	}

	now := s.clock.Now()
	ent := domain.AgentMonthlyEntitlement{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		AgentID:       agent.ID,
		BillingMonth:  month,
		EntitledCount: entitled,
		EarnedCount:   earned,
		DeficitCount:  entitled - earned,
		CalculatedAt:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.UpsertEntitlement(ctx, s.db, &ent); err != nil {
		s.log.Error("failed to upsert entitlement", zap.Error(err), zap.String("agent_id", agent.ID.String()))
		return domain.AgentMonthlyEntitlement{}, err
	}

	stored, err := s.repo.FindEntitlement(ctx, s.db, orgID, agent.ID, month)
	if err != nil {
		return domain.AgentMonthlyEntitlement{}, err
	}
	if stored == nil {
		return ent, nil
	}
	return *stored, nil
}

func (s *Service) GetEntitlement(ctx context.Context, agentID, month string) (domain.AgentMonthlyEntitlement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentMonthlyEntitlement{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(agentID, domain.ErrInvalidAgent)
	if err != nil {
		return domain.AgentMonthlyEntitlement{}, err
	}
	m, err := billingperiod.Parse(month)
	if err != nil {
		return domain.AgentMonthlyEntitlement{}, domain.ErrInvalidBillingMonth
	}

	ent, err := s.repo.FindEntitlement(ctx, s.db, orgID, id, m)
	if err != nil {
		return domain.AgentMonthlyEntitlement{}, err
	}
	if ent == nil {
		return domain.AgentMonthlyEntitlement{}, domain.ErrEntitlementNotFound
	}
	return *ent, nil
}

func (s *Service) RecalculateMonth(ctx context.Context, month string) (int, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	m, err := billingperiod.Parse(month)
	if err != nil {
		return 0, domain.ErrInvalidBillingMonth
	}

	agents, err := s.agentRepo.List(ctx, s.db, orgID)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range agents {
		if !agents[i].IsActive {
			continue
		}
		if _, err := s.calculate(ctx, orgID, &agents[i], m); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Service) CreateSettlement(ctx context.Context, req domain.CreateSettlementRequest) (domain.AgentSettlement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentSettlement{}, domain.ErrInvalidOrganization
	}
	agentID, err := parseID(req.AgentID, domain.ErrInvalidAgent)
	if err != nil {
		return domain.AgentSettlement{}, err
	}
	month, err := billingperiod.Parse(req.BillingMonth)
	if err != nil {
		return domain.AgentSettlement{}, domain.ErrInvalidBillingMonth
	}
	if req.PayableCount < 0 {
		return domain.AgentSettlement{}, domain.ErrPayableCountInvalid
	}
	if req.CancelledOffset < 0 {
		return domain.AgentSettlement{}, domain.ErrCancelledOffsetInvalid
	}

	agent, err := s.agentRepo.FindByID(ctx, s.db, orgID, agentID)
	if err != nil {
		return domain.AgentSettlement{}, err
	}
	if agent == nil {
		return domain.AgentSettlement{}, domain.ErrAgentNotFound
	}

	existing, err := s.repo.FindByMonth(ctx, s.db, orgID, agentID, month)
	if err != nil {
		return domain.AgentSettlement{}, err
	}
	if existing != nil {
		return domain.AgentSettlement{}, domain.ErrSettlementExists
	}

	entitled := agent.MonthlyTarget
	if ent, err := s.repo.FindEntitlement(ctx, s.db, orgID, agentID, month); err != nil {
		return domain.AgentSettlement{}, err
	} else if ent != nil {
		entitled = ent.EntitledCount
	}

	// The offset reduces the billable count, never below zero.
	billable := req.PayableCount - req.CancelledOffset
	if billable < 0 {
		billable = 0
	}

	now := s.clock.Now()
	settlement := domain.AgentSettlement{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		AgentID:         agentID,
		BillingMonth:    month,
		EntitledCount:   entitled,
		PayableCount:    req.PayableCount,
		CancelledOffset: req.CancelledOffset,
		UnitPrice:       agent.StockUnitPrice,
		TotalAmount:     int64(billable) * agent.StockUnitPrice,
		Currency:        "JPY",
		Status:          domain.SettlementStatusDraft,
		PayoutStatus:    domain.PayoutStatusUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &settlement); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.AgentSettlement{}, domain.ErrSettlementExists
		}
		s.log.Error("failed to create settlement", zap.Error(err), zap.String("agent_id", agentID.String()))
		return domain.AgentSettlement{}, err
	}
	return settlement, nil
}

func (s *Service) GetSettlement(ctx context.Context, id string) (domain.AgentSettlement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentSettlement{}, domain.ErrInvalidOrganization
	}
	parsed, err := parseID(id, domain.ErrInvalidSettlement)
	if err != nil {
		return domain.AgentSettlement{}, err
	}

	settlement, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return domain.AgentSettlement{}, err
	}
	if settlement == nil {
		return domain.AgentSettlement{}, domain.ErrSettlementNotFound
	}
	return *settlement, nil
}

func (s *Service) GetSettlementByMonth(ctx context.Context, agentID, month string) (domain.AgentSettlement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentSettlement{}, domain.ErrInvalidOrganization
	}
	id, err := parseID(agentID, domain.ErrInvalidAgent)
	if err != nil {
		return domain.AgentSettlement{}, err
	}
	m, err := billingperiod.Parse(month)
	if err != nil {
		return domain.AgentSettlement{}, domain.ErrInvalidBillingMonth
	}

	settlement, err := s.repo.FindByMonth(ctx, s.db, orgID, id, m)
	if err != nil {
		return domain.AgentSettlement{}, err
	}
	if settlement == nil {
		return domain.AgentSettlement{}, domain.ErrSettlementNotFound
	}
	return *settlement, nil
}

func (s *Service) ListSettlements(ctx context.Context, month string) ([]domain.AgentSettlement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	m, err := billingperiod.Parse(month)
	if err != nil {
		return nil, domain.ErrInvalidBillingMonth
	}
	return s.repo.ListByMonth(ctx, s.db, orgID, m)
}

func (s *Service) MarkInvoiced(ctx context.Context, id string) (domain.AgentSettlement, error) {
	return s.transition(ctx, id, domain.SettlementStatusInvoiced, func(settlement *domain.AgentSettlement, now time.Time) {
		settlement.InvoiceRef = "STLINV-" + ulid.Make().String()
	})
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.AgentSettlement, error) {
	return s.transition(ctx, id, domain.SettlementStatusPaid, nil)
}

// transition applies one settlement status move inside a transaction.
func (s *Service) transition(ctx context.Context, id string, target domain.SettlementStatus, stamp func(*domain.AgentSettlement, time.Time)) (domain.AgentSettlement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentSettlement{}, domain.ErrInvalidOrganization
	}
	parsed, err := parseID(id, domain.ErrInvalidSettlement)
	if err != nil {
		return domain.AgentSettlement{}, err
	}

	var updated domain.AgentSettlement
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settlement, err := s.repo.FindByIDForUpdate(ctx, tx, orgID, parsed)
		if err != nil {
			return err
		}
		if settlement == nil {
			return domain.ErrSettlementNotFound
		}
		if !isSettlementTransitionAllowed(settlement.Status, target) {
			return &domain.InvalidSettlementTransitionError{From: settlement.Status, To: target}
		}

		now := s.clock.Now()
		if stamp != nil {
			stamp(settlement, now)
		}
		settlement.Status = target
		settlement.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, settlement); err != nil {
			return err
		}
		updated = *settlement
		return nil
	})
	if err != nil {
		return domain.AgentSettlement{}, err
	}

	s.log.Info("settlement status changed",
		zap.String("settlement_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *Service) RequestPayout(ctx context.Context, req domain.RequestPayoutRequest) (domain.AgentSettlement, error) {
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return domain.AgentSettlement{}, domain.ErrPayoutMethodRequired
	}
	providerID := strings.TrimSpace(req.ProviderID)

	return s.payoutTransition(ctx, req.ID, domain.PayoutStatusRequested, func(settlement *domain.AgentSettlement, now time.Time) {
		settlement.PayoutMethod = method
		settlement.PayoutProviderID = providerID
		settlement.PayoutRequestedAt = &now
		settlement.PayoutFailureNote = ""
	})
}

func (s *Service) BeginPayout(ctx context.Context, id string) (domain.AgentSettlement, error) {
	return s.payoutTransition(ctx, id, domain.PayoutStatusProcessing, nil)
}

func (s *Service) CompletePayout(ctx context.Context, id string) (domain.AgentSettlement, error) {
	return s.payoutTransition(ctx, id, domain.PayoutStatusPaid, func(settlement *domain.AgentSettlement, now time.Time) {
		settlement.PayoutCompletedAt = &now
		// Paying out settles the bill; both fields move in the same
		// transaction so a failure rolls both back.
		settlement.Status = domain.SettlementStatusPaid
	})
}

func (s *Service) FailPayout(ctx context.Context, req domain.FailPayoutRequest) (domain.AgentSettlement, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.AgentSettlement{}, domain.ErrPayoutFailReasonRequired
	}

	return s.payoutTransition(ctx, req.ID, domain.PayoutStatusFailed, func(settlement *domain.AgentSettlement, now time.Time) {
		settlement.PayoutFailureNote = reason
	})
}

func (s *Service) CancelPayout(ctx context.Context, id string) (domain.AgentSettlement, error) {
	return s.payoutTransition(ctx, id, domain.PayoutStatusCancelled, nil)
}

func (s *Service) payoutTransition(ctx context.Context, id string, target domain.PayoutStatus, stamp func(*domain.AgentSettlement, time.Time)) (domain.AgentSettlement, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentSettlement{}, domain.ErrInvalidOrganization
	}
	parsed, err := parseID(id, domain.ErrInvalidSettlement)
	if err != nil {
		return domain.AgentSettlement{}, err
	}

	var updated domain.AgentSettlement
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settlement, err := s.repo.FindByIDForUpdate(ctx, tx, orgID, parsed)
		if err != nil {
			return err
		}
		if settlement == nil {
			return domain.ErrSettlementNotFound
		}
		if !isPayoutTransitionAllowed(settlement.PayoutStatus, target) {
			return &domain.InvalidPayoutTransitionError{From: settlement.PayoutStatus, To: target}
		}

		now := s.clock.Now()
		if stamp != nil {
			stamp(settlement, now)
		}
		settlement.PayoutStatus = target
		settlement.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, settlement); err != nil {
			return err
		}
		updated = *settlement
		return nil
	})
	if err != nil {
		return domain.AgentSettlement{}, err
	}

	s.log.Info("payout status changed",
		zap.String("settlement_id", updated.ID.String()),
		zap.String("payout_status", string(updated.PayoutStatus)),
	)
	return updated, nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
