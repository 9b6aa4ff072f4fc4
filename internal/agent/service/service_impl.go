package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/agent/domain"
	"github.com/agencyops/kanri/internal/billingperiod"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
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
	Repo         domain.Repository
	ContractRepo contractdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	contractRepo contractdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("agent.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		contractRepo: p.ContractRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAgentRequest) (domain.Agent, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Agent{}, domain.ErrInvalidOrganization
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Agent{}, domain.ErrNameRequired
	}
	if req.StockUnitPrice < 0 {
		return domain.Agent{}, domain.ErrUnitPriceInvalid
	}
	if req.MonthlyTarget < 0 {
		return domain.Agent{}, domain.ErrMonthlyTargetInvalid
	}

	now := time.Now().UTC()
	agent := domain.Agent{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		Name:           name,
		Email:          strings.TrimSpace(req.Email),
		StockUnitPrice: req.StockUnitPrice,
		MonthlyTarget:  req.MonthlyTarget,
		BankName:       strings.TrimSpace(req.BankName),
		BankBranch:     strings.TrimSpace(req.BankBranch),
		BankAccount:    strings.TrimSpace(req.BankAccount),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, &agent); err != nil {
		s.log.Error("failed to create agent", zap.Error(err))
		return domain.Agent{}, err
	}
	return agent, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAgentRequest) (domain.Agent, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Agent{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Agent{}, domain.ErrInvalidAgent
	}

	agent, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Agent{}, err
	}
	if agent == nil {
		return domain.Agent{}, domain.ErrAgentNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Agent{}, domain.ErrNameRequired
		}
		agent.Name = name
	}
	if req.Email != nil {
		agent.Email = strings.TrimSpace(*req.Email)
	}
	if req.StockUnitPrice != nil {
		if *req.StockUnitPrice < 0 {
			return domain.Agent{}, domain.ErrUnitPriceInvalid
		}
		agent.StockUnitPrice = *req.StockUnitPrice
	}
	if req.MonthlyTarget != nil {
		if *req.MonthlyTarget < 0 {
			return domain.Agent{}, domain.ErrMonthlyTargetInvalid
		}
		agent.MonthlyTarget = *req.MonthlyTarget
	}
	if req.BankName != nil {
		agent.BankName = strings.TrimSpace(*req.BankName)
	}
	if req.BankBranch != nil {
		agent.BankBranch = strings.TrimSpace(*req.BankBranch)
	}
	if req.BankAccount != nil {
		agent.BankAccount = strings.TrimSpace(*req.BankAccount)
	}
	if req.IsActive != nil {
		agent.IsActive = *req.IsActive
	}
	agent.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, agent); err != nil {
		s.log.Error("failed to update agent", zap.Error(err), zap.String("agent_id", id.String()))
		return domain.Agent{}, err
	}
	return *agent, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Agent, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Agent{}, domain.ErrInvalidOrganization
	}
	agentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || agentID == 0 {
		return domain.Agent{}, domain.ErrInvalidAgent
	}

	agent, err := s.repo.FindByID(ctx, s.db, orgID, agentID)
	if err != nil {
		return domain.Agent{}, err
	}
	if agent == nil {
		return domain.Agent{}, domain.ErrAgentNotFound
	}
	return *agent, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Agent, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.List(ctx, s.db, orgID)
}

func (s *Service) AttachContract(ctx context.Context, req domain.AttachContractRequest) (domain.AgentContract, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentContract{}, domain.ErrInvalidOrganization
	}
	agentID, err := snowflake.ParseString(strings.TrimSpace(req.AgentID))
	if err != nil || agentID == 0 {
		return domain.AgentContract{}, domain.ErrInvalidAgent
	}
	contractID, err := snowflake.ParseString(strings.TrimSpace(req.ContractID))
	if err != nil || contractID == 0 {
		return domain.AgentContract{}, domain.ErrInvalidContract
	}
	month, err := billingperiod.Parse(req.BillingMonth)
	if err != nil {
		return domain.AgentContract{}, domain.ErrInvalidBillingMonth
	}

	agent, err := s.repo.FindByID(ctx, s.db, orgID, agentID)
	if err != nil {
		return domain.AgentContract{}, err
	}
	if agent == nil {
		return domain.AgentContract{}, domain.ErrAgentNotFound
	}
	if !agent.IsActive {
		return domain.AgentContract{}, domain.ErrAgentInactive
	}

	contract, err := s.contractRepo.FindByID(ctx, s.db, orgID, contractID)
	if err != nil {
		return domain.AgentContract{}, err
	}
	if contract == nil {
		return domain.AgentContract{}, domain.ErrContractNotFound
	}

	existing, err := s.repo.FindContractByLink(ctx, s.db, orgID, agentID, contractID, month)
	if err != nil {
		return domain.AgentContract{}, err
	}
	if existing != nil {
		return domain.AgentContract{}, domain.ErrAgentContractExists
	}

	now := time.Now().UTC()
	ac := domain.AgentContract{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		AgentID:      agentID,
		ContractID:   contractID,
		BillingMonth: month,
		Status:       domain.AgentContractStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertContract(ctx, s.db, &ac); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.AgentContract{}, domain.ErrAgentContractExists
		}
		s.log.Error("failed to attach contract", zap.Error(err), zap.String("agent_id", agentID.String()))
		return domain.AgentContract{}, err
	}
	return ac, nil
}

func (s *Service) SetContractStatus(ctx context.Context, req domain.SetContractStatusRequest) (domain.AgentContract, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentContract{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.AgentContract{}, domain.ErrAgentContractNotFound
	}
	status, err := parseContractStatus(req.Status)
	if err != nil {
		return domain.AgentContract{}, err
	}

	ac, err := s.repo.FindContractByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.AgentContract{}, err
	}
	if ac == nil {
		return domain.AgentContract{}, domain.ErrAgentContractNotFound
	}

	ac.Status = status
	ac.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateContract(ctx, s.db, ac); err != nil {
		return domain.AgentContract{}, err
	}
	return *ac, nil
}

func (s *Service) ListContracts(ctx context.Context, filter domain.ListAgentContractFilter) ([]domain.AgentContract, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	agentID, err := snowflake.ParseString(strings.TrimSpace(filter.AgentID))
	if err != nil || agentID == 0 {
		return nil, domain.ErrInvalidAgent
	}

	var month *time.Time
	if strings.TrimSpace(filter.BillingMonth) != "" {
		m, err := billingperiod.Parse(filter.BillingMonth)
		if err != nil {
			return nil, domain.ErrInvalidBillingMonth
		}
		month = &m
	}
	return s.repo.ListContracts(ctx, s.db, orgID, agentID, month)
}

func (s *Service) RecordPerformance(ctx context.Context, req domain.RecordPerformanceRequest) (domain.AgentMonthlyPerformance, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentMonthlyPerformance{}, domain.ErrInvalidOrganization
	}
	agentID, err := snowflake.ParseString(strings.TrimSpace(req.AgentID))
	if err != nil || agentID == 0 {
		return domain.AgentMonthlyPerformance{}, domain.ErrInvalidAgent
	}
	month, err := billingperiod.Parse(req.BillingMonth)
	if err != nil {
		return domain.AgentMonthlyPerformance{}, domain.ErrInvalidBillingMonth
	}
	if req.AcquiredCount < 0 {
		return domain.AgentMonthlyPerformance{}, domain.ErrAcquiredCountInvalid
	}

	agent, err := s.repo.FindByID(ctx, s.db, orgID, agentID)
	if err != nil {
		return domain.AgentMonthlyPerformance{}, err
	}
	if agent == nil {
		return domain.AgentMonthlyPerformance{}, domain.ErrAgentNotFound
	}

	now := time.Now().UTC()
	perf := domain.AgentMonthlyPerformance{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		AgentID:       agentID,
		BillingMonth:  month,
		AcquiredCount: req.AcquiredCount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.UpsertPerformance(ctx, s.db, &perf); err != nil {
		s.log.Error("failed to record performance", zap.Error(err), zap.String("agent_id", agentID.String()))
		return domain.AgentMonthlyPerformance{}, err
	}

	stored, err := s.repo.FindPerformance(ctx, s.db, orgID, agentID, month)
	if err != nil {
		return domain.AgentMonthlyPerformance{}, err
	}
	if stored == nil {
		return perf, nil
	}
	return *stored, nil
}

func (s *Service) GetPerformance(ctx context.Context, agentID, month string) (domain.AgentMonthlyPerformance, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.AgentMonthlyPerformance{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(agentID))
	if err != nil || id == 0 {
		return domain.AgentMonthlyPerformance{}, domain.ErrInvalidAgent
	}
	m, err := billingperiod.Parse(month)
	if err != nil {
		return domain.AgentMonthlyPerformance{}, domain.ErrInvalidBillingMonth
	}

	perf, err := s.repo.FindPerformance(ctx, s.db, orgID, id, m)
	if err != nil {
		return domain.AgentMonthlyPerformance{}, err
	}
	if perf == nil {
		return domain.AgentMonthlyPerformance{}, domain.ErrPerformanceNotFound
	}
	return *perf, nil
}

func parseContractStatus(raw string) (domain.AgentContractStatus, error) {
	switch domain.AgentContractStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.AgentContractStatusActive:
		return domain.AgentContractStatusActive, nil
	case domain.AgentContractStatusCancelled:
		return domain.AgentContractStatusCancelled, nil
	case domain.AgentContractStatusExcluded:
		return domain.AgentContractStatusExcluded, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
