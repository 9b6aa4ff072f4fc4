package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/internal/plan/domain"
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
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePlanRequest) (domain.Plan, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Plan{}, domain.ErrInvalidOrganization
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Plan{}, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Plan{}, domain.ErrInvalidName
	}
	if req.MonthlyPrice <= 0 {
		return domain.Plan{}, domain.ErrInvalidPrice
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "JPY"
	}

	now := time.Now().UTC()
	plan := domain.Plan{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		Code:         code,
		Name:         name,
		MonthlyPrice: req.MonthlyPrice,
		Currency:     currency,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &plan); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Plan{}, domain.ErrInvalidOrganization
	}
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Plan{}, domain.ErrInvalidPlan
	}
	plan, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return domain.Plan{}, err
	}
	if plan == nil {
		return domain.Plan{}, domain.ErrNotFound
	}
	return *plan, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Plan, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.List(ctx, s.db, orgID)
}
