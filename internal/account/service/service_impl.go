package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/account/domain"
	"github.com/agencyops/kanri/internal/orgcontext"
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
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAccountRequest) (domain.Account, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Account{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Account{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      name,
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Status:    domain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAccountRequest) (domain.Account, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Account{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Account{}, domain.ErrInvalidAccount
	}

	account, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Account{}, err
	}
	if account == nil {
		return domain.Account{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Account{}, domain.ErrInvalidName
		}
		account.Name = name
	}
	if req.Email != nil {
		account.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		account.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		account.Address = strings.TrimSpace(*req.Address)
	}
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return domain.Account{}, err
		}
		account.Status = status
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, account); err != nil {
		return domain.Account{}, err
	}
	return *account, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Account, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Account{}, domain.ErrInvalidOrganization
	}
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Account{}, domain.ErrInvalidAccount
	}
	account, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return domain.Account{}, err
	}
	if account == nil {
		return domain.Account{}, domain.ErrNotFound
	}
	return *account, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListAccountFilter) ([]domain.Account, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if filter.Status != "" {
		if _, err := parseStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, s.db, orgID, filter)
}

func parseStatus(value string) (domain.AccountStatus, error) {
	status := domain.AccountStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case domain.AccountStatusActive,
		domain.AccountStatusSuspended,
		domain.AccountStatusClosed:
		return status, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
