package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/internal/route/domain"
	"github.com/agencyops/kanri/pkg/db"
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
		log:   p.Log.Named("route.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRouteRequest) (domain.RouteIntegration, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.RouteIntegration{}, domain.ErrInvalidOrganization
	}
	contractID, err := snowflake.ParseString(strings.TrimSpace(req.ContractID))
	if err != nil || contractID == 0 {
		return domain.RouteIntegration{}, domain.ErrInvalidContract
	}

	existing, err := s.repo.FindByContract(ctx, s.db, orgID, contractID)
	if err != nil {
		return domain.RouteIntegration{}, err
	}
	if existing != nil {
		return domain.RouteIntegration{}, domain.ErrAlreadyExists
	}

	now := time.Now().UTC()
	route := domain.RouteIntegration{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		ContractID:      contractID,
		Status:          domain.RouteStatusPreparing,
		FacebookStatus:  domain.PlatformStatusNotConnected,
		InstagramStatus: domain.PlatformStatusNotConnected,
		GBPStatus:       domain.PlatformStatusNotConnected,
		LineStatus:      domain.PlatformStatusNotConnected,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &route); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.RouteIntegration{}, domain.ErrAlreadyExists
		}
		return domain.RouteIntegration{}, err
	}
	return route, nil
}

func (s *Service) GetByContract(ctx context.Context, contractID string) (domain.RouteIntegration, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.RouteIntegration{}, domain.ErrInvalidOrganization
	}
	parsed, err := snowflake.ParseString(strings.TrimSpace(contractID))
	if err != nil || parsed == 0 {
		return domain.RouteIntegration{}, domain.ErrInvalidContract
	}
	route, err := s.repo.FindByContract(ctx, s.db, orgID, parsed)
	if err != nil {
		return domain.RouteIntegration{}, err
	}
	if route == nil {
		return domain.RouteIntegration{}, domain.ErrNotFound
	}
	return *route, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRouteRequest) (domain.RouteIntegration, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.RouteIntegration{}, domain.ErrInvalidOrganization
	}
	contractID, err := snowflake.ParseString(strings.TrimSpace(req.ContractID))
	if err != nil || contractID == 0 {
		return domain.RouteIntegration{}, domain.ErrInvalidContract
	}

	route, err := s.repo.FindByContract(ctx, s.db, orgID, contractID)
	if err != nil {
		return domain.RouteIntegration{}, err
	}
	if route == nil {
		return domain.RouteIntegration{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	if req.Status != nil {
		status, err := parseRouteStatus(*req.Status)
		if err != nil {
			return domain.RouteIntegration{}, err
		}
		switch status {
		case domain.RouteStatusRunning:
			if route.StartedAt == nil {
				route.StartedAt = &now
			}
		case domain.RouteStatusPaused:
			route.PausedAt = &now
		case domain.RouteStatusDeleted:
			route.DeletedAt = &now
		}
		route.Status = status
	}
	if req.FacebookStatus != nil {
		status, err := parsePlatformStatus(*req.FacebookStatus)
		if err != nil {
			return domain.RouteIntegration{}, err
		}
		route.FacebookStatus = status
	}
	if req.InstagramStatus != nil {
		status, err := parsePlatformStatus(*req.InstagramStatus)
		if err != nil {
			return domain.RouteIntegration{}, err
		}
		route.InstagramStatus = status
	}
	if req.GBPStatus != nil {
		status, err := parsePlatformStatus(*req.GBPStatus)
		if err != nil {
			return domain.RouteIntegration{}, err
		}
		route.GBPStatus = status
	}
	if req.LineStatus != nil {
		status, err := parsePlatformStatus(*req.LineStatus)
		if err != nil {
			return domain.RouteIntegration{}, err
		}
		route.LineStatus = status
	}
	route.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, route); err != nil {
		return domain.RouteIntegration{}, err
	}
	return *route, nil
}

func parseRouteStatus(value string) (domain.RouteStatus, error) {
	status := domain.RouteStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case domain.RouteStatusPreparing,
		domain.RouteStatusRunning,
		domain.RouteStatusPaused,
		domain.RouteStatusDeleting,
		domain.RouteStatusDeleted,
		domain.RouteStatusError:
		return status, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

func parsePlatformStatus(value string) (domain.PlatformStatus, error) {
	status := domain.PlatformStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case domain.PlatformStatusNotConnected,
		domain.PlatformStatusConnected,
		domain.PlatformStatusError,
		domain.PlatformStatusPending:
		return status, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
