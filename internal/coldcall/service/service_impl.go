package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/coldcall/domain"
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
		log:   p.Log.Named("coldcall.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateColdCallRequest) (domain.ColdCall, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ColdCall{}, domain.ErrInvalidOrganization
	}
	storeName := strings.TrimSpace(req.StoreName)
	if storeName == "" {
		return domain.ColdCall{}, domain.ErrStoreNameRequired
	}

	now := time.Now().UTC()
	call := domain.ColdCall{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		StoreName: storeName,
		Phone:     strings.TrimSpace(req.Phone),
		Status:    domain.CallStatusNew,
		Assignee:  strings.TrimSpace(req.Assignee),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &call); err != nil {
		s.log.Error("failed to create cold call", zap.Error(err))
		return domain.ColdCall{}, err
	}
	return call, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateColdCallRequest) (domain.ColdCall, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ColdCall{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.ColdCall{}, domain.ErrInvalidColdCall
	}

	call, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.ColdCall{}, err
	}
	if call == nil {
		return domain.ColdCall{}, domain.ErrNotFound
	}

	if req.StoreName != nil {
		storeName := strings.TrimSpace(*req.StoreName)
		if storeName == "" {
			return domain.ColdCall{}, domain.ErrStoreNameRequired
		}
		call.StoreName = storeName
	}
	if req.Phone != nil {
		call.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Status != nil {
		status, err := parseCallStatus(*req.Status)
		if err != nil {
			return domain.ColdCall{}, err
		}
		call.Status = status
	}
	if req.Assignee != nil {
		call.Assignee = strings.TrimSpace(*req.Assignee)
	}
	if req.Notes != nil {
		call.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.NextCallDate != nil {
		next, err := parseDate(*req.NextCallDate)
		if err != nil {
			return domain.ColdCall{}, err
		}
		call.NextCallDate = next
	}
	call.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, call); err != nil {
		return domain.ColdCall{}, err
	}
	return *call, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.ColdCall, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ColdCall{}, domain.ErrInvalidOrganization
	}
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.ColdCall{}, domain.ErrInvalidColdCall
	}

	call, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return domain.ColdCall{}, err
	}
	if call == nil {
		return domain.ColdCall{}, domain.ErrNotFound
	}
	return *call, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListColdCallFilter) ([]domain.ColdCall, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if filter.Status != "" {
		if _, err := parseCallStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, s.db, orgID, filter)
}

func (s *Service) LogCall(ctx context.Context, req domain.LogCallRequest) (domain.ColdCall, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ColdCall{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.ColdCall{}, domain.ErrInvalidColdCall
	}
	status, err := parseCallStatus(req.Status)
	if err != nil {
		return domain.ColdCall{}, err
	}

	call, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.ColdCall{}, err
	}
	if call == nil {
		return domain.ColdCall{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	call.Status = status
	call.LastCalledAt = &now
	call.CallCount++
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		call.Notes = notes
	}
	if strings.TrimSpace(req.NextCallDate) != "" {
		next, err := parseDate(req.NextCallDate)
		if err != nil {
			return domain.ColdCall{}, err
		}
		call.NextCallDate = next
	}
	call.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, call); err != nil {
		return domain.ColdCall{}, err
	}
	return *call, nil
}

func parseCallStatus(raw string) (domain.CallStatus, error) {
	switch domain.CallStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.CallStatusNew:
		return domain.CallStatusNew, nil
	case domain.CallStatusCalling:
		return domain.CallStatusCalling, nil
	case domain.CallStatusAppointed:
		return domain.CallStatusAppointed, nil
	case domain.CallStatusRejected:
		return domain.CallStatusRejected, nil
	case domain.CallStatusNG:
		return domain.CallStatusNG, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

func parseDate(raw string) (*time.Time, error) {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	utc := parsed.UTC()
	return &utc, nil
}
