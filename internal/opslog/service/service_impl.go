package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/kanri/internal/actorcontext"
	"github.com/agencyops/kanri/internal/opslog/domain"
	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("opslog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Append(ctx context.Context, entry domain.AppendEntry) error {
	return s.AppendTx(ctx, s.db, entry)
}

func (s *Service) AppendTx(ctx context.Context, tx *gorm.DB, entry domain.AppendEntry) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	if entry.ContractID == 0 {
		return domain.ErrInvalidContract
	}
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}

	actorType, actorID := actorcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = domain.ActorTypeSystem
	}

	row := domain.OpsLog{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		ContractID: entry.ContractID,
		ActorType:  actorType,
		Action:     action,
		Before:     datatypes.JSONMap(entry.Before),
		After:      datatypes.JSONMap(entry.After),
		Reason:     strings.TrimSpace(entry.Reason),
		CreatedAt:  time.Now().UTC(),
	}
	if actorID != "" {
		row.ActorID = &actorID
	}
	if ip := actorcontext.IPAddressFromContext(ctx); ip != "" {
		row.IPAddress = &ip
	}
	if ua := actorcontext.UserAgentFromContext(ctx); ua != "" {
		row.UserAgent = &ua
	}

	if err := s.repo.Insert(ctx, tx, &row); err != nil {
		s.log.Warn("failed to append ops log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) ListByContract(ctx context.Context, contractID string, page pagination.Pagination) ([]domain.OpsLog, pagination.PageInfo, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, pagination.PageInfo{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(contractID))
	if err != nil || id == 0 {
		return nil, pagination.PageInfo{}, domain.ErrInvalidContract
	}

	size := page.PageSize
	if size < 1 {
		size = 10
	}
	if size > 250 {
		size = 250
	}

	var cursorID snowflake.ID
	if strings.TrimSpace(page.PageToken) != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, pagination.PageInfo{}, domain.ErrInvalidPageToken
		}
		cursorID, err = snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, pagination.PageInfo{}, domain.ErrInvalidPageToken
		}
	}

	// Fetch one extra row to learn whether another page exists.
	entries, err := s.repo.ListByContract(ctx, s.db, orgID, id, cursorID, size+1)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	info := pagination.PageInfo{}
	if len(entries) > size {
		entries = entries[:size]
		last := entries[len(entries)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		info.NextPageToken = token
		info.HasMore = true
	}
	return entries, info, nil
}
