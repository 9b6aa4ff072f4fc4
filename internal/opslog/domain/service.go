package domain

import (
	"context"
	"errors"

	"github.com/agencyops/kanri/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// AppendEntry is the input for one ops log append.
type AppendEntry struct {
	ContractID snowflake.ID
	Action     string
	Before     map[string]any
	After      map[string]any
	Reason     string
}

type Service interface {
	Append(ctx context.Context, entry AppendEntry) error
	// AppendTx joins the caller's transaction so a rejected state change
	// leaves no log row behind.
	AppendTx(ctx context.Context, tx *gorm.DB, entry AppendEntry) error
	ListByContract(ctx context.Context, contractID string, page pagination.Pagination) ([]OpsLog, pagination.PageInfo, error)
}

const (
	ActorTypeOperator = "operator"
	ActorTypeSystem   = "system"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidAction       = errors.New("invalid_action")
	ErrInvalidContract     = errors.New("invalid_contract")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
)
