package domain

import (
	"context"
	"errors"
)

type CreateRouteRequest struct {
	ContractID string `json:"contract_id"`
}

type UpdateRouteRequest struct {
	ContractID      string
	Status          *string `json:"status,omitempty"`
	FacebookStatus  *string `json:"facebook_status,omitempty"`
	InstagramStatus *string `json:"instagram_status,omitempty"`
	GBPStatus       *string `json:"gbp_status,omitempty"`
	LineStatus      *string `json:"line_status,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateRouteRequest) (RouteIntegration, error)
	GetByContract(ctx context.Context, contractID string) (RouteIntegration, error)
	// Update applies status changes and stamps started/paused/deleted
	// timestamps for the matching transitions.
	Update(ctx context.Context, req UpdateRouteRequest) (RouteIntegration, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidContract     = errors.New("invalid_contract")
	ErrInvalidStatus       = errors.New("invalid_route_status")
	ErrNotFound            = errors.New("route_integration_not_found")
	ErrAlreadyExists       = errors.New("route_integration_already_exists")
)
