package domain

import (
	"context"
	"errors"
)

type CreateColdCallRequest struct {
	StoreName string `json:"store_name"`
	Phone     string `json:"phone,omitempty"`
	Assignee  string `json:"assignee,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type UpdateColdCallRequest struct {
	ID           string
	StoreName    *string `json:"store_name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Status       *string `json:"status,omitempty"`
	Assignee     *string `json:"assignee,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	NextCallDate *string `json:"next_call_date,omitempty"`
}

// LogCallRequest records one outreach attempt and its outcome.
type LogCallRequest struct {
	ID           string
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	NextCallDate string `json:"next_call_date,omitempty"`
}

type ListColdCallFilter struct {
	Status   string
	Assignee string
}

type Service interface {
	Create(ctx context.Context, req CreateColdCallRequest) (ColdCall, error)
	Update(ctx context.Context, req UpdateColdCallRequest) (ColdCall, error)
	GetByID(ctx context.Context, id string) (ColdCall, error)
	List(ctx context.Context, filter ListColdCallFilter) ([]ColdCall, error)
	// LogCall stamps the attempt time, bumps the attempt counter and
	// applies the outcome in one update.
	LogCall(ctx context.Context, req LogCallRequest) (ColdCall, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidColdCall     = errors.New("invalid_cold_call")
	ErrStoreNameRequired   = errors.New("store_name_required")
	ErrInvalidStatus       = errors.New("invalid_call_status")
	ErrInvalidDate         = errors.New("invalid_date")
	ErrNotFound            = errors.New("cold_call_not_found")
)
