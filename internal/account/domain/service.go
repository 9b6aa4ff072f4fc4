package domain

import (
	"context"
	"errors"
)

type CreateAccountRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type UpdateAccountRequest struct {
	ID      string
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Status  *string `json:"status,omitempty"`
}

type ListAccountFilter struct {
	Status string
	Name   string
}

type Service interface {
	Create(ctx context.Context, req CreateAccountRequest) (Account, error)
	Update(ctx context.Context, req UpdateAccountRequest) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	List(ctx context.Context, filter ListAccountFilter) ([]Account, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_account_name")
	ErrInvalidAccount      = errors.New("invalid_account")
	ErrInvalidStatus       = errors.New("invalid_account_status")
	ErrNotFound            = errors.New("account_not_found")
)
