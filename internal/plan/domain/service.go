package domain

import (
	"context"
	"errors"
)

type CreatePlanRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	MonthlyPrice int64  `json:"monthly_price"`
	Currency     string `json:"currency"`
}

type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (Plan, error)
	GetByID(ctx context.Context, id string) (Plan, error)
	List(ctx context.Context) ([]Plan, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCode         = errors.New("invalid_plan_code")
	ErrInvalidName         = errors.New("invalid_plan_name")
	ErrInvalidPrice        = errors.New("invalid_plan_price")
	ErrInvalidPlan         = errors.New("invalid_plan")
	ErrNotFound            = errors.New("plan_not_found")
)
