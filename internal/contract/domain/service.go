package domain

import (
	"context"
	"errors"
	"strings"
)

type CreateContractRequest struct {
	AccountID     string `json:"account_id"`
	PlanID        string `json:"plan_id"`
	BillingMethod string `json:"billing_method"`
	PaymentDay    int    `json:"payment_day,omitempty"`
	StartDate     string `json:"start_date"`
}

type UpdateContractRequest struct {
	ID                        string
	PaymentDay                *int    `json:"payment_day,omitempty"`
	EndDate                   *string `json:"end_date,omitempty"`
	CancellationEffectiveDate *string `json:"cancellation_effective_date,omitempty"`
}

type ChangeStatusRequest struct {
	ID           string
	TargetStatus string `json:"target_status"`
	Reason       string `json:"reason"`
}

type ListContractFilter struct {
	Status        string
	AccountID     string
	PlanID        string
	BillingMethod string
}

type Service interface {
	Create(ctx context.Context, req CreateContractRequest) (Contract, error)
	Update(ctx context.Context, req UpdateContractRequest) (Contract, error)
	GetByID(ctx context.Context, id string) (Contract, error)
	List(ctx context.Context, filter ListContractFilter) ([]Contract, error)
	// ChangeStatus applies one lifecycle transition. The target must be
	// adjacent to the current status and every guard for the edge must
	// pass; otherwise nothing is written and the error carries every
	// unmet condition.
	ChangeStatus(ctx context.Context, req ChangeStatusRequest) (Contract, error)
}

var (
	ErrInvalidOrganization  = errors.New("invalid_organization")
	ErrInvalidContract      = errors.New("invalid_contract")
	ErrInvalidAccount       = errors.New("invalid_account")
	ErrInvalidPlan          = errors.New("invalid_plan")
	ErrInvalidBillingMethod = errors.New("invalid_billing_method")
	ErrInvalidPaymentDay    = errors.New("invalid_payment_day")
	ErrInvalidStartDate     = errors.New("invalid_start_date")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidTargetStatus  = errors.New("invalid_target_status")
	ErrInvalidTransition    = errors.New("invalid_transition")
	ErrReasonRequired       = errors.New("invalid_reason")
	ErrNotFound             = errors.New("contract_not_found")
)

// Guard failure messages surfaced to operators. Blocked transitions report
// every unmet condition, not just the first.
const (
	BlockMissingInitialPayment = "initial payment has not been confirmed"
	BlockOpenInvoices          = "contract still has unpaid invoices"
	BlockRouteNotStopped       = "route integration has not been paused or deleted"
)

// TransitionBlockedError is returned when an adjacent transition is refused
// by one or more guard predicates.
type TransitionBlockedError struct {
	From    ContractStatus
	To      ContractStatus
	Reasons []string
}

func (e *TransitionBlockedError) Error() string {
	return "transition " + string(e.From) + " -> " + string(e.To) + " blocked: " + strings.Join(e.Reasons, "; ")
}
