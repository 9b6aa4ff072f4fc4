package domain

import (
	"context"
	"errors"
)

type CalculateEntitlementRequest struct {
	AgentID      string `json:"agent_id"`
	BillingMonth string `json:"billing_month"`
}

type CreateSettlementRequest struct {
	AgentID         string `json:"agent_id"`
	BillingMonth    string `json:"billing_month"`
	PayableCount    int    `json:"payable_count"`
	CancelledOffset int    `json:"cancelled_offset"`
}

type RequestPayoutRequest struct {
	ID         string
	Method     string `json:"method"`
	ProviderID string `json:"provider_id"`
}

type FailPayoutRequest struct {
	ID     string
	Reason string `json:"reason"`
}

// Service computes monthly entitlements and drives settlements through
// the billing and payout status machines.
type Service interface {
	// CalculateEntitlement upserts the entitlement row for the agent and
	// month from the agent's current target and its active attributions
	// for that month. Recalculation overwrites the prior result.
	CalculateEntitlement(ctx context.Context, req CalculateEntitlementRequest) (AgentMonthlyEntitlement, error)
	GetEntitlement(ctx context.Context, agentID, month string) (AgentMonthlyEntitlement, error)
	RecalculateMonth(ctx context.Context, month string) (int, error)

	CreateSettlement(ctx context.Context, req CreateSettlementRequest) (AgentSettlement, error)
	GetSettlement(ctx context.Context, id string) (AgentSettlement, error)
	GetSettlementByMonth(ctx context.Context, agentID, month string) (AgentSettlement, error)
	ListSettlements(ctx context.Context, month string) ([]AgentSettlement, error)
	MarkInvoiced(ctx context.Context, id string) (AgentSettlement, error)
	MarkPaid(ctx context.Context, id string) (AgentSettlement, error)

	RequestPayout(ctx context.Context, req RequestPayoutRequest) (AgentSettlement, error)
	BeginPayout(ctx context.Context, id string) (AgentSettlement, error)
	// CompletePayout marks the payout paid and the settlement paid in
	// one transaction; partial completion is never persisted.
	CompletePayout(ctx context.Context, id string) (AgentSettlement, error)
	FailPayout(ctx context.Context, req FailPayoutRequest) (AgentSettlement, error)
	CancelPayout(ctx context.Context, id string) (AgentSettlement, error)
}

var (
	ErrInvalidOrganization      = errors.New("invalid_organization")
	ErrInvalidAgent             = errors.New("invalid_agent")
	ErrInvalidBillingMonth      = errors.New("invalid_billing_month")
	ErrInvalidSettlement        = errors.New("invalid_settlement")
	ErrPayableCountInvalid      = errors.New("payable_count_invalid")
	ErrCancelledOffsetInvalid   = errors.New("cancelled_offset_invalid")
	ErrAgentNotFound            = errors.New("agent_not_found")
	ErrEntitlementNotFound      = errors.New("entitlement_not_found")
	ErrSettlementNotFound       = errors.New("settlement_not_found")
	ErrSettlementExists         = errors.New("settlement_exists")
	ErrPayoutMethodRequired     = errors.New("payout_method_required")
	ErrPayoutFailReasonRequired = errors.New("payout_fail_reason_required")
)

// InvalidSettlementTransitionError reports a rejected settlement status move.
type InvalidSettlementTransitionError struct {
	From SettlementStatus
	To   SettlementStatus
}

func (e *InvalidSettlementTransitionError) Error() string {
	return "settlement transition " + string(e.From) + " -> " + string(e.To) + " is not allowed"
}

// InvalidPayoutTransitionError reports a rejected payout status move.
type InvalidPayoutTransitionError struct {
	From PayoutStatus
	To   PayoutStatus
}

func (e *InvalidPayoutTransitionError) Error() string {
	return "payout transition " + string(e.From) + " -> " + string(e.To) + " is not allowed"
}

// IsInvalidTransition reports whether err is either transition rejection.
func IsInvalidTransition(err error) bool {
	var se *InvalidSettlementTransitionError
	var pe *InvalidPayoutTransitionError
	return errors.As(err, &se) || errors.As(err, &pe)
}
