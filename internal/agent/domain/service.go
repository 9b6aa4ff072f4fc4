package domain

import (
	"context"
	"errors"
)

type CreateAgentRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	StockUnitPrice int64  `json:"stock_unit_price"`
	MonthlyTarget  int    `json:"monthly_target"`
	BankName       string `json:"bank_name,omitempty"`
	BankBranch     string `json:"bank_branch,omitempty"`
	BankAccount    string `json:"bank_account,omitempty"`
}

type UpdateAgentRequest struct {
	ID             string
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	StockUnitPrice *int64  `json:"stock_unit_price,omitempty"`
	MonthlyTarget  *int    `json:"monthly_target,omitempty"`
	BankName       *string `json:"bank_name,omitempty"`
	BankBranch     *string `json:"bank_branch,omitempty"`
	BankAccount    *string `json:"bank_account,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

type AttachContractRequest struct {
	AgentID      string `json:"agent_id"`
	ContractID   string `json:"contract_id"`
	BillingMonth string `json:"billing_month"`
}

type SetContractStatusRequest struct {
	ID     string
	Status string `json:"status"`
}

type RecordPerformanceRequest struct {
	AgentID       string `json:"agent_id"`
	BillingMonth  string `json:"billing_month"`
	AcquiredCount int    `json:"acquired_count"`
}

type ListAgentContractFilter struct {
	AgentID      string
	BillingMonth string
}

// Service manages agents, their attributed contracts and reported
// monthly performance. Attribution rows are the earned-pool input for
// entitlement calculation; performance rows are an independent report.
type Service interface {
	Create(ctx context.Context, req CreateAgentRequest) (Agent, error)
	Update(ctx context.Context, req UpdateAgentRequest) (Agent, error)
	GetByID(ctx context.Context, id string) (Agent, error)
	List(ctx context.Context) ([]Agent, error)

	AttachContract(ctx context.Context, req AttachContractRequest) (AgentContract, error)
	SetContractStatus(ctx context.Context, req SetContractStatusRequest) (AgentContract, error)
	ListContracts(ctx context.Context, filter ListAgentContractFilter) ([]AgentContract, error)

	RecordPerformance(ctx context.Context, req RecordPerformanceRequest) (AgentMonthlyPerformance, error)
	GetPerformance(ctx context.Context, agentID, month string) (AgentMonthlyPerformance, error)
}

var (
	ErrInvalidOrganization   = errors.New("invalid_organization")
	ErrInvalidAgent          = errors.New("invalid_agent")
	ErrInvalidContract       = errors.New("invalid_contract")
	ErrNameRequired          = errors.New("name_required")
	ErrUnitPriceInvalid      = errors.New("stock_unit_price_invalid")
	ErrMonthlyTargetInvalid  = errors.New("monthly_target_invalid")
	ErrAcquiredCountInvalid  = errors.New("acquired_count_invalid")
	ErrInvalidBillingMonth   = errors.New("invalid_billing_month")
	ErrInvalidStatus         = errors.New("invalid_agent_contract_status")
	ErrAgentNotFound         = errors.New("agent_not_found")
	ErrAgentInactive         = errors.New("agent_inactive")
	ErrContractNotFound      = errors.New("contract_not_found")
	ErrAgentContractExists   = errors.New("agent_contract_exists")
	ErrAgentContractNotFound = errors.New("agent_contract_not_found")
	ErrPerformanceNotFound   = errors.New("performance_not_found")
)
