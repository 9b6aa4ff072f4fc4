package domain

import (
	"context"
	"errors"
)

type GenerateInvoiceRequest struct {
	ContractID   string `json:"contract_id"`
	BillingMonth string `json:"billing_month"`
	DueDate      string `json:"due_date,omitempty"`
}

type ListInvoiceFilter struct {
	ContractID   string
	BillingMonth string
	Status       string
}

type Service interface {
	// Generate creates the invoice for a contract's billing month from the
	// contract price snapshot. At most one invoice exists per contract per
	// month; a second call for the same month fails.
	Generate(ctx context.Context, req GenerateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, filter ListInvoiceFilter) ([]Invoice, error)
	MarkSent(ctx context.Context, id string) (Invoice, error)
	MarkPaid(ctx context.Context, id string) (Invoice, error)
	// MarkOverdue persists the derived overdue state for a single sent
	// invoice, for operators who do not want to wait for the sweep.
	MarkOverdue(ctx context.Context, id string) (Invoice, error)
	Void(ctx context.Context, id string) (Invoice, error)
	// SweepOverdue persists overdue for every sent invoice past its due
	// date plus graceDays. Returns the number of invoices updated.
	SweepOverdue(ctx context.Context, graceDays int) (int64, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidContract     = errors.New("invalid_contract")
	ErrInvalidInvoice      = errors.New("invalid_invoice")
	ErrInvalidMonth        = errors.New("invalid_billing_month")
	ErrInvalidDueDate      = errors.New("invalid_due_date")
	ErrInvalidStatus       = errors.New("invalid_invoice_status")
	ErrContractNotFound    = errors.New("contract_not_found")
	ErrNotFound            = errors.New("invoice_not_found")
	ErrDuplicateMonth      = errors.New("invoice_already_exists_for_month")
	ErrInvalidMark         = errors.New("invalid_invoice_state_change")
)
