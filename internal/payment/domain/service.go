package domain

import (
	"context"
	"errors"
)

type RecordPaymentRequest struct {
	ContractID string `json:"contract_id"`
	InvoiceID  string `json:"invoice_id,omitempty"`
	Amount     int64  `json:"amount"`
	Method     string `json:"method,omitempty"`
}

type ListPaymentFilter struct {
	ContractID string
	InvoiceID  string
	Status     string
}

type Service interface {
	// Record creates a pending payment attempt.
	Record(ctx context.Context, req RecordPaymentRequest) (Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	List(ctx context.Context, filter ListPaymentFilter) ([]Payment, error)
	MarkSucceeded(ctx context.Context, id string) (Payment, error)
	MarkFailed(ctx context.Context, id string, note string) (Payment, error)
	Refund(ctx context.Context, id string) (Payment, error)
	Chargeback(ctx context.Context, id string) (Payment, error)
	// HasSucceededPayment reports whether the contract has a confirmed
	// initial payment; the contract activation guard depends on it.
	HasSucceededPayment(ctx context.Context, contractID string) (bool, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidContract     = errors.New("invalid_contract")
	ErrInvalidInvoice      = errors.New("invalid_invoice")
	ErrInvalidPayment      = errors.New("invalid_payment")
	ErrInvalidAmount       = errors.New("invalid_payment_amount")
	ErrInvalidStatus       = errors.New("invalid_payment_status")
	ErrNotFound            = errors.New("payment_not_found")
	ErrInvalidMark         = errors.New("invalid_payment_state_change")
)
