package service

import (
	"context"
	"strings"

	"github.com/agencyops/kanri/internal/contract/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// isTransitionAllowed is the lifecycle adjacency table. No skipping states,
// and nothing leaves cancelled.
func isTransitionAllowed(current, target domain.ContractStatus) bool {
	switch current {
	case domain.ContractStatusLead:
		return target == domain.ContractStatusClosedWon
	case domain.ContractStatusClosedWon:
		return target == domain.ContractStatusActive
	case domain.ContractStatusActive:
		return target == domain.ContractStatusCancelPending
	case domain.ContractStatusCancelPending:
		return target == domain.ContractStatusActive || target == domain.ContractStatusCancelled
	default:
		return false
	}
}

func isValidStatus(status domain.ContractStatus) bool {
	switch status {
	case domain.ContractStatusLead,
		domain.ContractStatusClosedWon,
		domain.ContractStatusActive,
		domain.ContractStatusCancelPending,
		domain.ContractStatusCancelled:
		return true
	default:
		return false
	}
}

// checkGuards evaluates every guard predicate for the edge and returns the
// full list of unmet conditions so operators see all blockers at once.
func (s *Service) checkGuards(ctx context.Context, tx *gorm.DB, contract *domain.Contract, target domain.ContractStatus) ([]string, error) {
	var reasons []string

	switch {
	case contract.Status == domain.ContractStatusClosedWon && target == domain.ContractStatusActive:
		confirmed, err := s.hasSucceededPayment(ctx, tx, contract.OrgID, contract.ID)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			reasons = append(reasons, domain.BlockMissingInitialPayment)
		}

	case contract.Status == domain.ContractStatusCancelPending && target == domain.ContractStatusCancelled:
		open, err := s.countOpenInvoices(ctx, tx, contract.OrgID, contract.ID)
		if err != nil {
			return nil, err
		}
		if open > 0 {
			reasons = append(reasons, domain.BlockOpenInvoices)
		}

		stopped, err := s.routeStopped(ctx, tx, contract.OrgID, contract.ID)
		if err != nil {
			return nil, err
		}
		if !stopped {
			reasons = append(reasons, domain.BlockRouteNotStopped)
		}
	}

	return reasons, nil
}

func (s *Service) hasSucceededPayment(ctx context.Context, tx *gorm.DB, orgID, contractID snowflake.ID) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM payments WHERE org_id = ? AND contract_id = ? AND status = 'succeeded'`,
		orgID,
		contractID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// countOpenInvoices counts invoices that are neither paid nor void. A sent
// invoice past its due date still reads sent in storage; it blocks either way.
func (s *Service) countOpenInvoices(ctx context.Context, tx *gorm.DB, orgID, contractID snowflake.ID) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoices
		 WHERE org_id = ? AND contract_id = ? AND status IN ('draft', 'sent', 'overdue')`,
		orgID,
		contractID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) routeStopped(ctx context.Context, tx *gorm.DB, orgID, contractID snowflake.ID) (bool, error) {
	var status string
	err := tx.WithContext(ctx).Raw(
		`SELECT status FROM route_integrations WHERE org_id = ? AND contract_id = ?`,
		orgID,
		contractID,
	).Scan(&status).Error
	if err != nil {
		return false, err
	}

	// Absent route integration is not a blocker.
	switch strings.TrimSpace(status) {
	case "", "paused", "deleted":
		return true, nil
	default:
		return false, nil
	}
}
