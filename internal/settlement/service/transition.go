package service

import "github.com/agencyops/kanri/internal/settlement/domain"

// Settlement billing status moves strictly forward, no skipping.
func isSettlementTransitionAllowed(current, target domain.SettlementStatus) bool {
	switch current {
	case domain.SettlementStatusDraft:
		return target == domain.SettlementStatusInvoiced
	case domain.SettlementStatusInvoiced:
		return target == domain.SettlementStatusPaid
	default:
		return false
	}
}

// Payout status may settle directly from requested or pass through
// processing first. paid and cancelled are terminal; failed holds until
// an operator requests again, never an automatic retry.
func isPayoutTransitionAllowed(current, target domain.PayoutStatus) bool {
	switch current {
	case domain.PayoutStatusUnpaid, domain.PayoutStatusFailed:
		return target == domain.PayoutStatusRequested
	case domain.PayoutStatusRequested:
		switch target {
		case domain.PayoutStatusProcessing,
			domain.PayoutStatusPaid,
			domain.PayoutStatusFailed,
			domain.PayoutStatusCancelled:
			return true
		}
		return false
	case domain.PayoutStatusProcessing:
		switch target {
		case domain.PayoutStatusPaid,
			domain.PayoutStatusFailed,
			domain.PayoutStatusCancelled:
			return true
		}
		return false
	default:
		return false
	}
}
