package server

import (
	"errors"
	"net/http"
	"strings"

	accountdomain "github.com/agencyops/kanri/internal/account/domain"
	agentdomain "github.com/agencyops/kanri/internal/agent/domain"
	coldcalldomain "github.com/agencyops/kanri/internal/coldcall/domain"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	invoicedomain "github.com/agencyops/kanri/internal/invoice/domain"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	paymentdomain "github.com/agencyops/kanri/internal/payment/domain"
	plandomain "github.com/agencyops/kanri/internal/plan/domain"
	routedomain "github.com/agencyops/kanri/internal/route/domain"
	settlementdomain "github.com/agencyops/kanri/internal/settlement/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Reasons []string          `json:"reasons,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// Guard rejections carry every unmet condition so operators can fix
	// them all in one pass.
	var blocked *contractdomain.TransitionBlockedError
	if errors.As(err, &blocked) {
		return http.StatusConflict, errorPayload{
			Type:    "transition_blocked",
			Message: blocked.Error(),
			Reasons: blocked.Reasons,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, accountdomain.ErrInvalidOrganization),
		errors.Is(err, plandomain.ErrInvalidOrganization),
		errors.Is(err, contractdomain.ErrInvalidOrganization),
		errors.Is(err, invoicedomain.ErrInvalidOrganization),
		errors.Is(err, paymentdomain.ErrInvalidOrganization),
		errors.Is(err, routedomain.ErrInvalidOrganization),
		errors.Is(err, agentdomain.ErrInvalidOrganization),
		errors.Is(err, settlementdomain.ErrInvalidOrganization),
		errors.Is(err, coldcalldomain.ErrInvalidOrganization),
		errors.Is(err, opslogdomain.ErrInvalidOrganization),
		errors.Is(err, accountdomain.ErrInvalidStatus),
		errors.Is(err, accountdomain.ErrInvalidName),
		errors.Is(err, accountdomain.ErrInvalidAccount),
		errors.Is(err, plandomain.ErrInvalidCode),
		errors.Is(err, plandomain.ErrInvalidName),
		errors.Is(err, plandomain.ErrInvalidPrice),
		errors.Is(err, plandomain.ErrInvalidPlan),
		errors.Is(err, contractdomain.ErrInvalidAccount),
		errors.Is(err, contractdomain.ErrInvalidPlan),
		errors.Is(err, contractdomain.ErrInvalidContract),
		errors.Is(err, contractdomain.ErrInvalidBillingMethod),
		errors.Is(err, contractdomain.ErrInvalidPaymentDay),
		errors.Is(err, contractdomain.ErrInvalidStartDate),
		errors.Is(err, contractdomain.ErrInvalidStatus),
		errors.Is(err, contractdomain.ErrInvalidTargetStatus),
		errors.Is(err, contractdomain.ErrReasonRequired),
		errors.Is(err, invoicedomain.ErrInvalidContract),
		errors.Is(err, invoicedomain.ErrInvalidInvoice),
		errors.Is(err, invoicedomain.ErrInvalidMonth),
		errors.Is(err, invoicedomain.ErrInvalidDueDate),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, paymentdomain.ErrInvalidContract),
		errors.Is(err, paymentdomain.ErrInvalidInvoice),
		errors.Is(err, paymentdomain.ErrInvalidPayment),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidStatus),
		errors.Is(err, routedomain.ErrInvalidContract),
		errors.Is(err, routedomain.ErrInvalidStatus),
		errors.Is(err, agentdomain.ErrInvalidAgent),
		errors.Is(err, agentdomain.ErrInvalidContract),
		errors.Is(err, agentdomain.ErrNameRequired),
		errors.Is(err, agentdomain.ErrUnitPriceInvalid),
		errors.Is(err, agentdomain.ErrMonthlyTargetInvalid),
		errors.Is(err, agentdomain.ErrAcquiredCountInvalid),
		errors.Is(err, agentdomain.ErrInvalidBillingMonth),
		errors.Is(err, agentdomain.ErrInvalidStatus),
		errors.Is(err, settlementdomain.ErrInvalidAgent),
		errors.Is(err, settlementdomain.ErrInvalidBillingMonth),
		errors.Is(err, settlementdomain.ErrInvalidSettlement),
		errors.Is(err, settlementdomain.ErrPayableCountInvalid),
		errors.Is(err, settlementdomain.ErrCancelledOffsetInvalid),
		errors.Is(err, settlementdomain.ErrPayoutMethodRequired),
		errors.Is(err, settlementdomain.ErrPayoutFailReasonRequired),
		errors.Is(err, coldcalldomain.ErrInvalidColdCall),
		errors.Is(err, coldcalldomain.ErrStoreNameRequired),
		errors.Is(err, coldcalldomain.ErrInvalidStatus),
		errors.Is(err, coldcalldomain.ErrInvalidDate),
		errors.Is(err, opslogdomain.ErrInvalidContract),
		errors.Is(err, opslogdomain.ErrInvalidPageToken):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, contractdomain.ErrInvalidTransition),
		errors.Is(err, invoicedomain.ErrDuplicateMonth),
		errors.Is(err, invoicedomain.ErrInvalidMark),
		errors.Is(err, paymentdomain.ErrInvalidMark),
		errors.Is(err, routedomain.ErrAlreadyExists),
		errors.Is(err, agentdomain.ErrAgentContractExists),
		errors.Is(err, agentdomain.ErrAgentInactive),
		errors.Is(err, settlementdomain.ErrSettlementExists),
		settlementdomain.IsInvalidTransition(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, contractdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrContractNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, routedomain.ErrNotFound),
		errors.Is(err, agentdomain.ErrAgentNotFound),
		errors.Is(err, agentdomain.ErrContractNotFound),
		errors.Is(err, agentdomain.ErrAgentContractNotFound),
		errors.Is(err, agentdomain.ErrPerformanceNotFound),
		errors.Is(err, settlementdomain.ErrAgentNotFound),
		errors.Is(err, settlementdomain.ErrEntitlementNotFound),
		errors.Is(err, settlementdomain.ErrSettlementNotFound),
		errors.Is(err, coldcalldomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
