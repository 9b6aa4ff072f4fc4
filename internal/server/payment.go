package server

import (
	"net/http"
	"strings"

	paymentdomain "github.com/agencyops/kanri/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) RecordPayment(c *gin.Context) {
	var req paymentdomain.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentFilter{
		ContractID: strings.TrimSpace(c.Query("contract_id")),
		InvoiceID:  strings.TrimSpace(c.Query("invoice_id")),
		Status:     strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkPaymentSucceeded(c *gin.Context) {
	resp, err := s.paymentSvc.MarkSucceeded(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkPaymentFailed(c *gin.Context) {
	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.MarkFailed(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Note))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RefundPayment(c *gin.Context) {
	resp, err := s.paymentSvc.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ChargebackPayment(c *gin.Context) {
	resp, err := s.paymentSvc.Chargeback(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
