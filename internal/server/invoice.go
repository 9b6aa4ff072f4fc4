package server

import (
	"net/http"
	"strings"

	invoicedomain "github.com/agencyops/kanri/internal/invoice/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req invoicedomain.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Generate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceFilter{
		ContractID:   strings.TrimSpace(c.Query("contract_id")),
		BillingMonth: strings.TrimSpace(c.Query("billing_month")),
		Status:       strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoiceSent(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkSent(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoiceOverdue(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkOverdue(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
