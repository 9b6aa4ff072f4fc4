package server

import (
	"net/http"
	"strings"

	settlementdomain "github.com/agencyops/kanri/internal/settlement/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CalculateEntitlement(c *gin.Context) {
	var req settlementdomain.CalculateEntitlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.AgentID = c.Param("id")

	resp, err := s.settlementSvc.CalculateEntitlement(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEntitlement(c *gin.Context) {
	resp, err := s.settlementSvc.GetEntitlement(c.Request.Context(), c.Param("id"), c.Param("month"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateSettlement(c *gin.Context) {
	var req settlementdomain.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settlementSvc.CreateSettlement(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSettlementByID(c *gin.Context) {
	resp, err := s.settlementSvc.GetSettlement(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSettlements(c *gin.Context) {
	month := strings.TrimSpace(c.Query("billing_month"))
	agentID := strings.TrimSpace(c.Query("agent_id"))

	if agentID != "" {
		resp, err := s.settlementSvc.GetSettlementByMonth(c.Request.Context(), agentID, month)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": []settlementdomain.AgentSettlement{resp}})
		return
	}

	resp, err := s.settlementSvc.ListSettlements(c.Request.Context(), month)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkSettlementInvoiced(c *gin.Context) {
	resp, err := s.settlementSvc.MarkInvoiced(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkSettlementPaid(c *gin.Context) {
	resp, err := s.settlementSvc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RequestPayout(c *gin.Context) {
	var req settlementdomain.RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.settlementSvc.RequestPayout(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BeginPayout(c *gin.Context) {
	resp, err := s.settlementSvc.BeginPayout(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompletePayout(c *gin.Context) {
	resp, err := s.settlementSvc.CompletePayout(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FailPayout(c *gin.Context) {
	var req settlementdomain.FailPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.settlementSvc.FailPayout(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelPayout(c *gin.Context) {
	resp, err := s.settlementSvc.CancelPayout(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
