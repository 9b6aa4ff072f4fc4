package server

import (
	"net/http"
	"strings"

	agentdomain "github.com/agencyops/kanri/internal/agent/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateAgent(c *gin.Context) {
	var req agentdomain.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateAgent(c *gin.Context) {
	var req agentdomain.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.agentSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgentByID(c *gin.Context) {
	resp, err := s.agentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAgents(c *gin.Context) {
	resp, err := s.agentSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AttachAgentContract(c *gin.Context) {
	var req agentdomain.AttachContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.AgentID = c.Param("id")

	resp, err := s.agentSvc.AttachContract(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAgentContracts(c *gin.Context) {
	resp, err := s.agentSvc.ListContracts(c.Request.Context(), agentdomain.ListAgentContractFilter{
		AgentID:      c.Param("id"),
		BillingMonth: strings.TrimSpace(c.Query("billing_month")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetAgentContractStatus(c *gin.Context) {
	var req agentdomain.SetContractStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.agentSvc.SetContractStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordAgentPerformance(c *gin.Context) {
	var req agentdomain.RecordPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.AgentID = c.Param("id")

	resp, err := s.agentSvc.RecordPerformance(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgentPerformance(c *gin.Context) {
	resp, err := s.agentSvc.GetPerformance(c.Request.Context(), c.Param("id"), c.Param("month"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
