package server

import (
	"net/http"
	"strings"

	coldcalldomain "github.com/agencyops/kanri/internal/coldcall/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateColdCall(c *gin.Context) {
	var req coldcalldomain.CreateColdCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.coldCallSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateColdCall(c *gin.Context) {
	var req coldcalldomain.UpdateColdCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.coldCallSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetColdCallByID(c *gin.Context) {
	resp, err := s.coldCallSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListColdCalls(c *gin.Context) {
	resp, err := s.coldCallSvc.List(c.Request.Context(), coldcalldomain.ListColdCallFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Assignee: strings.TrimSpace(c.Query("assignee")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) LogColdCall(c *gin.Context) {
	var req coldcalldomain.LogCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.coldCallSvc.LogCall(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
