package server

import (
	"net/http"
	"strings"

	accountdomain "github.com/agencyops/kanri/internal/account/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateAccount(c *gin.Context) {
	var req accountdomain.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateAccount(c *gin.Context) {
	var req accountdomain.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.accountSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAccountByID(c *gin.Context) {
	resp, err := s.accountSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAccounts(c *gin.Context) {
	resp, err := s.accountSvc.List(c.Request.Context(), accountdomain.ListAccountFilter{
		Status: strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
