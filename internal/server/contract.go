package server

import (
	"net/http"
	"strings"

	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	"github.com/agencyops/kanri/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateContract(c *gin.Context) {
	var req contractdomain.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contractSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateContract(c *gin.Context) {
	var req contractdomain.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.contractSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContractByID(c *gin.Context) {
	resp, err := s.contractSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListContracts(c *gin.Context) {
	resp, err := s.contractSvc.List(c.Request.Context(), contractdomain.ListContractFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		AccountID: strings.TrimSpace(c.Query("account_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ChangeContractStatus applies one lifecycle transition. Guard failures
// come back as 409 with every unmet condition listed.
func (s *Server) ChangeContractStatus(c *gin.Context) {
	var req contractdomain.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.contractSvc.ChangeStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListContractOpsLogs(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, opslogdomain.ErrInvalidPageToken)
		return
	}

	resp, info, err := s.opsLogSvc.ListByContract(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "page_info": info})
}
