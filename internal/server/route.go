package server

import (
	"net/http"

	routedomain "github.com/agencyops/kanri/internal/route/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateRoute(c *gin.Context) {
	var req routedomain.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.routeSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRouteByContract(c *gin.Context) {
	resp, err := s.routeSvc.GetByContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateRoute(c *gin.Context) {
	var req routedomain.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ContractID = c.Param("id")

	resp, err := s.routeSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
