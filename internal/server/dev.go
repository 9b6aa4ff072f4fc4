package server

import (
	"net/http"

	"github.com/agencyops/kanri/internal/seed"
	"github.com/gin-gonic/gin"
)

// ResetToSeed wipes every domain table and restores the demo dataset.
// Registered outside production only; test suites use it for isolation.
func (s *Server) ResetToSeed(c *gin.Context) {
	if err := seed.ResetToSeed(s.db, s.cfg.DefaultOrgID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
