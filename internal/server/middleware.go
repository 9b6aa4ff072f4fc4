package server

import (
	"strconv"
	"strings"

	"github.com/agencyops/kanri/internal/actorcontext"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/gin-gonic/gin"
)

const (
	orgHeader      = "X-Org-ID"
	operatorHeader = "X-Operator-ID"
)

// OrgResolver puts the request's organization into the context. The
// header wins; otherwise the configured default org applies.
func (s *Server) OrgResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := s.cfg.DefaultOrgID
		if raw := strings.TrimSpace(c.GetHeader(orgHeader)); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org id header"))
				return
			}
			orgID = parsed
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ActorResolver attributes the request to a console operator so ops log
// entries carry who did it rather than the system fallback.
func (s *Server) ActorResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = actorcontext.WithActor(ctx, opslogdomain.ActorTypeOperator, strings.TrimSpace(c.GetHeader(operatorHeader)))
		ctx = actorcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = actorcontext.WithUserAgent(ctx, c.Request.UserAgent())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
