package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agencyops/kanri/internal/actorcontext"
	"github.com/agencyops/kanri/internal/config"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newMiddlewareEngine(s *Server, capture gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ping", s.OrgResolver(), s.ActorResolver(), capture)
	return engine
}

func TestActorResolver_StampsOperator(t *testing.T) {
	s := &Server{cfg: config.Config{DefaultOrgID: 42}}

	var actorType, actorID, ip, ua string
	engine := newMiddlewareEngine(s, func(c *gin.Context) {
		ctx := c.Request.Context()
		actorType, actorID = actorcontext.ActorFromContext(ctx)
		ip = actorcontext.IPAddressFromContext(ctx)
		ua = actorcontext.UserAgentFromContext(ctx)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Operator-ID", "op-104")
	req.Header.Set("User-Agent", "kanri-console/1.4")
	req.RemoteAddr = "203.0.113.7:51442"

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, opslogdomain.ActorTypeOperator, actorType)
	assert.Equal(t, "op-104", actorID)
	assert.Equal(t, "203.0.113.7", ip)
	assert.Equal(t, "kanri-console/1.4", ua)
}

func TestOrgResolver_HeaderOverridesDefault(t *testing.T) {
	s := &Server{cfg: config.Config{DefaultOrgID: 42}}

	var orgID int64
	engine := newMiddlewareEngine(s, func(c *gin.Context) {
		id, ok := orgcontext.OrgIDFromContext(c.Request.Context())
		assert.True(t, ok)
		orgID = int64(id)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, int64(42), orgID)

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Org-ID", "7")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, int64(7), orgID)
}
