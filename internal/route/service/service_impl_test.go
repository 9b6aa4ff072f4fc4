package service

import (
	"context"
	"testing"

	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/internal/route/domain"
	routerepo "github.com/agencyops/kanri/internal/route/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRouteService(t *testing.T) (domain.Service, *snowflake.Node, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&domain.RouteIntegration{}))

	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  routerepo.Provide(),
	})
	ctx := orgcontext.WithOrgID(context.Background(), int64(node.Generate()))
	return svc, node, ctx
}

func TestRouteCreate_OnePerContract(t *testing.T) {
	svc, node, ctx := newRouteService(t)

	contractID := node.Generate()
	route, err := svc.Create(ctx, domain.CreateRouteRequest{ContractID: contractID.String()})
	assert.NoError(t, err)
	assert.Equal(t, domain.RouteStatusPreparing, route.Status)
	assert.Equal(t, domain.PlatformStatusNotConnected, route.FacebookStatus)

	_, err = svc.Create(ctx, domain.CreateRouteRequest{ContractID: contractID.String()})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRouteUpdate_StatusStamps(t *testing.T) {
	svc, node, ctx := newRouteService(t)

	contractID := node.Generate()
	_, err := svc.Create(ctx, domain.CreateRouteRequest{ContractID: contractID.String()})
	assert.NoError(t, err)

	running := "running"
	route, err := svc.Update(ctx, domain.UpdateRouteRequest{
		ContractID: contractID.String(),
		Status:     &running,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.RouteStatusRunning, route.Status)
	assert.NotNil(t, route.StartedAt)
	firstStart := route.StartedAt

	paused := "paused"
	route, err = svc.Update(ctx, domain.UpdateRouteRequest{
		ContractID: contractID.String(),
		Status:     &paused,
	})
	assert.NoError(t, err)
	assert.NotNil(t, route.PausedAt)
	assert.True(t, route.Stopped())

	// Resuming keeps the original start stamp.
	route, err = svc.Update(ctx, domain.UpdateRouteRequest{
		ContractID: contractID.String(),
		Status:     &running,
	})
	assert.NoError(t, err)
	assert.Equal(t, firstStart, route.StartedAt)
	assert.False(t, route.Stopped())
}

func TestRouteUpdate_PlatformStatus(t *testing.T) {
	svc, node, ctx := newRouteService(t)

	contractID := node.Generate()
	_, err := svc.Create(ctx, domain.CreateRouteRequest{ContractID: contractID.String()})
	assert.NoError(t, err)

	connected := "connected"
	route, err := svc.Update(ctx, domain.UpdateRouteRequest{
		ContractID: contractID.String(),
		GBPStatus:  &connected,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.PlatformStatusConnected, route.GBPStatus)
	assert.Equal(t, domain.PlatformStatusNotConnected, route.LineStatus)

	bogus := "online"
	_, err = svc.Update(ctx, domain.UpdateRouteRequest{
		ContractID: contractID.String(),
		LineStatus: &bogus,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRouteGetByContract_NotFound(t *testing.T) {
	svc, node, ctx := newRouteService(t)

	_, err := svc.GetByContract(ctx, node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
