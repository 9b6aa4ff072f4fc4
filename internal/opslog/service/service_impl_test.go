package service

import (
	"context"
	"testing"

	"github.com/agencyops/kanri/internal/actorcontext"
	"github.com/agencyops/kanri/internal/opslog/domain"
	opslogrepo "github.com/agencyops/kanri/internal/opslog/repository"
	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newOpsLogService(t *testing.T) (domain.Service, *snowflake.Node, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&domain.OpsLog{}))

	node, _ := snowflake.NewNode(1)
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  opslogrepo.Provide(),
	})

	ctx := orgcontext.WithOrgID(context.Background(), int64(node.Generate()))
	ctx = actorcontext.WithActor(ctx, domain.ActorTypeOperator, "tester")
	return svc, node, ctx
}

func TestAppend_RecordsActor(t *testing.T) {
	svc, node, ctx := newOpsLogService(t)

	contractID := node.Generate()
	err := svc.Append(ctx, domain.AppendEntry{
		ContractID: contractID,
		Action:     "contract.status_change",
		Before:     map[string]any{"status": "lead"},
		After:      map[string]any{"status": "closed_won"},
		Reason:     "signed",
	})
	assert.NoError(t, err)

	logs, info, err := svc.ListByContract(ctx, contractID.String(), pagination.Pagination{})
	assert.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.False(t, info.HasMore)
	assert.Equal(t, domain.ActorTypeOperator, logs[0].ActorType)
	assert.NotNil(t, logs[0].ActorID)
	assert.Equal(t, "tester", *logs[0].ActorID)
}

func TestAppend_RequiresAction(t *testing.T) {
	svc, node, ctx := newOpsLogService(t)

	err := svc.Append(ctx, domain.AppendEntry{
		ContractID: node.Generate(),
		Action:     "   ",
		Reason:     "noop",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestListByContract_Pagination(t *testing.T) {
	svc, node, ctx := newOpsLogService(t)

	contractID := node.Generate()
	for i := 0; i < 5; i++ {
		err := svc.Append(ctx, domain.AppendEntry{
			ContractID: contractID,
			Action:     "contract.status_change",
			Reason:     "step",
		})
		assert.NoError(t, err)
	}

	first, info, err := svc.ListByContract(ctx, contractID.String(), pagination.Pagination{PageSize: 2})
	assert.NoError(t, err)
	assert.Len(t, first, 2)
	assert.True(t, info.HasMore)
	assert.NotEmpty(t, info.NextPageToken)

	second, info, err := svc.ListByContract(ctx, contractID.String(), pagination.Pagination{
		PageSize:  2,
		PageToken: info.NextPageToken,
	})
	assert.NoError(t, err)
	assert.Len(t, second, 2)
	assert.True(t, info.HasMore)
	// Newest first with no overlap between pages.
	assert.True(t, first[1].ID > second[0].ID)

	last, info, err := svc.ListByContract(ctx, contractID.String(), pagination.Pagination{
		PageSize:  2,
		PageToken: info.NextPageToken,
	})
	assert.NoError(t, err)
	assert.Len(t, last, 1)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestListByContract_BadToken(t *testing.T) {
	svc, node, ctx := newOpsLogService(t)

	_, _, err := svc.ListByContract(ctx, node.Generate().String(), pagination.Pagination{
		PageToken: "not-base64!",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}
