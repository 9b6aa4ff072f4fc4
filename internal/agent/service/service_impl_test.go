package service

import (
	"context"
	"testing"
	"time"

	"github.com/agencyops/kanri/internal/agent/domain"
	agentrepo "github.com/agencyops/kanri/internal/agent/repository"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	contractrepo "github.com/agencyops/kanri/internal/contract/repository"
	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type agentFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	svc   domain.Service
	orgID snowflake.ID
	ctx   context.Context
}

func newAgentFixture(t *testing.T) *agentFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&domain.Agent{},
		&domain.AgentContract{},
		&domain.AgentMonthlyPerformance{},
		&contractdomain.Contract{},
	)
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         agentrepo.Provide(),
		ContractRepo: contractrepo.Provide(),
	})

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	return &agentFixture{db: db, node: node, svc: svc, orgID: orgID, ctx: ctx}
}

func (f *agentFixture) createAgent(t *testing.T) domain.Agent {
	t.Helper()

	agent, err := f.svc.Create(f.ctx, domain.CreateAgentRequest{
		Name:           "Yamada Partners",
		StockUnitPrice: 3000,
		MonthlyTarget:  10,
	})
	assert.NoError(t, err)
	return agent
}

func (f *agentFixture) createContract(t *testing.T) *contractdomain.Contract {
	t.Helper()

	now := time.Now().UTC()
	contract := contractdomain.Contract{
		ID:            f.node.Generate(),
		OrgID:         f.orgID,
		AccountID:     f.node.Generate(),
		PlanID:        f.node.Generate(),
		Status:        contractdomain.ContractStatusActive,
		BillingMethod: contractdomain.BillingMethodInvoice,
		PriceSnapshot: 30000,
		Currency:      "JPY",
		PaymentDay:    27,
		StartDate:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	assert.NoError(t, f.db.Create(&contract).Error)
	return &contract
}

func TestCreateAgent_Validation(t *testing.T) {
	f := newAgentFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateAgentRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = f.svc.Create(f.ctx, domain.CreateAgentRequest{Name: "x", StockUnitPrice: -1})
	assert.ErrorIs(t, err, domain.ErrUnitPriceInvalid)

	_, err = f.svc.Create(f.ctx, domain.CreateAgentRequest{Name: "x", MonthlyTarget: -1})
	assert.ErrorIs(t, err, domain.ErrMonthlyTargetInvalid)

	agent := f.createAgent(t)
	assert.True(t, agent.IsActive)
}

func TestUpdateAgent_PartialFields(t *testing.T) {
	f := newAgentFixture(t)

	agent := f.createAgent(t)

	target := 15
	inactive := false
	updated, err := f.svc.Update(f.ctx, domain.UpdateAgentRequest{
		ID:            agent.ID.String(),
		MonthlyTarget: &target,
		IsActive:      &inactive,
	})
	assert.NoError(t, err)
	assert.Equal(t, 15, updated.MonthlyTarget)
	assert.False(t, updated.IsActive)
	// Untouched fields survive.
	assert.Equal(t, agent.Name, updated.Name)
	assert.Equal(t, agent.StockUnitPrice, updated.StockUnitPrice)
}

func TestAttachContract_DuplicateRejected(t *testing.T) {
	f := newAgentFixture(t)

	agent := f.createAgent(t)
	contract := f.createContract(t)

	first, err := f.svc.AttachContract(f.ctx, domain.AttachContractRequest{
		AgentID:      agent.ID.String(),
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.AgentContractStatusActive, first.Status)

	_, err = f.svc.AttachContract(f.ctx, domain.AttachContractRequest{
		AgentID:      agent.ID.String(),
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.ErrorIs(t, err, domain.ErrAgentContractExists)

	// The same contract may be attributed to a different month.
	_, err = f.svc.AttachContract(f.ctx, domain.AttachContractRequest{
		AgentID:      agent.ID.String(),
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-07",
	})
	assert.NoError(t, err)
}

func TestAttachContract_InactiveAgentRejected(t *testing.T) {
	f := newAgentFixture(t)

	agent := f.createAgent(t)
	contract := f.createContract(t)

	inactive := false
	_, err := f.svc.Update(f.ctx, domain.UpdateAgentRequest{
		ID:       agent.ID.String(),
		IsActive: &inactive,
	})
	assert.NoError(t, err)

	_, err = f.svc.AttachContract(f.ctx, domain.AttachContractRequest{
		AgentID:      agent.ID.String(),
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.ErrorIs(t, err, domain.ErrAgentInactive)
}

func TestAttachContract_UnknownContractRejected(t *testing.T) {
	f := newAgentFixture(t)

	agent := f.createAgent(t)

	_, err := f.svc.AttachContract(f.ctx, domain.AttachContractRequest{
		AgentID:      agent.ID.String(),
		ContractID:   f.node.Generate().String(),
		BillingMonth: "2025-06",
	})
	assert.ErrorIs(t, err, domain.ErrContractNotFound)
}

func TestSetContractStatus(t *testing.T) {
	f := newAgentFixture(t)

	agent := f.createAgent(t)
	contract := f.createContract(t)

	link, err := f.svc.AttachContract(f.ctx, domain.AttachContractRequest{
		AgentID:      agent.ID.String(),
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)

	updated, err := f.svc.SetContractStatus(f.ctx, domain.SetContractStatusRequest{
		ID:     link.ID.String(),
		Status: "cancelled",
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.AgentContractStatusCancelled, updated.Status)

	_, err = f.svc.SetContractStatus(f.ctx, domain.SetContractStatusRequest{
		ID:     link.ID.String(),
		Status: "bogus",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRecordPerformance_UpsertsSingleRow(t *testing.T) {
	f := newAgentFixture(t)

	agent := f.createAgent(t)

	first, err := f.svc.RecordPerformance(f.ctx, domain.RecordPerformanceRequest{
		AgentID:       agent.ID.String(),
		BillingMonth:  "2025-06",
		AcquiredCount: 4,
	})
	assert.NoError(t, err)
	assert.Equal(t, 4, first.AcquiredCount)

	second, err := f.svc.RecordPerformance(f.ctx, domain.RecordPerformanceRequest{
		AgentID:       agent.ID.String(),
		BillingMonth:  "2025-06",
		AcquiredCount: 7,
	})
	assert.NoError(t, err)
	assert.Equal(t, 7, second.AcquiredCount)

	var count int64
	assert.NoError(t, f.db.Model(&domain.AgentMonthlyPerformance{}).
		Where("agent_id = ?", agent.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := f.svc.GetPerformance(f.ctx, agent.ID.String(), "2025-06")
	assert.NoError(t, err)
	assert.Equal(t, 7, got.AcquiredCount)
}

func TestListContracts_MonthFilter(t *testing.T) {
	f := newAgentFixture(t)

	agent := f.createAgent(t)
	june := f.createContract(t)
	july := f.createContract(t)

	_, err := f.svc.AttachContract(f.ctx, domain.AttachContractRequest{
		AgentID:      agent.ID.String(),
		ContractID:   june.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)
	_, err = f.svc.AttachContract(f.ctx, domain.AttachContractRequest{
		AgentID:      agent.ID.String(),
		ContractID:   july.ID.String(),
		BillingMonth: "2025-07",
	})
	assert.NoError(t, err)

	all, err := f.svc.ListContracts(f.ctx, domain.ListAgentContractFilter{AgentID: agent.ID.String()})
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := f.svc.ListContracts(f.ctx, domain.ListAgentContractFilter{
		AgentID:      agent.ID.String(),
		BillingMonth: "2025-07",
	})
	assert.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Equal(t, july.ID, filtered[0].ContractID)
}
