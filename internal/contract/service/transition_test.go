package service

import (
	"context"
	"testing"
	"time"

	"github.com/agencyops/kanri/internal/actorcontext"
	"github.com/agencyops/kanri/internal/contract/domain"
	contractrepo "github.com/agencyops/kanri/internal/contract/repository"
	invoicedomain "github.com/agencyops/kanri/internal/invoice/domain"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	opslogrepo "github.com/agencyops/kanri/internal/opslog/repository"
	opslogservice "github.com/agencyops/kanri/internal/opslog/service"
	"github.com/agencyops/kanri/internal/orgcontext"
	paymentdomain "github.com/agencyops/kanri/internal/payment/domain"
	plandomain "github.com/agencyops/kanri/internal/plan/domain"
	planrepo "github.com/agencyops/kanri/internal/plan/repository"
	routedomain "github.com/agencyops/kanri/internal/route/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contractFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	svc   domain.Service
	orgID snowflake.ID
	ctx   context.Context
}

func newContractFixture(t *testing.T) *contractFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&plandomain.Plan{},
		&domain.Contract{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
		&routedomain.RouteIntegration{},
		&opslogdomain.OpsLog{},
	)
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	logger := zap.NewNop()

	opsLogSvc := opslogservice.NewService(opslogservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  opslogrepo.Provide(),
	})

	svc := New(Params{
		DB:        db,
		Log:       logger,
		GenID:     node,
		Repo:      contractrepo.Provide(),
		PlanRepo:  planrepo.Provide(),
		OpsLogSvc: opsLogSvc,
	})

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))
	ctx = actorcontext.WithActor(ctx, opslogdomain.ActorTypeOperator, "tester")

	return &contractFixture{db: db, node: node, svc: svc, orgID: orgID, ctx: ctx}
}

func (f *contractFixture) createContract(t *testing.T, status domain.ContractStatus) *domain.Contract {
	t.Helper()

	now := time.Now().UTC()
	contract := domain.Contract{
		ID:            f.node.Generate(),
		OrgID:         f.orgID,
		AccountID:     f.node.Generate(),
		PlanID:        f.node.Generate(),
		Status:        status,
		BillingMethod: domain.BillingMethodInvoice,
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

func (f *contractFixture) addPayment(t *testing.T, contractID snowflake.ID, status paymentdomain.PaymentStatus) {
	t.Helper()

	now := time.Now().UTC()
	payment := paymentdomain.Payment{
		ID:         f.node.Generate(),
		OrgID:      f.orgID,
		ContractID: contractID,
		Amount:     30000,
		Currency:   "JPY",
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	assert.NoError(t, f.db.Create(&payment).Error)
}

func (f *contractFixture) addInvoice(t *testing.T, contractID snowflake.ID, status invoicedomain.InvoiceStatus) {
	t.Helper()

	now := time.Now().UTC()
	invoice := invoicedomain.Invoice{
		ID:           f.node.Generate(),
		OrgID:        f.orgID,
		ContractID:   contractID,
		BillingMonth: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		Amount:       30000,
		Currency:     "JPY",
		Status:       status,
		DueDate:      now.AddDate(0, 0, 7),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	assert.NoError(t, f.db.Create(&invoice).Error)
}

func (f *contractFixture) addRoute(t *testing.T, contractID snowflake.ID, status routedomain.RouteStatus) {
	t.Helper()

	now := time.Now().UTC()
	route := routedomain.RouteIntegration{
		ID:              f.node.Generate(),
		OrgID:           f.orgID,
		ContractID:      contractID,
		Status:          status,
		FacebookStatus:  routedomain.PlatformStatusNotConnected,
		InstagramStatus: routedomain.PlatformStatusNotConnected,
		GBPStatus:       routedomain.PlatformStatusNotConnected,
		LineStatus:      routedomain.PlatformStatusNotConnected,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	assert.NoError(t, f.db.Create(&route).Error)
}

func (f *contractFixture) changeStatus(contract *domain.Contract, target domain.ContractStatus) (domain.Contract, error) {
	return f.svc.ChangeStatus(f.ctx, domain.ChangeStatusRequest{
		ID:           contract.ID.String(),
		TargetStatus: string(target),
		Reason:       "test transition",
	})
}

func TestChangeStatus_AdjacencyOnly(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusLead)

	// lead cannot jump straight to active.
	_, err := f.changeStatus(contract, domain.ContractStatusActive)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	updated, err := f.changeStatus(contract, domain.ContractStatusClosedWon)
	assert.NoError(t, err)
	assert.Equal(t, domain.ContractStatusClosedWon, updated.Status)
}

func TestChangeStatus_ActivationRequiresPayment(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusClosedWon)

	_, err := f.changeStatus(contract, domain.ContractStatusActive)
	var blocked *domain.TransitionBlockedError
	assert.ErrorAs(t, err, &blocked)
	assert.Contains(t, blocked.Reasons, domain.BlockMissingInitialPayment)

	// Nothing was written.
	var stored domain.Contract
	assert.NoError(t, f.db.First(&stored, "id = ?", contract.ID).Error)
	assert.Equal(t, domain.ContractStatusClosedWon, stored.Status)

	// A pending payment is not enough.
	f.addPayment(t, contract.ID, paymentdomain.PaymentStatusPending)
	_, err = f.changeStatus(contract, domain.ContractStatusActive)
	assert.ErrorAs(t, err, &blocked)

	f.addPayment(t, contract.ID, paymentdomain.PaymentStatusSucceeded)
	updated, err := f.changeStatus(contract, domain.ContractStatusActive)
	assert.NoError(t, err)
	assert.Equal(t, domain.ContractStatusActive, updated.Status)
}

func TestChangeStatus_CancellationGuardsReportAllBlockers(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusCancelPending)
	f.addInvoice(t, contract.ID, invoicedomain.InvoiceStatusSent)
	f.addRoute(t, contract.ID, routedomain.RouteStatusRunning)

	_, err := f.changeStatus(contract, domain.ContractStatusCancelled)
	var blocked *domain.TransitionBlockedError
	assert.ErrorAs(t, err, &blocked)
	assert.Len(t, blocked.Reasons, 2)
	assert.Contains(t, blocked.Reasons, domain.BlockOpenInvoices)
	assert.Contains(t, blocked.Reasons, domain.BlockRouteNotStopped)
}

func TestChangeStatus_CancellationSucceedsWhenCleared(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusCancelPending)
	f.addInvoice(t, contract.ID, invoicedomain.InvoiceStatusPaid)
	f.addInvoice(t, contract.ID, invoicedomain.InvoiceStatusVoid)
	f.addRoute(t, contract.ID, routedomain.RouteStatusPaused)

	updated, err := f.changeStatus(contract, domain.ContractStatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, domain.ContractStatusCancelled, updated.Status)
	assert.NotNil(t, updated.CancellationEffectiveDate)
	assert.NotNil(t, updated.EndDate)
	assert.Equal(t, *updated.CancellationEffectiveDate, *updated.EndDate)
}

func TestChangeStatus_CancellationWithoutRouteIsAllowed(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusCancelPending)

	updated, err := f.changeStatus(contract, domain.ContractStatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, domain.ContractStatusCancelled, updated.Status)
}

func TestChangeStatus_CancelledIsAbsorbing(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusCancelled)

	for _, target := range []domain.ContractStatus{
		domain.ContractStatusLead,
		domain.ContractStatusClosedWon,
		domain.ContractStatusActive,
		domain.ContractStatusCancelPending,
	} {
		_, err := f.changeStatus(contract, target)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
}

func TestChangeStatus_ReinstatementClearsCancellation(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusActive)

	pending, err := f.changeStatus(contract, domain.ContractStatusCancelPending)
	assert.NoError(t, err)
	assert.NotNil(t, pending.CancellationRequestedAt)
	assert.NotNil(t, pending.CancellationReason)

	reinstated, err := f.changeStatus(contract, domain.ContractStatusActive)
	assert.NoError(t, err)
	assert.Equal(t, domain.ContractStatusActive, reinstated.Status)
	assert.Nil(t, reinstated.CancellationRequestedAt)
	assert.Nil(t, reinstated.CancellationReason)
	assert.Nil(t, reinstated.CancellationEffectiveDate)
}

func TestChangeStatus_ReasonRequired(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusLead)

	_, err := f.svc.ChangeStatus(f.ctx, domain.ChangeStatusRequest{
		ID:           contract.ID.String(),
		TargetStatus: string(domain.ContractStatusClosedWon),
	})
	assert.ErrorIs(t, err, domain.ErrReasonRequired)
}

func TestChangeStatus_AppendsOpsLog(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusLead)

	_, err := f.changeStatus(contract, domain.ContractStatusClosedWon)
	assert.NoError(t, err)

	var logs []opslogdomain.OpsLog
	assert.NoError(t, f.db.Where("contract_id = ?", contract.ID).Find(&logs).Error)
	assert.Len(t, logs, 1)
	assert.Equal(t, "contract.status_change", logs[0].Action)
	assert.Equal(t, "test transition", logs[0].Reason)
}

func TestChangeStatus_BlockedWritesNoOpsLog(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusClosedWon)

	_, err := f.changeStatus(contract, domain.ContractStatusActive)
	assert.Error(t, err)

	var count int64
	assert.NoError(t, f.db.Model(&opslogdomain.OpsLog{}).Where("contract_id = ?", contract.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestChangeStatus_UnknownTarget(t *testing.T) {
	f := newContractFixture(t)

	contract := f.createContract(t, domain.ContractStatusLead)

	_, err := f.svc.ChangeStatus(f.ctx, domain.ChangeStatusRequest{
		ID:           contract.ID.String(),
		TargetStatus: "suspended",
		Reason:       "test",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTargetStatus)
}

func TestChangeStatus_NotFound(t *testing.T) {
	f := newContractFixture(t)

	_, err := f.svc.ChangeStatus(f.ctx, domain.ChangeStatusRequest{
		ID:           f.node.Generate().String(),
		TargetStatus: string(domain.ContractStatusClosedWon),
		Reason:       "test",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
