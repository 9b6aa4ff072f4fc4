package scheduler

import (
	"context"
	"testing"
	"time"

	agentdomain "github.com/agencyops/kanri/internal/agent/domain"
	agentrepo "github.com/agencyops/kanri/internal/agent/repository"
	"github.com/agencyops/kanri/internal/clock"
	"github.com/agencyops/kanri/internal/config"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	contractrepo "github.com/agencyops/kanri/internal/contract/repository"
	invoicedomain "github.com/agencyops/kanri/internal/invoice/domain"
	invoicerepo "github.com/agencyops/kanri/internal/invoice/repository"
	invoiceservice "github.com/agencyops/kanri/internal/invoice/service"
	"github.com/agencyops/kanri/internal/orgcontext"
	settlementdomain "github.com/agencyops/kanri/internal/settlement/domain"
	settlementrepo "github.com/agencyops/kanri/internal/settlement/repository"
	settlementservice "github.com/agencyops/kanri/internal/settlement/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type schedulerFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	sched *Scheduler
	orgID int64
}

func newSchedulerFixture(t *testing.T, graceDays int) *schedulerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&contractdomain.Contract{},
		&invoicedomain.Invoice{},
		&agentdomain.Agent{},
		&agentdomain.AgentContract{},
		&settlementdomain.AgentMonthlyEntitlement{},
		&settlementdomain.AgentSettlement{},
	)
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	orgID := int64(node.Generate())

	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB:           db,
		Log:          logger,
		GenID:        node,
		Clock:        fake,
		Repo:         invoicerepo.Provide(),
		ContractRepo: contractrepo.Provide(),
	})
	settlementSvc := settlementservice.New(settlementservice.Params{
		DB:        db,
		Log:       logger,
		GenID:     node,
		Clock:     fake,
		Repo:      settlementrepo.Provide(),
		AgentRepo: agentrepo.Provide(),
	})

	dunning := config.DefaultDunningConfig()
	dunning.GraceDays = graceDays

	sched, err := New(Params{
		Log:           logger,
		Clock:         fake,
		AppConfig:     config.Config{DefaultOrgID: orgID},
		Dunning:       config.NewStaticDunningConfigHolder(dunning),
		InvoiceSvc:    invoiceSvc,
		SettlementSvc: settlementSvc,
	})
	assert.NoError(t, err)

	return &schedulerFixture{db: db, node: node, clock: fake, sched: sched, orgID: orgID}
}

func TestRunOnce_SweepsOverdueInvoices(t *testing.T) {
	f := newSchedulerFixture(t, 3)
	ctx := orgcontext.WithOrgID(context.Background(), f.orgID)

	now := f.clock.Now()
	contract := contractdomain.Contract{
		ID:            f.node.Generate(),
		OrgID:         snowflake.ID(f.orgID),
		AccountID:     f.node.Generate(),
		PlanID:        f.node.Generate(),
		Status:        contractdomain.ContractStatusActive,
		BillingMethod: contractdomain.BillingMethodInvoice,
		PriceSnapshot: 30000,
		Currency:      "JPY",
		PaymentDay:    5,
		StartDate:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	assert.NoError(t, f.db.Create(&contract).Error)

	sentAt := now
	invoice := invoicedomain.Invoice{
		ID:           f.node.Generate(),
		OrgID:        snowflake.ID(f.orgID),
		ContractID:   contract.ID,
		BillingMonth: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:       30000,
		Currency:     "JPY",
		Status:       invoicedomain.InvoiceStatusSent,
		DueDate:      time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		SentAt:       &sentAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	assert.NoError(t, f.db.Create(&invoice).Error)

	// June 6: past due but inside the grace window.
	f.clock.Advance(5 * 24 * time.Hour)
	assert.NoError(t, f.sched.RunOnce(ctx))

	var stored invoicedomain.Invoice
	assert.NoError(t, f.db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, invoicedomain.InvoiceStatusSent, stored.Status)

	// June 10: grace expired.
	f.clock.Advance(4 * 24 * time.Hour)
	assert.NoError(t, f.sched.RunOnce(ctx))

	assert.NoError(t, f.db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, invoicedomain.InvoiceStatusOverdue, stored.Status)
}

func TestRunOnce_RecomputesCurrentMonthEntitlements(t *testing.T) {
	f := newSchedulerFixture(t, 0)
	ctx := orgcontext.WithOrgID(context.Background(), f.orgID)

	now := f.clock.Now()
	agent := agentdomain.Agent{
		ID:             f.node.Generate(),
		OrgID:          snowflake.ID(f.orgID),
		Name:           "Yamada Partners",
		StockUnitPrice: 3000,
		MonthlyTarget:  10,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	assert.NoError(t, f.db.Create(&agent).Error)

	month := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		link := agentdomain.AgentContract{
			ID:           f.node.Generate(),
			OrgID:        snowflake.ID(f.orgID),
			AgentID:      agent.ID,
			ContractID:   f.node.Generate(),
			BillingMonth: month,
			Status:       agentdomain.AgentContractStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		assert.NoError(t, f.db.Create(&link).Error)
	}

	assert.NoError(t, f.sched.RunOnce(ctx))

	var ent settlementdomain.AgentMonthlyEntitlement
	assert.NoError(t, f.db.First(&ent, "agent_id = ?", agent.ID).Error)
	assert.Equal(t, 10, ent.EntitledCount)
	assert.Equal(t, 4, ent.EarnedCount)
	assert.Equal(t, 6, ent.DeficitCount)
}
