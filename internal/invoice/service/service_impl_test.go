package service

import (
	"context"
	"testing"
	"time"

	"github.com/agencyops/kanri/internal/clock"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	contractrepo "github.com/agencyops/kanri/internal/contract/repository"
	"github.com/agencyops/kanri/internal/invoice/domain"
	invoicerepo "github.com/agencyops/kanri/internal/invoice/repository"
	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
	orgID snowflake.ID
	ctx   context.Context
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&contractdomain.Contract{}, &domain.Invoice{})
	assert.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		Repo:         invoicerepo.Provide(),
		ContractRepo: contractrepo.Provide(),
	})

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	return &invoiceFixture{db: db, node: node, clock: fake, svc: svc, orgID: orgID, ctx: ctx}
}

func (f *invoiceFixture) createContract(t *testing.T, paymentDay int) *contractdomain.Contract {
	t.Helper()

	now := f.clock.Now()
	contract := contractdomain.Contract{
		ID:            f.node.Generate(),
		OrgID:         f.orgID,
		AccountID:     f.node.Generate(),
		PlanID:        f.node.Generate(),
		Status:        contractdomain.ContractStatusActive,
		BillingMethod: contractdomain.BillingMethodInvoice,
		PriceSnapshot: 30000,
		Currency:      "JPY",
		PaymentDay:    paymentDay,
		StartDate:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	assert.NoError(t, f.db.Create(&contract).Error)
	return &contract
}

func TestGenerate_SnapshotsContractPrice(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 27)

	invoice, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 30000, invoice.Amount)
	assert.Equal(t, "JPY", invoice.Currency)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC), invoice.DueDate)
}

func TestGenerate_PaymentDayClampedToMonthEnd(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 31)

	invoice, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), invoice.DueDate)
}

func TestGenerate_DuplicateMonthRejected(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 27)

	_, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)

	_, err = f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateMonth)

	// A different month is fine.
	_, err = f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-07",
	})
	assert.NoError(t, err)
}

func TestMark_Transitions(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 27)
	invoice, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)

	// Draft cannot be paid directly.
	_, err = f.svc.MarkPaid(f.ctx, invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidMark)

	sent, err := f.svc.MarkSent(f.ctx, invoice.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)
	assert.NotNil(t, sent.SentAt)

	paid, err := f.svc.MarkPaid(f.ctx, invoice.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	// Paid is terminal.
	_, err = f.svc.Void(f.ctx, invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidMark)
}

func TestMarkOverdue_OnlyFromSent(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 5)
	invoice, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)

	// A draft has never been dunned; it cannot go overdue.
	_, err = f.svc.MarkOverdue(f.ctx, invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidMark)

	_, err = f.svc.MarkSent(f.ctx, invoice.ID.String())
	assert.NoError(t, err)

	overdue, err := f.svc.MarkOverdue(f.ctx, invoice.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, overdue.Status)

	var stored domain.Invoice
	assert.NoError(t, f.db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, domain.InvoiceStatusOverdue, stored.Status)

	// Payment still lands after a manual overdue mark.
	paid, err := f.svc.MarkPaid(f.ctx, invoice.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
}

func TestGetByID_DerivesOverdueFromDueDate(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 5)
	invoice, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)

	_, err = f.svc.MarkSent(f.ctx, invoice.ID.String())
	assert.NoError(t, err)

	got, err := f.svc.GetByID(f.ctx, invoice.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, got.Status)

	// Due date June 5 has passed; the stored row still says sent.
	f.clock.Advance(10 * 24 * time.Hour)
	got, err = f.svc.GetByID(f.ctx, invoice.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, got.Status)

	var stored domain.Invoice
	assert.NoError(t, f.db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, domain.InvoiceStatusSent, stored.Status)
}

func TestSweepOverdue_HonorsGraceDays(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 5)
	invoice, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)
	_, err = f.svc.MarkSent(f.ctx, invoice.ID.String())
	assert.NoError(t, err)

	// June 8: three days past due, still inside a five day grace window.
	f.clock.Advance(7 * 24 * time.Hour)
	n, err := f.svc.SweepOverdue(f.ctx, 5)
	assert.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(3 * 24 * time.Hour)
	n, err = f.svc.SweepOverdue(f.ctx, 5)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var stored domain.Invoice
	assert.NoError(t, f.db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, domain.InvoiceStatusOverdue, stored.Status)
}

func TestSweepOverdue_SkipsPaidAndDraft(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 5)
	draft, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)

	other := f.createContract(t, 5)
	paid, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   other.ID.String(),
		BillingMonth: "2025-06",
	})
	assert.NoError(t, err)
	_, err = f.svc.MarkSent(f.ctx, paid.ID.String())
	assert.NoError(t, err)
	_, err = f.svc.MarkPaid(f.ctx, paid.ID.String())
	assert.NoError(t, err)

	f.clock.Advance(30 * 24 * time.Hour)
	n, err := f.svc.SweepOverdue(f.ctx, 0)
	assert.NoError(t, err)
	assert.Zero(t, n)

	var stored domain.Invoice
	assert.NoError(t, f.db.First(&stored, "id = ?", draft.ID).Error)
	assert.Equal(t, domain.InvoiceStatusDraft, stored.Status)
}

func TestGenerate_ExplicitDueDateOverrides(t *testing.T) {
	f := newInvoiceFixture(t)

	contract := f.createContract(t, 27)
	invoice, err := f.svc.Generate(f.ctx, domain.GenerateInvoiceRequest{
		ContractID:   contract.ID.String(),
		BillingMonth: "2025-06",
		DueDate:      "2025-07-10",
	})
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), invoice.DueDate)
}
