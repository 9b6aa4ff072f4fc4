package service

import (
	"context"
	"testing"

	"github.com/agencyops/kanri/internal/orgcontext"
	"github.com/agencyops/kanri/internal/payment/domain"
	paymentrepo "github.com/agencyops/kanri/internal/payment/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentFixture struct {
	node  *snowflake.Node
	svc   domain.Service
	ctx   context.Context
	orgID snowflake.ID
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&domain.Payment{}))

	node, _ := snowflake.NewNode(1)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  paymentrepo.Provide(),
	})

	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	return &paymentFixture{node: node, svc: svc, ctx: ctx, orgID: orgID}
}

func (f *paymentFixture) record(t *testing.T, contractID snowflake.ID) domain.Payment {
	t.Helper()

	payment, err := f.svc.Record(f.ctx, domain.RecordPaymentRequest{
		ContractID: contractID.String(),
		Amount:     30000,
		Method:     "bank_transfer",
	})
	assert.NoError(t, err)
	return payment
}

func TestRecord_DefaultsPending(t *testing.T) {
	f := newPaymentFixture(t)

	payment := f.record(t, f.node.Generate())
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, "JPY", payment.Currency)
	assert.Equal(t, "bank_transfer", payment.Method)
	assert.Nil(t, payment.InvoiceID)
}

func TestRecord_RejectsNonPositiveAmount(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Record(f.ctx, domain.RecordPaymentRequest{
		ContractID: f.node.Generate().String(),
		Amount:     0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Record(f.ctx, domain.RecordPaymentRequest{
		ContractID: f.node.Generate().String(),
		Amount:     -100,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestMarkSucceeded_ClearsFailureNote(t *testing.T) {
	f := newPaymentFixture(t)

	payment := f.record(t, f.node.Generate())

	failed, err := f.svc.MarkFailed(f.ctx, payment.ID.String(), "card declined")
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, failed.Status)
	assert.NotNil(t, failed.FailureNote)

	// Retry after failure is allowed and wipes the note.
	succeeded, err := f.svc.MarkSucceeded(f.ctx, payment.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSucceeded, succeeded.Status)
	assert.NotNil(t, succeeded.SucceededAt)
	assert.Nil(t, succeeded.FailureNote)
}

func TestMarkFailed_OnlyFromPending(t *testing.T) {
	f := newPaymentFixture(t)

	payment := f.record(t, f.node.Generate())
	_, err := f.svc.MarkSucceeded(f.ctx, payment.ID.String())
	assert.NoError(t, err)

	_, err = f.svc.MarkFailed(f.ctx, payment.ID.String(), "too late")
	assert.ErrorIs(t, err, domain.ErrInvalidMark)
}

func TestRefundAndChargeback_RequireSucceeded(t *testing.T) {
	f := newPaymentFixture(t)

	payment := f.record(t, f.node.Generate())

	_, err := f.svc.Refund(f.ctx, payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidMark)
	_, err = f.svc.Chargeback(f.ctx, payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidMark)

	_, err = f.svc.MarkSucceeded(f.ctx, payment.ID.String())
	assert.NoError(t, err)

	refunded, err := f.svc.Refund(f.ctx, payment.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, refunded.Status)

	// Refunded is terminal.
	_, err = f.svc.Chargeback(f.ctx, payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidMark)
}

func TestHasSucceededPayment(t *testing.T) {
	f := newPaymentFixture(t)

	contractID := f.node.Generate()
	payment := f.record(t, contractID)

	ok, err := f.svc.HasSucceededPayment(f.ctx, contractID.String())
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.MarkSucceeded(f.ctx, payment.ID.String())
	assert.NoError(t, err)

	ok, err = f.svc.HasSucceededPayment(f.ctx, contractID.String())
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestPayment_OrgIsolation(t *testing.T) {
	f := newPaymentFixture(t)

	payment := f.record(t, f.node.Generate())

	otherCtx := orgcontext.WithOrgID(context.Background(), int64(f.node.Generate()))
	_, err := f.svc.GetByID(otherCtx, payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
