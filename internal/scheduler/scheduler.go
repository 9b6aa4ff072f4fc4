// Package scheduler runs the periodic back-office jobs: the overdue
// invoice sweep and the monthly entitlement recompute.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencyops/kanri/internal/actorcontext"
	"github.com/agencyops/kanri/internal/billingperiod"
	"github.com/agencyops/kanri/internal/clock"
	"github.com/agencyops/kanri/internal/config"
	invoicedomain "github.com/agencyops/kanri/internal/invoice/domain"
	obsmetrics "github.com/agencyops/kanri/internal/observability/metrics"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	"github.com/agencyops/kanri/internal/orgcontext"
	settlementdomain "github.com/agencyops/kanri/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler dependencies are incomplete")

type Params struct {
	fx.In

	Log           *zap.Logger
	Clock         clock.Clock
	AppConfig     config.Config
	Dunning       *config.DunningConfigHolder
	InvoiceSvc    invoicedomain.Service
	SettlementSvc settlementdomain.Service
	Config        Config `optional:"true"`
}

type Scheduler struct {
	log           *zap.Logger
	cfg           Config
	clock         clock.Clock
	defaultOrgID  int64
	dunning       *config.DunningConfigHolder
	invoiceSvc    invoicedomain.Service
	settlementSvc settlementdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Dunning == nil || p.InvoiceSvc == nil || p.SettlementSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:           p.Log.Named("scheduler"),
		cfg:           p.Config.withDefaults(),
		clock:         p.Clock,
		defaultOrgID:  p.AppConfig.DefaultOrgID,
		dunning:       p.Dunning,
		invoiceSvc:    p.InvoiceSvc,
		settlementSvc: p.SettlementSvc,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx = orgcontext.WithOrgID(ctx, s.defaultOrgID)
	ctx = actorcontext.WithActor(ctx, opslogdomain.ActorTypeSystem, "scheduler")

	metrics := obsmetrics.Scheduler()
	metrics.IncJobRun(name)

	err := fn(ctx)
	metrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}
	metrics.IncJobFailure(name)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes every job a single time. Failures are joined so one
// failing job never starves the others.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	err = errors.Join(err, s.runJob(parent, "overdue_sweep", s.OverdueSweepJob))
	err = errors.Join(err, s.runJob(parent, "entitlement_recompute", s.EntitlementRecomputeJob))
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// OverdueSweepJob persists the derived overdue status for every sent
// invoice past its due date plus the configured grace days.
func (s *Scheduler) OverdueSweepJob(ctx context.Context) error {
	graceDays := s.dunning.Get().GraceDays
	swept, err := s.invoiceSvc.SweepOverdue(ctx, graceDays)
	if err != nil {
		return err
	}
	if swept > 0 {
		s.log.Info("marked invoices overdue",
			zap.Int64("count", swept),
			zap.Int("grace_days", graceDays),
		)
	}
	return nil
}

// EntitlementRecomputeJob refreshes the current month's entitlements
// for every active agent.
func (s *Scheduler) EntitlementRecomputeJob(ctx context.Context) error {
	month := billingperiod.Format(s.clock.Now())
	count, err := s.settlementSvc.RecalculateMonth(ctx, month)
	if err != nil {
		return err
	}
	if count > 0 {
		s.log.Debug("recomputed entitlements",
			zap.String("month", month),
			zap.Int("agents", count),
		)
	}
	return nil
}
