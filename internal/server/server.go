// Package server exposes the admin console REST API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/agencyops/kanri/internal/account"
	accountdomain "github.com/agencyops/kanri/internal/account/domain"
	"github.com/agencyops/kanri/internal/agent"
	agentdomain "github.com/agencyops/kanri/internal/agent/domain"
	"github.com/agencyops/kanri/internal/coldcall"
	coldcalldomain "github.com/agencyops/kanri/internal/coldcall/domain"
	"github.com/agencyops/kanri/internal/config"
	"github.com/agencyops/kanri/internal/contract"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	"github.com/agencyops/kanri/internal/invoice"
	invoicedomain "github.com/agencyops/kanri/internal/invoice/domain"
	"github.com/agencyops/kanri/internal/observability"
	obsmiddleware "github.com/agencyops/kanri/internal/observability/logger"
	obsmetrics "github.com/agencyops/kanri/internal/observability/metrics"
	obstracing "github.com/agencyops/kanri/internal/observability/tracing"
	"github.com/agencyops/kanri/internal/opslog"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	"github.com/agencyops/kanri/internal/payment"
	paymentdomain "github.com/agencyops/kanri/internal/payment/domain"
	"github.com/agencyops/kanri/internal/plan"
	plandomain "github.com/agencyops/kanri/internal/plan/domain"
	"github.com/agencyops/kanri/internal/route"
	routedomain "github.com/agencyops/kanri/internal/route/domain"
	"github.com/agencyops/kanri/internal/settlement"
	settlementdomain "github.com/agencyops/kanri/internal/settlement/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	account.Module,
	plan.Module,
	contract.Module,
	invoice.Module,
	payment.Module,
	route.Module,
	agent.Module,
	settlement.Module,
	coldcall.Module,
	opslog.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "error", payload.Type
	}
	return "warn", payload.Type
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	accountSvc    accountdomain.Service
	planSvc       plandomain.Service
	contractSvc   contractdomain.Service
	invoiceSvc    invoicedomain.Service
	paymentSvc    paymentdomain.Service
	routeSvc      routedomain.Service
	agentSvc      agentdomain.Service
	settlementSvc settlementdomain.Service
	coldCallSvc   coldcalldomain.Service
	opsLogSvc     opslogdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	AccountSvc    accountdomain.Service
	PlanSvc       plandomain.Service
	ContractSvc   contractdomain.Service
	InvoiceSvc    invoicedomain.Service
	PaymentSvc    paymentdomain.Service
	RouteSvc      routedomain.Service
	AgentSvc      agentdomain.Service
	SettlementSvc settlementdomain.Service
	ColdCallSvc   coldcalldomain.Service
	OpsLogSvc     opslogdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		accountSvc:    p.AccountSvc,
		planSvc:       p.PlanSvc,
		contractSvc:   p.ContractSvc,
		invoiceSvc:    p.InvoiceSvc,
		paymentSvc:    p.PaymentSvc,
		routeSvc:      p.RouteSvc,
		agentSvc:      p.AgentSvc,
		settlementSvc: p.SettlementSvc,
		coldCallSvc:   p.ColdCallSvc,
		opsLogSvc:     p.OpsLogSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
	s.RegisterDevRoutes()
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api", s.OrgResolver(), s.ActorResolver())

	// -------- Accounts --------
	api.GET("/accounts", s.ListAccounts)
	api.POST("/accounts", s.CreateAccount)
	api.GET("/accounts/:id", s.GetAccountByID)
	api.PATCH("/accounts/:id", s.UpdateAccount)

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)
	api.POST("/plans", s.CreatePlan)
	api.GET("/plans/:id", s.GetPlanByID)

	// -------- Contracts --------
	api.GET("/contracts", s.ListContracts)
	api.POST("/contracts", s.CreateContract)
	api.GET("/contracts/:id", s.GetContractByID)
	api.PATCH("/contracts/:id", s.UpdateContract)
	api.POST("/contracts/:id/status", s.ChangeContractStatus)
	api.GET("/contracts/:id/ops-logs", s.ListContractOpsLogs)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.GenerateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/send", s.MarkInvoiceSent)
	api.POST("/invoices/:id/pay", s.MarkInvoicePaid)
	api.POST("/invoices/:id/overdue", s.MarkInvoiceOverdue)
	api.POST("/invoices/:id/void", s.VoidInvoice)

	// -------- Payments --------
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.RecordPayment)
	api.POST("/payments/:id/succeed", s.MarkPaymentSucceeded)
	api.POST("/payments/:id/fail", s.MarkPaymentFailed)
	api.POST("/payments/:id/refund", s.RefundPayment)
	api.POST("/payments/:id/chargeback", s.ChargebackPayment)

	// -------- Route integrations --------
	api.POST("/routes", s.CreateRoute)
	api.GET("/contracts/:id/route", s.GetRouteByContract)
	api.PATCH("/contracts/:id/route", s.UpdateRoute)

	// -------- Agents --------
	api.GET("/agents", s.ListAgents)
	api.POST("/agents", s.CreateAgent)
	api.GET("/agents/:id", s.GetAgentByID)
	api.PATCH("/agents/:id", s.UpdateAgent)
	api.POST("/agents/:id/contracts", s.AttachAgentContract)
	api.GET("/agents/:id/contracts", s.ListAgentContracts)
	api.POST("/agent-contracts/:id/status", s.SetAgentContractStatus)
	api.POST("/agents/:id/performance", s.RecordAgentPerformance)
	api.GET("/agents/:id/performance/:month", s.GetAgentPerformance)

	// -------- Entitlements & settlements --------
	api.POST("/agents/:id/entitlements", s.CalculateEntitlement)
	api.GET("/agents/:id/entitlements/:month", s.GetEntitlement)
	api.GET("/settlements", s.ListSettlements)
	api.POST("/settlements", s.CreateSettlement)
	api.GET("/settlements/:id", s.GetSettlementByID)
	api.POST("/settlements/:id/invoice", s.MarkSettlementInvoiced)
	api.POST("/settlements/:id/pay", s.MarkSettlementPaid)
	api.POST("/settlements/:id/payout/request", s.RequestPayout)
	api.POST("/settlements/:id/payout/begin", s.BeginPayout)
	api.POST("/settlements/:id/payout/complete", s.CompletePayout)
	api.POST("/settlements/:id/payout/fail", s.FailPayout)
	api.POST("/settlements/:id/payout/cancel", s.CancelPayout)

	// -------- Cold calls --------
	api.GET("/cold-calls", s.ListColdCalls)
	api.POST("/cold-calls", s.CreateColdCall)
	api.GET("/cold-calls/:id", s.GetColdCallByID)
	api.PATCH("/cold-calls/:id", s.UpdateColdCall)
	api.POST("/cold-calls/:id/log", s.LogColdCall)
}

// RegisterDevRoutes exposes the reset-to-seed endpoint outside production.
func (s *Server) RegisterDevRoutes() {
	if s.cfg.Environment == "production" {
		return
	}
	s.engine.POST("/dev/reset", s.ResetToSeed)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
