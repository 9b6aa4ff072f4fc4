// Package seed provides the deterministic demo dataset used by local
// bootstrap and the reset-to-seed operation used for test isolation.
package seed

import (
	"context"
	"errors"
	"time"

	accountdomain "github.com/agencyops/kanri/internal/account/domain"
	agentdomain "github.com/agencyops/kanri/internal/agent/domain"
	"github.com/agencyops/kanri/internal/billingperiod"
	coldcalldomain "github.com/agencyops/kanri/internal/coldcall/domain"
	contractdomain "github.com/agencyops/kanri/internal/contract/domain"
	invoicedomain "github.com/agencyops/kanri/internal/invoice/domain"
	opslogdomain "github.com/agencyops/kanri/internal/opslog/domain"
	paymentdomain "github.com/agencyops/kanri/internal/payment/domain"
	plandomain "github.com/agencyops/kanri/internal/plan/domain"
	routedomain "github.com/agencyops/kanri/internal/route/domain"
	settlementdomain "github.com/agencyops/kanri/internal/settlement/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	demoPlanCode     = "meo-standard"
	demoPlanName     = "MEO Standard"
	demoPlanPrice    = 30000
	demoAccountName  = "Sakura Coffee Roasters"
	demoAgentName    = "Yamada Partners"
	demoAgentTarget  = 10
	demoAgentUnitFee = 3000
)

// EnsureDemoData seeds a minimal working dataset for the org. It is
// idempotent: existing rows keyed by the demo identifiers are kept.
func EnsureDemoData(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if orgID == 0 {
		return errors.New("seed org id is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	org := snowflake.ID(orgID)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := ensurePlan(ctx, tx, node, org)
		if err != nil {
			return err
		}
		account, err := ensureAccount(ctx, tx, node, org)
		if err != nil {
			return err
		}
		contract, err := ensureContract(ctx, tx, node, org, account, plan)
		if err != nil {
			return err
		}
		agent, err := ensureAgent(ctx, tx, node, org)
		if err != nil {
			return err
		}
		return ensureAgentContract(ctx, tx, node, org, agent, contract)
	})
}

// ResetToSeed wipes every domain table and reapplies the demo dataset.
func ResetToSeed(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&opslogdomain.OpsLog{},
			&coldcalldomain.ColdCall{},
			&settlementdomain.AgentSettlement{},
			&settlementdomain.AgentMonthlyEntitlement{},
			&agentdomain.AgentMonthlyPerformance{},
			&agentdomain.AgentContract{},
			&agentdomain.Agent{},
			&routedomain.RouteIntegration{},
			&paymentdomain.Payment{},
			&invoicedomain.Invoice{},
			&contractdomain.Contract{},
			&plandomain.Plan{},
			&accountdomain.Account{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return EnsureDemoData(db, orgID)
}

func ensurePlan(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) (*plandomain.Plan, error) {
	var plan plandomain.Plan
	err := tx.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, demoPlanCode).
		First(&plan).Error
	if err == nil {
		return &plan, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	plan = plandomain.Plan{
		ID:           node.Generate(),
		OrgID:        orgID,
		Code:         demoPlanCode,
		Name:         demoPlanName,
		MonthlyPrice: demoPlanPrice,
		Currency:     "JPY",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func ensureAccount(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := tx.WithContext(ctx).
		Where("org_id = ? AND name = ?", orgID, demoAccountName).
		First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	account = accountdomain.Account{
		ID:        node.Generate(),
		OrgID:     orgID,
		Name:      demoAccountName,
		Email:     "owner@sakura-coffee.example",
		Phone:     "03-0000-0000",
		Status:    accountdomain.AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func ensureContract(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, account *accountdomain.Account, plan *plandomain.Plan) (*contractdomain.Contract, error) {
	var contract contractdomain.Contract
	err := tx.WithContext(ctx).
		Where("org_id = ? AND account_id = ?", orgID, account.ID).
		First(&contract).Error
	if err == nil {
		return &contract, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	contract = contractdomain.Contract{
		ID:            node.Generate(),
		OrgID:         orgID,
		AccountID:     account.ID,
		PlanID:        plan.ID,
		Status:        contractdomain.ContractStatusLead,
		BillingMethod: contractdomain.BillingMethodInvoice,
		PriceSnapshot: plan.MonthlyPrice,
		Currency:      plan.Currency,
		PaymentDay:    27,
		StartDate:     billingperiod.FirstOfMonth(now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.WithContext(ctx).Create(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func ensureAgent(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) (*agentdomain.Agent, error) {
	var agent agentdomain.Agent
	err := tx.WithContext(ctx).
		Where("org_id = ? AND name = ?", orgID, demoAgentName).
		First(&agent).Error
	if err == nil {
		return &agent, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	agent = agentdomain.Agent{
		ID:             node.Generate(),
		OrgID:          orgID,
		Name:           demoAgentName,
		Email:          "sales@yamada-partners.example",
		StockUnitPrice: demoAgentUnitFee,
		MonthlyTarget:  demoAgentTarget,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func ensureAgentContract(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, agent *agentdomain.Agent, contract *contractdomain.Contract) error {
	month := billingperiod.FirstOfMonth(time.Now().UTC())

	var ac agentdomain.AgentContract
	err := tx.WithContext(ctx).
		Where("org_id = ? AND agent_id = ? AND contract_id = ? AND billing_month = ?",
			orgID, agent.ID, contract.ID, month).
		First(&ac).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	ac = agentdomain.AgentContract{
		ID:           node.Generate(),
		OrgID:        orgID,
		AgentID:      agent.ID,
		ContractID:   contract.ID,
		BillingMonth: month,
		Status:       agentdomain.AgentContractStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&ac).Error
}
