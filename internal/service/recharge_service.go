package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/notify"
)

// RechargeStore persists recharge records. Decide settles a pending record
// and, on approval, credits the user inside the same transaction.
type RechargeStore interface {
	Create(ctx context.Context, rec *models.RechargeRecord) error
	GetByID(ctx context.Context, id int64) (*models.RechargeRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]models.RechargeRecord, error)
	List(ctx context.Context, status models.RechargeStatus) ([]models.RechargeRecord, error)
	Decide(ctx context.Context, id, adminID int64, approve bool, note string) (*models.RechargeRecord, error)
}

// PlanReader resolves the plan a recharge submission references.
type PlanReader interface {
	GetByID(ctx context.Context, id int64) (*models.RechargePlan, error)
}

// RechargeService runs the payment-recharge approval workflow.
type RechargeService struct {
	recharges RechargeStore
	plans     PlanReader
	hub       *notify.Hub
	log       *slog.Logger
}

func NewRechargeService(recharges RechargeStore, plans PlanReader, hub *notify.Hub, log *slog.Logger) *RechargeService {
	return &RechargeService{recharges: recharges, plans: plans, hub: hub, log: log}
}

// Submit records a pending recharge for the chosen plan. The plan's name,
// price, quotas and duration are snapshotted onto the record so later plan
// edits never change what an approval grants.
func (s *RechargeService) Submit(ctx context.Context, userID, planID int64, proofRef string) (*models.RechargeRecord, error) {
	proofRef = strings.TrimSpace(proofRef)
	if proofRef == "" {
		return nil, fmt.Errorf("payment proof is required: %w", models.ErrValidation)
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("plan %q is not available: %w", plan.Name, models.ErrValidation)
	}

	rec := &models.RechargeRecord{
		UserID:          userID,
		PlanName:        plan.Name,
		AmountMinor:     plan.PriceMinorUnits,
		PlanAIQuota:     plan.AIQuota,
		PlanHumanQuota:  plan.HumanQuota,
		PlanDuration:    plan.DurationDays,
		PaymentProofRef: proofRef,
	}
	if err := s.recharges.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info("recharge submitted",
		"recharge_id", rec.ID, "user_id", userID, "plan", plan.Name)
	s.hub.Publish(notify.Event{Table: "recharge_records", Action: "created", ID: rec.ID})
	return rec, nil
}

func (s *RechargeService) ListMine(ctx context.Context, userID int64) ([]models.RechargeRecord, error) {
	return s.recharges.ListByUser(ctx, userID)
}

func (s *RechargeService) List(ctx context.Context, status models.RechargeStatus) ([]models.RechargeRecord, error) {
	switch status {
	case "", models.RechargePending, models.RechargeApproved, models.RechargeRejected:
	default:
		return nil, fmt.Errorf("unknown status %q: %w", status, models.ErrValidation)
	}
	return s.recharges.List(ctx, status)
}

// Decide approves or rejects a pending recharge. A record is decided at
// most once; an approval credits the snapshotted quotas exactly once.
func (s *RechargeService) Decide(ctx context.Context, id, adminID int64, approve bool, note string) (*models.RechargeRecord, error) {
	rec, err := s.recharges.Decide(ctx, id, adminID, approve, strings.TrimSpace(note))
	if err != nil {
		return nil, err
	}

	s.log.Info("recharge decided",
		"recharge_id", id, "admin_id", adminID, "status", rec.Status)
	s.hub.Publish(notify.Event{Table: "recharge_records", Action: "updated", ID: id})
	return rec, nil
}
