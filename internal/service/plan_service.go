package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/config"
	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/repository"
)

// PlanService manages the recharge plan catalogue.
type PlanService struct {
	cfg   config.Config
	plans *repository.PlanRepository
	log   *slog.Logger
}

func NewPlanService(cfg config.Config, plans *repository.PlanRepository, log *slog.Logger) *PlanService {
	return &PlanService{cfg: cfg, plans: plans, log: log}
}

type PlanInput struct {
	Name            string
	Description     string
	PriceMinorUnits int
	DurationDays    int
	AIQuota         int
	HumanQuota      int
	IsActive        bool
}

func (in PlanInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("plan name is required: %w", models.ErrValidation)
	}
	if in.PriceMinorUnits < 0 {
		return fmt.Errorf("plan price must not be negative: %w", models.ErrValidation)
	}
	if in.DurationDays <= 0 {
		return fmt.Errorf("plan duration must be positive: %w", models.ErrValidation)
	}
	if in.AIQuota < 0 || in.HumanQuota < 0 {
		return fmt.Errorf("plan quotas must not be negative: %w", models.ErrValidation)
	}
	return nil
}

// EnsureDefaultPlans seeds the catalogue with the configured default plan
// when the table is empty, so a fresh deployment has something to sell.
func (s *PlanService) EnsureDefaultPlans(ctx context.Context) error {
	count, err := s.plans.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	plan := &models.RechargePlan{
		Name:            s.cfg.DefaultPlanName,
		PriceMinorUnits: s.cfg.DefaultPlanPrice,
		DurationDays:    s.cfg.DefaultPlanDays,
		AIQuota:         s.cfg.DefaultPlanAIQuota,
		HumanQuota:      s.cfg.DefaultPlanHumQuota,
		IsActive:        true,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return fmt.Errorf("create default plan: %w", err)
	}
	s.log.Info("seeded default recharge plan", "plan", plan.Name)
	return nil
}

func (s *PlanService) Get(ctx context.Context, id int64) (*models.RechargePlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *PlanService) List(ctx context.Context, activeOnly bool) ([]models.RechargePlan, error) {
	return s.plans.List(ctx, activeOnly)
}

func (s *PlanService) Create(ctx context.Context, input PlanInput) (*models.RechargePlan, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	plan := &models.RechargePlan{
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		PriceMinorUnits: input.PriceMinorUnits,
		DurationDays:    input.DurationDays,
		AIQuota:         input.AIQuota,
		HumanQuota:      input.HumanQuota,
		IsActive:        input.IsActive,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) Update(ctx context.Context, id int64, input PlanInput) (*models.RechargePlan, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	plan := &models.RechargePlan{
		ID:              id,
		Name:            strings.TrimSpace(input.Name),
		Description:     strings.TrimSpace(input.Description),
		PriceMinorUnits: input.PriceMinorUnits,
		DurationDays:    input.DurationDays,
		AIQuota:         input.AIQuota,
		HumanQuota:      input.HumanQuota,
		IsActive:        input.IsActive,
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return s.plans.GetByID(ctx, id)
}

func (s *PlanService) Delete(ctx context.Context, id int64) error {
	return s.plans.Delete(ctx, id)
}
