package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hiroyagi/yakumemo/internal/models"
)

type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `
id, name, COALESCE(description, ''), price_minor_units, duration_days,
ai_quota, human_quota, is_active, created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (*models.RechargePlan, error) {
	var p models.RechargePlan
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceMinorUnits,
		&p.DurationDays,
		&p.AIQuota,
		&p.HumanQuota,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*models.RechargePlan, error) {
	query := `SELECT ` + planColumns + ` FROM recharge_plans WHERE id = ?`
	p, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("get plan", err)
	}
	return p, nil
}

// List returns plans cheapest first. With activeOnly set it hides retired
// plans from the purchase screen.
func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]models.RechargePlan, error) {
	query := `SELECT ` + planColumns + ` FROM recharge_plans`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY price_minor_units ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStore("list plans", err)
	}
	defer rows.Close()

	var plans []models.RechargePlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *PlanRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM recharge_plans`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, wrapStore("count plans", err)
	}
	return count, nil
}

func (r *PlanRepository) Create(ctx context.Context, plan *models.RechargePlan) error {
	const query = `
INSERT INTO recharge_plans
    (name, description, price_minor_units, duration_days, ai_quota, human_quota, is_active)
VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		plan.Name, plan.Description, plan.PriceMinorUnits, plan.DurationDays,
		plan.AIQuota, plan.HumanQuota, plan.IsActive)
	if err != nil {
		return wrapStore("insert plan", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("plan last insert id: %w", err)
	}
	plan.ID = id
	return nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *models.RechargePlan) error {
	const query = `
UPDATE recharge_plans
SET name = ?, description = NULLIF(?, ''), price_minor_units = ?,
    duration_days = ?, ai_quota = ?, human_quota = ?, is_active = ?
WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		plan.Name, plan.Description, plan.PriceMinorUnits, plan.DurationDays,
		plan.AIQuota, plan.HumanQuota, plan.IsActive, plan.ID)
	if err != nil {
		return wrapStore("update plan", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update plan rows affected: %w", err)
	}
	// RowsAffected is 0 both for a missing plan and for a no-op update, so
	// verify existence instead of trusting the count.
	if _, err := r.GetByID(ctx, plan.ID); err != nil {
		return err
	}
	return nil
}

func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM recharge_plans WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return wrapStore("delete plan", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete plan rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("plan %d: %w", id, models.ErrNotFound)
	}
	return nil
}
