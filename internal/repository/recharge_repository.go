package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hiroyagi/yakumemo/internal/models"
)

type RechargeRepository struct {
	db *sql.DB
}

func NewRechargeRepository(db *sql.DB) *RechargeRepository {
	return &RechargeRepository{db: db}
}

const rechargeColumns = `
id, user_id, plan_name, amount_minor_units, plan_ai_quota, plan_human_quota,
plan_duration_days, payment_proof_ref, status, admin_id,
COALESCE(admin_note, ''), created_at, updated_at`

func scanRecharge(row interface{ Scan(...any) error }) (*models.RechargeRecord, error) {
	var rec models.RechargeRecord
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PlanName,
		&rec.AmountMinor,
		&rec.PlanAIQuota,
		&rec.PlanHumanQuota,
		&rec.PlanDuration,
		&rec.PaymentProofRef,
		&rec.Status,
		&rec.AdminID,
		&rec.AdminNote,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RechargeRepository) Create(ctx context.Context, rec *models.RechargeRecord) error {
	const query = `
INSERT INTO recharge_records
    (user_id, plan_name, amount_minor_units, plan_ai_quota, plan_human_quota,
     plan_duration_days, payment_proof_ref, status)
VALUES (?, ?, ?, ?, ?, ?, ?, 'pending')`
	res, err := r.db.ExecContext(ctx, query,
		rec.UserID, rec.PlanName, rec.AmountMinor, rec.PlanAIQuota,
		rec.PlanHumanQuota, rec.PlanDuration, rec.PaymentProofRef)
	if err != nil {
		return wrapStore("insert recharge", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recharge last insert id: %w", err)
	}
	rec.ID = id
	rec.Status = models.RechargePending
	return nil
}

func (r *RechargeRepository) GetByID(ctx context.Context, id int64) (*models.RechargeRecord, error) {
	query := `SELECT ` + rechargeColumns + ` FROM recharge_records WHERE id = ?`
	rec, err := scanRecharge(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recharge %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("get recharge", err)
	}
	return rec, nil
}

func (r *RechargeRepository) ListByUser(ctx context.Context, userID int64) ([]models.RechargeRecord, error) {
	query := `SELECT ` + rechargeColumns + `
FROM recharge_records
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

// List returns records for the admin review screen, oldest pending work
// first. An empty status returns everything.
func (r *RechargeRepository) List(ctx context.Context, status models.RechargeStatus) ([]models.RechargeRecord, error) {
	if status == "" {
		query := `SELECT ` + rechargeColumns + `
FROM recharge_records
ORDER BY created_at ASC, id ASC`
		return r.list(ctx, query)
	}
	query := `SELECT ` + rechargeColumns + `
FROM recharge_records
WHERE status = ?
ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, status)
}

func (r *RechargeRepository) list(ctx context.Context, query string, args ...any) ([]models.RechargeRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore("list recharges", err)
	}
	defer rows.Close()

	var records []models.RechargeRecord
	for rows.Next() {
		rec, err := scanRecharge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recharge: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Decide settles a pending record as approved or rejected. The status write
// and the quota credit happen in one transaction with the record row locked,
// so a record is decided at most once and an approval credits the user
// exactly once, even if two admins submit the same decision.
func (r *RechargeRepository) Decide(ctx context.Context, id, adminID int64, approve bool, note string) (*models.RechargeRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapStore("begin decide", err)
	}
	defer tx.Rollback()

	const lockQuery = `
SELECT user_id, plan_ai_quota, plan_human_quota, plan_duration_days, plan_name, status
FROM recharge_records
WHERE id = ?
FOR UPDATE`
	var (
		userID       int64
		aiQuota      int
		humanQuota   int
		durationDays int
		planName     string
		status       models.RechargeStatus
	)
	err = tx.QueryRowContext(ctx, lockQuery, id).Scan(
		&userID, &aiQuota, &humanQuota, &durationDays, &planName, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recharge %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("lock recharge", err)
	}
	if status != models.RechargePending {
		return nil, fmt.Errorf("recharge %d already %s: %w", id, status, models.ErrAlreadyDecided)
	}

	newStatus := models.RechargeRejected
	if approve {
		newStatus = models.RechargeApproved
	}
	const updateQuery = `
UPDATE recharge_records
SET status = ?, admin_id = ?, admin_note = NULLIF(?, '')
WHERE id = ? AND status = 'pending'`
	res, err := tx.ExecContext(ctx, updateQuery, newStatus, adminID, note, id)
	if err != nil {
		return nil, wrapStore("decide recharge", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("decide rows affected: %w", err)
	}
	if affected != 1 {
		return nil, fmt.Errorf("recharge %d: %w", id, models.ErrAlreadyDecided)
	}

	if approve {
		// Expiry extends from the current expiry when the plan is still
		// live, and from now when it has already lapsed.
		const creditQuery = `
UPDATE user_profiles
SET ai_quota = ai_quota + ?,
    human_quota = human_quota + ?,
    plan_type = ?,
    plan_expires_at = DATE_ADD(
        IF(plan_expires_at IS NULL OR plan_expires_at < NOW(), NOW(), plan_expires_at),
        INTERVAL ? DAY)
WHERE id = ?`
		res, err := tx.ExecContext(ctx, creditQuery, aiQuota, humanQuota, planName, durationDays, userID)
		if err != nil {
			return nil, wrapStore("credit quota", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("credit rows affected: %w", err)
		}
		if affected != 1 {
			return nil, fmt.Errorf("credit user %d for recharge %d: %w", userID, id, models.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapStore("commit decide", err)
	}
	return r.GetByID(ctx, id)
}

func (r *RechargeRepository) CountByStatus(ctx context.Context) (map[models.RechargeStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM recharge_records GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStore("count recharges", err)
	}
	defer rows.Close()

	counts := make(map[models.RechargeStatus]int)
	for rows.Next() {
		var status models.RechargeStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan recharge count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
