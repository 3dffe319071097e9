package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/models"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `
id, email, is_admin, plan_type, ai_quota, human_quota,
plan_expires_at, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.IsAdmin,
		&p.PlanType,
		&p.AIQuota,
		&p.HumanQuota,
		&p.PlanExpiresAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = ?`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("get profile", err)
	}
	return p, nil
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE email = ?`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %q: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("find profile", err)
	}
	return p, nil
}

// Ensure returns the profile for email, creating a fresh free-tier profile
// with the given starting quotas on first touch. A concurrent create of the
// same email is resolved by re-reading after the duplicate-key failure.
func (r *ProfileRepository) Ensure(ctx context.Context, email string, aiQuota, humanQuota int) (*models.UserProfile, error) {
	p, err := r.FindByEmail(ctx, email)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	const query = `
INSERT INTO user_profiles (email, plan_type, ai_quota, human_quota)
VALUES (?, 'free', ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, email, aiQuota, humanQuota); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return r.FindByEmail(ctx, email)
		}
		return nil, wrapStore("create profile", err)
	}
	return r.FindByEmail(ctx, email)
}

func (r *ProfileRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStore("list profiles", err)
	}
	defer rows.Close()

	var profiles []models.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM user_profiles`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, wrapStore("count profiles", err)
	}
	return count, nil
}

func (r *ProfileRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	const query = `UPDATE user_profiles SET is_admin = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, isAdmin, id)
	if err != nil {
		return wrapStore("set admin", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set admin rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// ConsumeAIQuota debits one AI-translation credit. The quota predicate makes
// concurrent debits safe: whoever loses the conditional write gets
// ErrQuotaExhausted instead of driving the balance negative.
func (r *ProfileRepository) ConsumeAIQuota(ctx context.Context, userID int64) error {
	return r.consumeQuota(ctx, userID, "ai_quota")
}

// ConsumeHumanQuota debits one human-translation credit.
func (r *ProfileRepository) ConsumeHumanQuota(ctx context.Context, userID int64) error {
	return r.consumeQuota(ctx, userID, "human_quota")
}

func (r *ProfileRepository) consumeQuota(ctx context.Context, userID int64, column string) error {
	query := fmt.Sprintf(
		`UPDATE user_profiles SET %s = %s - 1 WHERE id = ? AND %s > 0`,
		column, column, column,
	)
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return wrapStore("consume quota", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume quota rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, userID); err != nil {
		return err
	}
	return fmt.Errorf("user %d %s: %w", userID, column, models.ErrQuotaExhausted)
}
