package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hiroyagi/yakumemo/internal/models"
)

type PairRepository struct {
	db *sql.DB
}

func NewPairRepository(db *sql.DB) *PairRepository {
	return &PairRepository{db: db}
}

func (r *PairRepository) Create(ctx context.Context, pair *models.TranslationPair) error {
	const query = `
INSERT INTO translation_pairs (user_id, source_text, target_text)
VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, pair.UserID, pair.SourceText, pair.TargetText)
	if err != nil {
		return wrapStore("insert pair", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("pair last insert id: %w", err)
	}
	pair.ID = id
	return nil
}

func (r *PairRepository) Delete(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM translation_pairs WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return wrapStore("delete pair", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pair rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete pair %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// ListByUser returns the user's corpus in insertion order, which is the tie
// order fuzzy matching preserves.
func (r *PairRepository) ListByUser(ctx context.Context, userID int64) ([]models.TranslationPair, error) {
	const query = `
SELECT id, user_id, source_text, target_text, created_at
FROM translation_pairs
WHERE user_id = ?
ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrapStore("list pairs", err)
	}
	defer rows.Close()

	var pairs []models.TranslationPair
	for rows.Next() {
		var p models.TranslationPair
		if err := rows.Scan(&p.ID, &p.UserID, &p.SourceText, &p.TargetText, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// ImportBatch inserts all pairs inside one transaction. Either the whole
// batch lands or none of it does; a row-count mismatch aborts the import
// instead of leaving a silently truncated corpus.
func (r *PairRepository) ImportBatch(ctx context.Context, userID int64, pairs []models.TranslationPair) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapStore("begin import", err)
	}
	defer tx.Rollback()

	const query = `
INSERT INTO translation_pairs (user_id, source_text, target_text)
VALUES (?, ?, ?)`
	inserted := 0
	for _, p := range pairs {
		res, err := tx.ExecContext(ctx, query, userID, p.SourceText, p.TargetText)
		if err != nil {
			return 0, wrapStore("import pair", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("import rows affected: %w", err)
		}
		inserted += int(affected)
	}
	if inserted != len(pairs) {
		return 0, fmt.Errorf("import wrote %d of %d pairs: %w", inserted, len(pairs), models.ErrConflict)
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapStore("commit import", err)
	}
	return inserted, nil
}

func (r *PairRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM translation_pairs`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, wrapStore("count pairs", err)
	}
	return count, nil
}

func (r *PairRepository) CountOwners(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(DISTINCT user_id) FROM translation_pairs`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, wrapStore("count pair owners", err)
	}
	return count, nil
}

// ListAllWithOwner returns every stored pair joined with its owner's email,
// for the admin-wide export.
func (r *PairRepository) ListAllWithOwner(ctx context.Context) ([]models.OwnedPair, error) {
	const query = `
SELECT u.email, p.source_text, p.target_text, p.created_at
FROM translation_pairs p
JOIN user_profiles u ON u.id = p.user_id
ORDER BY p.id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStore("list all pairs", err)
	}
	defer rows.Close()

	var out []models.OwnedPair
	for rows.Next() {
		var p models.OwnedPair
		if err := rows.Scan(&p.Email, &p.SourceText, &p.TargetText, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan owned pair: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
