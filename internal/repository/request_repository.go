package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hiroyagi/yakumemo/internal/models"
)

type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `
id, user_id, source_text, COALESCE(context, ''), priority, status,
translator_id, COALESCE(result_text, ''), COALESCE(rating, 0),
COALESCE(feedback, ''), created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (*models.TranslationRequest, error) {
	var req models.TranslationRequest
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.SourceText,
		&req.Context,
		&req.Priority,
		&req.Status,
		&req.TranslatorID,
		&req.ResultText,
		&req.Rating,
		&req.Feedback,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) Create(ctx context.Context, req *models.TranslationRequest) error {
	const query = `
INSERT INTO translation_requests (user_id, source_text, context, priority, status)
VALUES (?, ?, NULLIF(?, ''), ?, 'pending')`
	res, err := r.db.ExecContext(ctx, query, req.UserID, req.SourceText, req.Context, req.Priority)
	if err != nil {
		return wrapStore("insert request", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("request last insert id: %w", err)
	}
	req.ID = id
	req.Status = models.RequestPending
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.TranslationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM translation_requests WHERE id = ?`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, wrapStore("get request", err)
	}
	return req, nil
}

func (r *RequestRepository) ListByUser(ctx context.Context, userID int64) ([]models.TranslationRequest, error) {
	query := `SELECT ` + requestColumns + `
FROM translation_requests
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

// ListQueue returns requests for the translator queue. Urgent requests come
// first, then oldest first within the same priority. An empty status returns
// every request.
func (r *RequestRepository) ListQueue(ctx context.Context, status models.RequestStatus) ([]models.TranslationRequest, error) {
	if status == "" {
		query := `SELECT ` + requestColumns + `
FROM translation_requests
ORDER BY priority DESC, created_at ASC, id ASC`
		return r.list(ctx, query)
	}
	query := `SELECT ` + requestColumns + `
FROM translation_requests
WHERE status = ?
ORDER BY priority DESC, created_at ASC, id ASC`
	return r.list(ctx, query, status)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...any) ([]models.TranslationRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore("list requests", err)
	}
	defer rows.Close()

	var requests []models.TranslationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// Claim moves a pending request to processing on behalf of translatorID.
// The status predicate makes concurrent claims race-safe: exactly one
// translator wins, the rest get ErrConflict.
func (r *RequestRepository) Claim(ctx context.Context, id, translatorID int64) (*models.TranslationRequest, error) {
	const query = `
UPDATE translation_requests
SET status = 'processing', translator_id = ?
WHERE id = ? AND status = 'pending'`
	return r.transition(ctx, "claim", id, query, translatorID, id)
}

// Complete records the translation result. Only the translator who claimed
// the request may complete it, and only while it is still processing.
func (r *RequestRepository) Complete(ctx context.Context, id, translatorID int64, result string) (*models.TranslationRequest, error) {
	const query = `
UPDATE translation_requests
SET status = 'completed', result_text = ?
WHERE id = ? AND status = 'processing' AND translator_id = ?`
	return r.transition(ctx, "complete", id, query, result, id, translatorID)
}

// Cancel is the owner's path out of the queue, valid until the result has
// been submitted.
func (r *RequestRepository) Cancel(ctx context.Context, id, userID int64) (*models.TranslationRequest, error) {
	const query = `
UPDATE translation_requests
SET status = 'cancelled'
WHERE id = ? AND user_id = ? AND status IN ('pending', 'processing')`
	return r.transition(ctx, "cancel", id, query, id, userID)
}

func (r *RequestRepository) transition(ctx context.Context, op string, id int64, query string, args ...any) (*models.TranslationRequest, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStore(op+" request", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s request rows affected: %w", op, err)
	}
	if affected == 1 {
		return r.GetByID(ctx, id)
	}
	// Lost the conditional write. Re-read to tell a missing request apart
	// from one that is no longer in the expected state.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s request %d: %w", op, id, models.ErrConflict)
}

// Rate records the owner's one-time rating of a completed translation.
func (r *RequestRepository) Rate(ctx context.Context, id, userID int64, rating int, feedback string) (*models.TranslationRequest, error) {
	const query = `
UPDATE translation_requests
SET rating = ?, feedback = NULLIF(?, '')
WHERE id = ? AND user_id = ? AND status = 'completed' AND rating IS NULL`
	res, err := r.db.ExecContext(ctx, query, rating, feedback, id, userID)
	if err != nil {
		return nil, wrapStore("rate request", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rate request rows affected: %w", err)
	}
	if affected == 1 {
		return r.GetByID(ctx, id)
	}

	req, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case req.UserID != userID:
		return nil, fmt.Errorf("rate request %d: %w", id, models.ErrNotFound)
	case req.Rating != 0:
		return nil, fmt.Errorf("rate request %d: %w", id, models.ErrAlreadyRated)
	default:
		return nil, fmt.Errorf("rate request %d in status %s: %w", id, req.Status, models.ErrConflict)
	}
}

func (r *RequestRepository) CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM translation_requests GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStore("count requests", err)
	}
	defer rows.Close()

	counts := make(map[models.RequestStatus]int)
	for rows.Next() {
		var status models.RequestStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan request count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
