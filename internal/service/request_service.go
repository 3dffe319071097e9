package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/notify"
)

// RequestStore is the persistence surface for the human-translation queue.
// Conditional transitions return models.ErrConflict when the expected state
// has already moved, and models.ErrNotFound for a missing request.
type RequestStore interface {
	Create(ctx context.Context, req *models.TranslationRequest) error
	GetByID(ctx context.Context, id int64) (*models.TranslationRequest, error)
	ListByUser(ctx context.Context, userID int64) ([]models.TranslationRequest, error)
	ListQueue(ctx context.Context, status models.RequestStatus) ([]models.TranslationRequest, error)
	Claim(ctx context.Context, id, translatorID int64) (*models.TranslationRequest, error)
	Complete(ctx context.Context, id, translatorID int64, result string) (*models.TranslationRequest, error)
	Cancel(ctx context.Context, id, userID int64) (*models.TranslationRequest, error)
	Rate(ctx context.Context, id, userID int64, rating int, feedback string) (*models.TranslationRequest, error)
}

// QuotaStore debits per-user credits with a balance predicate; a debit that
// would go negative fails with models.ErrQuotaExhausted.
type QuotaStore interface {
	ConsumeAIQuota(ctx context.Context, userID int64) error
	ConsumeHumanQuota(ctx context.Context, userID int64) error
}

// RequestService runs the human-translation request workflow.
type RequestService struct {
	requests RequestStore
	quotas   QuotaStore
	hub      *notify.Hub
	log      *slog.Logger
}

func NewRequestService(requests RequestStore, quotas QuotaStore, hub *notify.Hub, log *slog.Logger) *RequestService {
	return &RequestService{requests: requests, quotas: quotas, hub: hub, log: log}
}

type CreateRequestInput struct {
	SourceText string
	Context    string
	Priority   models.RequestPriority
}

// Create debits one human-translation credit and enqueues the request as
// pending.
func (s *RequestService) Create(ctx context.Context, userID int64, input CreateRequestInput) (*models.TranslationRequest, error) {
	input.SourceText = strings.TrimSpace(input.SourceText)
	if input.SourceText == "" {
		return nil, fmt.Errorf("source text is required: %w", models.ErrValidation)
	}
	if input.Priority == "" {
		input.Priority = models.PriorityNormal
	}
	if input.Priority != models.PriorityNormal && input.Priority != models.PriorityUrgent {
		return nil, fmt.Errorf("unknown priority %q: %w", input.Priority, models.ErrValidation)
	}

	if err := s.quotas.ConsumeHumanQuota(ctx, userID); err != nil {
		return nil, err
	}

	req := &models.TranslationRequest{
		UserID:     userID,
		SourceText: input.SourceText,
		Context:    strings.TrimSpace(input.Context),
		Priority:   input.Priority,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info("translation request created",
		"request_id", req.ID, "user_id", userID, "priority", req.Priority)
	s.hub.Publish(notify.Event{Table: "translation_requests", Action: "created", ID: req.ID})
	return req, nil
}

func (s *RequestService) Get(ctx context.Context, id int64) (*models.TranslationRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *RequestService) ListMine(ctx context.Context, userID int64) ([]models.TranslationRequest, error) {
	return s.requests.ListByUser(ctx, userID)
}

// Queue lists requests for translators, urgent first, oldest first within
// the same priority.
func (s *RequestService) Queue(ctx context.Context, status models.RequestStatus) ([]models.TranslationRequest, error) {
	switch status {
	case "", models.RequestPending, models.RequestProcessing, models.RequestCompleted, models.RequestCancelled:
	default:
		return nil, fmt.Errorf("unknown status %q: %w", status, models.ErrValidation)
	}
	return s.requests.ListQueue(ctx, status)
}

// Claim assigns a pending request to the calling translator. When several
// translators race for the same request exactly one wins.
func (s *RequestService) Claim(ctx context.Context, id, translatorID int64) (*models.TranslationRequest, error) {
	req, err := s.requests.Claim(ctx, id, translatorID)
	if err != nil {
		return nil, err
	}
	s.log.Info("translation request claimed", "request_id", id, "translator_id", translatorID)
	s.hub.Publish(notify.Event{Table: "translation_requests", Action: "updated", ID: id})
	return req, nil
}

// SubmitTranslation completes a processing request with the translator's
// result. Only the claiming translator may submit.
func (s *RequestService) SubmitTranslation(ctx context.Context, id, translatorID int64, result string) (*models.TranslationRequest, error) {
	result = strings.TrimSpace(result)
	if result == "" {
		return nil, fmt.Errorf("result text is required: %w", models.ErrValidation)
	}

	req, err := s.requests.Complete(ctx, id, translatorID, result)
	if err != nil {
		return nil, err
	}
	s.log.Info("translation submitted", "request_id", id, "translator_id", translatorID)
	s.hub.Publish(notify.Event{Table: "translation_requests", Action: "updated", ID: id})
	return req, nil
}

// Cancel withdraws the owner's request while it is still pending or
// processing.
func (s *RequestService) Cancel(ctx context.Context, id, userID int64) (*models.TranslationRequest, error) {
	req, err := s.requests.Cancel(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.log.Info("translation request cancelled", "request_id", id, "user_id", userID)
	s.hub.Publish(notify.Event{Table: "translation_requests", Action: "updated", ID: id})
	return req, nil
}

// Rate records the owner's one-time rating of a completed translation.
func (s *RequestService) Rate(ctx context.Context, id, userID int64, rating int, feedback string) (*models.TranslationRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", models.ErrValidation)
	}
	req, err := s.requests.Rate(ctx, id, userID, rating, strings.TrimSpace(feedback))
	if err != nil {
		return nil, err
	}
	s.hub.Publish(notify.Event{Table: "translation_requests", Action: "updated", ID: id})
	return req, nil
}
