package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/translate"
)

// TranslateService serves machine translations, debiting one AI credit per
// call. The debit happens before the provider call so a user can never run
// the balance negative with concurrent requests.
type TranslateService struct {
	provider translate.Provider
	quotas   QuotaStore
	log      *slog.Logger
}

func NewTranslateService(provider translate.Provider, quotas QuotaStore, log *slog.Logger) *TranslateService {
	return &TranslateService{provider: provider, quotas: quotas, log: log}
}

func (s *TranslateService) Translate(ctx context.Context, userID int64, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("text is required: %w", models.ErrValidation)
	}

	if err := s.quotas.ConsumeAIQuota(ctx, userID); err != nil {
		return "", err
	}

	result, err := s.provider.Translate(ctx, text)
	if err != nil {
		s.log.Error("machine translation failed", "user_id", userID, "error", err)
		return "", err
	}
	return result, nil
}
