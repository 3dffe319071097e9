package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/config"
	"github.com/hiroyagi/yakumemo/internal/impex"
	"github.com/hiroyagi/yakumemo/internal/match"
	"github.com/hiroyagi/yakumemo/internal/models"
)

// PairStore is the persistence surface MemoryService needs.
type PairStore interface {
	Create(ctx context.Context, pair *models.TranslationPair) error
	Delete(ctx context.Context, userID, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]models.TranslationPair, error)
	ImportBatch(ctx context.Context, userID int64, pairs []models.TranslationPair) (int, error)
	ListAllWithOwner(ctx context.Context) ([]models.OwnedPair, error)
}

// MemoryService manages per-user translation memories and serves fuzzy
// lookups against them.
type MemoryService struct {
	cfg   config.Config
	pairs PairStore
	log   *slog.Logger
}

func NewMemoryService(cfg config.Config, pairs PairStore, log *slog.Logger) *MemoryService {
	return &MemoryService{cfg: cfg, pairs: pairs, log: log}
}

func (s *MemoryService) AddPair(ctx context.Context, userID int64, source, target string) (*models.TranslationPair, error) {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if source == "" || target == "" {
		return nil, fmt.Errorf("source and target text are required: %w", models.ErrValidation)
	}

	pair := &models.TranslationPair{
		UserID:     userID,
		SourceText: source,
		TargetText: target,
	}
	if err := s.pairs.Create(ctx, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *MemoryService) DeletePair(ctx context.Context, userID, id int64) error {
	return s.pairs.Delete(ctx, userID, id)
}

func (s *MemoryService) List(ctx context.Context, userID int64) ([]models.TranslationPair, error) {
	return s.pairs.ListByUser(ctx, userID)
}

// Search ranks the user's memory against text. A non-positive threshold
// falls back to the configured default.
func (s *MemoryService) Search(ctx context.Context, userID int64, text string, threshold float64) ([]match.Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("search text is required: %w", models.ErrValidation)
	}
	if threshold <= 0 {
		threshold = s.cfg.MatchThreshold
	}

	corpus, err := s.pairs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return match.Rank(text, corpus, threshold), nil
}

// Import parses an uploaded backup and stores every valid pair in one
// all-or-nothing batch. It returns the number of pairs imported.
func (s *MemoryService) Import(ctx context.Context, userID int64, data []byte) (int, error) {
	candidates := impex.Parse(data)
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no valid pairs in import data: %w", models.ErrValidation)
	}

	pairs := make([]models.TranslationPair, 0, len(candidates))
	for _, c := range candidates {
		pairs = append(pairs, models.TranslationPair{
			UserID:     userID,
			SourceText: c.Japanese,
			TargetText: c.Chinese,
		})
	}

	imported, err := s.pairs.ImportBatch(ctx, userID, pairs)
	if err != nil {
		return 0, err
	}
	s.log.Info("memory import", "user_id", userID, "pairs", imported)
	return imported, nil
}

func (s *MemoryService) Export(ctx context.Context, userID int64) ([]byte, error) {
	pairs, err := s.pairs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return impex.Export(pairs)
}

// ExportAll returns every user's memory joined with owner emails, for the
// admin backup download.
func (s *MemoryService) ExportAll(ctx context.Context) ([]models.OwnedPair, error) {
	return s.pairs.ListAllWithOwner(ctx)
}
