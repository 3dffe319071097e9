package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/config"
	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/repository"
)

// ProfileService manages user quota profiles.
type ProfileService struct {
	cfg      config.Config
	profiles *repository.ProfileRepository
	log      *slog.Logger
}

func NewProfileService(cfg config.Config, profiles *repository.ProfileRepository, log *slog.Logger) *ProfileService {
	return &ProfileService{cfg: cfg, profiles: profiles, log: log}
}

// Ensure returns the profile for email, creating a free-tier profile with
// the configured starting quotas on first touch.
func (s *ProfileService) Ensure(ctx context.Context, email string) (*models.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email %q: %w", email, models.ErrValidation)
	}
	return s.profiles.Ensure(ctx, email, s.cfg.FreeAIQuota, s.cfg.FreeHumanQuota)
}

func (s *ProfileService) Get(ctx context.Context, id int64) (*models.UserProfile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *ProfileService) List(ctx context.Context) ([]models.UserProfile, error) {
	return s.profiles.List(ctx)
}

func (s *ProfileService) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	if err := s.profiles.SetAdmin(ctx, id, isAdmin); err != nil {
		return err
	}
	s.log.Info("admin flag changed", "user_id", id, "is_admin", isAdmin)
	return nil
}
