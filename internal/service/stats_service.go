package service

import (
	"context"

	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/repository"
)

// Stats is the admin dashboard overview.
type Stats struct {
	Users     int                           `json:"users"`
	Pairs     int                           `json:"pairs"`
	PairOwner int                           `json:"pair_owners"`
	Requests  map[models.RequestStatus]int  `json:"requests"`
	Recharges map[models.RechargeStatus]int `json:"recharges"`
}

// StatsService aggregates counters across the stores for the admin
// dashboard.
type StatsService struct {
	profiles  *repository.ProfileRepository
	pairs     *repository.PairRepository
	requests  *repository.RequestRepository
	recharges *repository.RechargeRepository
}

func NewStatsService(
	profiles *repository.ProfileRepository,
	pairs *repository.PairRepository,
	requests *repository.RequestRepository,
	recharges *repository.RechargeRepository,
) *StatsService {
	return &StatsService{profiles: profiles, pairs: pairs, requests: requests, recharges: recharges}
}

func (s *StatsService) Overview(ctx context.Context) (*Stats, error) {
	users, err := s.profiles.Count(ctx)
	if err != nil {
		return nil, err
	}
	pairs, err := s.pairs.Count(ctx)
	if err != nil {
		return nil, err
	}
	owners, err := s.pairs.CountOwners(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	recharges, err := s.recharges.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Users:     users,
		Pairs:     pairs,
		PairOwner: owners,
		Requests:  requests,
		Recharges: recharges,
	}, nil
}
