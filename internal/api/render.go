package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hiroyagi/yakumemo/internal/match"
	"github.com/hiroyagi/yakumemo/internal/models"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the shared error taxonomy onto HTTP statuses. Anything
// unmapped is a 500 and gets logged with its full chain.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrQuotaExhausted):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrAlreadyDecided),
		errors.Is(err, models.ErrAlreadyRated):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrProvider):
		http.Error(w, "translation provider unavailable", http.StatusBadGateway)
	case errors.Is(err, models.ErrUnavailable):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		s.log.Error("handler error", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type profileResponse struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	IsAdmin       bool       `json:"is_admin"`
	PlanType      string     `json:"plan_type"`
	AIQuota       int        `json:"ai_quota"`
	HumanQuota    int        `json:"human_quota"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func renderProfile(p *models.UserProfile) profileResponse {
	return profileResponse{
		ID:            p.ID,
		Email:         p.Email,
		IsAdmin:       p.IsAdmin,
		PlanType:      p.PlanType,
		AIQuota:       p.AIQuota,
		HumanQuota:    p.HumanQuota,
		PlanExpiresAt: p.PlanExpiresAt,
		CreatedAt:     p.CreatedAt,
	}
}

func renderProfiles(list []models.UserProfile) []profileResponse {
	out := make([]profileResponse, 0, len(list))
	for i := range list {
		out = append(out, renderProfile(&list[i]))
	}
	return out
}

type pairResponse struct {
	ID         int64     `json:"id"`
	SourceText string    `json:"japanese"`
	TargetText string    `json:"chinese"`
	CreatedAt  time.Time `json:"created_at"`
}

func renderPair(p *models.TranslationPair) pairResponse {
	return pairResponse{
		ID:         p.ID,
		SourceText: p.SourceText,
		TargetText: p.TargetText,
		CreatedAt:  p.CreatedAt,
	}
}

func renderPairs(list []models.TranslationPair) []pairResponse {
	out := make([]pairResponse, 0, len(list))
	for i := range list {
		out = append(out, renderPair(&list[i]))
	}
	return out
}

type matchResponse struct {
	Pair  pairResponse `json:"pair"`
	Score float64      `json:"score"`
}

func renderMatches(list []match.Match) []matchResponse {
	out := make([]matchResponse, 0, len(list))
	for _, m := range list {
		out = append(out, matchResponse{Pair: renderPair(&m.Pair), Score: m.Score})
	}
	return out
}

type requestResponse struct {
	ID           int64                  `json:"id"`
	UserID       int64                  `json:"user_id"`
	SourceText   string                 `json:"source_text"`
	Context      string                 `json:"context,omitempty"`
	Priority     models.RequestPriority `json:"priority"`
	Status       models.RequestStatus   `json:"status"`
	TranslatorID *int64                 `json:"translator_id,omitempty"`
	ResultText   string                 `json:"result_text,omitempty"`
	Rating       int                    `json:"rating,omitempty"`
	Feedback     string                 `json:"feedback,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func renderRequest(req *models.TranslationRequest) requestResponse {
	return requestResponse{
		ID:           req.ID,
		UserID:       req.UserID,
		SourceText:   req.SourceText,
		Context:      req.Context,
		Priority:     req.Priority,
		Status:       req.Status,
		TranslatorID: req.TranslatorID,
		ResultText:   req.ResultText,
		Rating:       req.Rating,
		Feedback:     req.Feedback,
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
	}
}

func renderRequests(list []models.TranslationRequest) []requestResponse {
	out := make([]requestResponse, 0, len(list))
	for i := range list {
		out = append(out, renderRequest(&list[i]))
	}
	return out
}

type rechargeResponse struct {
	ID              int64                 `json:"id"`
	UserID          int64                 `json:"user_id"`
	PlanName        string                `json:"plan_name"`
	AmountMinor     int                   `json:"amount_minor_units"`
	PlanAIQuota     int                   `json:"plan_ai_quota"`
	PlanHumanQuota  int                   `json:"plan_human_quota"`
	PlanDuration    int                   `json:"plan_duration_days"`
	PaymentProofRef string                `json:"payment_proof_ref"`
	Status          models.RechargeStatus `json:"status"`
	AdminID         *int64                `json:"admin_id,omitempty"`
	AdminNote       string                `json:"admin_note,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func renderRecharge(rec *models.RechargeRecord) rechargeResponse {
	return rechargeResponse{
		ID:              rec.ID,
		UserID:          rec.UserID,
		PlanName:        rec.PlanName,
		AmountMinor:     rec.AmountMinor,
		PlanAIQuota:     rec.PlanAIQuota,
		PlanHumanQuota:  rec.PlanHumanQuota,
		PlanDuration:    rec.PlanDuration,
		PaymentProofRef: rec.PaymentProofRef,
		Status:          rec.Status,
		AdminID:         rec.AdminID,
		AdminNote:       rec.AdminNote,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func renderRecharges(list []models.RechargeRecord) []rechargeResponse {
	out := make([]rechargeResponse, 0, len(list))
	for i := range list {
		out = append(out, renderRecharge(&list[i]))
	}
	return out
}

type planResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	PriceMinorUnits int    `json:"price_minor_units"`
	DurationDays    int    `json:"duration_days"`
	AIQuota         int    `json:"ai_quota"`
	HumanQuota      int    `json:"human_quota"`
	IsActive        bool   `json:"is_active"`
}

func renderPlan(p *models.RechargePlan) planResponse {
	return planResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		PriceMinorUnits: p.PriceMinorUnits,
		DurationDays:    p.DurationDays,
		AIQuota:         p.AIQuota,
		HumanQuota:      p.HumanQuota,
		IsActive:        p.IsActive,
	}
}

func renderPlans(list []models.RechargePlan) []planResponse {
	out := make([]planResponse, 0, len(list))
	for i := range list {
		out = append(out, renderPlan(&list[i]))
	}
	return out
}
