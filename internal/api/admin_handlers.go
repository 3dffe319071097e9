package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/service"
)

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	status := models.RequestStatus(r.URL.Query().Get("status"))
	requests, err := s.requests.Queue(r.Context(), status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRequests(requests))
}

func (s *Server) handleClaimRequest(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	translatorID, err := adminID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req, err := s.requests.Claim(r.Context(), id, translatorID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRequest(req))
}

func (s *Server) handleSubmitTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	translatorID, err := adminID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		ResultText string `json:"result_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	completed, err := s.requests.SubmitTranslation(r.Context(), id, translatorID, req.ResultText)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRequest(completed))
}

func (s *Server) handleListRecharges(w http.ResponseWriter, r *http.Request) {
	status := models.RechargeStatus(r.URL.Query().Get("status"))
	records, err := s.recharges.List(r.Context(), status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRecharges(records))
}

func (s *Server) handleDecideRecharge(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	reviewerID, err := adminID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		Approve bool   `json:"approve"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	rec, err := s.recharges.Decide(r.Context(), id, reviewerID, req.Approve, req.Note)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRecharge(rec))
}

type planRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceMinorUnits int    `json:"price_minor_units"`
	DurationDays    int    `json:"duration_days"`
	AIQuota         int    `json:"ai_quota"`
	HumanQuota      int    `json:"human_quota"`
	IsActive        *bool  `json:"is_active"`
}

func (p planRequest) input() service.PlanInput {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return service.PlanInput{
		Name:            p.Name,
		Description:     p.Description,
		PriceMinorUnits: p.PriceMinorUnits,
		DurationDays:    p.DurationDays,
		AIQuota:         p.AIQuota,
		HumanQuota:      p.HumanQuota,
		IsActive:        active,
	}
}

func (s *Server) handleListAllPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context(), false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderPlans(plans))
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	plan, err := s.plans.Create(r.Context(), req.input())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, renderPlan(plan))
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	plan, err := s.plans.Update(r.Context(), id, req.input())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderPlan(plan))
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.plans.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderProfiles(profiles))
}

func (s *Server) handleSetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.profiles.SetAdmin(r.Context(), id, req.IsAdmin); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Overview(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.memory.ExportAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="translation-memory-all.json"`)
	s.writeJSON(w, http.StatusOK, pairs)
}

func (s *Server) handleSetPaymentQRCode(w http.ResponseWriter, r *http.Request) {
	reviewerID, err := adminID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		QRCode string `json:"qrcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.QRCode == "" {
		http.Error(w, "qrcode is required", http.StatusBadRequest)
		return
	}

	if err := s.settings.Set(r.Context(), paymentQRCodeKey, req.QRCode, reviewerID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadQRCodeImage stores the payment QR image and returns its URL,
// ready to be set as the payment-qrcode config value.
func (s *Server) handleUploadQRCodeImage(w http.ResponseWriter, r *http.Request) {
	url, ok := s.uploadFromForm(w, r, "image")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleEvents streams change notifications as server-sent events so the
// admin dashboard can refresh its queues without polling.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range s.hub.Subscribe(r.Context()) {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}
