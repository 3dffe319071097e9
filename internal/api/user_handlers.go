package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/service"
)

const paymentQRCodeKey = "payment_qrcode"

// maxImportSize caps uploaded backups and proof images at 10 MiB.
const maxImportSize = 10 << 20

func (s *Server) handleEnsureProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	profile, err := s.profiles.Ensure(r.Context(), req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderProfile(profile))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.Get(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderProfile(profile))
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	result, err := s.translate.Translate(r.Context(), userID(r), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"translation": result})
}

func (s *Server) handleListPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.memory.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderPairs(pairs))
}

func (s *Server) handleCreatePair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Japanese string `json:"japanese"`
		Chinese  string `json:"chinese"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	pair, err := s.memory.AddPair(r.Context(), userID(r), req.Japanese, req.Chinese)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, renderPair(pair))
}

func (s *Server) handleDeletePair(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.memory.DeletePair(r.Context(), userID(r), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchPairs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string  `json:"text"`
		Threshold float64 `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	matches, err := s.memory.Search(r.Context(), userID(r), req.Text, req.Threshold)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderMatches(matches))
}

func (s *Server) handleImportPairs(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	imported, err := s.memory.Import(r.Context(), userID(r), data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

func (s *Server) handleExportPairs(w http.ResponseWriter, r *http.Request) {
	data, err := s.memory.Export(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="translation-memory.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleListMyRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.requests.ListMine(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRequests(requests))
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceText string                 `json:"source_text"`
		Context    string                 `json:"context"`
		Priority   models.RequestPriority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	created, err := s.requests.Create(r.Context(), userID(r), service.CreateRequestInput{
		SourceText: req.SourceText,
		Context:    req.Context,
		Priority:   req.Priority,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, renderRequest(created))
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	req, err := s.requests.Cancel(r.Context(), id, userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRequest(req))
}

func (s *Server) handleRateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	rated, err := s.requests.Rate(r.Context(), id, userID(r), req.Rating, req.Feedback)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRequest(rated))
}

func (s *Server) handleListMyRecharges(w http.ResponseWriter, r *http.Request) {
	records, err := s.recharges.ListMine(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderRecharges(records))
}

func (s *Server) handleSubmitRecharge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanID   int64  `json:"plan_id"`
		ProofRef string `json:"payment_proof_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	rec, err := s.recharges.Submit(r.Context(), userID(r), req.PlanID, req.ProofRef)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, renderRecharge(rec))
}

// uploadFromForm stores a multipart image in object storage and returns its
// public URL. It writes the error response itself when the upload fails.
func (s *Server) uploadFromForm(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	if s.uploader == nil {
		s.writeError(w, fmt.Errorf("image upload not configured: %w", models.ErrUnavailable))
		return "", false
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return "", false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		http.Error(w, field+" file is required", http.StatusBadRequest)
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		http.Error(w, "read "+field+" file", http.StatusBadRequest)
		return "", false
	}

	url, err := s.uploader.Upload(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, err)
		return "", false
	}
	return url, true
}

// handleUploadProof stores a payment screenshot and returns the reference
// to put on a recharge submission. Without object storage configured,
// clients must host the proof themselves.
func (s *Server) handleUploadProof(w http.ResponseWriter, r *http.Request) {
	url, ok := s.uploadFromForm(w, r, "proof")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"payment_proof_ref": url})
}

func (s *Server) handleListActivePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context(), true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderPlans(plans))
}

func (s *Server) handleGetPaymentQRCode(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.Get(r.Context(), paymentQRCodeKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"qrcode": cfg.Value})
}
