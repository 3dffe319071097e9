package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/notify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHub() *notify.Hub {
	return notify.NewHub(testLogger())
}

// fakeQuotaStore mirrors the conditional-debit contract of the profile
// repository: a debit that would go negative fails with ErrQuotaExhausted.
type fakeQuotaStore struct {
	mu    sync.Mutex
	ai    map[int64]int
	human map[int64]int
}

func newFakeQuotaStore() *fakeQuotaStore {
	return &fakeQuotaStore{ai: make(map[int64]int), human: make(map[int64]int)}
}

func (f *fakeQuotaStore) ConsumeAIQuota(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ai[userID] <= 0 {
		return fmt.Errorf("user %d ai quota: %w", userID, models.ErrQuotaExhausted)
	}
	f.ai[userID]--
	return nil
}

func (f *fakeQuotaStore) ConsumeHumanQuota(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.human[userID] <= 0 {
		return fmt.Errorf("user %d human quota: %w", userID, models.ErrQuotaExhausted)
	}
	f.human[userID]--
	return nil
}

// fakeRequestStore reproduces the request repository's conditional
// transitions, including how lost writes map onto the error taxonomy.
type fakeRequestStore struct {
	mu   sync.Mutex
	next int64
	byID map[int64]*models.TranslationRequest
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{byID: make(map[int64]*models.TranslationRequest)}
}

func (f *fakeRequestStore) Create(_ context.Context, req *models.TranslationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	req.ID = f.next
	req.Status = models.RequestPending
	clone := *req
	f.byID[req.ID] = &clone
	return nil
}

func (f *fakeRequestStore) GetByID(_ context.Context, id int64) (*models.TranslationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestStore) ListByUser(_ context.Context, userID int64) ([]models.TranslationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TranslationRequest
	for _, req := range f.byID {
		if req.UserID == userID {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRequestStore) ListQueue(_ context.Context, status models.RequestStatus) ([]models.TranslationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TranslationRequest
	for _, req := range f.byID {
		if status == "" || req.Status == status {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority == models.PriorityUrgent
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeRequestStore) Claim(_ context.Context, id, translatorID int64) (*models.TranslationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("claim request %d: %w", id, models.ErrConflict)
	}
	req.Status = models.RequestProcessing
	req.TranslatorID = &translatorID
	clone := *req
	return &clone, nil
}

func (f *fakeRequestStore) Complete(_ context.Context, id, translatorID int64, result string) (*models.TranslationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	if req.Status != models.RequestProcessing || req.TranslatorID == nil || *req.TranslatorID != translatorID {
		return nil, fmt.Errorf("complete request %d: %w", id, models.ErrConflict)
	}
	req.Status = models.RequestCompleted
	req.ResultText = result
	clone := *req
	return &clone, nil
}

func (f *fakeRequestStore) Cancel(_ context.Context, id, userID int64) (*models.TranslationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	if req.UserID != userID || (req.Status != models.RequestPending && req.Status != models.RequestProcessing) {
		return nil, fmt.Errorf("cancel request %d: %w", id, models.ErrConflict)
	}
	req.Status = models.RequestCancelled
	clone := *req
	return &clone, nil
}

func (f *fakeRequestStore) Rate(_ context.Context, id, userID int64, rating int, feedback string) (*models.TranslationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	switch {
	case req.UserID != userID:
		return nil, fmt.Errorf("rate request %d: %w", id, models.ErrNotFound)
	case req.Rating != 0:
		return nil, fmt.Errorf("rate request %d: %w", id, models.ErrAlreadyRated)
	case req.Status != models.RequestCompleted:
		return nil, fmt.Errorf("rate request %d: %w", id, models.ErrConflict)
	}
	req.Rating = rating
	req.Feedback = feedback
	clone := *req
	return &clone, nil
}

// fakeRechargeStore reproduces the recharge repository's decide-once
// contract and keeps a credit ledger so tests can assert an approval
// credits exactly once.
type fakeRechargeStore struct {
	mu          sync.Mutex
	next        int64
	byID        map[int64]*models.RechargeRecord
	creditAI    map[int64]int
	creditHuman map[int64]int
}

func newFakeRechargeStore() *fakeRechargeStore {
	return &fakeRechargeStore{
		byID:        make(map[int64]*models.RechargeRecord),
		creditAI:    make(map[int64]int),
		creditHuman: make(map[int64]int),
	}
}

func (f *fakeRechargeStore) Create(_ context.Context, rec *models.RechargeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	rec.ID = f.next
	rec.Status = models.RechargePending
	clone := *rec
	f.byID[rec.ID] = &clone
	return nil
}

func (f *fakeRechargeStore) GetByID(_ context.Context, id int64) (*models.RechargeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("recharge %d: %w", id, models.ErrNotFound)
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeRechargeStore) ListByUser(_ context.Context, userID int64) ([]models.RechargeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RechargeRecord
	for _, rec := range f.byID {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRechargeStore) List(_ context.Context, status models.RechargeStatus) ([]models.RechargeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RechargeRecord
	for _, rec := range f.byID {
		if status == "" || rec.Status == status {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRechargeStore) Decide(_ context.Context, id, adminID int64, approve bool, note string) (*models.RechargeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("recharge %d: %w", id, models.ErrNotFound)
	}
	if rec.Status != models.RechargePending {
		return nil, fmt.Errorf("recharge %d already %s: %w", id, rec.Status, models.ErrAlreadyDecided)
	}
	if approve {
		rec.Status = models.RechargeApproved
		f.creditAI[rec.UserID] += rec.PlanAIQuota
		f.creditHuman[rec.UserID] += rec.PlanHumanQuota
	} else {
		rec.Status = models.RechargeRejected
	}
	rec.AdminID = &adminID
	rec.AdminNote = note
	clone := *rec
	return &clone, nil
}

// fakePlanReader serves a fixed plan catalogue.
type fakePlanReader struct {
	plans map[int64]models.RechargePlan
}

func (f *fakePlanReader) GetByID(_ context.Context, id int64) (*models.RechargePlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %d: %w", id, models.ErrNotFound)
	}
	return &plan, nil
}

// fakePairStore keeps pairs in a slice in insertion order.
type fakePairStore struct {
	mu    sync.Mutex
	next  int64
	pairs []models.TranslationPair
}

func (f *fakePairStore) Create(_ context.Context, pair *models.TranslationPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	pair.ID = f.next
	f.pairs = append(f.pairs, *pair)
	return nil
}

func (f *fakePairStore) Delete(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pairs {
		if p.ID == id && p.UserID == userID {
			f.pairs = append(f.pairs[:i], f.pairs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete pair %d: %w", id, models.ErrNotFound)
}

func (f *fakePairStore) ListByUser(_ context.Context, userID int64) ([]models.TranslationPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TranslationPair
	for _, p := range f.pairs {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePairStore) ImportBatch(_ context.Context, userID int64, pairs []models.TranslationPair) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range pairs {
		f.next++
		p.ID = f.next
		p.UserID = userID
		f.pairs = append(f.pairs, p)
	}
	return len(pairs), nil
}

func (f *fakePairStore) ListAllWithOwner(_ context.Context) ([]models.OwnedPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OwnedPair
	for _, p := range f.pairs {
		out = append(out, models.OwnedPair{
			Email:      fmt.Sprintf("user%d@example.com", p.UserID),
			SourceText: p.SourceText,
			TargetText: p.TargetText,
			CreatedAt:  p.CreatedAt,
		})
	}
	return out, nil
}
