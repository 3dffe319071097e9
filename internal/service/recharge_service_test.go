package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroyagi/yakumemo/internal/models"
)

func newRechargeService() (*RechargeService, *fakeRechargeStore) {
	store := newFakeRechargeStore()
	plans := &fakePlanReader{plans: map[int64]models.RechargePlan{
		1: {
			ID: 1, Name: "标准套餐", PriceMinorUnits: 2900,
			DurationDays: 30, AIQuota: 100, HumanQuota: 5, IsActive: true,
		},
		2: {ID: 2, Name: "旧套餐", PriceMinorUnits: 1900, DurationDays: 30, AIQuota: 50},
	}}
	return NewRechargeService(store, plans, testHub(), testLogger()), store
}

func TestSubmitSnapshotsPlan(t *testing.T) {
	svc, _ := newRechargeService()

	rec, err := svc.Submit(context.Background(), 7, 1, "https://cdn.example.com/proof.png")
	require.NoError(t, err)
	assert.Equal(t, models.RechargePending, rec.Status)
	assert.Equal(t, "标准套餐", rec.PlanName)
	assert.Equal(t, 2900, rec.AmountMinor)
	assert.Equal(t, 100, rec.PlanAIQuota)
	assert.Equal(t, 5, rec.PlanHumanQuota)
	assert.Equal(t, 30, rec.PlanDuration)
}

func TestSubmitRejectsInactivePlanAndMissingProof(t *testing.T) {
	svc, _ := newRechargeService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, 7, 2, "https://cdn.example.com/proof.png")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Submit(ctx, 7, 1, "   ")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Submit(ctx, 7, 99, "https://cdn.example.com/proof.png")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDecideApproveCreditsExactlyOnce(t *testing.T) {
	svc, store := newRechargeService()
	ctx := context.Background()

	rec, err := svc.Submit(ctx, 7, 1, "https://cdn.example.com/proof.png")
	require.NoError(t, err)

	got, err := svc.Decide(ctx, rec.ID, 42, true, "verified")
	require.NoError(t, err)
	assert.Equal(t, models.RechargeApproved, got.Status)
	require.NotNil(t, got.AdminID)
	assert.Equal(t, int64(42), *got.AdminID)
	assert.Equal(t, 100, store.creditAI[7])
	assert.Equal(t, 5, store.creditHuman[7])

	// A retry of the same decision must not credit again.
	_, err = svc.Decide(ctx, rec.ID, 42, true, "verified")
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)
	assert.Equal(t, 100, store.creditAI[7])
	assert.Equal(t, 5, store.creditHuman[7])
}

func TestDecideRejectDoesNotCredit(t *testing.T) {
	svc, store := newRechargeService()
	ctx := context.Background()

	rec, err := svc.Submit(ctx, 7, 1, "https://cdn.example.com/proof.png")
	require.NoError(t, err)

	got, err := svc.Decide(ctx, rec.ID, 42, false, "blurry screenshot")
	require.NoError(t, err)
	assert.Equal(t, models.RechargeRejected, got.Status)
	assert.Equal(t, "blurry screenshot", got.AdminNote)
	assert.Zero(t, store.creditAI[7])
	assert.Zero(t, store.creditHuman[7])

	// A rejected record can not be approved afterwards.
	_, err = svc.Decide(ctx, rec.ID, 42, true, "")
	assert.ErrorIs(t, err, models.ErrAlreadyDecided)
	assert.Zero(t, store.creditAI[7])
}

func TestDecideRaceCreditsOnce(t *testing.T) {
	svc, store := newRechargeService()
	ctx := context.Background()

	rec, err := svc.Submit(ctx, 7, 1, "https://cdn.example.com/proof.png")
	require.NoError(t, err)

	const admins = 8
	var wg sync.WaitGroup
	errs := make([]error, admins)
	for i := 0; i < admins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Decide(ctx, rec.ID, int64(40+i), true, "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, models.ErrAlreadyDecided)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 100, store.creditAI[7], "exactly one credit despite concurrent approvals")
}

func TestDecideUnknownRecord(t *testing.T) {
	svc, _ := newRechargeService()
	_, err := svc.Decide(context.Background(), 999, 42, true, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
