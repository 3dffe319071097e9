package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroyagi/yakumemo/internal/models"
)

func newRequestService(quotas *fakeQuotaStore) (*RequestService, *fakeRequestStore) {
	store := newFakeRequestStore()
	return NewRequestService(store, quotas, testHub(), testLogger()), store
}

func TestCreateRequestDebitsHumanQuota(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 2
	svc, _ := newRequestService(quotas)

	req, err := svc.Create(context.Background(), 1, CreateRequestInput{SourceText: "お願いします"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, models.PriorityNormal, req.Priority)
	assert.Equal(t, 1, quotas.human[1])
}

func TestCreateRequestQuotaExhausted(t *testing.T) {
	quotas := newFakeQuotaStore()
	svc, _ := newRequestService(quotas)

	_, err := svc.Create(context.Background(), 1, CreateRequestInput{SourceText: "お願いします"})
	assert.ErrorIs(t, err, models.ErrQuotaExhausted)

	queue, err := svc.Queue(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, queue, "no request may be enqueued when the debit fails")
}

func TestCreateRequestValidation(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 5
	svc, _ := newRequestService(quotas)

	_, err := svc.Create(context.Background(), 1, CreateRequestInput{SourceText: "   "})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(context.Background(), 1, CreateRequestInput{SourceText: "text", Priority: "asap"})
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.Equal(t, 5, quotas.human[1], "validation failures must not debit quota")
}

func TestClaimRaceHasExactlyOneWinner(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 1
	svc, _ := newRequestService(quotas)

	req, err := svc.Create(context.Background(), 1, CreateRequestInput{SourceText: "競合テスト"})
	require.NoError(t, err)

	const translators = 8
	var wg sync.WaitGroup
	errs := make([]error, translators)
	for i := 0; i < translators; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Claim(context.Background(), req.ID, int64(100+i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, models.ErrConflict)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestSubmitTranslationOnlyByClaimant(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 1
	svc, _ := newRequestService(quotas)

	req, err := svc.Create(context.Background(), 1, CreateRequestInput{SourceText: "翻訳して"})
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), req.ID, 100)
	require.NoError(t, err)

	_, err = svc.SubmitTranslation(context.Background(), req.ID, 200, "翻译")
	assert.ErrorIs(t, err, models.ErrConflict)

	got, err := svc.SubmitTranslation(context.Background(), req.ID, 100, "翻译")
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, got.Status)
	assert.Equal(t, "翻译", got.ResultText)
}

func TestSubmitTranslationRequiresResult(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 1
	svc, _ := newRequestService(quotas)

	req, err := svc.Create(context.Background(), 1, CreateRequestInput{SourceText: "翻訳して"})
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), req.ID, 100)
	require.NoError(t, err)

	_, err = svc.SubmitTranslation(context.Background(), req.ID, 100, "  ")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCancelFromPendingAndProcessingOnly(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 3
	svc, _ := newRequestService(quotas)
	ctx := context.Background()

	pending, err := svc.Create(ctx, 1, CreateRequestInput{SourceText: "一つ目"})
	require.NoError(t, err)
	got, err := svc.Cancel(ctx, pending.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, got.Status)

	processing, err := svc.Create(ctx, 1, CreateRequestInput{SourceText: "二つ目"})
	require.NoError(t, err)
	_, err = svc.Claim(ctx, processing.ID, 100)
	require.NoError(t, err)
	got, err = svc.Cancel(ctx, processing.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, got.Status)

	completed, err := svc.Create(ctx, 1, CreateRequestInput{SourceText: "三つ目"})
	require.NoError(t, err)
	_, err = svc.Claim(ctx, completed.ID, 100)
	require.NoError(t, err)
	_, err = svc.SubmitTranslation(ctx, completed.ID, 100, "第三")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, completed.ID, 1)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRateIsWriteOnce(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 1
	svc, _ := newRequestService(quotas)
	ctx := context.Background()

	req, err := svc.Create(ctx, 1, CreateRequestInput{SourceText: "評価テスト"})
	require.NoError(t, err)
	_, err = svc.Claim(ctx, req.ID, 100)
	require.NoError(t, err)
	_, err = svc.SubmitTranslation(ctx, req.ID, 100, "评价测试")
	require.NoError(t, err)

	got, err := svc.Rate(ctx, req.ID, 1, 5, "素晴らしい")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)

	// A second write is rejected even with the same stars.
	_, err = svc.Rate(ctx, req.ID, 1, 5, "")
	assert.ErrorIs(t, err, models.ErrAlreadyRated)
}

func TestRateValidation(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 2
	svc, _ := newRequestService(quotas)
	ctx := context.Background()

	req, err := svc.Create(ctx, 1, CreateRequestInput{SourceText: "評価テスト"})
	require.NoError(t, err)

	_, err = svc.Rate(ctx, req.ID, 1, 0, "")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.Rate(ctx, req.ID, 1, 6, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	// Rating before completion loses the conditional write.
	_, err = svc.Rate(ctx, req.ID, 1, 4, "")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestQueueOrdersUrgentFirstThenOldest(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.human[1] = 3
	svc, _ := newRequestService(quotas)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, CreateRequestInput{SourceText: "普通1"})
	require.NoError(t, err)
	urgent, err := svc.Create(ctx, 1, CreateRequestInput{SourceText: "至急", Priority: models.PriorityUrgent})
	require.NoError(t, err)
	second, err := svc.Create(ctx, 1, CreateRequestInput{SourceText: "普通2"})
	require.NoError(t, err)

	queue, err := svc.Queue(ctx, models.RequestPending)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, urgent.ID, queue[0].ID)
	assert.Equal(t, first.ID, queue[1].ID)
	assert.Equal(t, second.ID, queue[2].ID)
}
