package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroyagi/yakumemo/internal/models"
)

type fakeProvider struct {
	result string
	err    error
	calls  int
}

func (f *fakeProvider) Translate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.result, f.err
}

func TestTranslateDebitsAIQuota(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.ai[1] = 2
	provider := &fakeProvider{result: "晴天"}
	svc := NewTranslateService(provider, quotas, testLogger())

	got, err := svc.Translate(context.Background(), 1, "晴れ")
	require.NoError(t, err)
	assert.Equal(t, "晴天", got)
	assert.Equal(t, 1, quotas.ai[1])
	assert.Equal(t, 1, provider.calls)
}

func TestTranslateQuotaExhausted(t *testing.T) {
	quotas := newFakeQuotaStore()
	provider := &fakeProvider{result: "晴天"}
	svc := NewTranslateService(provider, quotas, testLogger())

	_, err := svc.Translate(context.Background(), 1, "晴れ")
	assert.ErrorIs(t, err, models.ErrQuotaExhausted)
	assert.Zero(t, provider.calls, "provider must not be called without quota")
}

func TestTranslateValidation(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.ai[1] = 1
	svc := NewTranslateService(&fakeProvider{}, quotas, testLogger())

	_, err := svc.Translate(context.Background(), 1, "  ")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 1, quotas.ai[1])
}

func TestTranslateProviderFailure(t *testing.T) {
	quotas := newFakeQuotaStore()
	quotas.ai[1] = 1
	provider := &fakeProvider{err: fmt.Errorf("upstream down: %w", models.ErrProvider)}
	svc := NewTranslateService(provider, quotas, testLogger())

	_, err := svc.Translate(context.Background(), 1, "晴れ")
	assert.ErrorIs(t, err, models.ErrProvider)
}
