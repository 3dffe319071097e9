package translate

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroyagi/yakumemo/internal/config"
	"github.com/hiroyagi/yakumemo/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDeepL(baseURL string) *DeepL {
	return NewDeepL(config.Config{
		DeepLAPIKey:  "key",
		DeepLBaseURL: baseURL,
		SourceLang:   "JA",
		TargetLang:   "ZH",
	}, testLogger())
}

func TestDeepLTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/translate", r.URL.Path)
		assert.Equal(t, "DeepL-Auth-Key key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "晴れ", r.PostForm.Get("text"))
		assert.Equal(t, "JA", r.PostForm.Get("source_lang"))
		assert.Equal(t, "ZH", r.PostForm.Get("target_lang"))

		json.NewEncoder(w).Encode(map[string]any{
			"translations": []map[string]string{{"text": " 晴天 "}},
		})
	}))
	defer srv.Close()

	got, err := newTestDeepL(srv.URL).Translate(context.Background(), "晴れ")
	require.NoError(t, err)
	assert.Equal(t, "晴天", got)
}

func TestDeepLTranslateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", 456)
	}))
	defer srv.Close()

	_, err := newTestDeepL(srv.URL).Translate(context.Background(), "晴れ")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProvider)
}

func TestDeepLTranslateEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"translations": []map[string]string{}})
	}))
	defer srv.Close()

	_, err := newTestDeepL(srv.URL).Translate(context.Background(), "晴れ")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProvider)
}

func TestNewProviderSelection(t *testing.T) {
	_, err := New(config.Config{TranslateProvider: "openai"}, testLogger())
	assert.Error(t, err, "openai without an api key must be rejected")

	p, err := New(config.Config{TranslateProvider: "deepl", DeepLAPIKey: "key"}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &DeepL{}, p)

	_, err = New(config.Config{TranslateProvider: "babelfish"}, testLogger())
	assert.Error(t, err)
}
