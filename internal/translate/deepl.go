package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hiroyagi/yakumemo/internal/config"
	"github.com/hiroyagi/yakumemo/internal/models"
)

type DeepL struct {
	apiKey     string
	baseURL    string
	sourceLang string
	targetLang string
	httpClient *http.Client
	log        *slog.Logger
}

func NewDeepL(cfg config.Config, log *slog.Logger) *DeepL {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DeepL{
		apiKey:     cfg.DeepLAPIKey,
		baseURL:    strings.TrimRight(cfg.DeepLBaseURL, "/"),
		sourceLang: cfg.SourceLang,
		targetLang: cfg.TargetLang,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type deepLResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func (d *DeepL) Translate(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("source_lang", d.sourceLang)
	form.Set("target_lang", d.targetLang)

	endpoint := d.baseURL + "/v2/translate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build deepl request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl request: %w (%v)", models.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read deepl response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepl status %d: %s: %w", resp.StatusCode, truncate(string(body), 256), models.ErrProvider)
	}

	var decoded deepLResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode deepl response: %w (%v)", models.ErrProvider, err)
	}
	if len(decoded.Translations) == 0 {
		return "", fmt.Errorf("deepl returned no translations: %w", models.ErrProvider)
	}

	result := strings.TrimSpace(decoded.Translations[0].Text)
	if result == "" {
		return "", fmt.Errorf("deepl returned empty translation: %w", models.ErrProvider)
	}
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
