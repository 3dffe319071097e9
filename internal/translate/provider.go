// Package translate wraps the machine-translation backends that power the
// AI translation endpoint.
package translate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hiroyagi/yakumemo/internal/config"
)

// Provider produces a target-language rendering of a source-language text.
type Provider interface {
	Translate(ctx context.Context, text string) (string, error)
}

// New builds the provider selected by configuration.
func New(cfg config.Config, log *slog.Logger) (Provider, error) {
	switch cfg.TranslateProvider {
	case "openai":
		return NewOpenAI(cfg, log)
	case "deepl":
		return NewDeepL(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported translate provider: %s", cfg.TranslateProvider)
	}
}
