package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/hiroyagi/yakumemo/internal/config"
	"github.com/hiroyagi/yakumemo/internal/models"
)

type OpenAI struct {
	client     *openai.Client
	model      string
	sourceLang string
	targetLang string
	log        *slog.Logger
}

func NewOpenAI(cfg config.Config, log *slog.Logger) (*OpenAI, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	return &OpenAI{
		client:     openai.NewClient(cfg.OpenAIAPIKey),
		model:      cfg.OpenAIModel,
		sourceLang: cfg.SourceLang,
		targetLang: cfg.TargetLang,
		log:        log,
	}, nil
}

func (o *OpenAI) Translate(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(
					"Translate the following %s text to %s. Respond with only the translation, nothing else.\n\n%s",
					o.sourceLang, o.targetLang, text),
			},
		},
		MaxTokens:   1024,
		Temperature: 0.3,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w (%v)", models.ErrProvider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices: %w", models.ErrProvider)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("openai returned empty translation: %w", models.ErrProvider)
	}
	return result, nil
}
