package translator

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// systemPrompt fixes the translator persona for full-text translation.
const systemPrompt = "You are a professional Japanese-to-English translator specializing in academic and literary texts. " +
	"Provide natural, accurate translations while preserving the original meaning and nuance."

const (
	defaultModel       = openai.GPT4o
	defaultTemperature = 0.3
	defaultMaxTokens   = 2000
)

// OpenAIConfig holds the completion-service settings. Zero values fall
// back to the fixed contract: gpt-4o, temperature 0.3, 2000 max tokens.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAITranslator produces one cohesive translation of a whole text via
// a chat completion.
type OpenAITranslator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAITranslator creates a completion-backed document translator.
func NewOpenAITranslator(cfg OpenAIConfig) *OpenAITranslator {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return &OpenAITranslator{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// TranslateDocument requests one cohesive translation of text. A response
// without content yields an empty string and no error; transport and API
// failures are returned to the caller.
func (t *OpenAITranslator) TranslateDocument(ctx context.Context, text string) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(text)},
		},
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func userPrompt(text string) string {
	return fmt.Sprintf("Translate this Japanese text into natural English:\n\n%s", text)
}
