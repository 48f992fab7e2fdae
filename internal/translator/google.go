// Package translator provides the two translation backends consumed by
// the pipeline: per-fragment translation via the Cloud Translation API
// and cohesive full-text translation via an OpenAI chat completion.
package translator

import (
	"context"
	"fmt"

	gtranslate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleTranslator translates individual text fragments with the Cloud
// Translation API. Safe for concurrent use.
type GoogleTranslator struct {
	client *gtranslate.Client
	target language.Tag
}

// NewGoogleTranslator creates a translation client authenticated with the
// given service-account JSON, translating into target.
func NewGoogleTranslator(ctx context.Context, credentialsJSON []byte, target language.Tag) (*GoogleTranslator, error) {
	client, err := gtranslate.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("creating translate client: %w", err)
	}
	return &GoogleTranslator{client: client, target: target}, nil
}

// TranslateFragment translates a single fragment. An empty result set
// falls back to the source text.
func (t *GoogleTranslator) TranslateFragment(ctx context.Context, text string) (string, error) {
	translations, err := t.client.Translate(ctx, []string{text}, t.target, nil)
	if err != nil {
		return "", fmt.Errorf("fragment translation: %w", err)
	}
	if len(translations) == 0 {
		return text, nil
	}
	return translations[0].Text, nil
}

// Close releases the underlying connection.
func (t *GoogleTranslator) Close() error {
	return t.client.Close()
}
