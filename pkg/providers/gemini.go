package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"google.golang.org/genai"

	"github.com/tietlabs/thapargpt/pkg/logger"
	"github.com/tietlabs/thapargpt/pkg/media"
	"github.com/tietlabs/thapargpt/pkg/metrics"
)

// GeminiProvider generates answers with the Gemini API. Attachments are
// sent as inline parts ahead of the prompt text.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	tracker *metrics.Tracker
}

// NewGeminiProvider creates a provider. A missing API key is a
// configuration error and fails construction.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key missing")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// SetTracker enables best-effort usage recording for each call.
func (p *GeminiProvider) SetTracker(t *metrics.Tracker) {
	p.tracker = t
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, attachments []media.Attachment) (string, error) {
	parts := make([]*genai.Part, 0, len(attachments)+1)
	for _, att := range attachments {
		parts = append(parts, genai.NewPartFromBytes(att.Data, att.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	start := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	if p.tracker != nil && resp.UsageMetadata != nil {
		p.tracker.Record(metrics.Event{
			Model:        p.model,
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			DurationMs:   time.Since(start).Milliseconds(),
			HasMedia:     len(attachments) > 0,
		})
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned an empty response")
	}

	logger.DebugCF("gemini", "Generated answer", map[string]interface{}{
		"model":       p.model,
		"prompt_len":  len(prompt),
		"answer_len":  len(text),
		"media_parts": len(attachments),
	})
	return text, nil
}

// EmbeddingFunc returns a chromem embedding function backed by the given
// Gemini embedding model, sharing this provider's client.
func (p *GeminiProvider) EmbeddingFunc(model string) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := p.client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
			return nil, errors.New("empty embedding response")
		}
		return resp.Embeddings[0].Values, nil
	}
}
