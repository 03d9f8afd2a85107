package commands

import (
	"context"
	"fmt"

	"github.com/tietlabs/thapargpt/pkg/assistant"
	"github.com/tietlabs/thapargpt/pkg/config"
	"github.com/tietlabs/thapargpt/pkg/knowledge"
	"github.com/tietlabs/thapargpt/pkg/lang"
	"github.com/tietlabs/thapargpt/pkg/logger"
	"github.com/tietlabs/thapargpt/pkg/metrics"
	"github.com/tietlabs/thapargpt/pkg/providers"
	"github.com/tietlabs/thapargpt/pkg/translate"
)

// buildAssistant wires the full question-answering pipeline from config.
// The knowledge store is opened read-write so the same builder serves
// both query and ingest paths.
func buildAssistant(ctx context.Context, cfg *config.Config) (*assistant.Assistant, *knowledge.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	provider, err := providers.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, fmt.Errorf("init gemini provider: %w", err)
	}
	provider.SetTracker(metrics.NewTracker(cfg.DataDir))

	store, err := knowledge.NewStore(cfg.DataDir, cfg.Collection, provider.EmbeddingFunc(cfg.EmbeddingModel))
	if err != nil {
		return nil, nil, fmt.Errorf("open knowledge store: %w", err)
	}
	logger.InfoCF("startup", "Knowledge store ready", map[string]interface{}{
		"collection": cfg.Collection,
		"documents":  store.Count(),
	})

	detector := lang.DefaultDetector()
	translator := translate.NewGoogleTranslator()

	a := assistant.New(
		detector,
		assistant.NewGate(),
		store,
		assistant.NewComposer(cfg.Timezone),
		provider,
		assistant.NewPostProcessor(detector, translator),
	)
	return a, store, nil
}
