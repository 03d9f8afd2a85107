package assistant

import (
	"context"
	"fmt"

	"github.com/tietlabs/thapargpt/pkg/knowledge"
	"github.com/tietlabs/thapargpt/pkg/lang"
	"github.com/tietlabs/thapargpt/pkg/logger"
	"github.com/tietlabs/thapargpt/pkg/media"
	"github.com/tietlabs/thapargpt/pkg/providers"
)

const (
	// DefaultMediaQuery substitutes for an absent query when at least
	// one attachment is supplied.
	DefaultMediaQuery = "Analyze this and describe what you see."

	// EmptyInputReply is returned when there is neither a query nor an
	// attachment. No collaborator is called in that case.
	EmptyInputReply = "Please provide a question or upload a file."

	// contextLimit is the topK passed to the retriever.
	contextLimit = 3
)

// Assistant sequences the answer pipeline: language detection, domain
// gating, retrieval, prompt composition, generation and post-processing.
// It holds only long-lived collaborator handles and is safe for
// concurrent use as long as its collaborators are.
type Assistant struct {
	detector  *lang.Detector
	gate      *Gate
	retriever knowledge.Retriever
	composer  *Composer
	generator providers.Generator
	post      *PostProcessor
}

// New wires an assistant from its collaborators.
func New(detector *lang.Detector, gate *Gate, retriever knowledge.Retriever, composer *Composer, generator providers.Generator, post *PostProcessor) *Assistant {
	return &Assistant{
		detector:  detector,
		gate:      gate,
		retriever: retriever,
		composer:  composer,
		generator: generator,
		post:      post,
	}
}

// Ask answers a user query with optional media attachments. Retrieval,
// statistical detection and translation degrade silently to defaults;
// only a generation failure is returned as an error.
func (a *Assistant) Ask(ctx context.Context, query string, attachments []media.Attachment) (string, error) {
	if query == "" && len(attachments) > 0 {
		query = DefaultMediaQuery
	}
	if query == "" {
		return EmptyInputReply, nil
	}

	tag := a.detector.Detect(query)

	var contexts []string
	if a.gate.InDomain(query) {
		snippets, err := a.retriever.Query(ctx, query, contextLimit)
		if err != nil {
			logger.WarnCF("assistant", "Retrieval failed, answering without context", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			contexts = snippets
		}
	}

	prompt := a.composer.Compose(query, contexts, tag, len(attachments) > 0)

	logger.DebugCF("assistant", "Prompt composed", map[string]interface{}{
		"language":   tag.Code,
		"contexts":   len(contexts),
		"media":      len(attachments),
		"prompt_len": len(prompt),
	})

	answer, err := a.generator.Generate(ctx, prompt, attachments)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return a.post.Process(ctx, answer, tag), nil
}
