package assistant

import (
	"context"

	"github.com/tietlabs/thapargpt/pkg/lang"
	"github.com/tietlabs/thapargpt/pkg/logger"
	"github.com/tietlabs/thapargpt/pkg/translate"
)

// PostProcessor re-checks the language of a generated answer and
// translates it when the model ignored the language directive and
// answered in English anyway. Translation is best-effort: on any
// failure the raw answer is returned unchanged.
type PostProcessor struct {
	detector   *lang.Detector
	translator translate.Translator
}

// NewPostProcessor creates a post-processor. translator may be nil, in
// which case drifted answers are returned as-is.
func NewPostProcessor(detector *lang.Detector, translator translate.Translator) *PostProcessor {
	return &PostProcessor{detector: detector, translator: translator}
}

// Process returns the answer in the requested language where possible.
func (p *PostProcessor) Process(ctx context.Context, answer string, requested lang.Tag) string {
	if requested.Code == lang.English.Code {
		return answer
	}

	if detected := p.detector.Detect(answer); detected.Code != lang.English.Code {
		// The model honored the directive; nothing to do.
		return answer
	}

	if p.translator == nil {
		return answer
	}

	translated, err := p.translator.Translate(ctx, answer, "auto", requested.Code)
	if err != nil {
		logger.WarnCF("assistant", "Translation failed, returning untranslated answer", map[string]interface{}{
			"target": requested.Code,
			"error":  err.Error(),
		})
		return answer
	}
	return translated
}
