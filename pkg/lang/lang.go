package lang

import (
	"strings"
	"unicode"

	"github.com/tietlabs/thapargpt/pkg/logger"
)

// Tag identifies a natural language as an ISO 639-1 code plus a
// human-readable display name.
type Tag struct {
	Code string
	Name string
}

// English is the default tag returned whenever detection is ambiguous.
var English = Tag{Code: "en", Name: "English"}

// englishIndicators are tokens whose presence marks a query as English,
// overriding any statistical detector. This suppresses false positives on
// short ambiguous tokens like place names.
var englishIndicators = map[string]bool{
	"what": true, "how": true, "why": true, "when": true, "where": true,
	"who": true, "is": true, "are": true,
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true,
	"can": true, "could": true, "would": true, "should": true,
	"will": true, "do": true, "does": true,
	"tell": true, "explain": true, "describe": true, "give": true,
	"show": true, "help": true,
	"please": true, "thank": true, "hello": true, "hi": true, "hey": true,
}

// CommonLanguages is the fixed allow-list of ISO 639-1 codes the system
// is prepared to frame a response in. Codes detected outside this list
// are clamped to English.
var CommonLanguages = map[string]bool{
	"en": true, "hi": true, "pa": true, "es": true, "fr": true,
	"de": true, "zh": true, "ar": true, "bn": true, "ta": true,
	"te": true, "mr": true, "gu": true, "kn": true, "ml": true,
}

// Identifier is a single statistical language-identification capability.
// Identify returns an error when the capability cannot produce an answer
// for the given text; the caller decides what that means.
type Identifier interface {
	Name() string
	Identify(text string) (Tag, error)
}

// Detector classifies text into a language tag with a strong English bias.
// It holds a ranked list of statistical identifiers tried in order; a
// detector with no identifiers is valid and always answers English past
// the heuristics.
//
// Detect never fails and is safe for concurrent use.
type Detector struct {
	identifiers []Identifier
}

// NewDetector creates a detector with the given identifier chain, ranked
// first to last.
func NewDetector(identifiers ...Identifier) *Detector {
	return &Detector{identifiers: identifiers}
}

// Detect returns the language tag for text. Precedence:
//
//  1. No tokens at all: English.
//  2. Any English-indicator token present: English.
//  3. Fewer than 5 tokens and mostly ASCII-Latin letters: English.
//  4. First identifier that answers; codes outside CommonLanguages are
//     clamped to English.
//  5. No identifier answered: English.
func (d *Detector) Detect(text string) Tag {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(tokens) == 0 {
		return English
	}

	for _, tok := range tokens {
		if englishIndicators[tok] {
			return English
		}
	}

	if len(tokens) < 5 {
		latin, total := 0, 0
		for _, r := range text {
			if !unicode.IsLetter(r) {
				continue
			}
			total++
			if r < 128 {
				latin++
			}
		}
		if total > 0 && float64(latin)/float64(total) > 0.7 {
			return English
		}
	}

	for _, id := range d.identifiers {
		tag, err := id.Identify(text)
		if err != nil {
			logger.DebugCF("lang", "Identifier could not answer", map[string]interface{}{
				"identifier": id.Name(),
				"error":      err.Error(),
			})
			continue
		}
		if !CommonLanguages[tag.Code] {
			logger.DebugCF("lang", "Detected code outside allow-list, forcing English", map[string]interface{}{
				"identifier": id.Name(),
				"code":       tag.Code,
			})
			return English
		}
		return tag
	}

	return English
}
