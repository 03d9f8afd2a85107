package lang

import (
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/pemistahl/lingua-go"
)

// LinguaIdentifier wraps the lingua statistical detector. It is the
// first-choice capability: higher quality, but heavier to build.
type LinguaIdentifier struct {
	detector lingua.LanguageDetector
}

// NewLinguaIdentifier builds a lingua detector over all supported
// languages. Building loads the language models, so construct once at
// startup and share.
func NewLinguaIdentifier() *LinguaIdentifier {
	return &LinguaIdentifier{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

func (l *LinguaIdentifier) Name() string { return "lingua" }

func (l *LinguaIdentifier) Identify(text string) (Tag, error) {
	language, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		return Tag{}, errors.New("no language detected")
	}
	code := strings.ToLower(language.IsoCode639_1().String())
	return Tag{Code: code, Name: language.String()}, nil
}

// WhatlangIdentifier wraps whatlanggo, the lower-quality fallback tried
// when lingua cannot answer. Display names are the upper-cased ISO code,
// matching the fidelity the fallback path has always had.
type WhatlangIdentifier struct{}

func NewWhatlangIdentifier() *WhatlangIdentifier { return &WhatlangIdentifier{} }

func (w *WhatlangIdentifier) Name() string { return "whatlang" }

func (w *WhatlangIdentifier) Identify(text string) (Tag, error) {
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return Tag{}, errors.New("no ISO 639-1 code for detected language")
	}
	return Tag{Code: code, Name: strings.ToUpper(code)}, nil
}

// DefaultDetector returns the production identifier chain: lingua first,
// whatlang as fallback.
func DefaultDetector() *Detector {
	return NewDetector(NewLinguaIdentifier(), NewWhatlangIdentifier())
}
