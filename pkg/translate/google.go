package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Translator converts text between languages. Implementations are
// best-effort collaborators: callers must treat any error as "keep the
// original text".
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

const defaultBaseURL = "https://translate.googleapis.com"

// GoogleTranslator calls the public Google Translate endpoint (the same
// one the gtx web client uses, no API key required).
type GoogleTranslator struct {
	baseURL    string
	httpClient *http.Client
}

// NewGoogleTranslator creates a translator against the public endpoint.
func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewGoogleTranslatorWithBaseURL overrides the endpoint. Used in tests.
func NewGoogleTranslatorWithBaseURL(baseURL string) *GoogleTranslator {
	t := NewGoogleTranslator()
	t.baseURL = strings.TrimSuffix(baseURL, "/")
	return t
}

// Translate translates text from source into target. source may be
// "auto" to let the service detect the input language.
func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = "auto"
	}

	queryParams := make(url.Values)
	queryParams.Add("client", "gtx")
	queryParams.Add("sl", source)
	queryParams.Add("tl", target)
	queryParams.Add("dt", "t")
	queryParams.Add("q", text)
	apiURL := fmt.Sprintf("%s/translate_a/single?%s", t.baseURL, queryParams.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}

	response, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call translate endpoint: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate endpoint returned status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}

	return parseResponse(body)
}

// parseResponse extracts the translated text from the gtx response, which
// is a nested JSON array: [[["translated","original",...], ...], ...].
// Translated sentences are concatenated in order.
func parseResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decode translate segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(seg[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}

	result := sb.String()
	if result == "" {
		return "", fmt.Errorf("translate response contained no text")
	}
	return result, nil
}
