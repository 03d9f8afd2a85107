package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/tietlabs/thapargpt/pkg/lang"
	"github.com/tietlabs/thapargpt/pkg/logger"
)

// maxContextSnippets caps how many retrieved snippets are embedded in
// the prompt, regardless of how many the retriever returned.
const maxContextSnippets = 3

// Composer builds the instruction text sent to the generative model.
// Composition is deterministic: the same inputs (and clock reading)
// always produce the same prompt.
type Composer struct {
	location *time.Location
	now      func() time.Time
}

// NewComposer creates a composer stamping prompts in the given timezone.
// An unknown timezone falls back to IST, the campus timezone.
func NewComposer(timezone string) *Composer {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.WarnCF("assistant", "Unknown timezone, falling back to IST", map[string]interface{}{
			"timezone": timezone,
			"error":    err.Error(),
		})
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &Composer{location: loc, now: time.Now}
}

// Compose assembles the final prompt. Instruction lines are an ordered
// list of optional fragments: the media line appears only when media is
// attached, and the context instruction flips to general knowledge when
// no snippets are available. The context block holds at most
// maxContextSnippets snippets, 1-indexed.
func (c *Composer) Compose(query string, contexts []string, tag lang.Tag, hasMedia bool) string {
	now := c.now().In(c.location)
	dateStr := now.Format("Monday, 02 January 2006")
	timeStr := now.Format("03:04 PM")
	zone, _ := now.Zone()

	if len(contexts) > maxContextSnippets {
		contexts = contexts[:maxContextSnippets]
	}

	instructions := make([]string, 0, 4)
	if hasMedia {
		instructions = append(instructions, "Analyze the provided image/document carefully.")
	}
	if len(contexts) > 0 {
		instructions = append(instructions, "Use the RAG context below to answer Thapar-related questions.")
	} else {
		instructions = append(instructions, "Answer using your general knowledge.")
	}
	instructions = append(instructions, fmt.Sprintf("Respond in: %s (%s)", tag.Name, tag.Code))
	instructions = append(instructions, "Be concise and helpful.")

	var sb strings.Builder
	sb.WriteString("You are a helpful multilingual AI assistant.\n\n")
	fmt.Fprintf(&sb, "Current date: %s | Time: %s %s\n\n", dateStr, timeStr, zone)
	sb.WriteString("INSTRUCTIONS:\n")
	for i, line := range instructions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, line)
	}

	if len(contexts) > 0 {
		sb.WriteString("\n--- THAPAR CONTEXT ---\n")
		for i, snippet := range contexts {
			fmt.Fprintf(&sb, "[%d] %s\n", i+1, snippet)
		}
		sb.WriteString("--- END CONTEXT ---\n")
	}

	fmt.Fprintf(&sb, "\nUser: %s\n\nAssistant:", query)
	return sb.String()
}
