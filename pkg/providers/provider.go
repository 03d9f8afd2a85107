package providers

import (
	"context"

	"github.com/tietlabs/thapargpt/pkg/media"
)

// Generator produces a text answer from a prompt and optional media
// attachments. A Generate failure is fatal for the request: callers
// propagate it instead of degrading.
//
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string, attachments []media.Attachment) (string, error)
}
