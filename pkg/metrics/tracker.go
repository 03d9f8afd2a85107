package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event records usage for a single generative-model call.
type Event struct {
	Timestamp    string `json:"ts"`
	Model        string `json:"model"`
	InputTokens  int    `json:"in"`
	OutputTokens int    `json:"out"`
	TotalTokens  int    `json:"total"`
	DurationMs   int64  `json:"ms"`
	HasMedia     bool   `json:"media,omitempty"`
}

// Tracker appends usage events to a JSONL file. Recording is best-effort:
// a tracker failure must never affect the answer pipeline.
type Tracker struct {
	filePath string
	mu       sync.Mutex
}

// NewTracker creates a tracker that writes to dir/metrics/usage.jsonl.
func NewTracker(dir string) *Tracker {
	metricsDir := filepath.Join(dir, "metrics")
	os.MkdirAll(metricsDir, 0755)
	return &Tracker{
		filePath: filepath.Join(metricsDir, "usage.jsonl"),
	}
}

// Record appends a usage event.
func (t *Tracker) Record(event Event) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().Format(time.RFC3339)
	}
	if event.TotalTokens == 0 {
		event.TotalTokens = event.InputTokens + event.OutputTokens
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	f.Write(append(data, '\n'))
}
