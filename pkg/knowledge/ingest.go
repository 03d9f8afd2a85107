package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/tietlabs/thapargpt/pkg/logger"
)

// IngestDir indexes every .txt file under dir into the store, one
// snippet per file, with the filename kept as metadata. File contents
// are normalized to UTF-8 first; empty files are skipped. Returns the
// number of files indexed.
func (s *Store) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read data dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	indexed := 0
	for pos, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return indexed, fmt.Errorf("read %s: %w", name, err)
		}

		content := strings.TrimSpace(NormalizeUTF8(data))
		if content == "" {
			logger.WarnCF("knowledge", "Skipped empty file", map[string]interface{}{
				"file": name,
			})
			continue
		}

		// Doc ids follow directory position, not the indexed count,
		// so emptying one file on re-ingest cannot re-key the rest.
		docID := fmt.Sprintf("doc_%d", pos)
		if err := s.Index(ctx, docID, content, map[string]string{"filename": name}); err != nil {
			return indexed, err
		}

		logger.InfoCF("knowledge", "Indexed file", map[string]interface{}{
			"file":   name,
			"doc_id": docID,
			"bytes":  len(content),
		})
		indexed++
	}

	return indexed, nil
}

// NormalizeUTF8 returns data as a UTF-8 string. Already-valid input is
// passed through; everything else is decoded as Windows-1252, the
// encoding the legacy campus documents were exported in.
func NormalizeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		// Last resort: replace invalid sequences.
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}
