package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"

	"github.com/tietlabs/thapargpt/pkg/logger"
)

// Retriever returns up to topK context snippets for a query, ordered by
// relevance. It may return an empty slice; callers must treat an error
// as "no context available".
type Retriever interface {
	Query(ctx context.Context, text string, topK int) ([]string, error)
}

// Store wraps a persistent chromem collection holding the campus
// knowledge snippets.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	dbPath     string
}

// NewStore opens (or creates) the vector DB at dataDir/chroma.
func NewStore(dataDir, collectionName string, embeddingFn chromem.EmbeddingFunc) (*Store, error) {
	dbPath := filepath.Join(dataDir, "chroma")
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("create knowledge dir: %w", err)
	}

	db, err := chromem.NewPersistentDB(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embeddingFn)
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", collectionName, err)
	}

	logger.InfoCF("knowledge", "Vector store initialized", map[string]interface{}{
		"path":       dbPath,
		"collection": collectionName,
		"count":      collection.Count(),
	})

	return &Store{
		db:         db,
		collection: collection,
		dbPath:     dbPath,
	}, nil
}

// Index adds or replaces one snippet.
func (s *Store) Index(ctx context.Context, docID, content string, metadata map[string]string) error {
	doc := chromem.Document{
		ID:       docID,
		Content:  content,
		Metadata: metadata,
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("index %s: %w", docID, err)
	}
	return nil
}

// Query returns the contents of the topK nearest snippets.
func (s *Store) Query(ctx context.Context, text string, topK int) ([]string, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.Query(ctx, text, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query knowledge: %w", err)
	}

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, r.Content)
	}
	return snippets, nil
}

// Count reports how many snippets the collection holds.
func (s *Store) Count() int {
	return s.collection.Count()
}
