package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pokenft/pokenft/pokenft/database/models"
)

// FileStore persists the set cache as one JSON document mapping set id to
// card list, read and written wholesale. Concurrent writers race benignly:
// entries are replaced whole, so last write wins. The mutex only guards
// in-process access; cross-process writers get the same wholesale semantics
// from the single rename-less write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the cached card list for a set, or ok=false on a miss.
func (f *FileStore) Get(setID string) ([]models.CardRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, err
	}
	cards, ok := doc[setID]
	return cards, ok, nil
}

// Put replaces the cache entry for a set and rewrites the whole document.
func (f *FileStore) Put(setID string, cards []models.CardRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc[setID] = cards
	return f.write(doc)
}

// SetIDs returns the set ids present in the cache.
func (f *FileStore) SetIDs() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *FileStore) read() (map[string][]models.CardRecord, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string][]models.CardRecord), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read card cache: %w", err)
	}

	doc := make(map[string][]models.CardRecord)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("card cache is corrupt: %w", err)
	}
	return doc, nil
}

func (f *FileStore) write(doc map[string][]models.CardRecord) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode card cache: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write card cache: %w", err)
	}
	return nil
}
