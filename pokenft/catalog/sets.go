package catalog

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/sahilm/fuzzy"
)

// Set is one entry of the static set list shipped alongside the service.
type Set struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SetList holds the known card sets, loaded once at startup.
type SetList struct {
	sets  []Set
	names []string
}

type setsFile struct {
	Data []Set `json:"data"`
}

// LoadSetList reads and validates the set list file. Every entry must carry
// both an id and a name; a malformed file fails startup rather than serving
// a partial list.
func LoadSetList(path string) (*SetList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read set list: %w", err)
	}

	var doc setsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("set list is not valid JSON: %w", err)
	}
	if len(doc.Data) == 0 {
		return nil, fmt.Errorf("set list %s contains no sets", path)
	}
	for i, s := range doc.Data {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("set list entry %d is missing id or name", i)
		}
	}

	sets := make([]Set, len(doc.Data))
	copy(sets, doc.Data)
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID < sets[j].ID })

	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	return &SetList{sets: sets, names: names}, nil
}

// Sets returns all known sets in id order.
func (l *SetList) Sets() []Set {
	out := make([]Set, len(l.sets))
	copy(out, l.sets)
	return out
}

// IDs returns all known set ids in order.
func (l *SetList) IDs() []string {
	ids := make([]string, len(l.sets))
	for i, s := range l.sets {
		ids[i] = s.ID
	}
	return ids
}

// Contains reports whether the id names a known set.
func (l *SetList) Contains(id string) bool {
	for _, s := range l.sets {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Random picks one set uniformly at random.
func (l *SetList) Random() Set {
	return l.sets[rand.Intn(len(l.sets))]
}

// Find fuzzy-matches a query against set names and returns the closest
// matches, best first, capped at limit.
func (l *SetList) Find(query string, limit int) []Set {
	matches := fuzzy.Find(query, l.names)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Set, len(matches))
	for i, m := range matches {
		out[i] = l.sets[m.Index]
	}
	return out
}
