package booster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokenft/pokenft/pokenft/catalog"
	"github.com/pokenft/pokenft/pokenft/database/models"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setID := strings.TrimPrefix(r.URL.Query().Get("q"), "set.id:")
		cards := make([]models.CardRecord, 8)
		for i := range cards {
			cards[i] = models.CardRecord{
				ID:     fmt.Sprintf("%s-%d", setID, i+1),
				Name:   fmt.Sprintf("Card %d", i+1),
				Number: fmt.Sprintf("%d", i+1),
			}
			cards[i].Set.ID = setID
			cards[i].Set.Name = "Test Set"
		}
		json.NewEncoder(w).Encode(map[string][]models.CardRecord{"data": cards})
	}))
	t.Cleanup(upstream.Close)

	dir := t.TempDir()
	setsPath := filepath.Join(dir, "sets.json")
	require.NoError(t, os.WriteFile(setsPath, []byte(`{"data":[
		{"id":"base1","name":"Base"},
		{"id":"base2","name":"Jungle"}
	]}`), 0o644))
	sets, err := catalog.LoadSetList(setsPath)
	require.NoError(t, err)

	client := catalog.NewClient(upstream.URL, "", 250)
	store, err := catalog.NewStore(client, catalog.NewFileStore(filepath.Join(dir, "cards.json")), sets)
	require.NoError(t, err)

	return NewGenerator(store, 5)
}

func TestGenerate(t *testing.T) {
	g := newTestGenerator(t)

	pack, err := g.Generate(context.Background(), "base1", 3, "Starter")
	require.NoError(t, err)

	assert.Equal(t, "Starter", pack.Name)
	assert.Equal(t, "base1", pack.SetID)
	assert.Len(t, pack.CardIDs, 3)
	assert.Len(t, pack.Cards, 3)
	for i, id := range pack.CardIDs {
		assert.True(t, strings.HasPrefix(id, "base1-"))
		assert.Equal(t, id, pack.Cards[i].ID)
	}
}

func TestGenerateDefaultCount(t *testing.T) {
	g := newTestGenerator(t)

	pack, err := g.Generate(context.Background(), "base1", -1, "Default")
	require.NoError(t, err)
	assert.Len(t, pack.CardIDs, 5)
}

func TestGenerateZeroCountIsEmptyPack(t *testing.T) {
	g := newTestGenerator(t)

	pack, err := g.Generate(context.Background(), "base1", 0, "Empty")
	require.NoError(t, err)
	assert.Empty(t, pack.CardIDs)
	assert.Empty(t, pack.Cards)
	assert.Equal(t, "base1", pack.SetID)
}

func TestGenerateRandomSet(t *testing.T) {
	g := newTestGenerator(t)

	pack, err := g.Generate(context.Background(), "random", 2, "Lucky")
	require.NoError(t, err)
	assert.Contains(t, []string{"base1", "base2"}, pack.SetID)
}

func TestGenerateUnknownSet(t *testing.T) {
	g := newTestGenerator(t)

	_, err := g.Generate(context.Background(), "neverland", 2, "Lost")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestGenerateTooLarge(t *testing.T) {
	g := newTestGenerator(t)

	_, err := g.Generate(context.Background(), "base1", 99, "Huge")
	assert.ErrorIs(t, err, ErrInsufficientCards)
}
