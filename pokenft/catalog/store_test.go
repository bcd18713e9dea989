package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokenft/pokenft/pokenft/database/models"
)

func upstreamCards(setID string, n int) []models.CardRecord {
	cards := make([]models.CardRecord, n)
	for i := range cards {
		cards[i] = models.CardRecord{
			ID:     fmt.Sprintf("%s-%d", setID, i+1),
			Name:   fmt.Sprintf("Card %d", i+1),
			Number: fmt.Sprintf("%d", i+1),
		}
		cards[i].Set.ID = setID
		cards[i].Set.Name = "Test Set"
	}
	return cards
}

// newUpstream fakes the card API and counts how many set fetches it served.
func newUpstream(t *testing.T, fetches *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/cards/") {
			cardID := strings.TrimPrefix(r.URL.Path, "/cards/")
			if cardID == "missing-1" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]models.CardRecord{
				"data": {ID: cardID, Name: "Single"},
			})
			return
		}

		q := r.URL.Query().Get("q")
		setID := strings.TrimPrefix(q, "set.id:")
		if setID == "empty" {
			json.NewEncoder(w).Encode(map[string][]models.CardRecord{"data": {}})
			return
		}
		fetches.Add(1)
		json.NewEncoder(w).Encode(map[string][]models.CardRecord{
			"data": upstreamCards(setID, 10),
		})
	}))
}

func newTestStore(t *testing.T, baseURL string) *Store {
	t.Helper()
	dir := t.TempDir()

	setsPath := filepath.Join(dir, "sets.json")
	require.NoError(t, os.WriteFile(setsPath, []byte(`{"data":[
		{"id":"base1","name":"Base"},
		{"id":"base2","name":"Jungle"}
	]}`), 0o644))
	sets, err := LoadSetList(setsPath)
	require.NoError(t, err)

	client := NewClient(baseURL, "test-key", 250)
	store, err := NewStore(client, NewFileStore(filepath.Join(dir, "cards.json")), sets)
	require.NoError(t, err)
	return store
}

func TestCardsForSetFetchesOnce(t *testing.T) {
	var fetches atomic.Int64
	upstream := newUpstream(t, &fetches)
	defer upstream.Close()

	store := newTestStore(t, upstream.URL)
	ctx := context.Background()

	first, err := store.CardsForSet(ctx, "base1")
	require.NoError(t, err)
	require.Len(t, first, 10)

	second, err := store.CardsForSet(ctx, "base1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), fetches.Load(), "second call must come from cache")
}

func TestCardsForSetSurvivesColdLRU(t *testing.T) {
	var fetches atomic.Int64
	upstream := newUpstream(t, &fetches)
	defer upstream.Close()

	dir := t.TempDir()
	setsPath := filepath.Join(dir, "sets.json")
	require.NoError(t, os.WriteFile(setsPath, []byte(`{"data":[{"id":"base1","name":"Base"}]}`), 0o644))
	sets, err := LoadSetList(setsPath)
	require.NoError(t, err)

	cachePath := filepath.Join(dir, "cards.json")
	client := NewClient(upstream.URL, "", 250)

	store, err := NewStore(client, NewFileStore(cachePath), sets)
	require.NoError(t, err)
	_, err = store.CardsForSet(context.Background(), "base1")
	require.NoError(t, err)

	// A fresh store over the same cache file must not refetch.
	store2, err := NewStore(client, NewFileStore(cachePath), sets)
	require.NoError(t, err)
	cards, err := store2.CardsForSet(context.Background(), "base1")
	require.NoError(t, err)

	assert.Len(t, cards, 10)
	assert.Equal(t, int64(1), fetches.Load())
}

func TestRefreshOverwritesCache(t *testing.T) {
	var fetches atomic.Int64
	upstream := newUpstream(t, &fetches)
	defer upstream.Close()

	store := newTestStore(t, upstream.URL)
	ctx := context.Background()

	_, err := store.CardsForSet(ctx, "base1")
	require.NoError(t, err)

	_, err = store.Refresh(ctx, "base1")
	require.NoError(t, err)

	assert.Equal(t, int64(2), fetches.Load(), "refresh must hit upstream")
}

func TestCardsForSetEmptySetIsNotFound(t *testing.T) {
	var fetches atomic.Int64
	upstream := newUpstream(t, &fetches)
	defer upstream.Close()

	store := newTestStore(t, upstream.URL)

	_, err := store.CardsForSet(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCardsForSetUpstreamDown(t *testing.T) {
	store := newTestStore(t, "http://127.0.0.1:1")

	_, err := store.CardsForSet(context.Background(), "base1")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestCardAlwaysUpstream(t *testing.T) {
	var fetches atomic.Int64
	upstream := newUpstream(t, &fetches)
	defer upstream.Close()

	store := newTestStore(t, upstream.URL)
	ctx := context.Background()

	card, err := store.Card(ctx, "base1-4")
	require.NoError(t, err)
	assert.Equal(t, "base1-4", card.ID)

	_, err = store.Card(ctx, "missing-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveCardPrefersCache(t *testing.T) {
	var fetches atomic.Int64
	upstream := newUpstream(t, &fetches)
	defer upstream.Close()

	store := newTestStore(t, upstream.URL)
	ctx := context.Background()

	_, err := store.CardsForSet(ctx, "base1")
	require.NoError(t, err)

	assert.NoError(t, store.ResolveCard(ctx, "base1-3"))
	assert.Error(t, store.ResolveCard(ctx, "missing-1"))
}

func TestResolveSet(t *testing.T) {
	var fetches atomic.Int64
	upstream := newUpstream(t, &fetches)
	defer upstream.Close()

	store := newTestStore(t, upstream.URL)

	got, err := store.ResolveSet("base1")
	require.NoError(t, err)
	assert.Equal(t, "base1", got)

	_, err = store.ResolveSet("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	random, err := store.ResolveSet(RandomSet)
	require.NoError(t, err)
	assert.Contains(t, []string{"base1", "base2"}, random)
}

func TestWarmPreloadsSets(t *testing.T) {
	var fetches atomic.Int64
	upstream := newUpstream(t, &fetches)
	defer upstream.Close()

	store := newTestStore(t, upstream.URL)
	ctx := context.Background()

	require.NoError(t, store.Warm(ctx, []string{"base1", "base2"}))
	assert.Equal(t, int64(2), fetches.Load())

	// Warm again: everything is already cached.
	require.NoError(t, store.Warm(ctx, []string{"base1", "base2"}))
	assert.Equal(t, int64(2), fetches.Load())
}
