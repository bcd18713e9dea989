package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/database/models"
)

// RandomSet is the sentinel set id that asks for a uniformly random set.
const RandomSet = "random"

// Store serves card data for sets, layering an in-memory LRU over the file
// cache over the upstream API. A set is fetched from upstream at most once
// until explicitly refreshed.
type Store struct {
	client *Client
	file   *FileStore
	sets   *SetList
	cache  *lru.Cache
}

func NewStore(client *Client, file *FileStore, sets *SetList) (*Store, error) {
	cache, err := lru.New(config.CatalogCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}
	return &Store{
		client: client,
		file:   file,
		sets:   sets,
		cache:  cache,
	}, nil
}

// Sets returns the static set list.
func (s *Store) Sets() *SetList {
	return s.sets
}

// ResolveSet maps a requested set id to a concrete one, picking a random
// known set when the sentinel is given.
func (s *Store) ResolveSet(setID string) (string, error) {
	if setID == RandomSet {
		return s.sets.Random().ID, nil
	}
	if !s.sets.Contains(setID) {
		return "", fmt.Errorf("%w: unknown set %s", ErrNotFound, setID)
	}
	return setID, nil
}

// CardsForSet returns all cards of a set, consulting the LRU, then the file
// cache, then upstream. Upstream results are persisted before returning.
func (s *Store) CardsForSet(ctx context.Context, setID string) ([]models.CardRecord, error) {
	if cached, ok := s.cache.Get(setID); ok {
		return cached.([]models.CardRecord), nil
	}

	cards, ok, err := s.file.Get(setID)
	if err != nil {
		return nil, err
	}
	if ok {
		s.cache.Add(setID, cards)
		return cards, nil
	}

	return s.Refresh(ctx, setID)
}

// Refresh fetches a set from upstream unconditionally and overwrites both
// cache layers with the result.
func (s *Store) Refresh(ctx context.Context, setID string) ([]models.CardRecord, error) {
	start := time.Now()
	cards, err := s.client.FetchSetCards(ctx, setID)
	if err != nil {
		return nil, err
	}

	if err := s.file.Put(setID, cards); err != nil {
		return nil, err
	}
	s.cache.Add(setID, cards)

	slog.Info("Refreshed set from upstream",
		slog.String("type", "api"),
		slog.String("set_id", setID),
		slog.Int("cards", len(cards)),
		slog.Duration("took", time.Since(start)),
	)
	return cards, nil
}

// Card fetches a single card by id, always from upstream. Single-card
// lookups are rare enough that caching them is not worth the staleness.
func (s *Store) Card(ctx context.Context, cardID string) (*models.CardRecord, error) {
	return s.client.FetchCard(ctx, cardID)
}

// CachedSetIDs returns the set ids present in the file cache.
func (s *Store) CachedSetIDs() ([]string, error) {
	return s.file.SetIDs()
}

// ResolveCard reports whether a card id exists, checking cached sets before
// falling back to upstream. Satisfies the booster resolver used when
// boosters are assigned on chain.
func (s *Store) ResolveCard(ctx context.Context, cardID string) error {
	ids, err := s.file.SetIDs()
	if err == nil {
		for _, setID := range ids {
			cards, ok, err := s.file.Get(setID)
			if err != nil || !ok {
				continue
			}
			for _, c := range cards {
				if c.ID == cardID {
					return nil
				}
			}
		}
	}

	if _, err := s.client.FetchCard(ctx, cardID); err != nil {
		return err
	}
	return nil
}

// Warm preloads the given sets concurrently, at most four fetches in
// flight. Individual failures abort the warm; a cold cache self-heals on
// first request anyway.
func (s *Store) Warm(ctx context.Context, setIDs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, setID := range setIDs {
		g.Go(func() error {
			_, err := s.CardsForSet(gctx, setID)
			return err
		})
	}
	return g.Wait()
}
