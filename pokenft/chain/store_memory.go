package chain

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pokenft/pokenft/pokenft/database/models"
)

// MemoryStore is an in-process Store used by tests and local development.
// RunInTx snapshots the state and restores it when the function fails, so
// transactional semantics match the postgres implementation.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	collections      map[int64]*models.Collection
	nextCollectionID int64
	cards            map[int64]*models.Card
	boosters         map[int64]*models.Booster
	nextBoosterID    int64
	users            map[string]*models.User
	listings         map[int64]*models.Listing
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		collections:      make(map[int64]*models.Collection),
		nextCollectionID: 1,
		cards:            make(map[int64]*models.Card),
		boosters:         make(map[int64]*models.Booster),
		nextBoosterID:    1,
		users:            make(map[string]*models.User),
		listings:         make(map[int64]*models.Listing),
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		collections:      make(map[int64]*models.Collection, len(s.collections)),
		nextCollectionID: s.nextCollectionID,
		cards:            make(map[int64]*models.Card, len(s.cards)),
		boosters:         make(map[int64]*models.Booster, len(s.boosters)),
		nextBoosterID:    s.nextBoosterID,
		users:            make(map[string]*models.User, len(s.users)),
		listings:         make(map[int64]*models.Listing, len(s.listings)),
	}
	for id, col := range s.collections {
		cp := *col
		c.collections[id] = &cp
	}
	for id, card := range s.cards {
		cp := *card
		c.cards[id] = &cp
	}
	for id, b := range s.boosters {
		cp := *b
		cp.CardIDs = append([]string(nil), b.CardIDs...)
		c.boosters[id] = &cp
	}
	for addr, u := range s.users {
		cp := *u
		c.users[addr] = &cp
	}
	for id, l := range s.listings {
		cp := *l
		c.listings[id] = &cp
	}
	return c
}

func (m *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(ctx, &memTx{state: m.state}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) CreateCollection(ctx context.Context, col *models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createCollection(col)
}

func (m *MemoryStore) Collection(ctx context.Context, id int64) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.collection(id)
}

func (m *MemoryStore) Collections(ctx context.Context) ([]*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.allCollections(), nil
}

func (m *MemoryStore) CollectionCardCount(ctx context.Context, id int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.collectionCardCount(id), nil
}

func (m *MemoryStore) NextTokenID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.nextTokenID(), nil
}

func (m *MemoryStore) InsertCards(ctx context.Context, cards []*models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.insertCards(cards)
}

func (m *MemoryStore) Card(ctx context.Context, tokenID int64) (*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.card(tokenID)
}

func (m *MemoryStore) CardsByOwner(ctx context.Context, owner string) ([]*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.cardsByOwner(owner), nil
}

func (m *MemoryStore) CardsByCollection(ctx context.Context, collectionID int64) ([]*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.cardsByCollection(collectionID), nil
}

func (m *MemoryStore) TransferCard(ctx context.Context, tokenID int64, newOwner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.transferCard(tokenID, newOwner)
}

func (m *MemoryStore) ApproveCard(ctx context.Context, tokenID int64, operator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.approveCard(tokenID, operator)
}

func (m *MemoryStore) CreateBooster(ctx context.Context, booster *models.Booster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createBooster(booster)
}

func (m *MemoryStore) Booster(ctx context.Context, id int64) (*models.Booster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.booster(id)
}

func (m *MemoryStore) BoostersByOwner(ctx context.Context, owner string) ([]*models.Booster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.boostersByOwner(owner), nil
}

func (m *MemoryStore) Boosters(ctx context.Context) ([]*models.Booster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.allBoosters(), nil
}

func (m *MemoryStore) MarkBoosterRedeemed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.markBoosterRedeemed(id)
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createUser(user)
}

func (m *MemoryStore) User(ctx context.Context, address string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.user(address)
}

func (m *MemoryStore) Users(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.allUsers(), nil
}

func (m *MemoryStore) CreditBalance(ctx context.Context, address string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.creditBalance(address, amount)
}

func (m *MemoryStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createListing(listing)
}

func (m *MemoryStore) Listing(ctx context.Context, tokenID int64) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.listing(tokenID)
}

func (m *MemoryStore) ActiveListings(ctx context.Context) ([]*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.activeListings(), nil
}

func (m *MemoryStore) DeactivateListing(ctx context.Context, tokenID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.deactivateListing(tokenID)
}

// memTx is the Store handed to RunInTx callbacks. The outer lock is already
// held, so it operates on the state directly; a nested RunInTx joins the
// current transaction.
type memTx struct {
	state *memState
}

func (t *memTx) RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return fn(ctx, t)
}

func (t *memTx) CreateCollection(ctx context.Context, col *models.Collection) error {
	return t.state.createCollection(col)
}

func (t *memTx) Collection(ctx context.Context, id int64) (*models.Collection, error) {
	return t.state.collection(id)
}

func (t *memTx) Collections(ctx context.Context) ([]*models.Collection, error) {
	return t.state.allCollections(), nil
}

func (t *memTx) CollectionCardCount(ctx context.Context, id int64) (int, error) {
	return t.state.collectionCardCount(id), nil
}

func (t *memTx) NextTokenID(ctx context.Context) (int64, error) {
	return t.state.nextTokenID(), nil
}

func (t *memTx) InsertCards(ctx context.Context, cards []*models.Card) error {
	return t.state.insertCards(cards)
}

func (t *memTx) Card(ctx context.Context, tokenID int64) (*models.Card, error) {
	return t.state.card(tokenID)
}

func (t *memTx) CardsByOwner(ctx context.Context, owner string) ([]*models.Card, error) {
	return t.state.cardsByOwner(owner), nil
}

func (t *memTx) CardsByCollection(ctx context.Context, collectionID int64) ([]*models.Card, error) {
	return t.state.cardsByCollection(collectionID), nil
}

func (t *memTx) TransferCard(ctx context.Context, tokenID int64, newOwner string) error {
	return t.state.transferCard(tokenID, newOwner)
}

func (t *memTx) ApproveCard(ctx context.Context, tokenID int64, operator string) error {
	return t.state.approveCard(tokenID, operator)
}

func (t *memTx) CreateBooster(ctx context.Context, booster *models.Booster) error {
	return t.state.createBooster(booster)
}

func (t *memTx) Booster(ctx context.Context, id int64) (*models.Booster, error) {
	return t.state.booster(id)
}

func (t *memTx) BoostersByOwner(ctx context.Context, owner string) ([]*models.Booster, error) {
	return t.state.boostersByOwner(owner), nil
}

func (t *memTx) Boosters(ctx context.Context) ([]*models.Booster, error) {
	return t.state.allBoosters(), nil
}

func (t *memTx) MarkBoosterRedeemed(ctx context.Context, id int64) error {
	return t.state.markBoosterRedeemed(id)
}

func (t *memTx) CreateUser(ctx context.Context, user *models.User) error {
	return t.state.createUser(user)
}

func (t *memTx) User(ctx context.Context, address string) (*models.User, error) {
	return t.state.user(address)
}

func (t *memTx) Users(ctx context.Context) ([]*models.User, error) {
	return t.state.allUsers(), nil
}

func (t *memTx) CreditBalance(ctx context.Context, address string, amount int64) error {
	return t.state.creditBalance(address, amount)
}

func (t *memTx) CreateListing(ctx context.Context, listing *models.Listing) error {
	return t.state.createListing(listing)
}

func (t *memTx) Listing(ctx context.Context, tokenID int64) (*models.Listing, error) {
	return t.state.listing(tokenID)
}

func (t *memTx) ActiveListings(ctx context.Context) ([]*models.Listing, error) {
	return t.state.activeListings(), nil
}

func (t *memTx) DeactivateListing(ctx context.Context, tokenID int64) error {
	return t.state.deactivateListing(tokenID)
}

// state operations

func (s *memState) createCollection(col *models.Collection) error {
	if col.ID == 0 {
		col.ID = s.nextCollectionID
	}
	if col.ID >= s.nextCollectionID {
		s.nextCollectionID = col.ID + 1
	}
	cp := *col
	s.collections[col.ID] = &cp
	return nil
}

func (s *memState) collection(id int64) (*models.Collection, error) {
	col, ok := s.collections[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *col
	return &cp, nil
}

func (s *memState) allCollections() []*models.Collection {
	out := make([]*models.Collection, 0, len(s.collections))
	for _, col := range s.collections {
		cp := *col
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memState) collectionCardCount(id int64) int {
	count := 0
	for _, c := range s.cards {
		if c.CollectionID == id {
			count++
		}
	}
	return count
}

func (s *memState) nextTokenID() int64 {
	var max int64
	for id := range s.cards {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func (s *memState) insertCards(cards []*models.Card) error {
	for _, c := range cards {
		if _, exists := s.cards[c.TokenID]; exists {
			return fmt.Errorf("token %d already minted", c.TokenID)
		}
	}
	for _, c := range cards {
		cp := *c
		s.cards[c.TokenID] = &cp
	}
	return nil
}

func (s *memState) card(tokenID int64) (*models.Card, error) {
	c, ok := s.cards[tokenID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memState) cardsByOwner(owner string) []*models.Card {
	out := make([]*models.Card, 0)
	for _, c := range s.cards {
		if c.OwnerAddress == owner {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}

func (s *memState) cardsByCollection(collectionID int64) []*models.Card {
	out := make([]*models.Card, 0)
	for _, c := range s.cards {
		if c.CollectionID == collectionID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}

func (s *memState) transferCard(tokenID int64, newOwner string) error {
	c, ok := s.cards[tokenID]
	if !ok {
		return ErrNotFound
	}
	c.OwnerAddress = newOwner
	c.ApprovedAddress = ""
	c.UpdatedAt = time.Now()
	return nil
}

func (s *memState) approveCard(tokenID int64, operator string) error {
	c, ok := s.cards[tokenID]
	if !ok {
		return ErrNotFound
	}
	c.ApprovedAddress = operator
	c.UpdatedAt = time.Now()
	return nil
}

func (s *memState) createBooster(booster *models.Booster) error {
	if booster.ID == 0 {
		booster.ID = s.nextBoosterID
	}
	if booster.ID >= s.nextBoosterID {
		s.nextBoosterID = booster.ID + 1
	}
	cp := *booster
	cp.CardIDs = append([]string(nil), booster.CardIDs...)
	s.boosters[booster.ID] = &cp
	return nil
}

func (s *memState) booster(id int64) (*models.Booster, error) {
	b, ok := s.boosters[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	cp.CardIDs = append([]string(nil), b.CardIDs...)
	return &cp, nil
}

func (s *memState) boostersByOwner(owner string) []*models.Booster {
	out := make([]*models.Booster, 0)
	for _, b := range s.boosters {
		if b.OwnerAddress == owner {
			cp := *b
			cp.CardIDs = append([]string(nil), b.CardIDs...)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memState) allBoosters() []*models.Booster {
	out := make([]*models.Booster, 0, len(s.boosters))
	for _, b := range s.boosters {
		cp := *b
		cp.CardIDs = append([]string(nil), b.CardIDs...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memState) markBoosterRedeemed(id int64) error {
	b, ok := s.boosters[id]
	if !ok {
		return ErrNotFound
	}
	b.Redeemed = true
	b.UpdatedAt = time.Now()
	return nil
}

func (s *memState) createUser(user *models.User) error {
	cp := *user
	s.users[user.Address] = &cp
	return nil
}

func (s *memState) user(address string) (*models.User, error) {
	u, ok := s.users[address]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memState) allUsers() []*models.User {
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func (s *memState) creditBalance(address string, amount int64) error {
	u, ok := s.users[address]
	if !ok {
		// Sellers are not required to be registered; credit accrues once
		// they register with the same address.
		return nil
	}
	u.Balance += amount
	u.UpdatedAt = time.Now()
	return nil
}

func (s *memState) createListing(listing *models.Listing) error {
	cp := *listing
	s.listings[listing.TokenID] = &cp
	return nil
}

func (s *memState) listing(tokenID int64) (*models.Listing, error) {
	l, ok := s.listings[tokenID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *memState) activeListings() []*models.Listing {
	out := make([]*models.Listing, 0)
	for _, l := range s.listings {
		if l.Active {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}

func (s *memState) deactivateListing(tokenID int64) error {
	l, ok := s.listings[tokenID]
	if !ok {
		return ErrNotFound
	}
	l.Active = false
	l.UpdatedAt = time.Now()
	return nil
}
