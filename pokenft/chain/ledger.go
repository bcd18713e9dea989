package chain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pokenft/pokenft/pokenft/database/models"
)

// Caller identifies the transaction sender: the wallet address and the native
// currency value attached to the call, in the smallest unit.
type Caller struct {
	Address string
	Value   int64
}

// Params fixes the ledger constants at deployment time.
type Params struct {
	// Operator is the only address allowed to create collections, mint cards
	// and create boosters.
	Operator string
	// BoosterFee is charged when a booster is created for a player.
	BoosterFee int64
	// RedemptionFee is charged again when the booster is redeemed. The
	// contract charges at both stages.
	RedemptionFee int64
}

// CardInput describes one card to mint.
type CardInput struct {
	CardNumber   int
	SourceCardID string
	ImageURI     string
}

// CardResolver checks that a catalog card id exists upstream. May be nil, in
// which case booster creation skips resolution.
type CardResolver interface {
	ResolveCard(ctx context.Context, cardID string) error
}

// Ledger implements the game contract: collections, minted cards, boosters
// and users. All mutating calls are totally ordered by a single mutex,
// mirroring the serialization guarantee of the underlying chain, and each
// mutation commits atomically through Store.RunInTx.
type Ledger struct {
	mu       sync.Mutex
	store    Store
	params   Params
	resolver CardResolver
}

func NewLedger(store Store, params Params, resolver CardResolver) *Ledger {
	return &Ledger{
		store:    store,
		params:   params,
		resolver: resolver,
	}
}

// RegisterUser records a wallet address with a display name.
func (l *Ledger) RegisterUser(ctx context.Context, caller Caller, username string) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, err := l.store.User(ctx, caller.Address); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	user := &models.User{
		Address:   caller.Address,
		Username:  username,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := l.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	slog.Info("User registered",
		slog.String("type", "chain"),
		slog.String("address", caller.Address),
		slog.String("username", username))
	return user, nil
}

func (l *Ledger) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return l.store.Users(ctx)
}

// CreateCollection creates an empty collection with a fixed capacity.
// Operator only.
func (l *Ledger) CreateCollection(ctx context.Context, caller Caller, name string, capacity int) (*models.Collection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller.Address != l.params.Operator {
		return nil, ErrUnauthorized
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("collection capacity must be positive, got %d", capacity)
	}

	col := &models.Collection{
		Name:      name,
		Capacity:  capacity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := l.store.CreateCollection(ctx, col); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	slog.Info("Collection created",
		slog.String("type", "chain"),
		slog.Int64("collection_id", col.ID),
		slog.String("name", name),
		slog.Int("capacity", capacity))
	return col, nil
}

func (l *Ledger) GetAllCollections(ctx context.Context) ([]*models.Collection, error) {
	return l.store.Collections(ctx)
}

// MintAndAssignCard mints a single card into a collection for a player.
// Operator only.
func (l *Ledger) MintAndAssignCard(ctx context.Context, caller Caller, collectionID int64, to string, input CardInput) (*models.Card, error) {
	cards, err := l.MintAndAssignMultipleCards(ctx, caller, collectionID, to, []CardInput{input})
	if err != nil {
		return nil, err
	}
	return cards[0], nil
}

// MintAndAssignMultipleCards mints a batch of cards into a collection for a
// player. Token ids are sequential across the ledger. The whole batch mints
// or nothing does.
func (l *Ledger) MintAndAssignMultipleCards(ctx context.Context, caller Caller, collectionID int64, to string, inputs []CardInput) ([]*models.Card, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller.Address != l.params.Operator {
		return nil, ErrUnauthorized
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("nothing to mint")
	}

	var minted []*models.Card
	err := l.store.RunInTx(ctx, func(ctx context.Context, s Store) error {
		var err error
		minted, err = mintInto(ctx, s, collectionID, to, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Cards minted",
		slog.String("type", "chain"),
		slog.Int64("collection_id", collectionID),
		slog.String("to", to),
		slog.Int("count", len(minted)))
	return minted, nil
}

// mintInto performs the capacity check and the actual insert. Callers must
// already hold the ledger lock and run inside a transaction.
func mintInto(ctx context.Context, s Store, collectionID int64, to string, inputs []CardInput) ([]*models.Card, error) {
	col, err := s.Collection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("collection %d: %w", collectionID, ErrNotFound)
	}

	count, err := s.CollectionCardCount(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count collection cards: %w", err)
	}
	if count+len(inputs) > col.Capacity {
		return nil, ErrCollectionFull
	}

	nextID, err := s.NextTokenID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate token ids: %w", err)
	}

	now := time.Now()
	cards := make([]*models.Card, 0, len(inputs))
	for i, in := range inputs {
		cards = append(cards, &models.Card{
			TokenID:      nextID + int64(i),
			CollectionID: collectionID,
			CardNumber:   in.CardNumber,
			SourceCardID: in.SourceCardID,
			ImageURI:     in.ImageURI,
			OwnerAddress: to,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if err := s.InsertCards(ctx, cards); err != nil {
		return nil, fmt.Errorf("failed to mint cards: %w", err)
	}
	return cards, nil
}

// GetNFTsByPlayer returns the token ids owned by an address, in mint order.
func (l *Ledger) GetNFTsByPlayer(ctx context.Context, owner string) ([]int64, error) {
	cards, err := l.store.CardsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.TokenID)
	}
	return ids, nil
}

func (l *Ledger) GetCardMetadata(ctx context.Context, tokenID int64) (models.CardMetadata, error) {
	card, err := l.store.Card(ctx, tokenID)
	if err != nil {
		return models.CardMetadata{}, fmt.Errorf("token %d: %w", tokenID, ErrNotFound)
	}
	return card.Metadata(), nil
}

func (l *Ledger) GetCollectionByCardID(ctx context.Context, tokenID int64) (*models.Collection, error) {
	card, err := l.store.Card(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("token %d: %w", tokenID, ErrNotFound)
	}
	col, err := l.store.Collection(ctx, card.CollectionID)
	if err != nil {
		return nil, fmt.Errorf("collection %d: %w", card.CollectionID, ErrNotFound)
	}
	return col, nil
}

// Approve lets the token owner authorize an operator (the market) to
// transfer the token on their behalf.
func (l *Ledger) Approve(ctx context.Context, caller Caller, tokenID int64, operator string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	card, err := l.store.Card(ctx, tokenID)
	if err != nil {
		return fmt.Errorf("token %d: %w", tokenID, ErrNotFound)
	}
	if card.OwnerAddress != caller.Address {
		return ErrNotOwner
	}
	return l.store.ApproveCard(ctx, tokenID, operator)
}

// CreateBoosterForPlayer creates a booster holding a fixed card list, owned
// by the given player (or unassigned when owner is empty). Operator only;
// requires the booster fee.
func (l *Ledger) CreateBoosterForPlayer(ctx context.Context, caller Caller, owner string, cardIDs []string, collectionName string) (*models.Booster, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller.Address != l.params.Operator {
		return nil, ErrUnauthorized
	}
	if caller.Value < l.params.BoosterFee {
		return nil, ErrInsufficientPayment
	}
	if len(cardIDs) == 0 {
		return nil, ErrEmptyBooster
	}
	for _, id := range cardIDs {
		if id == "" {
			return nil, ErrUnknownCard
		}
		if l.resolver != nil {
			if err := l.resolver.ResolveCard(ctx, id); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCard, id)
			}
		}
	}

	booster := &models.Booster{
		CollectionName: collectionName,
		CardIDs:        append([]string(nil), cardIDs...),
		OwnerAddress:   owner,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := l.store.CreateBooster(ctx, booster); err != nil {
		return nil, fmt.Errorf("failed to create booster: %w", err)
	}

	slog.Info("Booster created",
		slog.String("type", "chain"),
		slog.Int64("booster_id", booster.ID),
		slog.String("owner", owner),
		slog.Int("cards", len(cardIDs)))
	return booster, nil
}

func (l *Ledger) GetBoosterCards(ctx context.Context, boosterID int64) ([]string, error) {
	booster, err := l.store.Booster(ctx, boosterID)
	if err != nil {
		return nil, fmt.Errorf("booster %d: %w", boosterID, ErrNotFound)
	}
	return booster.CardIDs, nil
}

// GetBoosterByUser returns the unredeemed boosters owned by an address.
func (l *Ledger) GetBoosterByUser(ctx context.Context, owner string) ([]*models.Booster, error) {
	boosters, err := l.store.BoostersByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	pending := make([]*models.Booster, 0, len(boosters))
	for _, b := range boosters {
		if !b.Redeemed {
			pending = append(pending, b)
		}
	}
	return pending, nil
}

func (l *Ledger) GetAllBoosters(ctx context.Context) ([]*models.Booster, error) {
	return l.store.Boosters(ctx)
}

// RedeemBoosterAndCreateCollection converts a booster into a new collection
// of minted cards owned by the redeemer. The collection capacity equals the
// card count, card numbers are taken from the inputs, and the booster flips
// to redeemed. The whole transition is atomic: on any failure nothing
// persists and the booster stays assigned. Redemption happens at most once
// per booster and requires the redemption fee.
func (l *Ledger) RedeemBoosterAndCreateCollection(ctx context.Context, caller Caller, boosterID int64, collectionName string, inputs []CardInput) (*models.Collection, []*models.Card, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	booster, err := l.store.Booster(ctx, boosterID)
	if err != nil {
		return nil, nil, fmt.Errorf("booster %d: %w", boosterID, ErrNotFound)
	}
	if booster.Redeemed {
		return nil, nil, ErrAlreadyRedeemed
	}
	if booster.OwnerAddress == "" || booster.OwnerAddress != caller.Address {
		return nil, nil, ErrNotOwner
	}
	if caller.Value < l.params.RedemptionFee {
		return nil, nil, ErrInsufficientPayment
	}
	if len(inputs) != len(booster.CardIDs) {
		return nil, nil, fmt.Errorf("card inputs (%d) do not match booster contents (%d)", len(inputs), len(booster.CardIDs))
	}

	name := collectionName
	if name == "" {
		name = booster.CollectionName
	}

	var (
		col    *models.Collection
		minted []*models.Card
	)
	err = l.store.RunInTx(ctx, func(ctx context.Context, s Store) error {
		col = &models.Collection{
			Name:      name,
			Capacity:  len(inputs),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.CreateCollection(ctx, col); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		var err error
		minted, err = mintInto(ctx, s, col.ID, caller.Address, inputs)
		if err != nil {
			return err
		}

		if err := s.MarkBoosterRedeemed(ctx, boosterID); err != nil {
			return fmt.Errorf("failed to mark booster redeemed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Booster redeemed",
		slog.String("type", "chain"),
		slog.Int64("booster_id", boosterID),
		slog.Int64("collection_id", col.ID),
		slog.String("redeemer", caller.Address),
		slog.Int("cards", len(minted)))
	return col, minted, nil
}
