package repositories

import (
	"context"

	"github.com/pokenft/pokenft/pokenft/chain"
	"github.com/pokenft/pokenft/pokenft/database/models"
	"github.com/uptrace/bun"
)

// ChainStore assembles the entity repositories into the ledger's storage
// interface. Bound to *bun.DB it opens real transactions; bound to a bun.Tx
// (inside RunInTx) it joins the ongoing one.
type ChainStore struct {
	db          bun.IDB
	collections CollectionRepository
	cards       CardRepository
	boosters    BoosterRepository
	users       UserRepository
	listings    ListingRepository
}

var _ chain.Store = (*ChainStore)(nil)

func NewChainStore(db bun.IDB) *ChainStore {
	return &ChainStore{
		db:          db,
		collections: NewCollectionRepository(db),
		cards:       NewCardRepository(db),
		boosters:    NewBoosterRepository(db),
		users:       NewUserRepository(db),
		listings:    NewListingRepository(db),
	}
}

func (s *ChainStore) RunInTx(ctx context.Context, fn func(ctx context.Context, st chain.Store) error) error {
	db, ok := s.db.(*bun.DB)
	if !ok {
		// Already inside a transaction; join it.
		return fn(ctx, s)
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, NewChainStore(tx))
	})
}

func (s *ChainStore) CreateCollection(ctx context.Context, col *models.Collection) error {
	return s.collections.Create(ctx, col)
}

func (s *ChainStore) Collection(ctx context.Context, id int64) (*models.Collection, error) {
	return s.collections.GetByID(ctx, id)
}

func (s *ChainStore) Collections(ctx context.Context) ([]*models.Collection, error) {
	return s.collections.GetAll(ctx)
}

func (s *ChainStore) CollectionCardCount(ctx context.Context, id int64) (int, error) {
	return s.collections.CountCards(ctx, id)
}

func (s *ChainStore) NextTokenID(ctx context.Context) (int64, error) {
	return s.cards.NextTokenID(ctx)
}

func (s *ChainStore) InsertCards(ctx context.Context, cards []*models.Card) error {
	return s.cards.BulkCreate(ctx, cards)
}

func (s *ChainStore) Card(ctx context.Context, tokenID int64) (*models.Card, error) {
	return s.cards.GetByTokenID(ctx, tokenID)
}

func (s *ChainStore) CardsByOwner(ctx context.Context, owner string) ([]*models.Card, error) {
	return s.cards.GetByOwner(ctx, owner)
}

func (s *ChainStore) CardsByCollection(ctx context.Context, collectionID int64) ([]*models.Card, error) {
	return s.cards.GetByCollectionID(ctx, collectionID)
}

func (s *ChainStore) TransferCard(ctx context.Context, tokenID int64, newOwner string) error {
	return s.cards.Transfer(ctx, tokenID, newOwner)
}

func (s *ChainStore) ApproveCard(ctx context.Context, tokenID int64, operator string) error {
	return s.cards.Approve(ctx, tokenID, operator)
}

func (s *ChainStore) CreateBooster(ctx context.Context, booster *models.Booster) error {
	return s.boosters.Create(ctx, booster)
}

func (s *ChainStore) Booster(ctx context.Context, id int64) (*models.Booster, error) {
	return s.boosters.GetByID(ctx, id)
}

func (s *ChainStore) BoostersByOwner(ctx context.Context, owner string) ([]*models.Booster, error) {
	return s.boosters.GetByOwner(ctx, owner)
}

func (s *ChainStore) Boosters(ctx context.Context) ([]*models.Booster, error) {
	return s.boosters.GetAll(ctx)
}

func (s *ChainStore) MarkBoosterRedeemed(ctx context.Context, id int64) error {
	return s.boosters.MarkRedeemed(ctx, id)
}

func (s *ChainStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.users.Create(ctx, user)
}

func (s *ChainStore) User(ctx context.Context, address string) (*models.User, error) {
	return s.users.GetByAddress(ctx, address)
}

func (s *ChainStore) Users(ctx context.Context) ([]*models.User, error) {
	return s.users.GetAll(ctx)
}

func (s *ChainStore) CreditBalance(ctx context.Context, address string, amount int64) error {
	return s.users.CreditBalance(ctx, address, amount)
}

func (s *ChainStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	return s.listings.Create(ctx, listing)
}

func (s *ChainStore) Listing(ctx context.Context, tokenID int64) (*models.Listing, error) {
	return s.listings.GetByTokenID(ctx, tokenID)
}

func (s *ChainStore) ActiveListings(ctx context.Context) ([]*models.Listing, error) {
	return s.listings.GetActive(ctx)
}

func (s *ChainStore) DeactivateListing(ctx context.Context, tokenID int64) error {
	return s.listings.Deactivate(ctx, tokenID)
}
