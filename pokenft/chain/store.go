package chain

import (
	"context"

	"github.com/pokenft/pokenft/pokenft/database/models"
)

// Store is the persistence boundary of the ledger. The postgres
// implementation lives in database/repositories; a memory implementation in
// this package backs tests. Mutations inside RunInTx commit together or not
// at all.
type Store interface {
	CreateCollection(ctx context.Context, col *models.Collection) error
	Collection(ctx context.Context, id int64) (*models.Collection, error)
	Collections(ctx context.Context) ([]*models.Collection, error)
	CollectionCardCount(ctx context.Context, id int64) (int, error)

	NextTokenID(ctx context.Context) (int64, error)
	InsertCards(ctx context.Context, cards []*models.Card) error
	Card(ctx context.Context, tokenID int64) (*models.Card, error)
	CardsByOwner(ctx context.Context, owner string) ([]*models.Card, error)
	CardsByCollection(ctx context.Context, collectionID int64) ([]*models.Card, error)
	TransferCard(ctx context.Context, tokenID int64, newOwner string) error
	ApproveCard(ctx context.Context, tokenID int64, operator string) error

	CreateBooster(ctx context.Context, booster *models.Booster) error
	Booster(ctx context.Context, id int64) (*models.Booster, error)
	BoostersByOwner(ctx context.Context, owner string) ([]*models.Booster, error)
	Boosters(ctx context.Context) ([]*models.Booster, error)
	MarkBoosterRedeemed(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, user *models.User) error
	User(ctx context.Context, address string) (*models.User, error)
	Users(ctx context.Context) ([]*models.User, error)
	CreditBalance(ctx context.Context, address string, amount int64) error

	CreateListing(ctx context.Context, listing *models.Listing) error
	Listing(ctx context.Context, tokenID int64) (*models.Listing, error)
	ActiveListings(ctx context.Context) ([]*models.Listing, error)
	DeactivateListing(ctx context.Context, tokenID int64) error

	RunInTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
