package repositories

import (
	"context"
	"time"

	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/database/models"
	"github.com/uptrace/bun"
)

type CardRepository interface {
	BulkCreate(ctx context.Context, cards []*models.Card) error
	GetByTokenID(ctx context.Context, tokenID int64) (*models.Card, error)
	GetByOwner(ctx context.Context, owner string) ([]*models.Card, error)
	GetByCollectionID(ctx context.Context, collectionID int64) ([]*models.Card, error)
	NextTokenID(ctx context.Context) (int64, error)
	Transfer(ctx context.Context, tokenID int64, newOwner string) error
	Approve(ctx context.Context, tokenID int64, operator string) error
}

type cardRepository struct {
	db bun.IDB
}

func NewCardRepository(db bun.IDB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) BulkCreate(ctx context.Context, cards []*models.Card) error {
	if len(cards) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	now := time.Now()
	for _, card := range cards {
		card.CreatedAt = now
		card.UpdatedAt = now
	}

	_, err := r.db.NewInsert().
		Model(&cards).
		Exec(ctx)
	return err
}

func (r *cardRepository) GetByTokenID(ctx context.Context, tokenID int64) (*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("token_id = ?", tokenID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (r *cardRepository) GetByOwner(ctx context.Context, owner string) ([]*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("owner_address = ?", owner).
		Order("token_id ASC").
		Scan(ctx)
	return cards, err
}

func (r *cardRepository) GetByCollectionID(ctx context.Context, collectionID int64) ([]*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("collection_id = ?", collectionID).
		Order("token_id ASC").
		Scan(ctx)
	return cards, err
}

// NextTokenID returns one past the highest minted token id. Token ids start
// at 1.
func (r *cardRepository) NextTokenID(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var max int64
	err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		ColumnExpr("COALESCE(MAX(token_id), 0)").
		Scan(ctx, &max)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *cardRepository) Transfer(ctx context.Context, tokenID int64, newOwner string) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewUpdate().
		Model((*models.Card)(nil)).
		Set("owner_address = ?", newOwner).
		Set("approved_address = ''").
		Set("updated_at = ?", time.Now()).
		Where("token_id = ?", tokenID).
		Exec(ctx)
	return err
}

func (r *cardRepository) Approve(ctx context.Context, tokenID int64, operator string) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewUpdate().
		Model((*models.Card)(nil)).
		Set("approved_address = ?", operator).
		Set("updated_at = ?", time.Now()).
		Where("token_id = ?", tokenID).
		Exec(ctx)
	return err
}
