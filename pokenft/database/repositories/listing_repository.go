package repositories

import (
	"context"
	"time"

	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/database/models"
	"github.com/uptrace/bun"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByTokenID(ctx context.Context, tokenID int64) (*models.Listing, error)
	GetActive(ctx context.Context) ([]*models.Listing, error)
	Deactivate(ctx context.Context, tokenID int64) error
}

type listingRepository struct {
	db bun.IDB
}

func NewListingRepository(db bun.IDB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	listing.CreatedAt = time.Now()
	listing.UpdatedAt = time.Now()

	// A token relists after an earlier listing ended, so upsert on the pk.
	_, err := r.db.NewInsert().
		Model(listing).
		On("CONFLICT (token_id) DO UPDATE").
		Set("seller_address = EXCLUDED.seller_address").
		Set("price = EXCLUDED.price").
		Set("active = EXCLUDED.active").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *listingRepository) GetByTokenID(ctx context.Context, tokenID int64) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	listing := new(models.Listing)
	err := r.db.NewSelect().
		Model(listing).
		Where("token_id = ?", tokenID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *listingRepository) GetActive(ctx context.Context) ([]*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var listings []*models.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("active").
		Order("token_id ASC").
		Scan(ctx)
	return listings, err
}

func (r *listingRepository) Deactivate(ctx context.Context, tokenID int64) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewUpdate().
		Model((*models.Listing)(nil)).
		Set("active = FALSE").
		Set("updated_at = ?", time.Now()).
		Where("token_id = ?", tokenID).
		Exec(ctx)
	return err
}
