package repositories

import (
	"context"
	"time"

	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/database/models"
	"github.com/uptrace/bun"
)

type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id int64) (*models.Collection, error)
	GetAll(ctx context.Context) ([]*models.Collection, error)
	CountCards(ctx context.Context, id int64) (int, error)
}

type collectionRepository struct {
	db bun.IDB
}

// NewCollectionRepository binds a repository to a database handle or an open
// transaction.
func NewCollectionRepository(db bun.IDB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	collection.CreatedAt = time.Now()
	collection.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(collection).
		Returning("id").
		Exec(ctx)
	return err
}

func (r *collectionRepository) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	collection := new(models.Collection)
	err := r.db.NewSelect().
		Model(collection).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (r *collectionRepository) GetAll(ctx context.Context) ([]*models.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var collections []*models.Collection
	err := r.db.NewSelect().
		Model(&collections).
		Order("id ASC").
		Scan(ctx)
	return collections, err
}

func (r *collectionRepository) CountCards(ctx context.Context, id int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	return r.db.NewSelect().
		Model((*models.Card)(nil)).
		Where("collection_id = ?", id).
		Count(ctx)
}
