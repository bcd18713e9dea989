package repositories

import (
	"context"
	"time"

	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/database/models"
	"github.com/uptrace/bun"
)

type BoosterRepository interface {
	Create(ctx context.Context, booster *models.Booster) error
	GetByID(ctx context.Context, id int64) (*models.Booster, error)
	GetByOwner(ctx context.Context, owner string) ([]*models.Booster, error)
	GetAll(ctx context.Context) ([]*models.Booster, error)
	MarkRedeemed(ctx context.Context, id int64) error
}

type boosterRepository struct {
	db bun.IDB
}

func NewBoosterRepository(db bun.IDB) BoosterRepository {
	return &boosterRepository{db: db}
}

func (r *boosterRepository) Create(ctx context.Context, booster *models.Booster) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	booster.CreatedAt = time.Now()
	booster.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(booster).
		Returning("id").
		Exec(ctx)
	return err
}

func (r *boosterRepository) GetByID(ctx context.Context, id int64) (*models.Booster, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	booster := new(models.Booster)
	err := r.db.NewSelect().
		Model(booster).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return booster, nil
}

func (r *boosterRepository) GetByOwner(ctx context.Context, owner string) ([]*models.Booster, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var boosters []*models.Booster
	err := r.db.NewSelect().
		Model(&boosters).
		Where("owner_address = ?", owner).
		Order("id ASC").
		Scan(ctx)
	return boosters, err
}

func (r *boosterRepository) GetAll(ctx context.Context) ([]*models.Booster, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var boosters []*models.Booster
	err := r.db.NewSelect().
		Model(&boosters).
		Order("id ASC").
		Scan(ctx)
	return boosters, err
}

// MarkRedeemed flips the one-way redeemed flag.
func (r *boosterRepository) MarkRedeemed(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewUpdate().
		Model((*models.Booster)(nil)).
		Set("redeemed = TRUE").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
