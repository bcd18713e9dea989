package repositories

import (
	"context"
	"time"

	"github.com/pokenft/pokenft/pokenft/config"
	"github.com/pokenft/pokenft/pokenft/database/models"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByAddress(ctx context.Context, address string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	CreditBalance(ctx context.Context, address string, amount int64) error
}

type userRepository struct {
	db bun.IDB
}

func NewUserRepository(db bun.IDB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(user).
		Exec(ctx)
	return err
}

func (r *userRepository) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("address = ?", address).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var users []*models.User
	err := r.db.NewSelect().
		Model(&users).
		Order("address ASC").
		Scan(ctx)
	return users, err
}

// CreditBalance adds sale proceeds to a registered user. Updating an
// unregistered address matches zero rows and is not an error.
func (r *userRepository) CreditBalance(ctx context.Context, address string, amount int64) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("balance = balance + ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("address = ?", address).
		Exec(ctx)
	return err
}
