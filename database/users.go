package database

import (
	"context"
	"errors"
	"fmt"

	"options-pricer/models"

	"gorm.io/gorm"
)

var (
	ErrUserExists = errors.New("username already registered")
	ErrNotFound   = errors.New("record not found")
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create stores a new user. A taken username yields ErrUserExists, whether
// it is caught by the lookup or by the unique index on a concurrent insert.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", user.Username).First(&existing).Error
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(user).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUserExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrUserExists
	default:
		return fmt.Errorf("insert user: %w", err)
	}
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
