package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rahmatfauzi/modular-backend/internal/user"
)

// UserRepository implements user lookups and writes with GORM. Reads preload
// groups and permissions so HasPermission works on the returned value.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Permissions").
		Preload("Groups.Permissions")
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	if err := r.preloaded(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetActiveByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	err := r.preloaded(ctx).
		Where("username = ? AND is_active = ?", username, true).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := r.preloaded(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePassword writes only the hash column inside the caller's transaction
// when one is passed, so the password-change flow stays atomic.
func (r *UserRepository) UpdatePassword(ctx context.Context, tx *gorm.DB, userID int64, passwordHash string) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}
