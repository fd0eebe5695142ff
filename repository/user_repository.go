package repository

import (
	"context"
	"time"

	"github.com/Govind-619/DomainDesk/models"
	"gorm.io/gorm"
)

// UserRepository reads and seeds dashboard operators
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FirstOrCreate(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a gorm backed UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *userRepository) FirstOrCreate(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Where(models.User{Email: user.Email}).FirstOrCreate(user).Error
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}
