package repository

import (
	"context"
	"errors"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, userID uint) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	ListCommittee(ctx context.Context, status domain.UserStatus) ([]domain.User, error)
	Delete(ctx context.Context, userID uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, userID uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// ListCommittee returns Admin and SuperAdmin users, optionally by status.
func (r *userRepository) ListCommittee(ctx context.Context, status domain.UserStatus) ([]domain.User, error) {
	var users []domain.User
	q := r.db.WithContext(ctx).Where("role IN ?", []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
