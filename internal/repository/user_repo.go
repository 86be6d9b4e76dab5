package repository

import (
	"context"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, search string) ([]model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error
	GetValidResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	UpdateResetToken(ctx context.Context, token *model.PasswordResetToken) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Preload("Groups").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, search string) ([]model.User, error) {
	var users []model.User
	db := GetDB(ctx, r.db)
	if search != "" {
		pattern := "%" + search + "%"
		db = db.Where("email ILIKE ? OR first_name ILIKE ? OR surname ILIKE ?", pattern, pattern, pattern)
	}
	if err := db.Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	var users []model.User
	if err := GetDB(ctx, r.db).Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.User{}).Error
}

func (r *userRepository) CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *userRepository) GetValidResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var reset model.PasswordResetToken
	if err := GetDB(ctx, r.db).
		Where("token = ? AND is_used = false AND expires_at > NOW()", token).
		First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *userRepository) UpdateResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	return GetDB(ctx, r.db).Save(token).Error
}
