package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"portal/internal/mailer"
	"portal/internal/model"
	"portal/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for request validation
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	Surname   string `json:"surname" binding:"required"`
	Birthday  string `json:"birthday"` // YYYY-MM-DD
	Role      string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Email             string `json:"email" binding:"omitempty,email"`
	FirstName         string `json:"first_name"`
	Surname           string `json:"surname"`
	Birthday          string `json:"birthday"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserService defines the business logic around accounts and authentication.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, *model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, search string) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type userService struct {
	repo          repository.UserRepository
	mail          mailer.Mailer
	notifications NotificationService
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, mail mailer.Mailer, notifications NotificationService) UserService {
	return &userService{repo: repo, mail: mail, notifications: notifications}
}

func validateRole(role string) bool {
	switch role {
	case model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar, model.RoleAgent:
		return true
	}
	return false
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if !validateRole(req.Role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, req.Role)
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		Surname:   req.Surname,
		Role:      req.Role,
		IsActive:  true,
	}
	if req.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			return nil, fmt.Errorf("%w: birthday must be YYYY-MM-DD", ErrValidation)
		}
		user.Birthday = &birthday
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The account exists at this point; a failed email or notification must
	// not undo the registration.
	if err := s.mail.SendWelcome(user.Email, user.FullName(), req.Password); err != nil {
		log.Println("failed to send welcome email:", err)
	}
	admins, err := s.repo.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		log.Println("failed to list admins for registration notice:", err)
	} else {
		adminIDs := make([]uuid.UUID, 0, len(admins))
		for _, admin := range admins {
			if admin.ID != user.ID {
				adminIDs = append(adminIDs, admin.ID)
			}
		}
		if err := s.notifications.NotifyMany(ctx, adminIDs,
			fmt.Sprintf("New user registered: %s", user.FullName()), "/users"); err != nil {
			log.Println("failed to notify admins of registration:", err)
		}
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, *model.User, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid email or password", ErrValidation)
	}
	if !user.IsActive {
		return nil, nil, fmt.Errorf("%w: account is deactivated", ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid email or password", ErrValidation)
	}

	accessToken, err := signToken(user, 24*time.Hour)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := signToken(user, 7*24*time.Hour)
	if err != nil {
		return nil, nil, err
	}

	return &TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

func signToken(user *model.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(ttl).Unix(),
	})

	// Same fallback strategy as the middleware.
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, search string) ([]model.User, error) {
	users, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("%w: email already exists", ErrValidation)
		}
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.Surname != "" {
		user.Surname = req.Surname
	}
	if req.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			return nil, fmt.Errorf("%w: birthday must be YYYY-MM-DD", ErrValidation)
		}
		user.Birthday = &birthday
	}
	if req.ProfilePictureURL != "" {
		user.ProfilePictureURL = req.ProfilePictureURL
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	if !validateRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return user, nil
}

func (s *userService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	user.IsActive = active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrValidation)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// RequestPasswordReset always succeeds from the caller's point of view so the
// endpoint does not leak which email addresses exist.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	reset := &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := s.repo.CreateResetToken(ctx, reset); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", baseURL, token)
	if err := s.mail.SendPasswordReset(user.Email, user.FullName(), resetURL); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	reset, err := s.repo.GetValidResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: reset token is invalid or expired", ErrValidation)
		}
		return fmt.Errorf("failed to fetch reset token: %w", err)
	}

	user, err := s.repo.GetByID(ctx, reset.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	reset.IsUsed = true
	if err := s.repo.UpdateResetToken(ctx, reset); err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return nil
}
