package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SundayYogurt/bursary_service/internal/domain"
	"github.com/SundayYogurt/bursary_service/internal/dto"
	"github.com/SundayYogurt/bursary_service/internal/helper"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	log "github.com/sirupsen/logrus"
)

type AuthService interface {
	RegisterApplicant(ctx context.Context, input dto.RegisterRequest) (*domain.User, error)
	RegisterAdmin(ctx context.Context, input dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error)
	Me(ctx context.Context, userID uint) (*domain.User, error)
	CreateSuperAdmin(ctx context.Context, input dto.RegisterRequest) (*domain.User, error)
}

type authService struct {
	repos      *repository.Repositories
	auth       helper.Auth
	notifier   interfaces.Notifier
	adminEmail string
}

func NewAuthService(repos *repository.Repositories, auth helper.Auth, notifier interfaces.Notifier, adminEmail string) AuthService {
	return &authService{
		repos:      repos,
		auth:       auth,
		notifier:   notifier,
		adminEmail: adminEmail,
	}
}

func NewUserResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func newUser(input dto.RegisterRequest, role domain.Role, status domain.UserStatus) (*domain.User, error) {
	email, err := utils.NormalizeEmail(input.Email)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, validationError("display name is required")
	}
	hash, err := helper.HashPassword(input.Password)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}
	return &domain.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  name,
		Role:         role,
		Status:       status,
	}, nil
}

func (s *authService) create(ctx context.Context, user *domain.User) error {
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if helper.IsDuplicateKey(err) {
			return conflict("email already exists")
		}
		return err
	}
	return nil
}

func (s *authService) RegisterApplicant(ctx context.Context, input dto.RegisterRequest) (*domain.User, error) {
	user, err := newUser(input, domain.RoleApplicant, domain.UserStatusApproved)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	log.WithField("user_id", user.ID).Info("applicant registered")
	return user, nil
}

// RegisterAdmin creates a committee member who cannot sign in until a
// SuperAdmin approves the account.
func (s *authService) RegisterAdmin(ctx context.Context, input dto.RegisterRequest) (*domain.User, error) {
	user, err := newUser(input, domain.RoleAdmin, domain.UserStatusPending)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	log.WithField("user_id", user.ID).Info("committee member registered, awaiting approval")

	if s.adminEmail != "" {
		s.notifier.Notify(ctx, dto.NotificationEvent{
			Type: dto.EventAdminRegistered,
			To:   s.adminEmail,
			Data: map[string]string{"name": user.DisplayName, "email": user.Email},
		})
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input dto.UserLogin) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, validationError("email and password are required")
	}

	user, err := s.repos.Users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrUnauthorized, "invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if err := helper.VerifyPassword(input.Password, user.PasswordHash); err != nil {
		return nil, newError(ErrUnauthorized, "invalid email or password")
	}

	switch user.Status {
	case domain.UserStatusApproved:
	case domain.UserStatusRejected:
		return nil, forbidden("account has been rejected")
	default:
		return nil, forbidden("account is awaiting approval")
	}

	token, err := s.auth.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: NewUserResponse(user)}, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

// CreateSuperAdmin creates an approved SuperAdmin, or promotes the existing
// account with that email and resets its password.
func (s *authService) CreateSuperAdmin(ctx context.Context, input dto.RegisterRequest) (*domain.User, error) {
	fresh, err := newUser(input, domain.RoleSuperAdmin, domain.UserStatusApproved)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	fresh.ApprovedAt = &now

	existing, err := s.repos.Users.FindByEmail(ctx, fresh.Email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.create(ctx, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	case err != nil:
		return nil, err
	}

	existing.Role = domain.RoleSuperAdmin
	existing.Status = domain.UserStatusApproved
	existing.PasswordHash = fresh.PasswordHash
	existing.DisplayName = fresh.DisplayName
	existing.ApprovedAt = &now
	if err := s.repos.Users.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
