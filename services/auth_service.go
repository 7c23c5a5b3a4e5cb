package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"storefront/models"
	"storefront/repositories"
	"storefront/utils"
)

type AuthService struct {
	users  repositories.UserStore
	tokens TokenIssuer
	logger *slog.Logger
}

func NewAuthService(users repositories.UserStore, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, utils.NewInternal("Failed to hash password", err)
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hashedPassword,
		Role:     models.RoleCustomer,
	}

	err = s.users.Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, utils.NewConflict("Email already registered")
	}
	if err != nil {
		return nil, utils.NewInternal("Failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.respond(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewUnauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, utils.NewInternal("Failed to load user", err)
	}

	valid, err := utils.VerifyPassword(user.Password, req.Password)
	if err != nil || !valid {
		return nil, utils.NewUnauthorized("Invalid email or password")
	}

	if user.IsDeleted {
		return nil, utils.NewForbidden("Account has been deleted")
	}
	if !user.IsActive {
		return nil, utils.NewForbidden("Account is not active")
	}

	return s.respond(user)
}

func (s *AuthService) respond(user *models.User) (*models.LoginResponse, error) {
	token, err := s.tokens.IssueAccessToken(utils.TokenSubject{
		ID:    user.ID,
		Role:  user.Role,
		Email: user.Email,
	})
	if err != nil {
		return nil, utils.NewInternal("Failed to issue access token", err)
	}
	return &models.LoginResponse{Token: token, User: *user}, nil
}
