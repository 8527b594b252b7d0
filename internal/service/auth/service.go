package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minetrack/minetrack-backend-go/internal/domain/auth"
	"github.com/minetrack/minetrack-backend-go/internal/domain/user"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	userRepo   user.Repository
	jwtService jwt.Service
}

func NewAuthService(userRepo user.Repository, jwtService jwt.Service) auth.Service {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login implements auth.Service. A wrong username and a wrong password produce
// the same error so the endpoint does not leak which accounts exist.
func (s *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	u, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	if !u.IsActive {
		return auth.LoginResponse{}, auth.ErrUserInactive
	}

	token, _, err := s.jwtService.GenerateAccessToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.InfoContext(ctx, "user logged in", slog.String("username", u.Username), slog.String("role", string(u.Role)))

	return auth.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Username:    u.Username,
		Role:        string(u.Role),
	}, nil
}
