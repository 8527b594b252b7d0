package user

import (
	"context"
	"fmt"

	"github.com/minetrack/minetrack-backend-go/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	userRepo user.Repository
}

func NewUserService(userRepo user.Repository) user.Service {
	return &UserServiceImpl{userRepo: userRepo}
}

// Create implements user.Service.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateRequest) (user.Response, error) {
	if err := req.Validate(); err != nil {
		return user.Response{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.Response{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, user.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	})
	if err != nil {
		return user.Response{}, err
	}

	return user.ToResponse(created), nil
}

// List implements user.Service.
func (s *UserServiceImpl) List(ctx context.Context) ([]user.Response, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]user.Response, 0, len(users))
	for _, u := range users {
		result = append(result, user.ToResponse(u))
	}
	return result, nil
}

// Update implements user.Service.
func (s *UserServiceImpl) Update(ctx context.Context, id int64, req user.UpdateRequest) (user.Response, error) {
	if err := req.Validate(); err != nil {
		return user.Response{}, err
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.Response{}, err
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return user.Response{}, fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		return user.Response{}, err
	}
	return user.ToResponse(u), nil
}

// Delete implements user.Service.
func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.userRepo.Delete(ctx, id)
}
