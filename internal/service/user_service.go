package service

import (
	"context"

	"github.com/trailhead/trailhead-backend/internal/common"
	"github.com/trailhead/trailhead-backend/internal/domain"
	"github.com/trailhead/trailhead-backend/internal/repository"
)

// UserService keeps the local user table in step with the identity provider
type UserService interface {
	// Sync upserts the caller from identity claims
	Sync(ctx context.Context, caller domain.Identity) error
	Me(ctx context.Context, caller domain.Identity) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller domain.Identity, req *domain.UpdateProfileRequest) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
	now   Clock
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users, now: utcNow}
}

func (s *userService) Sync(ctx context.Context, caller domain.Identity) error {
	if !caller.IsAuthenticated() {
		return common.ErrUnauthorized
	}
	name := caller.Name
	if name == "" {
		name = caller.UserID
	}
	return s.users.Upsert(ctx, &domain.User{
		ID:          caller.UserID,
		Name:        name,
		DisplayName: optional(caller.DisplayName),
		Email:       caller.Email,
	})
}

func (s *userService) Me(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	if !caller.IsAuthenticated() {
		return nil, common.ErrUnauthorized
	}
	return s.users.FindByID(ctx, caller.UserID)
}

// UpdateProfile sets the display name; a blank value clears it
func (s *userService) UpdateProfile(ctx context.Context, caller domain.Identity, req *domain.UpdateProfileRequest) (*domain.User, error) {
	if !caller.IsAuthenticated() {
		return nil, common.ErrUnauthorized
	}
	if err := s.users.UpdateDisplayName(ctx, caller.UserID, optional(req.DisplayName), s.now()); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, caller.UserID)
}
