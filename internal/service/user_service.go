package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"tasky/internal/cache"
	apperrors "tasky/internal/errors"
	"tasky/internal/model"
	"tasky/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// CreateUserInput carries the fields of a user created through the API.
type CreateUserInput struct {
	Name           string
	Email          string
	ProfilePicture *string
}

// UpdateUserInput carries a partial profile update. Nil fields are left unchanged.
type UpdateUserInput struct {
	Name           *string
	ProfilePicture *string
}

// UserService exposes user operations.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserWithTasks(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
	ListUsers(ctx context.Context) ([]model.User, error)
	Upsert(ctx context.Context, p Profile) (*model.User, ReconcileOutcome, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func notFoundAs(err error, target error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return apperrors.Persistence(op, err)
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Persistence("check user existence", err)
	}
	if existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}

	user := &model.User{Name: in.Name, Email: email, ProfilePicture: in.ProfilePicture}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperrors.Persistence("create user", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, userCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrUserNotFound, "find user")
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// GetUserWithTasks bypasses the cache since tasks change independently of the user row.
func (s *userService) GetUserWithTasks(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByIDWithTasks(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrUserNotFound, "find user with tasks")
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrUserNotFound, "find user by email")
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, apperrors.ErrUserNotFound, "find user")
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.ProfilePicture != nil {
		if *in.ProfilePicture == "" {
			user.ProfilePicture = nil
		} else {
			picture := *in.ProfilePicture
			user.ProfilePicture = &picture
		}
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperrors.Persistence("update user", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, apperrors.ErrUserNotFound, "delete user")
	}
	_ = s.cache.Delete(ctx, userCacheKey(id))
	_ = s.cache.Delete(ctx, taskListCacheKey(id))
	return nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list users", err)
	}
	return users, nil
}

// Upsert applies the sign-in reconciliation rules outside of an OAuth flow.
func (s *userService) Upsert(ctx context.Context, p Profile) (*model.User, ReconcileOutcome, error) {
	p.Email = strings.TrimSpace(p.Email)
	if p.Email == "" {
		return nil, "", apperrors.ErrEmailRequired
	}
	user, outcome, err := reconcileUser(ctx, s.repo, p)
	if err != nil {
		return nil, "", apperrors.Persistence("upsert user", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))
	return user, outcome, nil
}
