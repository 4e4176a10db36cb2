package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tasky/internal/model"
	"tasky/internal/repository"
)

// ReconcileOutcome tells what a sign-in did to the stored user record.
type ReconcileOutcome string

const (
	OutcomeCreated   ReconcileOutcome = "created"
	OutcomeUpdated   ReconcileOutcome = "updated"
	OutcomeUnchanged ReconcileOutcome = "unchanged"
	OutcomeFallback  ReconcileOutcome = "fallback"
)

// Profile is the identity data a provider asserts about a person.
type Profile struct {
	Email   string
	Name    string
	Picture string
}

// reconcileUser finds the user by email and creates or refreshes it.
// Stored name and picture are only overwritten by non-empty values.
func reconcileUser(ctx context.Context, repo repository.UserRepository, p Profile) (*model.User, ReconcileOutcome, error) {
	user, err := repo.FindByEmail(ctx, p.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("find user by email: %w", err)
	}

	if user == nil {
		user = &model.User{Email: p.Email, Name: p.Name}
		if p.Picture != "" {
			picture := p.Picture
			user.ProfilePicture = &picture
		}
		if err := repo.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("create user: %w", err)
		}
		return user, OutcomeCreated, nil
	}

	changed := false
	if p.Name != "" && p.Name != user.Name {
		user.Name = p.Name
		changed = true
	}
	if p.Picture != "" && (user.ProfilePicture == nil || *user.ProfilePicture != p.Picture) {
		picture := p.Picture
		user.ProfilePicture = &picture
		changed = true
	}
	if !changed {
		return user, OutcomeUnchanged, nil
	}
	if err := repo.Update(ctx, user); err != nil {
		return nil, "", fmt.Errorf("update user: %w", err)
	}
	return user, OutcomeUpdated, nil
}
