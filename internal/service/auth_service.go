package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tasky/internal/auth"
	"tasky/internal/cache"
	apperrors "tasky/internal/errors"
	"tasky/internal/repository"
)

// SignInResult is returned by a successful sign-in.
type SignInResult struct {
	Token   string
	Session *auth.Session
	Outcome ReconcileOutcome
}

// AuthService handles sign-in, session validation and sign-out.
type AuthService interface {
	SignIn(ctx context.Context, claims auth.OAuthClaims) (*SignInResult, error)
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cache      *cache.Client
	log        *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, cache *cache.Client, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		cache:      cache,
		log:        log.Named("auth"),
	}
}

// SignIn reconciles the provider identity with the users table and issues a
// session token for the resulting user. A storage failure does not fail the
// sign-in: the token then carries the provider's own claims.
func (s *authService) SignIn(ctx context.Context, claims auth.OAuthClaims) (*SignInResult, error) {
	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}

	identity := auth.Identity{ID: claims.Subject, Email: email, Name: claims.Name}
	if claims.Picture != "" {
		picture := claims.Picture
		identity.Picture = &picture
	}

	user, outcome, err := reconcileUser(ctx, s.userRepo, Profile{Email: email, Name: claims.Name, Picture: claims.Picture})
	if err != nil {
		s.log.Error("user reconciliation failed, using provider claims",
			zap.String("provider", claims.Provider),
			zap.String("email", email),
			zap.Error(err),
		)
		outcome = OutcomeFallback
	} else {
		if outcome == OutcomeUpdated {
			_ = s.cache.Delete(ctx, userCacheKey(user.ID))
		}
		identity = auth.Identity{
			ID:      strconv.FormatUint(uint64(user.ID), 10),
			Email:   user.Email,
			Name:    user.Name,
			Picture: user.ProfilePicture,
		}
	}

	token, tokenClaims, err := s.jwtService.IssueSessionToken(identity)
	if err != nil {
		return nil, err
	}

	s.log.Info("signed in", zap.String("user_id", identity.ID), zap.String("outcome", string(outcome)))
	return &SignInResult{Token: token, Session: tokenClaims.Session(), Outcome: outcome}, nil
}

// Authenticate validates a session token and projects it onto a Session.
func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Session, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, errors.Join(apperrors.ErrUnauthorized, err)
	}
	if s.tokenStore != nil {
		revoked, err := s.tokenStore.IsTokenRevoked(ctx, claims.ID)
		if err == nil && revoked {
			return nil, apperrors.ErrUnauthorized
		}
	}
	return claims.Session(), nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		// Already unusable.
		return nil
	}
	if s.tokenStore == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.tokenStore.RevokeToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}
