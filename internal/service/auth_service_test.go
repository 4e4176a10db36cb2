package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tasky/internal/auth"
	"tasky/internal/cache"
	"tasky/internal/db"
	apperrors "tasky/internal/errors"
	"tasky/internal/model"
	"tasky/internal/repository"
)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService("test-secret", time.Hour)
}

func TestAuthService_SignIn(t *testing.T) {
	claims := auth.OAuthClaims{
		Provider: "google",
		Subject:  "g-123",
		Email:    "ada@example.com",
		Name:     "Ada",
		Picture:  "https://img/new.png",
	}

	tests := []struct {
		name        string
		claims      auth.OAuthClaims
		setupMock   func(*MockUserRepository)
		wantOutcome ReconcileOutcome
		wantID      string
		wantName    string
		wantPicture *string
		wantErr     error
	}{
		{
			name:   "new email creates user",
			claims: claims,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "ada@example.com" && u.Name == "Ada" && *u.ProfilePicture == "https://img/new.png"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*model.User).ID = 7
				}).Return(nil)
			},
			wantOutcome: OutcomeCreated,
			wantID:      "7",
			wantName:    "Ada",
			wantPicture: strPtr("https://img/new.png"),
		},
		{
			name:   "missing name and picture create with defaults",
			claims: auth.OAuthClaims{Subject: "g-1", Email: "bare@example.com"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "bare@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Name == "" && u.ProfilePicture == nil
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*model.User).ID = 8
				}).Return(nil)
			},
			wantOutcome: OutcomeCreated,
			wantID:      "8",
		},
		{
			name:   "known email with new picture updates",
			claims: claims,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ada@example.com").
					Return(&model.User{ID: 3, Email: "ada@example.com", Name: "Ada", ProfilePicture: strPtr("https://img/old.png")}, nil)
				m.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.ID == 3 && *u.ProfilePicture == "https://img/new.png"
				})).Return(nil)
			},
			wantOutcome: OutcomeUpdated,
			wantID:      "3",
			wantName:    "Ada",
			wantPicture: strPtr("https://img/new.png"),
		},
		{
			name:   "empty claims never overwrite stored values",
			claims: auth.OAuthClaims{Subject: "g-123", Email: "ada@example.com"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ada@example.com").
					Return(&model.User{ID: 3, Email: "ada@example.com", Name: "Ada", ProfilePicture: strPtr("https://img/old.png")}, nil)
			},
			wantOutcome: OutcomeUnchanged,
			wantID:      "3",
			wantName:    "Ada",
			wantPicture: strPtr("https://img/old.png"),
		},
		{
			name:   "lookup failure falls back to provider claims",
			claims: claims,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, errors.New("connection refused"))
			},
			wantOutcome: OutcomeFallback,
			wantID:      "g-123",
			wantName:    "Ada",
			wantPicture: strPtr("https://img/new.png"),
		},
		{
			name:   "create failure falls back to provider claims",
			claims: claims,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			wantOutcome: OutcomeFallback,
			wantID:      "g-123",
			wantName:    "Ada",
			wantPicture: strPtr("https://img/new.png"),
		},
		{
			name:      "missing email",
			claims:    auth.OAuthClaims{Subject: "g-1", Name: "Nobody"},
			setupMock: func(m *MockUserRepository) {},
			wantErr:   apperrors.ErrEmailRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			svc := NewAuthService(repo, newTestJWT(), nil, nil, nil)

			res, err := svc.SignIn(context.Background(), tt.claims)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertExpectations(t)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.NotEmpty(t, res.Token)
			assert.Equal(t, tt.wantID, res.Session.ID)
			assert.Equal(t, tt.wantName, res.Session.Name)
			assert.Equal(t, tt.wantPicture, res.Session.Picture)
			assert.Equal(t, tt.claims.Email, res.Session.Email)
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_SignInTwiceReusesUser(t *testing.T) {
	gormDB, err := db.OpenInMemory()
	require.NoError(t, err)
	repo := repository.NewUserRepository(gormDB)
	svc := NewAuthService(repo, newTestJWT(), nil, nil, nil)
	ctx := context.Background()

	first, err := svc.SignIn(ctx, auth.OAuthClaims{Subject: "g-1", Email: "ada@example.com", Name: "Ada", Picture: "https://img/a.png"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, first.Outcome)

	second, err := svc.SignIn(ctx, auth.OAuthClaims{Subject: "g-1", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, second.Outcome)
	assert.Equal(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, "Ada", second.Session.Name)
	require.NotNil(t, second.Session.Picture)
	assert.Equal(t, "https://img/a.png", *second.Session.Picture)

	var count int64
	require.NoError(t, gormDB.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuthService_SignInUpdateInvalidatesCachedUser(t *testing.T) {
	gormDB, err := db.OpenInMemory()
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)

	repo := repository.NewUserRepository(gormDB)
	svc := NewAuthService(repo, newTestJWT(), nil, c, nil)
	users := NewUserService(repo, c)
	ctx := context.Background()

	first, err := svc.SignIn(ctx, auth.OAuthClaims{Subject: "g-1", Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)
	cached, err := users.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", cached.Name)
	assert.True(t, mr.Exists("user:1"))

	second, err := svc.SignIn(ctx, auth.OAuthClaims{Subject: "g-1", Email: "ada@example.com", Name: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, second.Outcome)
	assert.Equal(t, first.Session.ID, second.Session.ID)
	assert.False(t, mr.Exists("user:1"))

	fresh, err := users.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", fresh.Name)
}

func TestAuthService_AuthenticateAndSignOut(t *testing.T) {
	jwtSvc := newTestJWT()
	store := new(MockTokenStore)
	svc := NewAuthService(new(MockUserRepository), jwtSvc, store, nil, nil)
	ctx := context.Background()

	token, claims, err := jwtSvc.IssueSessionToken(auth.Identity{ID: "5", Email: "ada@example.com"})
	require.NoError(t, err)

	store.On("IsTokenRevoked", mock.Anything, claims.ID).Return(false, nil).Once()
	session, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "5", session.ID)
	assert.Equal(t, "ada@example.com", session.Email)
	assert.Equal(t, "", session.Name)
	assert.Nil(t, session.Picture)

	store.On("RevokeToken", mock.Anything, claims.ID, mock.AnythingOfType("time.Duration")).Return(nil).Once()
	require.NoError(t, svc.SignOut(ctx, token))

	store.On("IsTokenRevoked", mock.Anything, claims.ID).Return(true, nil).Once()
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	store.AssertExpectations(t)
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), newTestJWT(), nil, nil, nil)

	_, err := svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "abc.def.ghi")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	assert.NoError(t, svc.SignOut(context.Background(), "abc.def.ghi"))
}
