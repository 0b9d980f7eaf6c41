package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"devhub/internal/auth"
	"devhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(repo *userRepoStub) (*UserService, *auth.Tokens) {
	tokens := auth.NewTokens("test-secret-key-12345678901234567890123456789012", time.Hour)
	return NewUserService(repo, tokens, discardLogger()), tokens
}

func TestGravatar(t *testing.T) {
	assert.Equal(t,
		"https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&r=pg&d=mm",
		Gravatar(" MyEmailAddress@example.com "))
}

func TestUserService_Register(t *testing.T) {
	var created *models.User
	repo := &userRepoStub{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			assert.Equal(t, "alice@example.com", email)
			return nil, nil
		},
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = "user-1"
			created = u
			return nil
		},
	}
	svc, tokens := newUserService(repo)

	token, err := svc.Register(context.Background(), RegisterRequest{
		Name: " Alice ", Email: "Alice@Example.com", Password: "secret1",
	})
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())

	require.NotNil(t, created)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.NotEqual(t, "secret1", created.Password)
	assert.True(t, auth.CheckPassword(created.Password, "secret1"))
	assert.True(t, strings.HasPrefix(created.Avatar, "https://www.gravatar.com/avatar/"))
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	repo := &userRepoStub{
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: "existing"}, nil
		},
		createFn: func(_ context.Context, _ *models.User) error {
			t.Fatal("create must not be called for an existing email")
			return nil
		},
	}
	svc, _ := newUserService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.Equal(t, "User already exists", models.AsAppError(err).Message)
}

func TestUserService_Login(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	repo := &userRepoStub{
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email == "bob@example.com" {
				return &models.User{ID: "bob", Email: email, Password: hash}, nil
			}
			return nil, nil
		},
	}
	svc, tokens := newUserService(repo)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "valid credentials", email: "BOB@example.com", password: "secret1"},
		{name: "wrong password", email: "bob@example.com", password: "nope", wantErr: true},
		{name: "unknown email", email: "carol@example.com", password: "secret1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(context.Background(), LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, models.IsCode(err, models.CodeValidation))
				assert.Equal(t, "Invalid credentials", models.AsAppError(err).Message)
				return
			}
			require.NoError(t, err)
			claims, err := tokens.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, "bob", claims.UserID())
		})
	}
}

func TestUserService_LoginStoreFailure(t *testing.T) {
	storeErr := models.NewInternalError(errors.New("connection reset"))
	svc, _ := newUserService(&userRepoStub{
		getByEmailFn: func(context.Context, string) (*models.User, error) { return nil, storeErr },
	})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "x"})
	assert.ErrorIs(t, err, storeErr)
}

func TestUserService_Me(t *testing.T) {
	svc, _ := newUserService(usersByID(models.User{ID: "u1", Name: "Alice"}))

	user, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	_, err = svc.Me(context.Background(), "gone")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
