package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/repository"
	"yatube/internal/validation"
)

func validSignup() SignupInput {
	return SignupInput{
		FirstName: " Лев ",
		Username:  "leo",
		Email:     "leo@example.com",
		Password1: "password123",
		Password2: "password123",
	}
}

func TestAuthService_Register(t *testing.T) {
	rep := newTestRepository(t)
	auth := NewAuthService(rep.User, testConfig())
	ctx := context.Background()

	t.Run("Регистрация сразу выдает токены", func(t *testing.T) {
		user, access, refresh, err := auth.Register(ctx, validSignup())

		require.NoError(t, err)
		assert.NotZero(t, user.UserID)
		assert.Equal(t, "Лев", user.FirstName)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)

		claims, err := auth.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, user.UserID, claims.UserID)
		assert.Equal(t, "leo", claims.Username)
	})

	t.Run("Повторное имя пользователя", func(t *testing.T) {
		_, _, _, err := auth.Register(ctx, validSignup())

		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Equal(t, validation.Errors{{Field: "username", Tag: "unique"}}, errs)
	})

	t.Run("Некорректная форма", func(t *testing.T) {
		in := validSignup()
		in.Username = "another"
		in.Email = ""
		in.Password2 = "different1"

		_, _, _, err := auth.Register(ctx, in)

		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.True(t, errs.Has("email"))
		assert.True(t, errs.Has("password2"))
	})
}

func TestAuthService_Login(t *testing.T) {
	rep := newTestRepository(t)
	auth := NewAuthService(rep.User, testConfig())
	ctx := context.Background()

	_, _, _, err := auth.Register(ctx, validSignup())
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       LoginInput
		expectError error
	}{
		{name: "Успешный вход", input: LoginInput{Username: "leo", Password: "password123"}},
		{name: "Неверный пароль", input: LoginInput{Username: "leo", Password: "wrong_password"}, expectError: ErrInvalidCredentials},
		{name: "Неизвестный пользователь", input: LoginInput{Username: "ghost", Password: "password123"}, expectError: ErrInvalidCredentials},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, access, _, err := auth.Login(ctx, tc.input)

			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "leo", user.Username)

			found, err := auth.GetUserFromToken(ctx, access)
			require.NoError(t, err)
			assert.Equal(t, user.UserID, found.UserID)
		})
	}
}

func TestAuthService_RefreshTokens(t *testing.T) {
	rep := newTestRepository(t)
	svc := NewAuthService(rep.User, testConfig()).(*authService)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	user, access, refresh, err := svc.Register(ctx, validSignup())
	require.NoError(t, err)

	t.Run("Токен обновляется и старый перестает работать", func(t *testing.T) {
		_, _, rotated, err := svc.RefreshTokens(ctx, refresh)
		require.NoError(t, err)
		assert.NotEqual(t, refresh, rotated)

		_, _, _, err = svc.RefreshTokens(ctx, refresh)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		refresh = rotated
	})

	t.Run("Access token истекает", func(t *testing.T) {
		svc.now = func() time.Time { return now.Add(3 * time.Hour) }
		defer func() { svc.now = func() time.Time { return now } }()

		_, err := svc.ValidateToken(access)
		assert.Error(t, err)
	})

	t.Run("Refresh token истекает", func(t *testing.T) {
		svc.now = func() time.Time { return now.Add(200 * time.Hour) }
		defer func() { svc.now = func() time.Time { return now } }()

		_, _, _, err := svc.RefreshTokens(ctx, refresh)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Выход отзывает refresh token", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, user.UserID))

		_, _, _, err := svc.RefreshTokens(ctx, refresh)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	rep := newTestRepository(t)
	auth := NewAuthService(rep.User, testConfig())

	other := testConfig()
	other.JWTSecretKey = "another-secret"
	foreign := NewAuthService(rep.User, other)

	_, access, _, err := foreign.Register(context.Background(), validSignup())
	require.NoError(t, err)

	t.Run("Чужая подпись", func(t *testing.T) {
		_, err := auth.ValidateToken(access)
		assert.Error(t, err)
	})

	t.Run("Мусор вместо токена", func(t *testing.T) {
		_, err := auth.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}
