package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/logger"
	"yatube/internal/models"
	"yatube/internal/repository"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadImage(ctx context.Context, fileName string, file io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, fileName, file, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) DeleteImage(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockStorage) GetImageURL(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

type countingInvalidator struct {
	clears int
}

func (c *countingInvalidator) Clear() {
	c.clears++
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:         "test-secret",
		AccessTokenDuration:  2 * time.Hour,
		RefreshTokenDuration: 168 * time.Hour,
		PostsPerPage:         10,
	}
}

func newTestRepository(t *testing.T) *repository.Repository {
	t.Helper()
	logger.SetOutput(io.Discard)

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseDB() })

	return repository.NewRepository(db.DB)
}

func mustUser(t *testing.T, rep *repository.Repository, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, rep.User.CreateUser(context.Background(), user, "password123"))
	return user
}

func mustGroup(t *testing.T, rep *repository.Repository, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Группа " + slug, Slug: slug}
	require.NoError(t, rep.Group.Create(context.Background(), group))
	return group
}
