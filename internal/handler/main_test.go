package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/logger"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/render"
	"yatube/internal/repository"
	"yatube/internal/service"
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

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

const testPassword = "password123"

type testApp struct {
	h        *Handlers
	db       *database.DB
	rep      *repository.Repository
	services *service.Service
	storage  *MockStorage
	routes   http.Handler
	now      time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		JWTSecretKey:         "test-secret",
		AccessTokenDuration:  2 * time.Hour,
		RefreshTokenDuration: 168 * time.Hour,
		MaxUploadSize:        1 << 20,
		PostsPerPage:         10,
	}

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseDB() })

	rep := repository.NewRepository(db.DB)
	store := new(MockStorage)

	pages, err := cache.NewPageCache(cache.IndexPrefix, cache.IndexTTL, 16)
	require.NoError(t, err)

	renderer, err := render.New()
	require.NoError(t, err)

	services := service.NewService(rep, cfg, store, pages)

	app := &testApp{
		db:       db,
		rep:      rep,
		services: services,
		storage:  store,
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	app.h = NewHandlers(services, store, db, pages, renderer, cfg)
	app.h.Now = func() time.Time { return app.now }
	app.routes = app.h.Routes()

	return app
}

func (a *testApp) user(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, a.rep.User.CreateUser(context.Background(), user, testPassword))
	return user
}

func (a *testApp) post(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.UserID}
	require.NoError(t, a.rep.Post.Create(context.Background(), post))
	return post
}

// request is a prepared call against the full handler chain.
type request struct {
	method      string
	target      string
	body        io.Reader
	contentType string
	as          string
}

func get(target string) request {
	return request{method: http.MethodGet, target: target}
}

func postForm(target string, values url.Values) request {
	return request{
		method:      http.MethodPost,
		target:      target,
		body:        strings.NewReader(values.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}
}

func postMultipart(t *testing.T, target string, values map[string]string, fileName string, file []byte) request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return request{method: http.MethodPost, target: target, body: &buf, contentType: mw.FormDataContentType()}
}

func (r request) withUser(username string) request {
	r.as = username
	return r
}

func (a *testApp) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(r.method, r.target, r.body)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.as != "" {
		_, access, _, err := a.services.Auth.Login(context.Background(), service.LoginInput{Username: r.as, Password: testPassword})
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.AccessCookie, Value: access})
	}

	rec := httptest.NewRecorder()
	a.routes.ServeHTTP(rec, req)
	return rec
}

func cookieValue(cookies []*http.Cookie, name string) (string, bool) {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
