package handlers

import (
	"context"
	"time"

	"github.com/gorilla/schema"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/render"
	"yatube/internal/service"
	"yatube/internal/storage"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	AuthService   service.AuthService
	UserService   service.UserService
	FeedService   service.FeedService
	PostService   service.PostService
	FollowService service.FollowService
	Storage       storage.Storage
	DB            HealthChecker
	Pages         *cache.PageCache
	Render        *render.Renderer
	Cfg           *config.Config
	Decoder       *schema.Decoder

	// Now is the clock used for the page cache.
	Now func() time.Time
}

func NewHandlers(services *service.Service, storage storage.Storage, db HealthChecker, pages *cache.PageCache, renderer *render.Renderer, cfg *config.Config) *Handlers {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Handlers{
		AuthService:   services.Auth,
		UserService:   services.User,
		FeedService:   services.Feed,
		PostService:   services.Post,
		FollowService: services.Follow,
		Storage:       storage,
		DB:            db,
		Pages:         pages,
		Render:        renderer,
		Cfg:           cfg,
		Decoder:       decoder,
		Now:           time.Now,
	}
}
