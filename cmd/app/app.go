package app

import (
	"log"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	handlers "yatube/internal/handler"
	"yatube/internal/render"
	"yatube/internal/repository"
	"yatube/internal/service"
	"yatube/internal/storage"
)

// App connects the database and wires every layer of the site.
func App(cfg *config.Config) (database.MethodsDB, *service.Service, *handlers.Handlers) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		log.Fatalf("Не удалось инициализировать MinIO: %v", err)
	}

	pages, err := cache.NewPageCache(cache.IndexPrefix, cfg.Cache.IndexTTL, cfg.Cache.IndexSize)
	if err != nil {
		log.Fatalf("Не удалось создать кэш страниц: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		log.Fatalf("Не удалось загрузить шаблоны: %v", err)
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	services := service.NewService(repo, cfg, minioClient, pages)

	handler := handlers.NewHandlers(services, minioClient, db, pages, renderer, cfg)

	return db, services, handler
}

// Store opens only the database layer, for command line tools.
func Store(cfg *config.Config) (database.MethodsDB, *service.Service) {
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	repo := repository.NewRepository(db.DB)

	return db, service.NewService(repo, cfg, nil, nil)
}
