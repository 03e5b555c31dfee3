package main

import (
	"log"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/kotoba-app/kotoba/biz/dal/model"
	"github.com/kotoba-app/kotoba/biz/handler"
	"github.com/kotoba-app/kotoba/biz/middleware"
	"github.com/kotoba-app/kotoba/biz/router"
	"github.com/kotoba-app/kotoba/biz/service/gateway"
	"github.com/kotoba-app/kotoba/biz/service/library"
	"github.com/kotoba-app/kotoba/pkg/config"
	"github.com/kotoba-app/kotoba/pkg/database"
	"github.com/kotoba-app/kotoba/pkg/lock"
	"github.com/kotoba-app/kotoba/pkg/redis"
	storagefactory "github.com/kotoba-app/kotoba/pkg/storage/factory"
	"github.com/kotoba-app/kotoba/pkg/validator"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&model.MediaAsset{}); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store, err := storagefactory.New(cfg.Storage)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	log.Printf("storage backend: %s", store.Type())

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("init redis: %v", err)
	}
	if redisClient != nil {
		middleware.InitDeleteLock(lock.New(redisClient, "kotoba:prefix_delete", 5*time.Minute, 10*time.Second))
		log.Printf("prefix delete lock enabled")
	}

	uploadRules := validator.NewUploadRules(cfg.Upload.MaxSize, cfg.Upload.AllowedTypes)
	gatewayService := gateway.NewService(store, cfg.Storage.PublicBaseURL, uploadRules)
	libraryService := library.NewService(db, store)

	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithStreamBody(true),
	)
	h.Use(middleware.Recovery())
	h.Use(middleware.Logging())
	h.Use(middleware.CORS(&cfg.CORS))
	h.Use(middleware.Auth())

	router.Register(h, handler.NewStorageHandler(gatewayService), handler.NewLibraryHandler(libraryService))

	h.Spin()
}
