package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/api/handler"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/chatsvc"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/config"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/gateway"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.Reaction{},
		&models.ReadStatus{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting DM gateway...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, rdb := setupDependencies(cfg)
	store := storage.NewStorageService(db, rdb)

	chat := chatsvc.NewService(store)
	stop := make(chan struct{})
	defer close(stop)
	chat.StartSweeper(stop)

	gw := gateway.NewGateway(chat, store)
	go gw.Run()

	r := gin.Default()
	h := handler.NewHandler(gw, cfg)

	r.GET("/ws", h.ServeWebSocket)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
