package main

import (
	"log"
	"time"

	"roomatch/config"
	"roomatch/internal/handler"
	"roomatch/internal/redis"
	"roomatch/internal/repository"
	"roomatch/internal/server"
	"roomatch/internal/services"
	"roomatch/internal/ws"
	"roomatch/pkg/database"
	"roomatch/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	loggerMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		loggerMode = logger.ProductionMode
	}
	l := logger.New(loggerMode)
	logger.SetGlobalLogger(l)
	defer l.Logger.Sync()

	database.Connect(cfg)
	if err := repository.InitSchema(database.DB); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	userRepo := repository.NewUserRepository(database.DB)
	groupRepo := repository.NewGroupRepository(database.DB)
	convRepo := repository.NewConversationRepository(database.DB)

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	privateChatService := services.NewPrivateChatService(database.DB, userRepo, convRepo)
	groupChatService := services.NewGroupChatService(database.DB, userRepo, groupRepo, convRepo)
	groupService := services.NewGroupService(groupRepo, groupChatService)

	// Redis is optional: without it the API runs with rate limiting and
	// caching disabled.
	var limiter *redis.RateLimiter
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		l.Warnf("Redis unavailable, rate limiting and caching disabled: %v", err)
	} else {
		rlConfig := redis.DefaultRateLimitConfig()
		if cfg.MessageRateLimit > 0 {
			rlConfig.MessageLimit = cfg.MessageRateLimit
			rlConfig.MessageWindow = time.Duration(cfg.MessageRateWindow) * time.Second
		}
		limiter = redis.NewRateLimiter(redisClient, rlConfig)

		cache := redis.NewCacheStore(redisClient, redis.DefaultCacheConfig())
		userService.SetCache(cache)
		privateChatService.SetCache(cache)
		groupChatService.SetCache(cache)
	}

	hub := ws.NewHub(groupService, l)
	privateChatService.SetNotifier(hub)
	groupChatService.SetNotifier(hub)
	go hub.Run()
	defer hub.Stop()

	handlers := &server.Handlers{
		Auth:        handler.NewAuthHandler(authService, userService),
		Users:       handler.NewUserHandler(userService),
		Groups:      handler.NewGroupHandler(groupService),
		PrivateChat: handler.NewPrivateChatHandler(privateChatService),
		GroupChat:   handler.NewGroupChatHandler(groupChatService, groupService),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter, hub)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
