package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomatch/config"
	"roomatch/internal/handler"
	"roomatch/internal/middleware"
	"roomatch/internal/redis"
	"roomatch/internal/services"
	"roomatch/internal/transport/httpdto"
	"roomatch/internal/ws"
	"roomatch/pkg/database"
	"roomatch/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Groups      *handler.GroupHandler
	PrivateChat *handler.PrivateChatHandler
	GroupChat   *handler.GroupChatHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter, hub *ws.Hub) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	if limiter != nil {
		s.engine.Use(middleware.RateLimitMiddleware(limiter))
	}

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authed := middleware.AuthMiddleware(authService)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", authed, handlers.Auth.Me)
	}

	users := s.engine.Group("/v1/users", authed)
	{
		users.GET("", handlers.Users.List)
		users.GET("/:id", handlers.Users.GetByID)
		users.PATCH("/:id/status", handlers.Users.SetStatus)
	}

	var messageLimited gin.HandlerFunc
	if limiter != nil {
		messageLimited = middleware.MessageRateLimitMiddleware(limiter)
	} else {
		messageLimited = func(c *gin.Context) { c.Next() }
	}

	chats := s.engine.Group("/v1/chats", authed)
	{
		chats.GET("", handlers.PrivateChat.ListConversations)
		chats.GET("/with/:userID", handlers.PrivateChat.GetConversation)
		chats.GET("/with/:userID/messages", handlers.PrivateChat.ListMessages)
		chats.GET("/with/:userID/messages/count", handlers.PrivateChat.CountMessages)
		chats.POST("/with/:userID/messages", messageLimited, handlers.PrivateChat.CreateMessage)
		chats.DELETE("/:id", handlers.PrivateChat.DeleteConversation)
	}

	groups := s.engine.Group("/v1/groups", authed)
	{
		groups.POST("", handlers.Groups.Create)
		groups.GET("", handlers.Groups.ListMine)
		groups.GET("/:id", handlers.Groups.GetByID)
		groups.POST("/:id/invitees", handlers.Groups.Invite)
		groups.DELETE("/:id/invitees/:userID", handlers.Groups.RemoveInvitee)
		groups.PATCH("/:id/status", handlers.Groups.SetStatus)
		groups.DELETE("/:id", handlers.Groups.Delete)

		groups.GET("/:id/messages", handlers.GroupChat.ListMessages)
		groups.GET("/:id/messages/count", handlers.GroupChat.CountMessages)
		groups.POST("/:id/messages", messageLimited, handlers.GroupChat.CreateMessage)
		groups.DELETE("/:id/conversation", handlers.GroupChat.DeleteConversation)
	}

	if hub != nil {
		s.engine.GET("/v1/ws", authed, ws.Handler(hub))
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
