package main

import (
	"log"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/handler"
	"agora/internal/middleware"
	"agora/internal/repository"
	"agora/internal/service"
	"agora/internal/session"
	"agora/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment != "production"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Session store (Redis)
	sessionStore, err := session.NewStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer sessionStore.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	forumRepo := repository.NewForumRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	forumService := service.NewForumService(forumRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, sessionStore, cfg.SessionTTL)
	forumHandler := handler.NewForumHandler(forumService, sessionStore)

	// Setup Gin router
	router := gin.Default()
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.Environment == "production"))
	router.Use(middleware.SessionMiddleware(sessionStore, cfg.SessionTTL))
	router.LoadHTMLGlob(cfg.TemplateDir)
	router.Static("/static", "./web/static")

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/login", authHandler.LoginForm)
		auth.POST("/login", authHandler.Login)
		auth.GET("/register", authHandler.RegisterForm)
		auth.POST("/register", authHandler.Register)
		auth.POST("/logout", authHandler.Logout)
	}

	// Forum routes
	router.GET("/", forumHandler.Index)
	router.GET("/area/thread/:thread_id", forumHandler.ViewMessages)
	router.POST("/area/thread/:thread_id/new_message", forumHandler.PostMessage)
	router.GET("/thread/:thread_id/message/:message_id/edit", forumHandler.EditMessageForm)
	router.POST("/thread/:thread_id/message/:message_id/edit", forumHandler.EditMessage)
	router.POST("/thread/:thread_id/message/:message_id/delete", forumHandler.DeleteMessage)
	router.GET("/:area_id/threads", forumHandler.Threads)
	router.GET("/:area_id/new_thread", forumHandler.NewThreadForm)
	router.POST("/:area_id/new_thread", forumHandler.NewThread)

	// Start server
	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
