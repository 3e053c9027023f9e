package router

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/library/internal/config"
	"github.com/polkiloo/library/internal/server/http/handlers"
	"github.com/polkiloo/library/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.LibraryFacade, logger *slog.Logger, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handlers.UseJSONFieldNames()
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(middleware.Identify(facade))

	authHandler := handlers.NewAuthHandler(facade, cfg.SessionTTL)
	catalogHandler := handlers.NewCatalogHandler(facade)
	lendingHandler := handlers.NewLendingHandler(facade, facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/", handlers.Index)
	engine.GET("/healthz", healthHandler.Healthz)
	engine.GET("/register", authHandler.RegisterForm)
	engine.POST("/register", authHandler.Register)
	engine.GET(middleware.LoginPath, authHandler.LoginForm)
	engine.POST(middleware.LoginPath, authHandler.Login)
	engine.GET("/logout", authHandler.Logout)

	// Ownership of returns is decided by the lending policy.
	engine.GET("/return/:borrow_id", lendingHandler.Return)

	admin := engine.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("", catalogHandler.Dashboard)
	admin.POST("/add_book", catalogHandler.AddBook)
	admin.GET("/delete_book/:id", catalogHandler.DeleteBook)

	member := engine.Group("")
	member.Use(middleware.RequireUser())
	member.GET("/student", lendingHandler.Dashboard)
	member.GET("/borrow/:book_id", lendingHandler.Borrow)
	member.GET("/mybooks", lendingHandler.MyBooks)

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
