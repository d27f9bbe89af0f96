package router

import (
	"context"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/config"
	"github.com/bfrpaulondev/fitness-api/internal/handler"
	"github.com/bfrpaulondev/fitness-api/internal/infra"
	"github.com/bfrpaulondev/fitness-api/internal/middleware"
	"github.com/bfrpaulondev/fitness-api/internal/repository"
	"github.com/bfrpaulondev/fitness-api/internal/service"
	"github.com/bfrpaulondev/fitness-api/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds the background goroutines owned by the router (rate limiter purge).
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	limiter.StartPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	// ── Repositories ─────────────────────────────────────────────────────────
	listaRepo := repository.NewListaCompraRepository(db)
	precioCache := repository.NewPrecioCache(rdb, cfg.PriceCacheTTL())

	// Alerts are enqueued here and delivered by the worker pool started in main
	dispatcher := worker.NewDispatcher(rdb, cfg.AlertDedupeWindow())

	// ── Services ─────────────────────────────────────────────────────────────
	precioSvc := service.NewPrecioService(listaRepo, precioCache)
	resumenSvc := service.NewResumenService(listaRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	listasH := handler.NewListasHandler(precioSvc, resumenSvc)
	preciosH := handler.NewPreciosHandler(precioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	listas := r.Group("/v1/listas", middleware.JWTAuth(cfg.JWTSecret))
	{
		listas.GET("/precios/buscar", preciosH.Buscar)
		listas.POST("/from-mealplan", listasH.CrearDesdePlan)
		listas.POST("/:id/estimate-prices", listasH.EstimarPrecios)
		listas.GET("/:id/summary", listasH.Resumen)
		listas.GET("/:id/pdf", listasH.DescargarPDF)
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
