package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chaudhary-hadi27/usman-fast-food/controllers"
	"github.com/chaudhary-hadi27/usman-fast-food/database"
	appkafka "github.com/chaudhary-hadi27/usman-fast-food/kafka"
	"github.com/chaudhary-hadi27/usman-fast-food/logger"
	"github.com/chaudhary-hadi27/usman-fast-food/metrics"
	"github.com/chaudhary-hadi27/usman-fast-food/repository"
	"github.com/chaudhary-hadi27/usman-fast-food/routes"
	"github.com/chaudhary-hadi27/usman-fast-food/services"
)

const menuCacheTTL = 5 * time.Minute

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Initialize("development")
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	// --- Collaborators ---

	if err := database.ConnectMongo(cfg.MongoURL, cfg.MongoDB); err != nil {
		zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.CloseMongo(); err != nil {
			zap.L().Error("Failed to close MongoDB", zap.Error(err))
		}
	}()

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureIndexes(indexCtx, database.DB); err != nil {
		zap.L().Warn("Failed to ensure order indexes", zap.Error(err))
	}
	indexCancel()

	redisClient := database.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	var producer appkafka.ProducerAPI
	if cfg.KafkaBrokers != "" {
		kp := appkafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaOrderTopic)
		defer kp.Close()
		producer = kp
	}

	// --- Wiring ---

	orderRepo := repository.NewMongoOrderRepository(database.DB)
	menuRepo := repository.NewMongoMenuRepository(database.DB)
	userRepo := repository.NewMongoUserRepository(database.DB)

	cache := database.NewCache(redisClient)
	cartRepo := database.NewCartRepository(redisClient, cfg.CartTTL)

	orderService := services.NewOrderService(orderRepo, cache, cartRepo, producer, cfg.OrderCacheTTL)
	cartService := services.NewCartService(cartRepo)
	menuService := services.NewMenuService(menuRepo, cache, menuCacheTTL)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userRepo.EnsureIndexes(seedCtx); err != nil {
		zap.L().Warn("Failed to ensure user indexes", zap.Error(err))
	}
	if err := authService.SeedAdmin(seedCtx, cfg.AdminUsername, cfg.AdminPasswordHash); err != nil {
		zap.L().Warn("Failed to seed admin account", zap.Error(err))
	}
	seedCancel()

	m := metrics.NewServerMetrics("api")

	menuController := controllers.NewMenuController(menuService)
	cartController := controllers.NewCartController(cartService, menuService)
	orderController := controllers.NewOrderController(orderService, cartService, m)
	authController := controllers.NewAuthController(authService)

	// --- HTTP server ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(m.Middleware())

	// Bounded request lifetime so a stalled collaborator cannot pin a request.
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.Register(r, menuController, cartController, orderController, authController, authService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server stopped gracefully")
}
