package main

import (
	"cafe-server/config"
	"cafe-server/handlers"
	"cafe-server/middleware"
	"cafe-server/models"
	"cafe-server/services"
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			log.Printf("Config error: %v", err)
		}
		log.Fatal("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Cafe source: MongoDB seeded from the JSON file, or the file itself
	var store services.CafeStore = services.NewFileCafeStore(cfg.CafesFile)
	var mongoStore *services.MongoCafeStore
	if cfg.MongoURI != "" {
		var err error
		mongoStore, err = services.NewMongoCafeStore(ctx, cfg.MongoURI, cfg.MongoDatabase, store)
		if err != nil {
			log.Fatalf("MongoDB setup failed: %v", err)
		}
		store = mongoStore
	}

	// Redis backs the geo index and sessions when configured
	var (
		geoIndex     services.GeoIndex     = services.NewMemoryGeoIndex()
		sessionStore services.SessionStore = services.NewMemorySessionStore()
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("Connected to Redis")
		geoIndex = services.NewRedisGeoIndex(redisClient)
		sessionStore = services.NewRedisSessionStore(redisClient)
	} else {
		log.Println("REDIS_ADDR not set, keeping sessions and geo index in memory")
	}

	cafeService, err := services.NewCafeService(ctx, store, geoIndex)
	if err != nil {
		log.Fatalf("Failed to load cafes: %v", err)
	}
	sessionService := services.NewSessionService(sessionStore, cfg.JWTSecret, cfg.SessionTTL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	router := handlers.NewRouter(handlers.Routes{
		Cafes: handlers.NewCafeHandler(
			cafeService,
			sessionService,
			metrics,
			models.LngLat{cfg.DefaultCenterLng, cfg.DefaultCenterLat},
			cfg.NearbyRadiusKm,
		),
		Sessions:       handlers.NewSessionHandler(sessionService),
		Admin:          handlers.NewAdminHandler(cafeService),
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		JWTSecret:      cfg.JWTSecret,
		AdminKeyHash:   cfg.AdminKeyHash,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s (%s)", server.Addr, cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if mongoStore != nil {
		if err := mongoStore.Disconnect(shutdownCtx); err != nil {
			log.Printf("MongoDB disconnect failed: %v", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Redis close failed: %v", err)
		}
	}
	log.Println("Server stopped")
}
