package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"tutor-backend/internal/config"
	"tutor-backend/internal/database"
	"tutor-backend/internal/handlers"
	"tutor-backend/internal/middleware"
	"tutor-backend/internal/relevance"
	"tutor-backend/internal/repository"
	"tutor-backend/internal/router"
	"tutor-backend/internal/services"
	"tutor-backend/internal/session"
	"tutor-backend/internal/websocket"
	"tutor-backend/web"
)

func main() {
	log.Println("🚀 Starting Data Science Tutor...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Optional Redis Fan-out ────
	var publisher, subscriber *redis.Client
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		publisher, subscriber = redisClients.Publisher, redisClients.Subscriber
		log.Println("✓ Redis connected")
	} else {
		log.Println("- REDIS_URL not set, session events stay in-process")
	}

	// ──── Step 3: Optional Decision Statistics ────
	var recorder services.DecisionRecorder
	var gateHandler *handlers.GateHandler
	gate := relevance.MustDefault()

	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		statsRepo := repository.NewGateStatsRepo(pool)
		recorder = statsRepo
		gateHandler = handlers.NewGateHandler(gate, statsRepo)
	} else {
		gateHandler = handlers.NewGateHandler(gate, nil)
		log.Println("- DATABASE_URL not set, decision statistics disabled")
	}
	log.Printf("✓ Relevance gate ready (%d keywords)", len(gate.Keywords()))

	// ──── Step 4: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.GeminiConcurrentReqs,
		cfg.GeminiTimeout,
	)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)

	// ──── Step 5: Sessions, Hub and Tutor ────
	store := session.NewStore(cfg.SessionTTL)
	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret)

	wsHub := websocket.NewHub(publisher, subscriber, sessionAuth, store)
	log.Println("✓ WebSocket hub started")

	tutor := services.NewTutorService(gate, geminiService, recorder, wsHub)

	janitor := services.NewSessionJanitor(store, tutor, cfg.SessionTTL/2)
	janitor.Start()
	log.Println("✓ Session janitor started")

	askLimiter := middleware.NewRateLimiter(cfg.AskRatePerMinute, time.Minute)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		askLimiter,
		handlers.NewSessionHandler(store, tutor, sessionAuth),
		gateHandler,
		wsHub.HandleWebSocket,
		web.Handler(),
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GeminiTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		janitor.Stop()
		askLimiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Data Science Tutor ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
