package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tutor-backend/internal/config"
	"tutor-backend/internal/console"
	"tutor-backend/internal/relevance"
	"tutor-backend/internal/services"
	"tutor-backend/internal/session"
)

func main() {
	cfg := config.Load()

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

	gate := relevance.MustDefault()
	tutor := services.NewTutorService(gate, geminiService, nil, nil)

	// A terminal session lives as long as the process.
	sess := session.NewStore(0).Create()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	repl := console.NewREPL()
	defer repl.Close()

	repl.Run(ctx, console.New(tutor, gate, sess, os.Stdout))
}
