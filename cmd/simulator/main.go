package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"avsync-monitor/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	port := os.Getenv("AVSYNC_SIM_PORT")
	if port == "" {
		port = "8090"
	}

	mixer := sim.NewMixer()
	encoder := sim.NewEncoder()

	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Logger)

	mux.Get("/mixer/sync", mixer.SyncHandler)
	mux.Get("/encoder/sync", encoder.SyncHandler)

	logger.Info("Starting simulator", "port", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", port), mux); err != nil {
		logger.Error("Simulator failed", "error", err)
		os.Exit(1)
	}
}
