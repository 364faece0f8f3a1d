package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"char-appraiser/internal/api"
	"char-appraiser/internal/db"
	"char-appraiser/internal/logger"
)

var version = "dev"

func main() {
	port := flag.Int("port", 13380, "HTTP server port")
	flag.Parse()

	logger.Banner(version)

	// Open SQLite database
	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	// Load config from SQLite
	cfg := database.LoadConfig()

	// Prune stale appraisal history on startup
	database.CleanupOldRuns(cfg.HistoryRetentionDays)

	srv := api.NewServer(cfg, database)

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
