package main

import (
	"log"
	"os"

	"github.com/seantiz/prism/internal/api"
	"github.com/seantiz/prism/internal/config"
	"github.com/seantiz/prism/internal/provider"
	"github.com/seantiz/prism/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("prism: starting",
		"listen_addr", cfg.ListenAddr,
		"provider_url", cfg.ProviderURL,
		"db_path", cfg.DBPath,
	)

	if !cfg.HasProviderKey() {
		logger.Warn("no provider credential configured; generation requests will fail until PRISM_PROVIDER_API_KEY is set")
	}

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	client := provider.New(cfg.ProviderURL, cfg.ProviderKey, logger)

	srv := api.NewServer(cfg, db, client, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
