package main

import (
	"net/http"

	"carai-site-backend/internal/config"
	"carai-site-backend/internal/observability"
	"carai-site-backend/internal/server"
)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Debug)
	defer log.Sync()

	s, err := server.NewServer(cfg, log)
	if err != nil {
		log.Fatalw("failed to create server", "error", err)
	}
	addr := ":" + cfg.Port
	log.Infow("carai server listening", "addr", addr)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}
