package main

import (
	"log"

	"resume-match-api/internal/bootstrap"
	"resume-match-api/internal/shared/config"
	"resume-match-api/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s (mode=%s store=%s)", addr, app.Mode, app.StoreKind)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
