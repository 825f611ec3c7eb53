package main

import (
	"log"

	"hse-backend/internal/bootstrap"
	"hse-backend/internal/shared/config"
	"hse-backend/internal/shared/server"
	"hse-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{"addr": addr, "env": cfg.Env, "object_store": cfg.ObjectStoreType})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
