package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/shestoi/inventory-allocation/internal/app"
	"github.com/shestoi/inventory-allocation/internal/config"
)

func main() {
	// .env опционален: в docker переменные приходят из compose
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Build собирает граф зависимостей: postgres, ledger (если включён), kafka, http, grpc
	application, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// Run блокируется до graceful shutdown
	if err := application.Run(); err != nil {
		log.Fatalf("Service error: %v", err)
	}
}
