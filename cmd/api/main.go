package main

import (
	"log"
	"os"

	"txledger/internal/pkg/components"
	"txledger/internal/pkg/logging"
)

func main() {
	container, err := components.New()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	logging.Info("txledger initialized successfully", map[string]interface{}{
		"environment": environment,
		"port":        container.Config.Server.Port,
	})

	if err := container.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
