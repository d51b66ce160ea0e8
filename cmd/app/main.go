package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"CosmicClock/internal/di"
	"CosmicClock/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before COSMIC_* overrides")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s backend=%s timezone=%s", cfg.Environment, cfg.Backend.Type, cfg.Clock.Timezone)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// blocks until SIGINT/SIGTERM
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
