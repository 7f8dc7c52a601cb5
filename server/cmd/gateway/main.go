package main

import (
	"fmt"
	"log"
	"time"

	"Sealbox/server/internal/api/gateway"
	"Sealbox/server/internal/config"
	"Sealbox/server/internal/services/auth"
	"Sealbox/server/internal/services/cipher"
	"Sealbox/server/internal/services/document"
	"Sealbox/server/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fmt.Println("Configuration loaded:")
	fmt.Println(cfg)

	// Connect to database with retries
	dbConfig := storage.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	}

	var db *storage.DB
	maxRetries := 30
	retryDelay := 2 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = storage.New(dbConfig)
		if err == nil {
			fmt.Printf("Connected to database (attempt %d)\n", attempt)
			break
		}

		if attempt < maxRetries {
			fmt.Printf("Failed to connect to database (attempt %d/%d): %v\n", attempt, maxRetries, err)
			fmt.Printf("  Retrying in %v...\n", retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to database after %d attempts: %v", maxRetries, err)
		}
	}
	defer db.Close()

	// Initialize database schema
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
	fmt.Println("Database schema initialized")

	// Create services
	authService := auth.New(cfg.JWT.Secret, cfg.JWT.TTL.Duration, db)
	cipherService, err := cipher.NewService(cfg.Crypto.DefaultMode, cfg.Crypto.PBKDF2Iterations)
	if err != nil {
		log.Fatalf("Invalid crypto configuration: %v", err)
	}
	documentService := document.NewService(db)

	gatewayServer := gateway.New(
		fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		authService,
		cipherService,
		documentService,
	)

	if err := gatewayServer.Start(); err != nil {
		log.Fatalf("Gateway server failed: %v", err)
	}
}
