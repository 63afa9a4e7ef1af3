package main

import (
	"log"
	"os"

	"github.com/sourcecred/credrank/internal/api"
	"github.com/sourcecred/credrank/internal/store"
)

func main() {
	log.Println("Starting CredRank engine...")

	// ─── Required Environment Variables ─────────────────────────────────
	// All credentials MUST come from environment variables. No fallback
	// defaults for security-sensitive values. No .env file is loaded;
	// set the variables in the process environment.
	// ────────────────────────────────────────────────────────────────────

	dbUrl := os.Getenv("DATABASE_URL")

	var docStore *store.Store
	if dbUrl != "" {
		conn, err := store.Connect(dbUrl)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without a document store: %v", err)
		} else {
			defer conn.Close()
			if err := conn.InitSchema(); err != nil {
				log.Printf("Warning: store schema init failed: %v", err)
			}
			docStore = conn
		}
	} else {
		log.Println("WARNING: DATABASE_URL unset — engine running without document persistence")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(docStore, wsHub)

	port := getEnvOrDefault("PORT", "5339")

	log.Printf("CredRank engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
