package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	// Bootstrap admin seeded on first start.
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file, using environment")
	}

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DBDSN:         getenv("DB_DSN", "carebook.db"),
		LogFile:       getenv("LOG_FILE", "./carebook.log"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@carebook.test"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"), // empty skips admin seeding
		AdminName:     getenv("ADMIN_NAME", "Administrator"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.LogFile)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
