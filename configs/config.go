package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the process needs at startup. It is built once
// in Load and handed to constructors; nothing reads the environment after
// that.
type Config struct {
	DatabaseURL     string
	ListenAddr      string
	JWTSecret       string
	AdminName       string
	AdminEmail      string
	AdminPassword   string
	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AdminName:       os.Getenv("ADMIN_FULL_NAME"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		BrevoAPIKey:     os.Getenv("BREVO_API_KEY"),
		EmailSender:     os.Getenv("EMAIL_SENDER"),
		EmailSenderName: os.Getenv("EMAIL_SENDER_NAME"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
